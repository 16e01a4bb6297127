package console

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustSpec(t *testing.T, resource string) FormSpec {
	t.Helper()
	spec, oks := SpecFor(resource)
	require.True(t, oks)
	return spec
}

func TestValidate_RequiredText(t *testing.T) {
	spec := mustSpec(t, "sizes")

	errs := Validate(spec, Values{})
	assert.Equal(t, "Required", errs["name"])
	assert.Equal(t, "Required", errs["value"])

	errs = Validate(spec, Values{"name": "   ", "value": "XL"})
	assert.Equal(t, "Required", errs["name"], "whitespace only counts as empty")
	assert.NotContains(t, errs, "value")

	errs = Validate(spec, Values{"name": "Extra Large", "value": "XL"})
	assert.True(t, errs.Empty())
}

func TestValidate_HexColorPattern(t *testing.T) {
	spec := mustSpec(t, "colors")

	cases := []struct {
		value string
		want  string
	}{
		{"#fff", ""},
		{"#FFF", ""},
		{"#a1b2c3", ""},
		{"fff", "Value must be a valid hex code"},
		{"#ab", "Value must be a valid hex code"},
		{"#a1b2c3d4", "Value must be a valid hex code"},
		{"red", "Value must be a valid hex code"},
	}
	for _, tc := range cases {
		errs := Validate(spec, Values{"name": "Shade", "value": tc.value})
		if tc.want == "" {
			assert.NotContains(t, errs, "value", "value %q should pass", tc.value)
		} else {
			assert.Equal(t, tc.want, errs["value"], "value %q", tc.value)
		}
	}
}

func TestValidate_DecimalPrice(t *testing.T) {
	spec := mustSpec(t, "products")
	base := Values{
		"images":      []string{"https://img.test/a.png"},
		"name":        "Mug",
		"category_id": "1",
		"size_id":     "2",
		"color_id":    "3",
	}
	withPrice := func(p any) Values {
		v := Values{}
		for k, val := range base {
			v[k] = val
		}
		v["price"] = p
		return v
	}

	assert.Equal(t, "Required", Validate(spec, base)["price"])
	assert.Equal(t, "Must be a number", Validate(spec, withPrice("abc"))["price"])
	assert.Equal(t, "Must be greater than 0", Validate(spec, withPrice("0"))["price"])
	assert.Equal(t, "Must be greater than 0", Validate(spec, withPrice("-3.50"))["price"])
	assert.NotContains(t, Validate(spec, withPrice("19.99")), "price")
	assert.NotContains(t, Validate(spec, withPrice(25)), "price")
}

func TestValidate_SelectReference(t *testing.T) {
	spec := mustSpec(t, "categories")

	errs := Validate(spec, Values{"name": "Vitamins"})
	assert.Equal(t, "Required", errs["billboard_id"])

	errs = Validate(spec, Values{"name": "Vitamins", "billboard_id": "0"})
	assert.Equal(t, "Required", errs["billboard_id"], "zero id is not a reference")

	errs = Validate(spec, Values{"name": "Vitamins", "billboard_id": "123456789012345678"})
	assert.True(t, errs.Empty())
}

func TestValidate_Images(t *testing.T) {
	spec := mustSpec(t, "billboards")

	assert.Equal(t, "Required", Validate(spec, Values{"label": "Hero"})["image_url"])
	assert.Equal(t, "Required", Validate(spec, Values{"label": "Hero", "image_url": ""})["image_url"])
	assert.Equal(t, "Required", Validate(spec, Values{"label": "Hero", "image_url": []string{}})["image_url"])
	assert.True(t, Validate(spec, Values{"label": "Hero", "image_url": "https://img.test/b.png"}).Empty())
	assert.True(t, Validate(spec, Values{"label": "Hero", "image_url": []string{"https://img.test/b.png"}}).Empty())
}

func TestValidate_CheckboxNeverFails(t *testing.T) {
	spec := mustSpec(t, "products")
	values := Values{
		"images":      []string{"https://img.test/a.png"},
		"name":        "Mug",
		"price":       "9.99",
		"category_id": "1",
		"size_id":     "2",
		"color_id":    "3",
	}

	errs := Validate(spec, values)
	assert.True(t, errs.Empty(), "absent checkboxes are just unchecked: %v", errs)
}

func TestFieldErrors_FirstFollowsSpecOrder(t *testing.T) {
	spec := mustSpec(t, "products")

	errs := Validate(spec, Values{})
	assert.Equal(t, "Required", errs.First(spec))

	// images is the first product field, so its error wins
	delete(errs, "images")
	assert.Equal(t, errs["name"], errs.First(spec))

	assert.Equal(t, "", FieldErrors{}.First(spec))
}
