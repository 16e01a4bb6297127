// Package console implements the admin console engine behind the
// dashboard pages: form specifications and validation, submit and
// delete flows, confirm dialogs, data grid columns and the navigation
// model. Handlers in adminapi serve these structures to the UI; the
// flows talk back through pkg/client.
package console

import (
	"strings"
	"unicode"
)

// Field kinds understood by the console renderer.
const (
	KindText     = "text"
	KindSelect   = "select"
	KindCheckbox = "checkbox"
	KindColor    = "color"
	KindImages   = "images"
	KindDecimal  = "decimal"
)

// Resource identifies one admin-managed entity type.
type Resource struct {
	Name     string // plural path segment, e.g. "billboards"
	Singular string // e.g. "billboard"
}

// TitleSingular returns the singular name with a leading capital.
func (r Resource) TitleSingular() string {
	if r.Singular == "" {
		return ""
	}
	runes := []rune(r.Singular)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// DeletedToast is the toast shown after a successful delete.
func (r Resource) DeletedToast() string {
	return r.TitleSingular() + " deleted."
}

var (
	ResourceStores     = Resource{Name: "stores", Singular: "store"}
	ResourceBillboards = Resource{Name: "billboards", Singular: "billboard"}
	ResourceCategories = Resource{Name: "categories", Singular: "category"}
	ResourceSizes      = Resource{Name: "sizes", Singular: "size"}
	ResourceColors     = Resource{Name: "colors", Singular: "color"}
	ResourceProducts   = Resource{Name: "products", Singular: "product"}
	ResourceOrders     = Resource{Name: "orders", Singular: "order"}
)

// ResourceByName resolves a plural path segment to its resource.
func ResourceByName(name string) (Resource, bool) {
	switch strings.ToLower(name) {
	case ResourceStores.Name:
		return ResourceStores, true
	case ResourceBillboards.Name:
		return ResourceBillboards, true
	case ResourceCategories.Name:
		return ResourceCategories, true
	case ResourceSizes.Name:
		return ResourceSizes, true
	case ResourceColors.Name:
		return ResourceColors, true
	case ResourceProducts.Name:
		return ResourceProducts, true
	case ResourceOrders.Name:
		return ResourceOrders, true
	}
	return Resource{}, false
}

// FieldSpec describes one form field.
type FieldSpec struct {
	Name        string `json:"name"`
	Label       string `json:"label"`
	Kind        string `json:"kind"`
	Required    bool   `json:"required"`
	Pattern     string `json:"pattern,omitempty"`
	PatternMsg  string `json:"pattern_msg,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`
	Source      string `json:"source,omitempty"` // resource the select options come from
	Default     any    `json:"default,omitempty"`
}

// FormSpec describes the whole form for one resource.
type FormSpec struct {
	Resource Resource    `json:"resource"`
	Fields   []FieldSpec `json:"fields"`
}

// Field returns the named field spec.
func (s FormSpec) Field(name string) (FieldSpec, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

const hexColorPattern = `^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`

var formSpecs = map[string]FormSpec{
	ResourceStores.Name: {
		Resource: ResourceStores,
		Fields: []FieldSpec{
			{Name: "name", Label: "Name", Kind: KindText, Required: true, Placeholder: "E-Commerce"},
		},
	},
	ResourceBillboards.Name: {
		Resource: ResourceBillboards,
		Fields: []FieldSpec{
			{Name: "image_url", Label: "Background image", Kind: KindImages, Required: true},
			{Name: "label", Label: "Label", Kind: KindText, Required: true, Placeholder: "Billboard label"},
		},
	},
	ResourceCategories.Name: {
		Resource: ResourceCategories,
		Fields: []FieldSpec{
			{Name: "name", Label: "Name", Kind: KindText, Required: true, Placeholder: "Category name"},
			{Name: "billboard_id", Label: "Billboard", Kind: KindSelect, Required: true, Source: ResourceBillboards.Name, Placeholder: "Select a billboard"},
		},
	},
	ResourceSizes.Name: {
		Resource: ResourceSizes,
		Fields: []FieldSpec{
			{Name: "name", Label: "Name", Kind: KindText, Required: true, Placeholder: "Size name"},
			{Name: "value", Label: "Value", Kind: KindText, Required: true, Placeholder: "Size value"},
		},
	},
	ResourceColors.Name: {
		Resource: ResourceColors,
		Fields: []FieldSpec{
			{Name: "name", Label: "Name", Kind: KindText, Required: true, Placeholder: "Color name"},
			{Name: "value", Label: "Value", Kind: KindColor, Required: true, Placeholder: "Color value",
				Pattern: hexColorPattern, PatternMsg: "Value must be a valid hex code"},
		},
	},
	ResourceProducts.Name: {
		Resource: ResourceProducts,
		Fields: []FieldSpec{
			{Name: "images", Label: "Images", Kind: KindImages, Required: true},
			{Name: "name", Label: "Name", Kind: KindText, Required: true, Placeholder: "Product name"},
			{Name: "price", Label: "Price", Kind: KindDecimal, Required: true, Placeholder: "9.99"},
			{Name: "category_id", Label: "Category", Kind: KindSelect, Required: true, Source: ResourceCategories.Name, Placeholder: "Select a category"},
			{Name: "size_id", Label: "Size", Kind: KindSelect, Required: true, Source: ResourceSizes.Name, Placeholder: "Select a size"},
			{Name: "color_id", Label: "Color", Kind: KindSelect, Required: true, Source: ResourceColors.Name, Placeholder: "Select a color"},
			{Name: "is_featured", Label: "Featured", Kind: KindCheckbox, Default: false},
			{Name: "is_archived", Label: "Archived", Kind: KindCheckbox, Default: false},
		},
	},
}

// SpecFor returns the form spec for the named resource. Orders have no
// form: they are created by checkout, never in the console.
func SpecFor(resource string) (FormSpec, bool) {
	s, oks := formSpecs[strings.ToLower(resource)]
	return s, oks
}

// FormResources lists the resources that carry a form, in nav order.
func FormResources() []Resource {
	return []Resource{
		ResourceStores,
		ResourceBillboards,
		ResourceCategories,
		ResourceSizes,
		ResourceColors,
		ResourceProducts,
	}
}
