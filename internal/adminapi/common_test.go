package adminapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/merchkit/storeadmin/internal/webserver"
)

func queryContext(target string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestParsePagination_Defaults(t *testing.T) {
	page, size := parsePagination(queryContext("/api/1/sizes"))
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, size)
}

func TestParsePagination_Bounds(t *testing.T) {
	cases := []struct {
		query    string
		page     int
		pageSize int
	}{
		{"page=3&page_size=50", 3, 50},
		{"page=0&page_size=0", 1, 20},
		{"page=-5&page_size=-1", 1, 20},
		{"page=abc&page_size=junk", 1, 20},
		{"page=2&page_size=1000", 2, 200},
	}
	for _, tc := range cases {
		page, size := parsePagination(queryContext("/api/1/sizes?" + tc.query))
		assert.Equal(t, tc.page, page, tc.query)
		assert.Equal(t, tc.pageSize, size, tc.query)
	}
}

func TestSortOrder_WhitelistAndDirection(t *testing.T) {
	allowed := map[string]string{"name": "name", "created_at": "created_at"}

	cases := []struct {
		query string
		want  string
	}{
		{"", "created_at DESC"},
		{"sort=name", "name ASC"},
		{"sort=name&dir=desc", "name DESC"},
		{"sort=name&dir=DESC", "name DESC"},
		{"sort=name&dir=up", "name ASC"},
		{"sort=price", "created_at DESC"},
		{"sort=name%3Bdrop%20table%20product", "created_at DESC"},
	}
	for _, tc := range cases {
		got := sortOrder(queryContext("/api/1/products?"+tc.query), allowed, "created_at DESC")
		assert.Equal(t, tc.want, got, tc.query)
	}
}

func TestParseIDParam(t *testing.T) {
	c := queryContext("/api/1/sizes/17")
	c.SetParamNames("id")
	c.SetParamValues("17")

	id, err := parseIDParam(c, "id")
	require.NoError(t, err)
	assert.Equal(t, int64(17), id)

	for _, bad := range []string{"0", "-3", "abc", ""} {
		c.SetParamValues(bad)
		_, err := parseIDParam(c, "id")
		assert.Error(t, err, "value %q", bad)
	}
}

func TestScrub_StripsMarkup(t *testing.T) {
	assert.Equal(t, "Bold move", scrub("<b>Bold</b> move"))
	assert.Equal(t, "Shirts", scrub("<script>alert(1)</script>Shirts"))
	assert.Equal(t, "Link", scrub("<a href=\"https://evil.test\">Link</a>"))
	assert.Equal(t, "plain", scrub("  plain  "))
	assert.Equal(t, "", scrub("<img src=x onerror=alert(1)>"))
}

// validationPayload exercises every tag the API maps to a message.
type validationPayload struct {
	Name    string  `json:"name" validate:"required"`
	Value   string  `json:"value" validate:"omitempty,hexcolor"`
	Website string  `json:"website" validate:"omitempty,url"`
	Price   float64 `json:"price" validate:"omitempty,gt=0"`
	Short   string  `json:"short" validate:"omitempty,min=5"`
	Long    string  `json:"long" validate:"omitempty,max=3"`
	Email   string  `json:"email" validate:"omitempty,email"`
}

func TestValidationMessage_PerTag(t *testing.T) {
	err := webserver.NewValidator().Validate(&validationPayload{
		Value:   "zzz",
		Website: "not a url",
		Price:   -1,
		Short:   "ab",
		Long:    "toolong",
		Email:   "nope",
	})
	verrs, okv := err.(validator.ValidationErrors)
	require.True(t, okv)

	messages := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		messages[fe.Field()] = validationMessage(fe)
	}

	assert.Equal(t, map[string]string{
		"name":    "Required",
		"value":   "Value must be a valid hex code",
		"website": "Must be a valid URL",
		"price":   "Must be greater than 0",
		"short":   "Too short",
		"long":    "Too long",
		"email":   "Invalid value",
	}, messages)
}

func TestHandleValidationError_FieldScopedPayload(t *testing.T) {
	verr := webserver.NewValidator().Validate(&validationPayload{Value: "zzz"})
	require.Error(t, verr)

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/api/1/colors", nil), rec)

	require.NoError(t, handleValidationError(c, verr))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Detail  map[string]string `json:"detail"`
	}
	require.NoError(t, fastJson.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "VALIDATION_ERROR", body.Code)
	assert.Equal(t, "Validation failed", body.Message)
	assert.Equal(t, map[string]string{
		"name":  "Required",
		"value": "Value must be a valid hex code",
	}, body.Detail)
}

func TestHandleValidationError_OpaqueError(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/api/1/colors", nil), rec)

	require.NoError(t, handleValidationError(c, assert.AnError))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]any
	require.NoError(t, fastJson.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "VALIDATION_ERROR", body["code"])
	assert.NotContains(t, body, "detail")
}
