package webserver

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/labstack/echo/v4"
)

var fastJson = jsoniter.ConfigCompatibleWithStandardLibrary

// JsonSerializer swaps echo's encoding/json for jsoniter.
type JsonSerializer struct{}

func NewJsonSerializer() *JsonSerializer {
	return &JsonSerializer{}
}

func (s *JsonSerializer) Serialize(c echo.Context, i interface{}, indent string) error {
	enc := fastJson.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

func (s *JsonSerializer) Deserialize(c echo.Context, i interface{}) error {
	return fastJson.NewDecoder(c.Request().Body).Decode(i)
}
