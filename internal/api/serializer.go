package api

import (
	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
)

// sonicSerializer encodes responses with sonic using encoding/json
// compatible settings.
type sonicSerializer struct {
	api sonic.API
}

func NewSonicSerializer() echo.JSONSerializer {
	return &sonicSerializer{api: sonic.ConfigStd}
}

func (s *sonicSerializer) Serialize(c echo.Context, i interface{}, indent string) error {
	enc := s.api.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

func (s *sonicSerializer) Deserialize(c echo.Context, i interface{}) error {
	return s.api.NewDecoder(c.Request().Body).Decode(i)
}
