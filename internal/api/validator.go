package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type requestValidator struct {
	validate *validator.Validate
}

func NewValidator() echo.Validator {
	return &requestValidator{validate: validator.New()}
}

func (v *requestValidator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

type requestBinder struct {
	echo.DefaultBinder
}

// NewBinder binds path and query parameters and rejects malformed input
// with 400.
func NewBinder() echo.Binder {
	return &requestBinder{}
}

func (b *requestBinder) Bind(i interface{}, ctx echo.Context) error {
	if err := b.DefaultBinder.Bind(i, ctx); err != nil {
		if he, ok := err.(*echo.HTTPError); ok {
			return he
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
