package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ougirez/covid-dashboard/internal/domain"
	"github.com/ougirez/covid-dashboard/internal/pkg/constants"
	"github.com/ougirez/covid-dashboard/internal/pkg/logger"
)

func httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	msg := err.Error()
	code := statusFor(err)
	if he, ok := err.(*echo.HTTPError); ok {
		if m, ok := he.Message.(string); ok {
			msg = m
		}
	}

	if code >= http.StatusInternalServerError {
		logger.Errorf(c.Request().Context(), "%s %s: %s", c.Request().Method, c.Path(), err.Error())
	}

	_ = c.JSON(code, domain.ErrorResponse{
		Message: msg,
		Code:    code,
	})
}

func statusFor(err error) int {
	var (
		coded    *constants.CodedError
		httpErr  *echo.HTTPError
		unknown  *domain.UnknownCountryError
		notFound *domain.NotFoundError
	)
	switch {
	case errors.As(err, &coded):
		return coded.Code()
	case errors.As(err, &httpErr):
		return httpErr.Code
	case errors.As(err, &unknown):
		return http.StatusNotFound
	case errors.As(err, &notFound):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
