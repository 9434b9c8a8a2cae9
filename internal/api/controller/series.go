package controller

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/ougirez/covid-dashboard/internal/domain"
)

type seriesRequest struct {
	Country string `param:"country" validate:"required"`
}

type seriesResponse struct {
	Country string              `json:"country"`
	Days    []domain.CountryDay `json:"days"`
}

// GetCountrySeries returns every derived column for the country, including
// the leading zero-case days the charts hide.
func (c *Controller) GetCountrySeries(ctx echo.Context) error {
	var req seriesRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}

	country, err := url.PathUnescape(req.Country)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("bad country: %s", err.Error()))
	}
	req.Country = country

	if err := ctx.Validate(&req); err != nil {
		return err
	}

	days, err := c.service.Calculate(ctx.Request().Context(), req.Country)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, seriesResponse{Country: req.Country, Days: days})
}
