package controller

import (
	"bytes"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ougirez/covid-dashboard/internal/domain/dto"
)

const dashboardTitle = "How each country are winning Covid-19"

const (
	CumulativeChartPath = "/api/v1/charts/cumulative"
	NewCasesChartPath   = "/api/v1/charts/new-cases"
)

type dashboardPage struct {
	Title          string
	Countries      []dto.CountryOption
	Selected       string
	CumulativePath string
	NewCasesPath   string
}

// GetDashboard renders the page with the country picker preset to the first
// stored country.
func (c *Controller) GetDashboard(ctx echo.Context) error {
	options, err := c.countryOptions(ctx)
	if err != nil {
		return err
	}

	page := dashboardPage{
		Title:          dashboardTitle,
		Countries:      options,
		CumulativePath: CumulativeChartPath,
		NewCasesPath:   NewCasesChartPath,
	}
	if len(options) > 0 {
		page.Selected = options[0].Value
	}

	var buf bytes.Buffer
	if err := c.templates.ExecuteTemplate(&buf, "index.html", page); err != nil {
		return err
	}

	return ctx.HTMLBlob(http.StatusOK, buf.Bytes())
}

func (c *Controller) ListCountries(ctx echo.Context) error {
	options, err := c.countryOptions(ctx)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, options)
}

func (c *Controller) countryOptions(ctx echo.Context) ([]dto.CountryOption, error) {
	countries, err := c.service.Countries(ctx.Request().Context())
	if err != nil {
		return nil, err
	}

	options := make([]dto.CountryOption, 0, len(countries))
	for _, country := range countries {
		options = append(options, dto.CountryOption{Label: country, Value: country})
	}
	return options, nil
}
