package controller

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/ougirez/covid-dashboard/internal/domain"
	"github.com/ougirez/covid-dashboard/internal/domain/dto"
	"github.com/ougirez/covid-dashboard/internal/pkg/logger"
	"github.com/ougirez/covid-dashboard/internal/pkg/metrics"
	"github.com/ougirez/covid-dashboard/internal/service/chart"
	"github.com/ougirez/covid-dashboard/internal/service/series"
)

type chartRequest struct {
	Country string `query:"country"`
}

type renderFunc func(country string, days []domain.CountryDay) dto.Figure

func (c *Controller) GetCumulativeChart(ctx echo.Context) error {
	return c.renderChart(ctx, "Active cases of COVID-19 for %s", chart.Cumulative)
}

func (c *Controller) GetNewCasesChart(ctx echo.Context) error {
	return c.renderChart(ctx, "New cases of COVID-19 for %s", chart.NewCases)
}

// renderChart answers every selection with a figure. An unknown country
// yields an empty, annotated figure instead of an error response.
func (c *Controller) renderChart(ctx echo.Context, titleFormat string, render renderFunc) error {
	var req chartRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}

	days, err := c.visibleSeries(ctx.Request().Context(), req.Country)
	if err != nil {
		var unknown *domain.UnknownCountryError
		if errors.As(err, &unknown) {
			return ctx.JSON(http.StatusOK, chart.Empty(fmt.Sprintf(titleFormat, req.Country), err.Error()))
		}
		return err
	}

	return ctx.JSON(http.StatusOK, render(req.Country, days))
}

// visibleSeries is the single calculation shared by both charts.
func (c *Controller) visibleSeries(ctx context.Context, country string) ([]domain.CountryDay, error) {
	ctx = logger.WithFields(ctx, zap.String("country", country))

	days, err := c.service.Calculate(ctx, country)
	if err != nil {
		var unknown *domain.UnknownCountryError
		if errors.As(err, &unknown) {
			metrics.SeriesCalculations.WithLabelValues("unknown_country").Inc()
			logger.Warnf(ctx, "series.Calculate: %s", err.Error())
		} else {
			metrics.SeriesCalculations.WithLabelValues("error").Inc()
			logger.Errorf(ctx, "series.Calculate: %s", err.Error())
		}
		return nil, err
	}

	metrics.SeriesCalculations.WithLabelValues("ok").Inc()
	return series.TrimLeadingZeros(days), nil
}
