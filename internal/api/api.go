package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ougirez/covid-dashboard/internal/api/controller"
	"github.com/ougirez/covid-dashboard/internal/pkg/logger"
)

type APIService struct {
	router        *echo.Echo
	seriesService controller.SeriesService
}

// Serve blocks until the server stops. A clean Shutdown returns nil.
func (svc *APIService) Serve(addr string) error {
	logger.Infof(context.Background(), "dashboard listening on %s", addr)
	if err := svc.router.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (svc *APIService) Shutdown(ctx context.Context) error {
	return svc.router.Shutdown(ctx)
}

// Handler exposes the router for tests and embedding.
func (svc *APIService) Handler() http.Handler {
	return svc.router
}

func NewAPIService(seriesService controller.SeriesService, allowOrigins []string) (*APIService, error) {
	svc := &APIService{router: echo.New(), seriesService: seriesService}

	svc.router.HideBanner = true
	svc.router.HidePort = true
	svc.router.Logger.SetLevel(log.ERROR)
	svc.router.Validator = NewValidator()
	svc.router.Binder = NewBinder()
	svc.router.JSONSerializer = NewSonicSerializer()
	svc.router.HTTPErrorHandler = httpErrorHandler
	svc.router.Use(middleware.Recover())
	svc.router.Use(RequestIDMiddleware)
	svc.router.Use(RequestLoggerMiddleware)
	svc.router.Use(MetricsMiddleware)
	if len(allowOrigins) > 0 {
		svc.router.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: allowOrigins,
			AllowMethods: []string{echo.GET, echo.HEAD},
			AllowHeaders: []string{echo.HeaderContentType},
		}))
	}

	cntrl, err := controller.NewController(svc.seriesService)
	if err != nil {
		return nil, err
	}

	svc.router.GET("/", cntrl.GetDashboard)
	svc.router.GET("/healthz", func(ctx echo.Context) error {
		return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	svc.router.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := svc.router.Group("/api/v1")

	countries := api.Group("/countries")
	countries.GET("", cntrl.ListCountries)
	countries.GET("/:country/series", cntrl.GetCountrySeries)

	charts := api.Group("/charts")
	charts.GET("/cumulative", cntrl.GetCumulativeChart)
	charts.GET("/new-cases", cntrl.GetNewCasesChart)

	return svc, nil
}
