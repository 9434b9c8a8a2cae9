package api

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/ougirez/covid-dashboard/internal/pkg/constants"
	"github.com/ougirez/covid-dashboard/internal/pkg/logger"
	"github.com/ougirez/covid-dashboard/internal/pkg/metrics"
)

// RequestIDMiddleware propagates or assigns X-Request-ID and attaches it to
// the request context logger.
func RequestIDMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		id := ctx.Request().Header.Get(constants.HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		ctx.Response().Header().Set(constants.HeaderRequestID, id)
		ctx.Set(string(constants.CtxKeyRequestID), id)

		reqCtx := logger.WithFields(ctx.Request().Context(), zap.String("request_id", id))
		ctx.SetRequest(ctx.Request().WithContext(reqCtx))

		return next(ctx)
	}
}

func RequestLoggerMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		start := time.Now()
		err := next(ctx)
		if err != nil {
			ctx.Error(err)
		}

		logger.Info(ctx.Request().Context(), "request",
			zap.String("method", ctx.Request().Method),
			zap.String("uri", ctx.Request().RequestURI),
			zap.Int("status", ctx.Response().Status),
			zap.Duration("latency", time.Since(start)),
		)
		return nil
	}
}

func MetricsMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		start := time.Now()
		if err := next(ctx); err != nil {
			ctx.Error(err)
		}

		route := ctx.Path()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequests.
			WithLabelValues(ctx.Request().Method, route, strconv.Itoa(ctx.Response().Status)).
			Observe(time.Since(start).Seconds())
		return nil
	}
}
