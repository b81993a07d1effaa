package api

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/99minutos/opsboard/docs"
	"github.com/99minutos/opsboard/internal/api/handler"
	"github.com/99minutos/opsboard/internal/core/ports"
)

// Options carries everything the router needs to wire its routes.
type Options struct {
	Users     ports.UserService
	Analytics ports.AnalyticsService

	// BasePath prefixes the resource routes, e.g. "/api".
	BasePath    string
	Env         string
	Version     string
	FrontendURL string

	// Readiness checks, keyed by dependency name.
	Checks map[string]handler.CheckFunc

	// Prometheus wiring. A nil Registerer disables /metrics.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer

	Logger zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(opts.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger(opts.Logger))
	e.Use(echomiddleware.Secure())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: corsOrigins(opts.FrontendURL),
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAccept, "Idempotency-Key"},
	}))
	e.Use(echomiddleware.BodyLimit("1M"))

	if opts.Registerer != nil {
		e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
			Namespace:                 "opsboard",
			Registerer:                opts.Registerer,
			DoNotUseRequestPathFor404: true,
		}))
		e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
			Gatherer: opts.Gatherer,
		}))
	}

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Health probes ---
	healthHandler := handler.NewHealthHandler(opts.Env, opts.Version, opts.BasePath)
	readinessHandler := handler.NewReadinessHandler(opts.Checks)
	e.GET("/", healthHandler.Index)

	api := e.Group(opts.BasePath)
	api.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	api.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?

	// --- Users ---
	users := handler.NewUserHandler(opts.Users)
	api.GET("/users", users.List)
	api.POST("/users", users.Create)
	api.GET("/users/:id", users.Get)
	api.PUT("/users/:id", users.Update)
	api.DELETE("/users/:id", users.Delete)

	// --- Analytics ---
	analytics := handler.NewAnalyticsHandler(opts.Analytics)
	api.GET("/analytics", analytics.List)
	api.POST("/analytics", analytics.Create)
	api.GET("/analytics/summary", analytics.Summary)
	api.GET("/analytics/type/:type", analytics.ListByType)
	api.DELETE("/analytics/:id", analytics.Delete)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Status >= http.StatusInternalServerError {
				evt = log.Error().Err(v.Error)
			}
			evt.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}

func corsOrigins(frontendURL string) []string {
	var origins []string
	for _, o := range strings.Split(frontendURL, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
