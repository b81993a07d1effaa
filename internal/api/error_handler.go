package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/opsboard/internal/api/handler"
	"github.com/99minutos/opsboard/internal/api/metrics"
	"github.com/99minutos/opsboard/internal/core/domain"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders every failure as a handler.Envelope with success=false.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body, kind := resolveError(err, log, c)
		metrics.APIErrorsTotal.WithLabelValues(kind).Inc()

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, handler.Envelope, string) {
	var ie *domain.InputError
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, handler.Fail("User not found", ""), "not_found"
	case errors.Is(err, domain.ErrMetricNotFound):
		return http.StatusNotFound, handler.Fail("Analytics entry not found", ""), "not_found"
	case errors.Is(err, domain.ErrDuplicateEmail):
		return http.StatusBadRequest, handler.Fail("Email already exists", ""), "duplicate"
	case errors.Is(err, domain.ErrRequestInFlight):
		return http.StatusConflict, handler.Fail("Conflict", "A request with this Idempotency-Key is still in progress"), "conflict"
	case errors.As(err, &ie):
		return http.StatusBadRequest, handler.Fail("Bad Request", ie.Message), "bad_request"
	}

	// Echo's own errors (unmatched routes, body limit, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		switch he.Code {
		case http.StatusNotFound, http.StatusMethodNotAllowed:
			return http.StatusNotFound, handler.Fail("Route not found", ""), "route_not_found"
		case http.StatusInternalServerError:
		default:
			return he.Code, handler.Fail(http.StatusText(he.Code), fmt.Sprintf("%v", he.Message)), "bad_request"
		}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")

	return http.StatusInternalServerError, handler.Fail("Server Error", "An unexpected error occurred"), "internal"
}
