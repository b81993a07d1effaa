package handler

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/opsboard/internal/api/metrics"
	"github.com/99minutos/opsboard/internal/core/domain"
)

const headerIdempotencyKey = "Idempotency-Key"

func idempotencyKey(c echo.Context) string {
	return strings.TrimSpace(c.Request().Header.Get(headerIdempotencyKey))
}

// bindError keeps field errors raised while decoding and hides decoder
// internals for everything else.
func bindError(err error) error {
	var ie *domain.InputError
	if errors.As(err, &ie) {
		return ie
	}
	return domain.InvalidInput("malformed request body")
}

// countCreate records a create, or a replay when the service answered from
// an earlier request with the same idempotency key.
func countCreate(resource string, replayed bool) {
	if replayed {
		metrics.IdempotentReplaysTotal.WithLabelValues(resource).Inc()
		return
	}
	metrics.EntitiesCreatedTotal.WithLabelValues(resource).Inc()
}
