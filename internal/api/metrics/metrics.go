// Package metrics defines the custom Prometheus metrics of the opsboard API.
// They register with the default registry at package init; HTTP request
// metrics come from the echoprometheus middleware.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "opsboard"

// Resource label values.
const (
	ResourceUsers     = "users"
	ResourceAnalytics = "analytics"
)

// EntitiesCreatedTotal counts successful creates.
// Label:
//   - resource: "users" or "analytics"
var EntitiesCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "entities_created_total",
		Help:      "Total number of entities created, by resource.",
	},
	[]string{"resource"},
)

// IdempotentReplaysTotal counts creates answered from an earlier request
// with the same Idempotency-Key. Replays are not counted as creates.
var IdempotentReplaysTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "idempotent_replays_total",
		Help:      "Total number of create requests answered by an idempotent replay, by resource.",
	},
	[]string{"resource"},
)

// EntitiesDeletedTotal counts successful deletes.
var EntitiesDeletedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "entities_deleted_total",
		Help:      "Total number of entities deleted, by resource.",
	},
	[]string{"resource"},
)

// APIErrorsTotal counts error envelopes rendered by the central error handler.
// Label:
//   - kind: "not_found", "bad_request", "duplicate", "conflict", "route_not_found" or "internal"
var APIErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_errors_total",
		Help:      "Total number of error responses, by kind.",
	},
	[]string{"kind"},
)
