package ports

import (
	"context"
	"time"

	"github.com/99minutos/opsboard/internal/core/domain"
)

// ListMetricsInput carries the raw query parameters of a listing request.
// StartDate and EndDate are date strings; empty means unbounded.
type ListMetricsInput struct {
	MetricType string
	StartDate  string
	EndDate    string
}

// CreateMetricInput is the DTO passed from the transport layer to AnalyticsService.
type CreateMetricInput struct {
	MetricName  string
	MetricValue float64
	MetricType  string
	Description string
	// Timestamp is optional; zero means "now".
	Timestamp      time.Time
	Metadata       map[string]string
	IdempotencyKey string
}

// AnalyticsService defines use-case operations for analytics metrics.
type AnalyticsService interface {
	ListMetrics(ctx context.Context, in ListMetricsInput) ([]*domain.Metric, error)
	ListMetricsByType(ctx context.Context, metricType string) ([]*domain.Metric, error)
	// CreateMetric reports replayed=true when an idempotency key returned an
	// earlier metric instead of creating one.
	CreateMetric(ctx context.Context, in CreateMetricInput) (m *domain.Metric, replayed bool, err error)
	Summary(ctx context.Context) ([]domain.MetricSummary, error)
	DeleteMetric(ctx context.Context, id string) error
}
