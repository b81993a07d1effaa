package ports

import (
	"context"

	"github.com/99minutos/opsboard/internal/core/domain"
)

// AnalyticsRepository defines persistence operations for analytics metrics.
type AnalyticsRepository interface {
	// List returns metrics matching filter, most recent timestamp first.
	List(ctx context.Context, filter domain.MetricFilter) ([]*domain.Metric, error)
	FindByID(ctx context.Context, id string) (*domain.Metric, error)
	Create(ctx context.Context, m *domain.Metric) error
	// Delete removes the metric or returns domain.ErrMetricNotFound.
	Delete(ctx context.Context, id string) error
	// Summarize groups all metrics by type.
	Summarize(ctx context.Context) ([]domain.MetricSummary, error)
}
