package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/opsboard/internal/core/domain"
	"github.com/99minutos/opsboard/internal/core/ports"
)

const metricScope = "analytics"

// dateLayouts are tried in order when parsing startDate / endDate.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

type AnalyticsService struct {
	repo       ports.AnalyticsRepository
	replay     ReplayGuard
	replayWait time.Duration
	logger     zerolog.Logger
	now        func() time.Time
}

// NewAnalyticsService returns an AnalyticsService. A nil replay guard
// disables Idempotency-Key handling.
func NewAnalyticsService(repo ports.AnalyticsRepository, replay ReplayGuard, logger zerolog.Logger) *AnalyticsService {
	if replay == nil {
		replay = noReplay{}
	}
	return &AnalyticsService{
		repo:       repo,
		replay:     replay,
		replayWait: defaultReplayWait,
		logger:     logger,
		now:        time.Now,
	}
}

// ListMetrics builds a filter from the optional type and inclusive date bounds.
func (s *AnalyticsService) ListMetrics(ctx context.Context, in ports.ListMetricsInput) ([]*domain.Metric, error) {
	filter := domain.MetricFilter{Type: domain.MetricType(strings.TrimSpace(in.MetricType))}

	var err error
	if filter.From, err = parseDate("startDate", in.StartDate); err != nil {
		return nil, err
	}
	if filter.To, err = parseDate("endDate", in.EndDate); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, filter)
}

func (s *AnalyticsService) ListMetricsByType(ctx context.Context, metricType string) ([]*domain.Metric, error) {
	return s.repo.List(ctx, domain.MetricFilter{Type: domain.MetricType(metricType)})
}

// CreateMetric validates and stores a new metric. Idempotency keys behave
// as in UserService.CreateUser.
func (s *AnalyticsService) CreateMetric(ctx context.Context, in ports.CreateMetricInput) (*domain.Metric, bool, error) {
	m := &domain.Metric{
		MetricName:  in.MetricName,
		MetricValue: in.MetricValue,
		MetricType:  domain.MetricType(in.MetricType),
		Description: in.Description,
		Timestamp:   in.Timestamp,
		Metadata:    in.Metadata,
	}
	m.Normalize(s.now())
	if err := m.Validate(); err != nil {
		return nil, false, err
	}

	c, err := claimKey(ctx, s.replay, s.logger, metricScope, in.IdempotencyKey, s.replayWait)
	if err != nil {
		return nil, false, err
	}
	if c.replayID != "" {
		existing, err := s.repo.FindByID(ctx, c.replayID)
		if err == nil {
			s.logger.Info().Str("idempotency_key", in.IdempotencyKey).Str("metric_id", existing.ID).Msg("idempotent replay")
			return existing, true, nil
		}
		s.logger.Debug().Err(err).Str("idempotency_key", in.IdempotencyKey).Msg("replayed metric no longer available")
		c.held = true
	}

	if err := s.repo.Create(ctx, m); err != nil {
		c.release(ctx, s.replay, s.logger)
		s.logger.Error().Err(err).Msg("failed to create metric")
		return nil, false, err
	}

	c.complete(ctx, s.replay, s.logger, m.ID)
	s.logger.Info().Str("metric_id", m.ID).Str("metric_type", string(m.MetricType)).Msg("metric created")
	return m, false, nil
}

// Summary returns one aggregate per metric type, ordered by type name.
func (s *AnalyticsService) Summary(ctx context.Context) ([]domain.MetricSummary, error) {
	groups, err := s.repo.Summarize(ctx)
	if err != nil {
		return nil, err
	}
	domain.SortSummaries(groups)
	return groups, nil
}

func (s *AnalyticsService) DeleteMetric(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("metric_id", id).Msg("metric deleted")
	return nil
}

// parseDate accepts RFC 3339 timestamps or plain dates (UTC midnight).
// An empty value yields the zero time.
func parseDate(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, domain.InvalidInput(field + " must be a valid date")
}
