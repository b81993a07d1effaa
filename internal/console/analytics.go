package console

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/99minutos/opsboard/internal/core/domain"
	"github.com/99minutos/opsboard/pkg/client"
)

// AnalyticsAPI is the slice of the API client the analytics screen needs.
type AnalyticsAPI interface {
	ListMetrics(ctx context.Context, q client.MetricQuery) ([]domain.Metric, error)
	CreateMetric(ctx context.Context, in client.MetricInput) (*domain.Metric, error)
	DeleteMetric(ctx context.Context, id string) error
}

// MetricForm holds the editable fields of the metric form. Value is kept as
// typed and parsed on submit.
type MetricForm struct {
	Name        string
	Value       string
	Type        string
	Description string
}

func defaultMetricForm() MetricForm {
	return MetricForm{Type: string(domain.MetricRevenue)}
}

var errValueNotNumber = errors.New("metricValue must be a number")

// AnalyticsView is a point-in-time copy of the analytics screen.
type AnalyticsView struct {
	Phase         Phase
	Metrics       []domain.Metric
	Filter        client.MetricQuery
	Form          FormMode
	Draft         MetricForm
	Submitting    bool
	PendingDelete string
	Banner        Banner
}

// AnalyticsScreen lists metrics and drives create and delete. Metrics are
// immutable, so the form only ever opens in create mode.
type AnalyticsScreen struct {
	api    AnalyticsAPI
	logger zerolog.Logger

	mu            sync.Mutex
	phase         Phase
	metrics       []domain.Metric
	filter        client.MetricQuery
	form          FormMode
	draft         MetricForm
	submitting    bool
	pendingDelete string
	banner        Banner
}

func NewAnalyticsScreen(api AnalyticsAPI, logger zerolog.Logger) *AnalyticsScreen {
	return &AnalyticsScreen{
		api:    api,
		logger: logger.With().Str("screen", "analytics").Logger(),
		phase:  PhaseLoading,
		draft:  defaultMetricForm(),
	}
}

// SetFilter replaces the list filter used by subsequent loads.
func (s *AnalyticsScreen) SetFilter(q client.MetricQuery) {
	s.mu.Lock()
	s.filter = q
	s.mu.Unlock()
}

// Load fetches the metric list. Whichever response arrives last is kept.
func (s *AnalyticsScreen) Load(ctx context.Context) error {
	s.mu.Lock()
	s.phase = PhaseLoading
	q := s.filter
	s.mu.Unlock()

	metrics, err := s.api.ListMetrics(ctx, q)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.logger.Debug().Err(err).Msg("list metrics failed")
		s.phase = PhaseError
		s.banner = errorBanner(err)
		return err
	}
	s.metrics = metrics
	s.phase = PhaseReady
	return nil
}

func (s *AnalyticsScreen) OpenCreate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form = FormCreate
	s.draft = defaultMetricForm()
}

func (s *AnalyticsScreen) CloseForm() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form = FormClosed
	s.draft = defaultMetricForm()
}

// Submit creates a metric from the form and reloads the list.
func (s *AnalyticsScreen) Submit(ctx context.Context, f MetricForm) error {
	s.mu.Lock()
	if s.form == FormClosed {
		s.mu.Unlock()
		return ErrFormClosed
	}
	if s.submitting {
		s.mu.Unlock()
		return ErrSubmitInFlight
	}
	s.draft = f
	value, err := strconv.ParseFloat(strings.TrimSpace(f.Value), 64)
	if err != nil {
		s.phase = PhaseError
		s.banner = errorBanner(errValueNotNumber)
		s.mu.Unlock()
		return errValueNotNumber
	}
	s.submitting = true
	s.mu.Unlock()

	_, err = s.api.CreateMetric(ctx, client.MetricInput{
		MetricName:  f.Name,
		MetricValue: value,
		MetricType:  f.Type,
		Description: f.Description,
	})

	s.mu.Lock()
	s.submitting = false
	if err != nil {
		s.phase = PhaseError
		s.banner = errorBanner(err)
		s.mu.Unlock()
		return err
	}
	s.form = FormClosed
	s.draft = defaultMetricForm()
	s.banner = successBanner("Analytics entry created successfully!")
	s.mu.Unlock()

	return s.Load(ctx)
}

// RequestDelete marks a loaded metric for deletion pending confirmation.
func (s *AnalyticsScreen) RequestDelete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.metrics {
		if m.ID == id {
			s.pendingDelete = id
			return nil
		}
	}
	return ErrUnknownEntry
}

func (s *AnalyticsScreen) CancelDelete() {
	s.mu.Lock()
	s.pendingDelete = ""
	s.mu.Unlock()
}

// ConfirmDelete deletes the pending metric and reloads the list.
func (s *AnalyticsScreen) ConfirmDelete(ctx context.Context) error {
	s.mu.Lock()
	id := s.pendingDelete
	s.pendingDelete = ""
	s.mu.Unlock()
	if id == "" {
		return ErrNoPendingDelete
	}

	if err := s.api.DeleteMetric(ctx, id); err != nil {
		s.mu.Lock()
		s.phase = PhaseError
		s.banner = errorBanner(err)
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.banner = successBanner("Analytics entry deleted successfully!")
	s.mu.Unlock()
	return s.Load(ctx)
}

func (s *AnalyticsScreen) DismissBanner() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.banner = Banner{}
	if s.phase == PhaseError {
		s.phase = PhaseReady
	}
}

func (s *AnalyticsScreen) Snapshot() AnalyticsView {
	s.mu.Lock()
	defer s.mu.Unlock()
	metrics := make([]domain.Metric, len(s.metrics))
	copy(metrics, s.metrics)
	return AnalyticsView{
		Phase:         s.phase,
		Metrics:       metrics,
		Filter:        s.filter,
		Form:          s.form,
		Draft:         s.draft,
		Submitting:    s.submitting,
		PendingDelete: s.pendingDelete,
		Banner:        s.banner,
	}
}
