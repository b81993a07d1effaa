package console

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/99minutos/opsboard/internal/core/domain"
	"github.com/99minutos/opsboard/pkg/client"
)

// DashboardAPI is the slice of the API client the dashboard needs.
type DashboardAPI interface {
	Health(ctx context.Context) (*client.Health, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	Summary(ctx context.Context) ([]domain.MetricSummary, error)
}

// DashboardView is a point-in-time copy of the dashboard.
type DashboardView struct {
	Phase      Phase
	Health     client.Health
	TotalUsers int
	Summary    []domain.MetricSummary
	Err        string
}

// Dashboard shows server health, the user count and the analytics summary.
// Unlike the list screens, a failed load replaces the whole view.
type Dashboard struct {
	api    DashboardAPI
	logger zerolog.Logger

	mu         sync.Mutex
	phase      Phase
	health     client.Health
	totalUsers int
	summary    []domain.MetricSummary
	errText    string
}

func NewDashboard(api DashboardAPI, logger zerolog.Logger) *Dashboard {
	return &Dashboard{
		api:    api,
		logger: logger.With().Str("screen", "dashboard").Logger(),
		phase:  PhaseLoading,
	}
}

// Load fetches health, users and summary concurrently. Any failure fails
// the whole load.
func (d *Dashboard) Load(ctx context.Context) error {
	d.mu.Lock()
	d.phase = PhaseLoading
	d.errText = ""
	d.mu.Unlock()

	var (
		health  *client.Health
		users   []domain.User
		summary []domain.MetricSummary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		health, err = d.api.Health(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		users, err = d.api.ListUsers(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		summary, err = d.api.Summary(gctx)
		return err
	})
	err := g.Wait()

	d.mu.Lock()
	defer d.mu.Unlock()
	if err != nil {
		d.logger.Debug().Err(err).Msg("dashboard load failed")
		d.phase = PhaseError
		d.errText = errorBanner(err).Text
		return err
	}
	d.health = *health
	d.totalUsers = len(users)
	d.summary = summary
	d.phase = PhaseReady
	return nil
}

// Retry reloads after a failed load.
func (d *Dashboard) Retry(ctx context.Context) error {
	return d.Load(ctx)
}

func (d *Dashboard) Snapshot() DashboardView {
	d.mu.Lock()
	defer d.mu.Unlock()
	summary := make([]domain.MetricSummary, len(d.summary))
	copy(summary, d.summary)
	return DashboardView{
		Phase:      d.phase,
		Health:     d.health,
		TotalUsers: d.totalUsers,
		Summary:    summary,
		Err:        d.errText,
	}
}
