// Package memory implements the repository ports in process memory. It backs
// STORE_DRIVER=memory and the end-to-end API tests; data is lost on exit.
package memory

import (
	"context"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/99minutos/opsboard/internal/core/domain"
	"github.com/99minutos/opsboard/internal/core/ports"
)

// newID returns an id in the same ObjectID hex form the Mongo store produces.
func newID() string {
	return primitive.NewObjectID().Hex()
}

// UserRepository is a mutex-guarded map of users.
type UserRepository struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

var _ ports.UserRepository = (*UserRepository)(nil)

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]domain.User)}
}

// List returns every user, newest first.
func (r *UserRepository) List(_ context.Context) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		u := u
		out = append(out, &u)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (r *UserRepository) Create(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.emailTaken(u.Email, "") {
		return domain.ErrDuplicateEmail
	}
	u.ID = newID()
	r.users[u.ID] = *u
	return nil
}

func (r *UserRepository) Update(_ context.Context, id string, p domain.UserPatch) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if p.Email != nil && r.emailTaken(*p.Email, id) {
		return nil, domain.ErrDuplicateEmail
	}
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.Status != nil {
		u.Status = *p.Status
	}
	r.users[id] = u
	return &u, nil
}

func (r *UserRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

// emailTaken must be called with r.mu held.
func (r *UserRepository) emailTaken(email, exceptID string) bool {
	for id, u := range r.users {
		if id != exceptID && u.Email == email {
			return true
		}
	}
	return false
}

// AnalyticsRepository is a mutex-guarded map of metrics.
type AnalyticsRepository struct {
	mu      sync.RWMutex
	metrics map[string]domain.Metric
}

var _ ports.AnalyticsRepository = (*AnalyticsRepository)(nil)

func NewAnalyticsRepository() *AnalyticsRepository {
	return &AnalyticsRepository{metrics: make(map[string]domain.Metric)}
}

// List returns the metrics matching f, newest first.
func (r *AnalyticsRepository) List(_ context.Context, f domain.MetricFilter) ([]*domain.Metric, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Metric, 0)
	for _, m := range r.metrics {
		if f.Matches(m) {
			out = append(out, cloneMetric(m))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].ID > out[j].ID
		}
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}

func (r *AnalyticsRepository) FindByID(_ context.Context, id string) (*domain.Metric, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.metrics[id]
	if !ok {
		return nil, domain.ErrMetricNotFound
	}
	return cloneMetric(m), nil
}

func (r *AnalyticsRepository) Create(_ context.Context, m *domain.Metric) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m.ID = newID()
	r.metrics[m.ID] = *cloneMetric(*m)
	return nil
}

// cloneMetric copies m including its Metadata map, so callers never share
// the stored map.
func cloneMetric(m domain.Metric) *domain.Metric {
	if m.Metadata != nil {
		md := make(map[string]string, len(m.Metadata))
		for k, v := range m.Metadata {
			md[k] = v
		}
		m.Metadata = md
	}
	return &m
}

func (r *AnalyticsRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.metrics[id]; !ok {
		return domain.ErrMetricNotFound
	}
	delete(r.metrics, id)
	return nil
}

// Summarize folds every stored metric in a single pass.
func (r *AnalyticsRepository) Summarize(_ context.Context) ([]domain.MetricSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var acc domain.SummaryAccumulator
	for _, m := range r.metrics {
		acc.Add(m)
	}
	return acc.Result(), nil
}
