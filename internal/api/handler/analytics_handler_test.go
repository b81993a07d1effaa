package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/99minutos/opsboard/internal/api/metrics"
	"github.com/99minutos/opsboard/internal/core/domain"
	"github.com/99minutos/opsboard/internal/core/ports"
)

type stubAnalyticsService struct {
	listFn    func(ctx context.Context, in ports.ListMetricsInput) ([]*domain.Metric, error)
	byTypeFn  func(ctx context.Context, metricType string) ([]*domain.Metric, error)
	createFn  func(ctx context.Context, in ports.CreateMetricInput) (*domain.Metric, error)
	summaryFn func(ctx context.Context) ([]domain.MetricSummary, error)
	deleteFn  func(ctx context.Context, id string) error
	replayed  bool
}

func (s *stubAnalyticsService) ListMetrics(ctx context.Context, in ports.ListMetricsInput) ([]*domain.Metric, error) {
	return s.listFn(ctx, in)
}

func (s *stubAnalyticsService) ListMetricsByType(ctx context.Context, metricType string) ([]*domain.Metric, error) {
	return s.byTypeFn(ctx, metricType)
}

func (s *stubAnalyticsService) CreateMetric(ctx context.Context, in ports.CreateMetricInput) (*domain.Metric, bool, error) {
	m, err := s.createFn(ctx, in)
	return m, s.replayed, err
}

func (s *stubAnalyticsService) Summary(ctx context.Context) ([]domain.MetricSummary, error) {
	return s.summaryFn(ctx)
}

func (s *stubAnalyticsService) DeleteMetric(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

func TestAnalyticsHandler_List_ForwardsQuery(t *testing.T) {
	e := newTestEcho()
	handler := NewAnalyticsHandler(&stubAnalyticsService{
		listFn: func(ctx context.Context, in ports.ListMetricsInput) ([]*domain.Metric, error) {
			if in.MetricType != "revenue" || in.StartDate != "2024-01-01" || in.EndDate != "" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return []*domain.Metric{{ID: "m1", MetricName: "Revenue", MetricType: domain.MetricRevenue}}, nil
		},
	})

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/analytics?metricType=revenue&startDate=2024-01-01", nil), rec)
	if err := handler.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	resp := decodeEnvelope(t, rec)
	if resp["count"] != float64(1) {
		t.Errorf("unexpected envelope: %+v", resp)
	}
}

func TestAnalyticsHandler_Create_CoercesNumericString(t *testing.T) {
	e := newTestEcho()
	ts := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	handler := NewAnalyticsHandler(&stubAnalyticsService{
		createFn: func(ctx context.Context, in ports.CreateMetricInput) (*domain.Metric, error) {
			if in.MetricValue != 99.9 {
				t.Fatalf("metricValue = %v, want 99.9", in.MetricValue)
			}
			if !in.Timestamp.Equal(ts) || in.Metadata["region"] != "mx" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.Metric{ID: "m1", MetricName: in.MetricName, MetricValue: in.MetricValue, MetricType: domain.MetricUptime, Timestamp: ts}, nil
		},
	})

	body := `{"metricName":"System Uptime","metricValue":"99.9","metricType":"uptime","timestamp":"2024-05-01T08:00:00Z","metadata":{"region":"mx"}}`
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/api/analytics", body), rec)
	if err := handler.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestAnalyticsHandler_Create_ReplayIsNotACreate(t *testing.T) {
	e := newTestEcho()
	handler := NewAnalyticsHandler(&stubAnalyticsService{
		createFn: func(ctx context.Context, in ports.CreateMetricInput) (*domain.Metric, error) {
			return &domain.Metric{ID: "m1", MetricName: in.MetricName, MetricValue: in.MetricValue, MetricType: domain.MetricRevenue}, nil
		},
		replayed: true,
	})
	created := metrics.EntitiesCreatedTotal.WithLabelValues(metrics.ResourceAnalytics)
	replays := metrics.IdempotentReplaysTotal.WithLabelValues(metrics.ResourceAnalytics)
	createdBefore, replaysBefore := testutil.ToFloat64(created), testutil.ToFloat64(replays)

	req := jsonRequest(http.MethodPost, "/api/analytics", `{"metricName":"R","metricValue":10,"metricType":"revenue"}`)
	req.Header.Set("Idempotency-Key", "k-1")
	if err := handler.Create(e.NewContext(req, httptest.NewRecorder())); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if got := testutil.ToFloat64(created); got != createdBefore {
		t.Errorf("a replay must not count as a create: %v -> %v", createdBefore, got)
	}
	if got := testutil.ToFloat64(replays) - replaysBefore; got != 1 {
		t.Errorf("replay counter moved by %v, want 1", got)
	}
}

func TestAnalyticsHandler_Create_Rejects(t *testing.T) {
	cases := map[string]struct {
		body string
		msg  string
	}{
		"unknown type":   {`{"metricName":"X","metricValue":1,"metricType":"latency"}`, "metricType must be one of: revenue users conversion performance growth uptime"},
		"missing value":  {`{"metricName":"X","metricType":"revenue"}`, "metricValue is required"},
		"non-numeric":    {`{"metricName":"X","metricValue":"lots","metricType":"revenue"}`, "metricValue must be a number"},
		"boolean value":  {`{"metricName":"X","metricValue":true,"metricType":"revenue"}`, "metricValue must be a number"},
		"long desc":      {`{"metricName":"X","metricValue":1,"metricType":"revenue","description":"` + longText(201) + `"}`, "description cannot be more than 200 characters"},
		"missing name":   {`{"metricValue":1,"metricType":"revenue"}`, "metricName is required"},
		"malformed json": {`not json`, "malformed request body"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			e := newTestEcho()
			handler := NewAnalyticsHandler(&stubAnalyticsService{
				createFn: func(ctx context.Context, in ports.CreateMetricInput) (*domain.Metric, error) {
					t.Fatal("service must not be called")
					return nil, nil
				},
			})

			c := e.NewContext(jsonRequest(http.MethodPost, "/api/analytics", tc.body), httptest.NewRecorder())
			err := handler.Create(c)
			var ie *domain.InputError
			if !errors.As(err, &ie) {
				t.Fatalf("expected *domain.InputError, got %v", err)
			}
			if ie.Message != tc.msg {
				t.Errorf("message = %q, want %q", ie.Message, tc.msg)
			}
		})
	}
}

func TestAnalyticsHandler_Summary_EmptyIsArray(t *testing.T) {
	e := newTestEcho()
	handler := NewAnalyticsHandler(&stubAnalyticsService{
		summaryFn: func(ctx context.Context) ([]domain.MetricSummary, error) { return nil, nil },
	})

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/analytics/summary", nil), rec)
	if err := handler.Summary(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	resp := decodeEnvelope(t, rec)
	if data, ok := resp["data"].([]any); !ok || len(data) != 0 {
		t.Errorf("expected empty data array, got %s", rec.Body.String())
	}
	if _, ok := resp["count"]; ok {
		t.Error("summary carries no count")
	}
}

func TestAnalyticsHandler_Delete_NotFound(t *testing.T) {
	e := newTestEcho()
	handler := NewAnalyticsHandler(&stubAnalyticsService{
		deleteFn: func(ctx context.Context, id string) error { return domain.ErrMetricNotFound },
	})

	c := e.NewContext(httptest.NewRequest(http.MethodDelete, "/api/analytics/x", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("x")
	if err := handler.Delete(c); !errors.Is(err, domain.ErrMetricNotFound) {
		t.Fatalf("expected ErrMetricNotFound, got %v", err)
	}
}

func longText(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = 'a'
	}
	return string(b)
}
