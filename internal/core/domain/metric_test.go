package domain

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"
)

func TestMetric_NormalizeStampsTimestamp(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 123456789, time.UTC)
	m := Metric{MetricName: " Revenue ", MetricValue: 1, MetricType: MetricRevenue}
	m.Normalize(now)

	if m.MetricName != "Revenue" {
		t.Errorf("name not trimmed: %q", m.MetricName)
	}
	if !m.Timestamp.Equal(now.Truncate(time.Millisecond)) {
		t.Errorf("timestamp = %v, want %v", m.Timestamp, now.Truncate(time.Millisecond))
	}

	given := time.Date(2023, 1, 1, 0, 0, 0, 0, time.FixedZone("CST", -6*3600))
	m2 := Metric{Timestamp: given}
	m2.Normalize(now)
	if !m2.Timestamp.Equal(given) || m2.Timestamp.Location() != time.UTC {
		t.Errorf("supplied timestamp must be kept and converted to UTC, got %v", m2.Timestamp)
	}
}

func TestMetric_Validate(t *testing.T) {
	base := Metric{MetricName: "X", MetricValue: 1, MetricType: MetricUptime}
	if err := base.Validate(); err != nil {
		t.Fatalf("valid metric rejected: %v", err)
	}

	bad := map[string]func(m *Metric){
		"missing name": func(m *Metric) { m.MetricName = "" },
		"nan value":    func(m *Metric) { m.MetricValue = math.NaN() },
		"inf value":    func(m *Metric) { m.MetricValue = math.Inf(1) },
		"missing type": func(m *Metric) { m.MetricType = "" },
		"unknown type": func(m *Metric) { m.MetricType = "latency" },
		"long desc":    func(m *Metric) { m.Description = strings.Repeat("é", MaxDescriptionLen+1) },
	}
	for name, mutate := range bad {
		t.Run(name, func(t *testing.T) {
			m := base
			mutate(&m)
			if err := m.Validate(); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}

	exact := base
	exact.Description = strings.Repeat("é", MaxDescriptionLen)
	if err := exact.Validate(); err != nil {
		t.Errorf("description of exactly %d characters must pass: %v", MaxDescriptionLen, err)
	}
}

func TestMetricFilter_Matches(t *testing.T) {
	t0 := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	m := Metric{MetricType: MetricGrowth, Timestamp: t0}

	tests := []struct {
		name   string
		filter MetricFilter
		want   bool
	}{
		{"empty", MetricFilter{}, true},
		{"type match", MetricFilter{Type: MetricGrowth}, true},
		{"type mismatch", MetricFilter{Type: MetricRevenue}, false},
		{"from inclusive", MetricFilter{From: t0}, true},
		{"to inclusive", MetricFilter{To: t0}, true},
		{"after to", MetricFilter{To: t0.Add(-time.Millisecond)}, false},
		{"before from", MetricFilter{From: t0.Add(time.Millisecond)}, false},
		{"within range", MetricFilter{From: t0.AddDate(0, 0, -1), To: t0.AddDate(0, 0, 1)}, true},
	}
	for _, tt := range tests {
		if got := tt.filter.Matches(m); got != tt.want {
			t.Errorf("%s: Matches = %v, want %v", tt.name, got, tt.want)
		}
	}
}
