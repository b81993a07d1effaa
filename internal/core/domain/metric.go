package domain

import (
	"math"
	"strings"
	"time"
	"unicode/utf8"
)

// MetricType classifies an analytics metric.
type MetricType string

const (
	MetricRevenue     MetricType = "revenue"
	MetricUsers       MetricType = "users"
	MetricConversion  MetricType = "conversion"
	MetricPerformance MetricType = "performance"
	MetricGrowth      MetricType = "growth"
	MetricUptime      MetricType = "uptime"
)

// MetricTypes lists every accepted metric type, in display order.
var MetricTypes = []MetricType{
	MetricRevenue,
	MetricUsers,
	MetricConversion,
	MetricPerformance,
	MetricGrowth,
	MetricUptime,
}

// MaxDescriptionLen is the longest description accepted, in characters.
const MaxDescriptionLen = 200

// Valid reports whether t is one of the known metric types.
func (t MetricType) Valid() bool {
	for _, known := range MetricTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Metric is a single analytics data point. Metrics are immutable once stored.
type Metric struct {
	ID          string            `json:"_id"`
	MetricName  string            `json:"metricName"`
	MetricValue float64           `json:"metricValue"`
	MetricType  MetricType        `json:"metricType"`
	Description string            `json:"description,omitempty"`
	Timestamp   time.Time         `json:"timestamp"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Normalize trims text fields and stamps the metric with now when no
// timestamp was supplied.
func (m *Metric) Normalize(now time.Time) {
	m.MetricName = strings.TrimSpace(m.MetricName)
	m.Description = strings.TrimSpace(m.Description)
	if m.Timestamp.IsZero() {
		m.Timestamp = now
	}
	m.Timestamp = m.Timestamp.UTC().Truncate(time.Millisecond)
}

// Validate checks the field rules enforced before a metric reaches the store.
func (m Metric) Validate() error {
	if m.MetricName == "" {
		return InvalidInput("metricName is required")
	}
	if math.IsNaN(m.MetricValue) || math.IsInf(m.MetricValue, 0) {
		return InvalidInput("metricValue must be a finite number")
	}
	if m.MetricType == "" {
		return InvalidInput("metricType is required")
	}
	if !m.MetricType.Valid() {
		return InvalidInput("metricType must be one of: revenue users conversion performance growth uptime")
	}
	if utf8.RuneCountInString(m.Description) > MaxDescriptionLen {
		return InvalidInput("description cannot be more than 200 characters")
	}
	return nil
}

// MetricFilter narrows a metric listing. Zero fields do not filter.
// From and To are inclusive.
type MetricFilter struct {
	Type MetricType
	From time.Time
	To   time.Time
}

// Matches reports whether m passes every set condition of f.
func (f MetricFilter) Matches(m Metric) bool {
	if f.Type != "" && m.MetricType != f.Type {
		return false
	}
	if !f.From.IsZero() && m.Timestamp.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && m.Timestamp.After(f.To) {
		return false
	}
	return true
}
