package handler

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/99minutos/opsboard/internal/core/domain"
)

// numeric accepts a JSON number or a string holding one.
type numeric struct {
	Value float64
	Set   bool
}

func (n *numeric) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*n = numeric{}
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return domain.InvalidInput("metricValue must be a number")
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*n = numeric{}
			return nil
		}
		b = []byte(s)
	}
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return domain.InvalidInput("metricValue must be a number")
	}
	*n = numeric{Value: v, Set: true}
	return nil
}

type createMetricRequest struct {
	MetricName  string            `json:"metricName"  validate:"required"`
	MetricValue numeric           `json:"metricValue"`
	MetricType  string            `json:"metricType"  validate:"required,oneof=revenue users conversion performance growth uptime"`
	Description string            `json:"description" validate:"max=200"`
	Timestamp   *time.Time        `json:"timestamp"`
	Metadata    map[string]string `json:"metadata"`
}

func (r *createMetricRequest) trim() {
	r.MetricName = strings.TrimSpace(r.MetricName)
	r.MetricType = strings.TrimSpace(r.MetricType)
	r.Description = strings.TrimSpace(r.Description)
}
