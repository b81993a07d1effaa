package domain

import (
	"sort"
	"time"
)

// MetricSummary is the aggregate of every metric sharing one type.
type MetricSummary struct {
	MetricType      MetricType `json:"_id"`
	Count           int64      `json:"count"`
	AvgValue        float64    `json:"avgValue"`
	MaxValue        float64    `json:"maxValue"`
	MinValue        float64    `json:"minValue"`
	LatestTimestamp time.Time  `json:"latestTimestamp"`
}

type summaryGroup struct {
	count  int64
	sum    float64
	max    float64
	min    float64
	latest time.Time
}

// SummaryAccumulator folds metrics into per-type summaries in a single pass.
// The zero value is ready to use.
type SummaryAccumulator struct {
	groups map[MetricType]*summaryGroup
}

// Add folds m into its type's group.
func (a *SummaryAccumulator) Add(m Metric) {
	if a.groups == nil {
		a.groups = make(map[MetricType]*summaryGroup)
	}
	g, ok := a.groups[m.MetricType]
	if !ok {
		a.groups[m.MetricType] = &summaryGroup{
			count:  1,
			sum:    m.MetricValue,
			max:    m.MetricValue,
			min:    m.MetricValue,
			latest: m.Timestamp,
		}
		return
	}
	g.count++
	g.sum += m.MetricValue
	if m.MetricValue > g.max {
		g.max = m.MetricValue
	}
	if m.MetricValue < g.min {
		g.min = m.MetricValue
	}
	if m.Timestamp.After(g.latest) {
		g.latest = m.Timestamp
	}
}

// Result finalizes the averages. Groups come back in no particular order.
func (a *SummaryAccumulator) Result() []MetricSummary {
	out := make([]MetricSummary, 0, len(a.groups))
	for t, g := range a.groups {
		out = append(out, MetricSummary{
			MetricType:      t,
			Count:           g.count,
			AvgValue:        g.sum / float64(g.count),
			MaxValue:        g.max,
			MinValue:        g.min,
			LatestTimestamp: g.latest,
		})
	}
	return out
}

// SortSummaries orders groups by metric type name.
func SortSummaries(s []MetricSummary) {
	sort.Slice(s, func(i, j int) bool { return s[i].MetricType < s[j].MetricType })
}
