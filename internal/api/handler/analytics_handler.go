package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/opsboard/internal/api/metrics"
	"github.com/99minutos/opsboard/internal/core/domain"
	"github.com/99minutos/opsboard/internal/core/ports"
)

// AnalyticsHandler handles HTTP requests for analytics metrics.
type AnalyticsHandler struct {
	service ports.AnalyticsService
}

func NewAnalyticsHandler(service ports.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

// List handles GET /analytics.
//
// @Summary      List metrics
// @Description  Optional exact type filter and inclusive timestamp range, newest first.
// @Tags         analytics
// @Produce      json
// @Param        metricType  query     string  false  "revenue, users, conversion, performance, growth or uptime"
// @Param        startDate   query     string  false  "RFC 3339 timestamp or YYYY-MM-DD (inclusive)"
// @Param        endDate     query     string  false  "RFC 3339 timestamp or YYYY-MM-DD (inclusive)"
// @Success      200         {object}  Envelope{data=[]domain.Metric}
// @Failure      400         {object}  Envelope
// @Router       /analytics [get]
func (h *AnalyticsHandler) List(c echo.Context) error {
	metricsList, err := h.service.ListMetrics(c.Request().Context(), ports.ListMetricsInput{
		MetricType: c.QueryParam("metricType"),
		StartDate:  c.QueryParam("startDate"),
		EndDate:    c.QueryParam("endDate"),
	})
	if err != nil {
		return err
	}
	return respondList(c, metricsList)
}

// ListByType handles GET /analytics/type/:type.
//
// @Summary      List metrics of one type
// @Tags         analytics
// @Produce      json
// @Param        type  path      string  true  "Metric type"
// @Success      200   {object}  Envelope{data=[]domain.Metric}
// @Router       /analytics/type/{type} [get]
func (h *AnalyticsHandler) ListByType(c echo.Context) error {
	metricsList, err := h.service.ListMetricsByType(c.Request().Context(), c.Param("type"))
	if err != nil {
		return err
	}
	return respondList(c, metricsList)
}

// Create handles POST /analytics.
//
// @Summary      Record a metric
// @Tags         analytics
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header    string               false  "Replays the first response for a repeated key"
// @Param        body             body      createMetricRequest  true   "Metric fields; metricValue may be a numeric string"
// @Success      201              {object}  Envelope{data=domain.Metric}
// @Failure      400              {object}  Envelope
// @Failure      409              {object}  Envelope
// @Router       /analytics [post]
func (h *AnalyticsHandler) Create(c echo.Context) error {
	var req createMetricRequest
	if err := c.Bind(&req); err != nil {
		return bindError(err)
	}
	req.trim()
	if err := c.Validate(&req); err != nil {
		return err
	}
	if !req.MetricValue.Set {
		return domain.InvalidInput("metricValue is required")
	}

	in := ports.CreateMetricInput{
		MetricName:     req.MetricName,
		MetricValue:    req.MetricValue.Value,
		MetricType:     req.MetricType,
		Description:    req.Description,
		Metadata:       req.Metadata,
		IdempotencyKey: idempotencyKey(c),
	}
	if req.Timestamp != nil {
		in.Timestamp = *req.Timestamp
	}

	m, replayed, err := h.service.CreateMetric(c.Request().Context(), in)
	if err != nil {
		return err
	}

	countCreate(metrics.ResourceAnalytics, replayed)
	return respond(c, http.StatusCreated, m)
}

// Summary handles GET /analytics/summary.
//
// @Summary      Per-type aggregate
// @Description  Count, average, max, min and latest timestamp per metric type, ordered by type.
// @Tags         analytics
// @Produce      json
// @Success      200  {object}  Envelope{data=[]domain.MetricSummary}
// @Router       /analytics/summary [get]
func (h *AnalyticsHandler) Summary(c echo.Context) error {
	groups, err := h.service.Summary(c.Request().Context())
	if err != nil {
		return err
	}
	if groups == nil {
		groups = []domain.MetricSummary{}
	}
	return respond(c, http.StatusOK, groups)
}

// Delete handles DELETE /analytics/:id.
//
// @Summary      Delete a metric
// @Tags         analytics
// @Produce      json
// @Param        id   path      string  true  "Metric id"
// @Success      200  {object}  Envelope
// @Failure      404  {object}  Envelope
// @Router       /analytics/{id} [delete]
func (h *AnalyticsHandler) Delete(c echo.Context) error {
	if err := h.service.DeleteMetric(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	metrics.EntitiesDeletedTotal.WithLabelValues(metrics.ResourceAnalytics).Inc()
	return respondDeleted(c, "Analytics entry deleted successfully")
}
