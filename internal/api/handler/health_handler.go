package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"
)

// HealthHandler serves the liveness probe and the API index.
type HealthHandler struct {
	env      string
	version  string
	basePath string
	now      func() time.Time
}

func NewHealthHandler(env, version, basePath string) *HealthHandler {
	return &HealthHandler{env: env, version: version, basePath: basePath, now: time.Now}
}

type healthResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	Timestamp   string `json:"timestamp"`
	Environment string `json:"environment"`
	Version     string `json:"version"`
}

// Liveness handles GET /health. It never touches the store.
//
// @Summary  Liveness probe
// @Tags     health
// @Produce  json
// @Success  200  {object}  healthResponse
// @Router   /health [get]
func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, healthResponse{
		Success:     true,
		Message:     "Server is running",
		Timestamp:   h.now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		Environment: h.env,
		Version:     h.version,
	})
}

type indexResponse struct {
	Success       bool              `json:"success"`
	Message       string            `json:"message"`
	Endpoints     map[string]string `json:"endpoints"`
	Documentation string            `json:"documentation"`
}

// Index handles GET / with a map of the resource endpoints.
func (h *HealthHandler) Index(c echo.Context) error {
	return c.JSON(http.StatusOK, indexResponse{
		Success: true,
		Message: "opsboard API",
		Endpoints: map[string]string{
			"health":    h.basePath + "/health",
			"users":     h.basePath + "/users",
			"analytics": h.basePath + "/analytics",
		},
		Documentation: "/swagger/index.html",
	})
}

// CheckFunc reports the health of one dependency.
type CheckFunc func(ctx context.Context) error

// ReadinessHandler handles GET /health/ready by running every registered check.
type ReadinessHandler struct {
	checks map[string]CheckFunc
}

func NewReadinessHandler(checks map[string]CheckFunc) *ReadinessHandler {
	return &ReadinessHandler{checks: checks}
}

type dependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type readinessResponse struct {
	Success      bool                        `json:"success"`
	Status       string                      `json:"status"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
}

// Readiness handles GET /health/ready.
//
// @Summary  Readiness probe
// @Tags     health
// @Produce  json
// @Success  200  {object}  readinessResponse
// @Failure  503  {object}  readinessResponse
// @Router   /health/ready [get]
func (h *ReadinessHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	deps := make(map[string]dependencyStatus, len(names))
	healthy := true
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			deps[name] = dependencyStatus{Status: "unhealthy", Error: err.Error()}
			healthy = false
			continue
		}
		deps[name] = dependencyStatus{Status: "ok"}
	}

	status := "ok"
	httpStatus := http.StatusOK
	if !healthy {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	return c.JSON(httpStatus, readinessResponse{
		Success:      healthy,
		Status:       status,
		Dependencies: deps,
	})
}
