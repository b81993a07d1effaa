package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/99minutos/opsboard/internal/core/service"
	"github.com/99minutos/opsboard/internal/infrastructure/db/memory"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

type mapReplay struct {
	mu   sync.Mutex
	keys map[string]string
}

func (m *mapReplay) Reserve(_ context.Context, scope, key string) (bool, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.keys[scope+":"+key]
	if !ok {
		m.keys[scope+":"+key] = ""
		return true, "", nil
	}
	return false, id, nil
}

func (m *mapReplay) Complete(_ context.Context, scope, key, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys[scope+":"+key] = id
	return nil
}

func (m *mapReplay) Release(_ context.Context, scope, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keys, scope+":"+key)
	return nil
}

func newTestRouter(t *testing.T) *echo.Echo {
	t.Helper()
	replay := &mapReplay{keys: make(map[string]string)}
	reg := prometheus.NewRegistry()
	return NewRouter(Options{
		Users:       service.NewUserService(memory.NewUserRepository(), replay, zerolog.Nop()),
		Analytics:   service.NewAnalyticsService(memory.NewAnalyticsRepository(), replay, zerolog.Nop()),
		BasePath:    "/api",
		Env:         "test",
		Version:     "v1",
		FrontendURL: "http://localhost:3001",
		Registerer:  reg,
		Gatherer:    reg,
		Logger:      zerolog.Nop(),
	})
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Count   *int            `json:"count"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

func do(t *testing.T, e *echo.Echo, method, path, body string, headers ...string) (int, envelope) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("%s %s: invalid json %q: %v", method, path, rec.Body.String(), err)
	}
	return rec.Code, env
}

type wireUser struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

type wireMetric struct {
	ID          string    `json:"_id"`
	MetricName  string    `json:"metricName"`
	MetricValue float64   `json:"metricValue"`
	MetricType  string    `json:"metricType"`
	Timestamp   time.Time `json:"timestamp"`
}

type wireSummary struct {
	ID       string  `json:"_id"`
	Count    int     `json:"count"`
	AvgValue float64 `json:"avgValue"`
	MaxValue float64 `json:"maxValue"`
	MinValue float64 `json:"minValue"`
}

func mustData(t *testing.T, env envelope, v any) {
	t.Helper()
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("decode data %s: %v", env.Data, err)
	}
}

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

func TestRouter_CreateUser(t *testing.T) {
	e := newTestRouter(t)
	before := time.Now().UTC().Truncate(time.Millisecond)

	code, env := do(t, e, http.MethodPost, "/api/users", `{"name":"Jane Smith","email":"jane@example.com"}`)
	if code != http.StatusCreated || !env.Success {
		t.Fatalf("expected 201 success, got %d %+v", code, env)
	}

	var u wireUser
	mustData(t, env, &u)
	if len(u.ID) != 24 {
		t.Errorf("expected generated ObjectID hex, got %q", u.ID)
	}
	if u.Role != "user" || u.Status != "active" {
		t.Errorf("defaults not applied: %+v", u)
	}
	if u.CreatedAt.Before(before) {
		t.Errorf("createdAt %v before call time %v", u.CreatedAt, before)
	}

	code, env = do(t, e, http.MethodGet, "/api/users/"+u.ID, "")
	if code != http.StatusOK || !env.Success {
		t.Fatalf("get: %d %+v", code, env)
	}
}

func TestRouter_DuplicateEmail(t *testing.T) {
	e := newTestRouter(t)
	do(t, e, http.MethodPost, "/api/users", `{"name":"A","email":"dup@example.com"}`)

	code, env := do(t, e, http.MethodPost, "/api/users", `{"name":"B","email":"DUP@example.com"}`)
	if code != http.StatusBadRequest || env.Success || env.Error != "Email already exists" {
		t.Fatalf("expected duplicate envelope, got %d %+v", code, env)
	}
}

func TestRouter_CreateUser_BadInput(t *testing.T) {
	e := newTestRouter(t)

	code, env := do(t, e, http.MethodPost, "/api/users", `{"name":"A","email":"nope"}`)
	if code != http.StatusBadRequest || env.Error != "Bad Request" || env.Message != "email must be a valid email" {
		t.Fatalf("unexpected response: %d %+v", code, env)
	}
}

func TestRouter_UserNotFound(t *testing.T) {
	e := newTestRouter(t)
	for _, id := range []string{"507f1f77bcf86cd799439011", "not-an-object-id"} {
		for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
			body := ""
			if method == http.MethodPut {
				body = `{"name":"X"}`
			}
			code, env := do(t, e, method, "/api/users/"+id, body)
			if code != http.StatusNotFound || env.Success || env.Error != "User not found" {
				t.Errorf("%s %s: got %d %+v", method, id, code, env)
			}
		}
	}
}

func TestRouter_UpdateUser(t *testing.T) {
	e := newTestRouter(t)
	_, env := do(t, e, http.MethodPost, "/api/users", `{"name":"A","email":"a@example.com"}`)
	var u wireUser
	mustData(t, env, &u)
	do(t, e, http.MethodPost, "/api/users", `{"name":"B","email":"b@example.com"}`)

	code, env := do(t, e, http.MethodPut, "/api/users/"+u.ID, `{"role":"admin","status":"inactive"}`)
	if code != http.StatusOK {
		t.Fatalf("update: %d %+v", code, env)
	}
	var updated wireUser
	mustData(t, env, &updated)
	if updated.Role != "admin" || updated.Status != "inactive" || updated.Name != "A" {
		t.Errorf("unexpected update result: %+v", updated)
	}

	code, env = do(t, e, http.MethodPut, "/api/users/"+u.ID, `{"email":"b@example.com"}`)
	if code != http.StatusBadRequest || env.Error != "Email already exists" {
		t.Errorf("update to taken email: %d %+v", code, env)
	}

	code, env = do(t, e, http.MethodPut, "/api/users/"+u.ID, `{"role":"root"}`)
	if code != http.StatusBadRequest || env.Error != "Bad Request" {
		t.Errorf("update with bad role: %d %+v", code, env)
	}
}

func TestRouter_DeleteUserTwice(t *testing.T) {
	e := newTestRouter(t)
	_, env := do(t, e, http.MethodPost, "/api/users", `{"name":"A","email":"a@example.com"}`)
	var u wireUser
	mustData(t, env, &u)

	code, env := do(t, e, http.MethodDelete, "/api/users/"+u.ID, "")
	if code != http.StatusOK || env.Message != "User deleted successfully" || string(env.Data) != "{}" {
		t.Fatalf("first delete: %d %+v", code, env)
	}
	code, _ = do(t, e, http.MethodDelete, "/api/users/"+u.ID, "")
	if code != http.StatusNotFound {
		t.Fatalf("second delete: expected 404, got %d", code)
	}
}

func TestRouter_ListUsers_NewestFirst(t *testing.T) {
	e := newTestRouter(t)
	do(t, e, http.MethodPost, "/api/users", `{"name":"Old","email":"old@example.com"}`)
	time.Sleep(2 * time.Millisecond)
	do(t, e, http.MethodPost, "/api/users", `{"name":"New","email":"new@example.com"}`)

	_, env := do(t, e, http.MethodGet, "/api/users", "")
	var users []wireUser
	mustData(t, env, &users)
	if env.Count == nil || *env.Count != 2 || users[0].Name != "New" {
		t.Errorf("unexpected listing: count=%v users=%+v", env.Count, users)
	}
}

func TestRouter_IdempotentCreate(t *testing.T) {
	e := newTestRouter(t)
	body := `{"name":"Idem","email":"idem@example.com"}`

	code1, env1 := do(t, e, http.MethodPost, "/api/users", body, "Idempotency-Key", "abc")
	code2, env2 := do(t, e, http.MethodPost, "/api/users", body, "Idempotency-Key", "abc")
	if code1 != http.StatusCreated || code2 != http.StatusCreated {
		t.Fatalf("expected 201 twice, got %d and %d (%+v)", code1, code2, env2)
	}
	var u1, u2 wireUser
	mustData(t, env1, &u1)
	mustData(t, env2, &u2)
	if u1.ID != u2.ID {
		t.Errorf("replay returned a different user: %s vs %s", u1.ID, u2.ID)
	}
}

// ---------------------------------------------------------------------------
// Analytics
// ---------------------------------------------------------------------------

func TestRouter_InvalidMetricTypeNotPersisted(t *testing.T) {
	e := newTestRouter(t)

	code, env := do(t, e, http.MethodPost, "/api/analytics", `{"metricName":"X","metricValue":1,"metricType":"latency"}`)
	if code != http.StatusBadRequest || env.Error != "Bad Request" {
		t.Fatalf("expected 400, got %d %+v", code, env)
	}

	_, env = do(t, e, http.MethodGet, "/api/analytics", "")
	if env.Count == nil || *env.Count != 0 {
		t.Errorf("nothing should be persisted, count=%v", env.Count)
	}
}

func TestRouter_StartDateInclusive(t *testing.T) {
	e := newTestRouter(t)
	for _, ts := range []string{"2024-03-01T10:00:00Z", "2024-03-01T11:00:00Z", "2024-03-01T12:00:00Z"} {
		code, env := do(t, e, http.MethodPost, "/api/analytics",
			`{"metricName":"G","metricValue":1,"metricType":"growth","timestamp":"`+ts+`"}`)
		if code != http.StatusCreated {
			t.Fatalf("create: %d %+v", code, env)
		}
	}

	_, env := do(t, e, http.MethodGet, "/api/analytics?startDate=2024-03-01T11:00:00Z", "")
	var got []wireMetric
	mustData(t, env, &got)
	if len(got) != 2 {
		t.Fatalf("expected 2 metrics, got %d", len(got))
	}
	if !got[0].Timestamp.Equal(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)) ||
		!got[1].Timestamp.Equal(time.Date(2024, 3, 1, 11, 0, 0, 0, time.UTC)) {
		t.Errorf("expected [T3, T2], got %+v", got)
	}

	code, env := do(t, e, http.MethodGet, "/api/analytics?endDate=tomorrow", "")
	if code != http.StatusBadRequest || env.Message != "endDate must be a valid date" {
		t.Errorf("malformed date: %d %+v", code, env)
	}
}

func TestRouter_Summary(t *testing.T) {
	e := newTestRouter(t)
	for _, v := range []string{"10", "20", "30"} {
		do(t, e, http.MethodPost, "/api/analytics", `{"metricName":"R","metricValue":`+v+`,"metricType":"revenue"}`)
	}

	code, env := do(t, e, http.MethodGet, "/api/analytics/summary", "")
	if code != http.StatusOK {
		t.Fatalf("summary: %d", code)
	}
	var groups []wireSummary
	mustData(t, env, &groups)
	if len(groups) != 1 {
		t.Fatalf("expected one group, got %+v", groups)
	}
	g := groups[0]
	if g.ID != "revenue" || g.Count != 3 || g.AvgValue != 20 || g.MaxValue != 30 || g.MinValue != 10 {
		t.Errorf("unexpected group: %+v", g)
	}
}

func TestRouter_UptimeScenario(t *testing.T) {
	e := newTestRouter(t)

	code, env := do(t, e, http.MethodPost, "/api/analytics", `{"metricName":"System Uptime","metricValue":"99.9","metricType":"uptime"}`)
	if code != http.StatusCreated {
		t.Fatalf("create: %d %+v", code, env)
	}
	var created wireMetric
	mustData(t, env, &created)

	_, env = do(t, e, http.MethodGet, "/api/analytics/type/uptime", "")
	var listed []wireMetric
	mustData(t, env, &listed)
	if len(listed) != 1 || listed[0].ID != created.ID || listed[0].MetricValue != 99.9 {
		t.Fatalf("unexpected by-type listing: %+v", listed)
	}

	_, env = do(t, e, http.MethodGet, "/api/analytics/summary", "")
	var groups []wireSummary
	mustData(t, env, &groups)
	if len(groups) != 1 || groups[0].ID != "uptime" || groups[0].Count != 1 || groups[0].AvgValue != 99.9 {
		t.Fatalf("unexpected summary: %+v", groups)
	}

	code, env = do(t, e, http.MethodDelete, "/api/analytics/"+created.ID, "")
	if code != http.StatusOK || env.Message != "Analytics entry deleted successfully" {
		t.Fatalf("delete: %d %+v", code, env)
	}
	code, env = do(t, e, http.MethodDelete, "/api/analytics/"+created.ID, "")
	if code != http.StatusNotFound || env.Error != "Analytics entry not found" {
		t.Fatalf("second delete: %d %+v", code, env)
	}

	_, env = do(t, e, http.MethodGet, "/api/analytics/type/nonsense", "")
	if env.Count == nil || *env.Count != 0 {
		t.Errorf("unknown type must list empty, got %+v", env)
	}
}

// ---------------------------------------------------------------------------
// Gateway
// ---------------------------------------------------------------------------

func TestRouter_RouteNotFound(t *testing.T) {
	e := newTestRouter(t)
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/nope"},
		{http.MethodGet, "/api/analytics/507f1f77bcf86cd799439011"},
		{http.MethodPatch, "/api/users"},
	} {
		code, env := do(t, e, tc.method, tc.path, "")
		if code != http.StatusNotFound || env.Success || env.Error != "Route not found" {
			t.Errorf("%s %s: got %d %+v", tc.method, tc.path, code, env)
		}
	}
}

func TestRouter_PanicRendersServerError(t *testing.T) {
	e := newTestRouter(t)
	e.GET("/api/boom", func(c echo.Context) error { panic("kaboom") })

	code, env := do(t, e, http.MethodGet, "/api/boom", "")
	if code != http.StatusInternalServerError || env.Error != "Server Error" {
		t.Fatalf("expected 500 envelope, got %d %+v", code, env)
	}
	if strings.Contains(env.Message, "kaboom") {
		t.Error("panic details must not leak to the client")
	}
}

func TestRouter_HealthAndIndex(t *testing.T) {
	e := newTestRouter(t)

	code, env := do(t, e, http.MethodGet, "/api/health", "")
	if code != http.StatusOK || env.Message != "Server is running" {
		t.Errorf("health: %d %+v", code, env)
	}
	code, env = do(t, e, http.MethodGet, "/api/health/ready", "")
	if code != http.StatusOK || !env.Success {
		t.Errorf("ready: %d %+v", code, env)
	}
	code, env = do(t, e, http.MethodGet, "/", "")
	if code != http.StatusOK || !env.Success {
		t.Errorf("index: %d %+v", code, env)
	}
}

func TestRouter_RequestIDAndMetrics(t *testing.T) {
	e := newTestRouter(t)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/users", nil))
	if id := rec.Header().Get(echo.HeaderXRequestID); len(id) != 36 {
		t.Errorf("expected uuid request id, got %q", id)
	}

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "opsboard_") {
		t.Errorf("metrics endpoint: %d", rec.Code)
	}
}
