package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClient_ListUsers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/users" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		_, _ = io.WriteString(w, `{"success":true,"count":1,"data":[{"_id":"u1","name":"A","email":"a@example.com","role":"user","status":"active","createdAt":"2024-01-01T00:00:00Z"}]}`)
	}))
	defer srv.Close()

	users, err := New(srv.URL + "/api/").ListUsers(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(users) != 1 || users[0].ID != "u1" || users[0].Email != "a@example.com" {
		t.Errorf("unexpected users: %+v", users)
	}
}

func TestClient_CreateUser_SendsBodyAndKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Idempotency-Key") != "k1" {
			t.Errorf("missing idempotency key")
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["name"] != "Jane" || body["email"] != "jane@example.com" {
			t.Errorf("unexpected body: %v", body)
		}
		if _, ok := body["role"]; ok {
			t.Errorf("empty role must be omitted")
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"success":true,"data":{"_id":"new","name":"Jane","email":"jane@example.com"}}`)
	}))
	defer srv.Close()

	u, err := New(srv.URL).CreateUser(context.Background(), UserInput{Name: "Jane", Email: "jane@example.com", IdempotencyKey: "k1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.ID != "new" {
		t.Errorf("unexpected user: %+v", u)
	}
}

func TestClient_ErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"success":false,"error":"Bad Request","message":"email must be a valid email"}`)
	}))
	defer srv.Close()

	_, err := New(srv.URL).CreateUser(context.Background(), UserInput{Name: "A", Email: "x"})
	var ae *APIError
	if !errors.As(err, &ae) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if ae.Status != http.StatusBadRequest || ae.Error() != "Bad Request: email must be a valid email" {
		t.Errorf("unexpected error: %+v (%s)", ae, ae.Error())
	}
}

func TestClient_NotFoundAndNonJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/users/missing" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"success":false,"error":"User not found"}`)
			return
		}
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()
	c := New(srv.URL)

	if err := c.DeleteUser(context.Background(), "missing"); !IsNotFound(err) || err.Error() != "User not found" {
		t.Errorf("expected not found, got %v", err)
	}

	_, err := c.Summary(context.Background())
	var ae *APIError
	if !errors.As(err, &ae) || ae.Status != http.StatusBadGateway || ae.Err != "Bad Gateway" {
		t.Errorf("expected Bad Gateway APIError, got %v", err)
	}
}

func TestClient_ListMetrics_Query(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("metricType") != "revenue" || q.Get("startDate") != "2024-01-01" || q.Has("endDate") {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		_, _ = io.WriteString(w, `{"success":true,"count":0,"data":[]}`)
	}))
	defer srv.Close()

	got, err := New(srv.URL).ListMetrics(context.Background(), MetricQuery{MetricType: "revenue", StartDate: "2024-01-01"})
	if err != nil || len(got) != 0 {
		t.Fatalf("unexpected result: %v %v", got, err)
	}
}

func TestClient_Health(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"success":true,"message":"Server is running","environment":"test","version":"v1"}`)
	}))
	defer srv.Close()

	h, err := New(srv.URL).Health(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.Message != "Server is running" || h.Version != "v1" {
		t.Errorf("unexpected health: %+v", h)
	}
}
