package httpserver_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jonesrussell/claim-ranker/internal/httpserver"
	"github.com/jonesrussell/claim-ranker/internal/logger"
)

func buildTestServer(t *testing.T, configure func(*httpserver.ServerBuilder)) http.Handler {
	t.Helper()

	builder := httpserver.NewServerBuilder("claim-ranker", 0).
		WithLogger(logger.NewNop()).
		WithVersion("test")
	if configure != nil {
		configure(builder)
	}

	return builder.Build().Router()
}

func getJSON(t *testing.T, handler http.Handler, path string) (int, httpserver.HealthResponse) {
	t.Helper()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, http.NoBody)
	handler.ServeHTTP(w, req)

	var body httpserver.HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal %s response: %v", path, err)
	}
	return w.Code, body
}

func TestHealthEndpoint_IgnoresFailingChecks(t *testing.T) {
	handler := buildTestServer(t, func(b *httpserver.ServerBuilder) {
		b.WithDatabaseHealthCheck(func() error { return errors.New("connection refused") })
	})

	code, body := getJSON(t, handler, "/health")
	if code != http.StatusOK {
		t.Errorf("GET /health status = %d, want %d (liveness must not depend on checks)", code, http.StatusOK)
	}
	if body.Status != httpserver.HealthStatusHealthy {
		t.Errorf("status = %q, want %q", body.Status, httpserver.HealthStatusHealthy)
	}
	if len(body.Checks) != 0 {
		t.Errorf("liveness response carries %d checks, want none", len(body.Checks))
	}
	if body.Service != "claim-ranker" {
		t.Errorf("service = %q, want claim-ranker", body.Service)
	}
}

func TestHealthEndpoint_Head(t *testing.T) {
	handler := buildTestServer(t, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodHead, "/health", http.NoBody)
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("HEAD /health status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestReadyEndpoint_UnhealthyDatabase(t *testing.T) {
	handler := buildTestServer(t, func(b *httpserver.ServerBuilder) {
		b.WithDatabaseHealthCheck(func() error { return errors.New("connection refused") })
	})

	code, body := getJSON(t, handler, "/ready")
	if code != http.StatusServiceUnavailable {
		t.Errorf("GET /ready status = %d, want %d with database down", code, http.StatusServiceUnavailable)
	}
	if body.Status != httpserver.HealthStatusUnhealthy {
		t.Errorf("status = %q, want %q", body.Status, httpserver.HealthStatusUnhealthy)
	}
	if body.Checks["database"].Status != httpserver.HealthStatusUnhealthy {
		t.Errorf("database check = %q, want %q", body.Checks["database"].Status, httpserver.HealthStatusUnhealthy)
	}
}

func TestReadyEndpoint_DegradedProvider(t *testing.T) {
	handler := buildTestServer(t, func(b *httpserver.ServerBuilder) {
		b.WithDatabaseHealthCheck(func() error { return nil })
		b.WithProviderHealthCheck("sentiment", func() error { return errors.New("dial timeout") })
	})

	code, body := getJSON(t, handler, "/ready")
	if code != http.StatusOK {
		t.Errorf("GET /ready status = %d, want %d (provider outage degrades, not fails)", code, http.StatusOK)
	}
	if body.Status != httpserver.HealthStatusDegraded {
		t.Errorf("status = %q, want %q", body.Status, httpserver.HealthStatusDegraded)
	}
	if body.Checks["sentiment"].Status != httpserver.HealthStatusDegraded {
		t.Errorf("sentiment check = %q, want %q", body.Checks["sentiment"].Status, httpserver.HealthStatusDegraded)
	}
}

func TestReadyEndpoint_AllChecksPass(t *testing.T) {
	handler := buildTestServer(t, func(b *httpserver.ServerBuilder) {
		b.WithDatabaseHealthCheck(func() error { return nil })
		b.WithRedisHealthCheck(func() error { return nil })
		b.WithProviderHealthCheck("translator", func() error { return nil })
	})

	code, body := getJSON(t, handler, "/ready")
	if code != http.StatusOK {
		t.Errorf("GET /ready status = %d, want %d", code, http.StatusOK)
	}
	if body.Status != httpserver.HealthStatusHealthy {
		t.Errorf("status = %q, want %q", body.Status, httpserver.HealthStatusHealthy)
	}
	if len(body.Checks) != 3 {
		t.Errorf("checks = %d, want 3", len(body.Checks))
	}
}

func TestMemoryEndpoint(t *testing.T) {
	handler := buildTestServer(t, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health/memory", http.NoBody)
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("GET /health/memory status = %d, want %d", w.Code, http.StatusOK)
	}

	var body httpserver.MemoryHealth
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal memory response: %v", err)
	}
	if body.HeapAllocMB <= 0 {
		t.Errorf("heap_alloc_mb = %f, want > 0", body.HeapAllocMB)
	}
	if body.NumGoroutine <= 0 {
		t.Errorf("num_goroutine = %d, want > 0", body.NumGoroutine)
	}
	if body.Timestamp.IsZero() {
		t.Error("timestamp not set")
	}
}
