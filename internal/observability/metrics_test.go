package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	return rr.Body.String()
}

func TestMetricsMiddlewareRecordsRequest(t *testing.T) {
	metrics := NewMetrics()

	handler := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	routeCtx := chi.NewRouteContext()
	routeCtx.RoutePatterns = append(routeCtx.RoutePatterns, "/test")

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx)
	req = req.WithContext(ctx)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusTeapot {
		t.Fatalf("expected status %d, got %d", http.StatusTeapot, rr.Code)
	}

	body := scrape(t, metrics)
	if !strings.Contains(body, "hopebridge_http_requests_total{code=\"418\",route=\"/test\"} 1") {
		t.Fatalf("expected metrics to record request, got: %s", body)
	}
	if !strings.Contains(body, "hopebridge_http_request_duration_seconds_bucket{route=\"/test\"") {
		t.Fatalf("expected duration histogram to be present, got: %s", body)
	}
}

func TestMetricsObserveExportAndBackendErrors(t *testing.T) {
	metrics := NewMetrics()
	metrics.ObserveExport("blogs", 25)
	metrics.ObserveExport("blogs", 3)
	metrics.ObserveBackendError("donations", "unavailable")

	body := scrape(t, metrics)
	if !strings.Contains(body, "hopebridge_exports_total{resource=\"blogs\"} 2") {
		t.Fatalf("expected export counter, got: %s", body)
	}
	if !strings.Contains(body, "hopebridge_export_rows_count{resource=\"blogs\"} 2") {
		t.Fatalf("expected export rows histogram, got: %s", body)
	}
	if !strings.Contains(body, "hopebridge_backend_errors_total{class=\"unavailable\",resource=\"donations\"} 1") {
		t.Fatalf("expected backend error counter, got: %s", body)
	}
}

func TestMetricsObserveCacheAndRuntime(t *testing.T) {
	metrics := NewMetrics()
	metrics.ObserveCache(true)
	metrics.ObserveCache(true)
	metrics.ObserveCache(false)

	body := scrape(t, metrics)
	if !strings.Contains(body, "hopebridge_backend_cache_lookups_total{result=\"hit\"} 2") {
		t.Fatalf("expected cache hits, got: %s", body)
	}
	if !strings.Contains(body, "hopebridge_backend_cache_lookups_total{result=\"miss\"} 1") {
		t.Fatalf("expected cache miss, got: %s", body)
	}
	if !strings.Contains(body, "go_goroutines") {
		t.Fatalf("expected runtime collectors, got: %s", body)
	}
}

func TestNilMetricsAreInert(t *testing.T) {
	var metrics *Metrics
	metrics.ObserveExport("blogs", 1)
	metrics.ObserveBackendError("blogs", "unauthorized")
	metrics.ObserveCache(true)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	if got := metrics.Middleware(next); got == nil {
		t.Fatal("expected passthrough handler")
	}
	rr := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
}
