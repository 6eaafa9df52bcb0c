package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects the Prometheus metrics of the console.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	exportsTotal    *prometheus.CounterVec
	exportRows      *prometheus.HistogramVec
	backendErrors   *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
}

// NewMetrics initialises the registry and the base metrics.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hopebridge_http_requests_total",
		Help: "HTTP requests by route and status.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hopebridge_http_request_duration_seconds",
		Help:    "HTTP request duration per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	exports := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hopebridge_exports_total",
		Help: "CSV exports by resource.",
	}, []string{"resource"})
	exportRows := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hopebridge_export_rows",
		Help:    "Rows written per CSV export.",
		Buckets: prometheus.ExponentialBuckets(10, 4, 6),
	}, []string{"resource"})
	backendErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hopebridge_backend_errors_total",
		Help: "Failed API calls by resource and error class.",
	}, []string{"resource", "class"})
	cacheLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hopebridge_backend_cache_lookups_total",
		Help: "Cached API list reads by result.",
	}, []string{"result"})
	registry.MustRegister(
		requests, duration, exports, exportRows, backendErrors, cacheLookups,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		exportsTotal:    exports,
		exportRows:      exportRows,
		backendErrors:   backendErrors,
		cacheLookups:    cacheLookups,
	}
}

// Handler returns the http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records metrics for every HTTP request.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// ObserveExport counts one CSV export of rows rows.
func (m *Metrics) ObserveExport(resource string, rows int) {
	if m == nil {
		return
	}
	m.exportsTotal.WithLabelValues(resource).Inc()
	m.exportRows.WithLabelValues(resource).Observe(float64(rows))
}

// ObserveBackendError counts one failed API call.
func (m *Metrics) ObserveBackendError(resource, class string) {
	if m == nil {
		return
	}
	m.backendErrors.WithLabelValues(resource, class).Inc()
}

// ObserveCache counts one cached read as a hit or a miss.
func (m *Metrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
