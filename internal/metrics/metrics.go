// Package metrics registers the Prometheus collectors of the certification
// service and provides the HTTP instrumentation middleware.
//
// HTTP metrics: filecert_http_requests_total, filecert_http_request_duration_seconds.
// Business metrics are updated from the service layer.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filecert_http_requests_total",
			Help: "Total HTTP requests served",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "filecert_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

var (
	// OperationsTotal counts certify/verify operations by outcome.
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filecert_operations_total",
			Help: "Certification and verification operations by result",
		},
		[]string{"operation", "result"},
	)

	// HashedBytes counts bytes streamed through the digest engine.
	HashedBytes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filecert_hashed_bytes_total",
			Help: "Bytes passed through the digest engine",
		},
		[]string{"operation"},
	)

	// StoredRecords is the current size of the certification store.
	StoredRecords = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "filecert_stored_certifications",
			Help: "Certification records currently held in memory",
		},
	)

	// JobLatency observes time spent by workers per job.
	JobLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "filecert_job_duration_seconds",
			Help:    "Worker job duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)
)

// Middleware records request count and latency for every endpoint.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		path := NormalizePath(r.URL.Path)
		wrapped := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.statusCode)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController reach the original writer.
func (rw *statusRecorder) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// NormalizePath replaces digest path segments with a placeholder so label
// cardinality stays bounded.
// /api/certifications/2cf24d.../export -> /api/certifications/{digest}/export
func NormalizePath(path string) string {
	const prefix = "/api/certifications/"
	if !strings.HasPrefix(path, prefix) {
		return path
	}
	rest := strings.TrimPrefix(path, prefix)
	if strings.HasSuffix(rest, "/export") {
		return prefix + "{digest}/export"
	}
	return prefix + "{digest}"
}
