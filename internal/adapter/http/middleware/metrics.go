package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/strefex-app/walletd/internal/infrastructure/metrics"
)

// MetricsMiddleware records HTTP metrics.
type MetricsMiddleware struct {
	metrics *metrics.Metrics
}

// NewMetricsMiddleware creates a new MetricsMiddleware.
func NewMetricsMiddleware(m *metrics.Metrics) *MetricsMiddleware {
	return &MetricsMiddleware{metrics: m}
}

// Wrap wraps an http.Handler with metrics collection.
func (m *MetricsMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &metricsRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()
		path := normalizePath(r.URL.Path)

		m.metrics.HTTPRequests.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.statusCode)).Inc()
		m.metrics.HTTPDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

type metricsRecorder struct {
	http.ResponseWriter

	statusCode int
}

func (r *metricsRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

// idPrefixes are route prefixes whose next segment is a resource ID.
var idPrefixes = []string{
	"/api/v1/wallets/",
	"/api/v1/escrows/",
	"/api/v1/transactions/",
}

// normalizePath collapses resource IDs so metric label cardinality stays
// bounded. /api/v1/wallets/01ABC/methods/01DEF becomes
// /api/v1/wallets/:id/methods/:id.
func normalizePath(path string) string {
	for _, prefix := range idPrefixes {
		if !strings.HasPrefix(path, prefix) {
			continue
		}

		segments := strings.Split(path[len(prefix):], "/")
		for i := 0; i < len(segments); i += 2 {
			segments[i] = ":id"
		}

		return prefix + strings.Join(segments, "/")
	}

	return path
}
