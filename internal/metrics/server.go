package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

// Server holds request metrics of the fake search service.
type Server struct {
	requestDuration *prometheus.HistogramVec
	requestsTotal   *prometheus.CounterVec
}

// NewServer registers fake-service request metrics on reg.
func NewServer(reg prometheus.Registerer) (*Server, error) {
	s := &Server{
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "fake",
				Name:      "request_duration_seconds",
				Help:      "Fake service request duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"method", "path", "status"},
		),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "fake",
				Name:      "requests_total",
				Help:      "Total number of fake service requests",
			},
			[]string{"method", "path", "status"},
		),
	}
	if err := RegisterOrReuse(reg, &s.requestDuration); err != nil {
		return nil, err
	}
	if err := RegisterOrReuse(reg, &s.requestsTotal); err != nil {
		return nil, err
	}
	return s, nil
}

// Requests returns the request counter for a route pattern and status.
func (s *Server) Requests(method, path string, status int) prometheus.Counter {
	return s.requestsTotal.WithLabelValues(method, path, strconv.Itoa(status))
}

// Middleware records request duration and count.
func (s *Server) Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(ww.status)

			// Use chi route pattern for path normalization
			path := "unknown"
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				path = normalizePath(rctx.RoutePattern())
			}

			s.requestDuration.WithLabelValues(r.Method, path, status).Observe(duration)
			s.requestsTotal.WithLabelValues(r.Method, path, status).Inc()
		})
	}
}

// normalizePath normalizes paths to prevent high cardinality in metrics labels.
func normalizePath(path string) string {
	if path == "" {
		return "unknown"
	}
	return path
}

// statusWriter captures the response status code.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(status int) {
	if !w.wroteHeader {
		w.status = status
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.wroteHeader = true
	}
	return w.ResponseWriter.Write(b) //nolint:wrapcheck // delegating to underlying ResponseWriter
}
