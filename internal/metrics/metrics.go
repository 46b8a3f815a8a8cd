// Package metrics defines the Prometheus collectors used by the client and by
// the in-process fake service.
package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "upsearch"

// Request outcomes recorded per HTTP attempt.
const (
	OutcomeOK             = "ok"
	OutcomeServiceError   = "service_error"
	OutcomeTransportError = "transport_error"
	OutcomeStatusError    = "status_error"
	OutcomeMalformed      = "malformed"
)

// HTTP holds per-attempt metrics of the request executor.
// A nil *HTTP is valid and records nothing.
type HTTP struct {
	attempts *prometheus.CounterVec
	retries  *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewHTTP registers executor metrics on reg, reusing collectors that are
// already registered under the same names.
func NewHTTP(reg prometheus.Registerer) (*HTTP, error) {
	m := &HTTP{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "attempts_total",
			Help:      "HTTP attempts by path and outcome.",
		}, []string{"path", "outcome"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "retries_total",
			Help:      "HTTP retries scheduled after a transport failure.",
		}, []string{"path"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "attempt_duration_seconds",
			Help:      "HTTP attempt duration in seconds.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"path"}),
	}
	if err := RegisterOrReuse(reg, &m.attempts); err != nil {
		return nil, err
	}
	if err := RegisterOrReuse(reg, &m.retries); err != nil {
		return nil, err
	}
	if err := RegisterOrReuse(reg, &m.duration); err != nil {
		return nil, err
	}
	return m, nil
}

// ObserveAttempt records one finished attempt.
func (m *HTTP) ObserveAttempt(path, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues(path, outcome).Inc()
	m.duration.WithLabelValues(path).Observe(d.Seconds())
}

// ObserveRetry records a scheduled retry.
func (m *HTTP) ObserveRetry(path string) {
	if m == nil {
		return
	}
	m.retries.WithLabelValues(path).Inc()
}

// SDK holds per-operation metrics of the public facades.
type SDK struct {
	Operations *prometheus.CounterVec
	Duration   *prometheus.HistogramVec
}

// NewSDK registers facade metrics on reg.
func NewSDK(reg prometheus.Registerer) (*SDK, error) {
	m := &SDK{
		Operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sdk",
			Name:      "operations_total",
			Help:      "Total SDK operations by type and status.",
		}, []string{"operation", "status"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sdk",
			Name:      "operation_duration_seconds",
			Help:      "SDK operation duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	if err := RegisterOrReuse(reg, &m.Operations); err != nil {
		return nil, err
	}
	if err := RegisterOrReuse(reg, &m.Duration); err != nil {
		return nil, err
	}
	return m, nil
}

// RegisterOrReuse registers a collector or reuses an existing one.
func RegisterOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	if err := reg.Register(*c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			existing, ok := are.ExistingCollector.(T)
			if !ok {
				return fmt.Errorf("upsearch: metric already registered with incompatible type: %T", are.ExistingCollector)
			}
			*c = existing
			return nil
		}
		return fmt.Errorf("upsearch: register metric: %w", err)
	}
	return nil
}
