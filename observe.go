package upsearch

import (
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/upsearch/internal/metrics"
)

// observer provides logging and metrics for SDK operations.
type observer struct {
	logger  *zap.Logger
	metrics *metrics.SDK
}

func newObserver(logger *zap.Logger, m *metrics.SDK) *observer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &observer{logger: logger, metrics: m}
}

func (o *observer) observe(op, index string, start time.Time, err error) {
	if o == nil {
		return
	}
	dur := time.Since(start)

	if o.metrics != nil {
		status := "ok"
		if err != nil {
			status = "error"
		}
		o.metrics.Operations.WithLabelValues(op, status).Inc()
		o.metrics.Duration.WithLabelValues(op).Observe(dur.Seconds())
	}

	fields := []zap.Field{zap.String("op", op), zap.Duration("duration", dur)}
	if index != "" {
		fields = append(fields, zap.String("index", index))
	}
	if err != nil {
		o.logger.Warn("operation failed", append(fields, zap.Error(err))...)
		return
	}
	o.logger.Debug("operation completed", fields...)
}
