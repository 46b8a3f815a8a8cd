package upsearch

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/upsearch/internal/transport/rest"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	retries       int
	retryInterval time.Duration
	telemetry     bool
	httpClient    *http.Client

	envFile string

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

func defaultConfig() *clientConfig {
	return &clientConfig{
		retries:       rest.DefaultRetries,
		retryInterval: rest.DefaultRetryInterval,
		telemetry:     true,
	}
}

// WithRetries sets how many extra attempts follow a failed transport attempt.
// Default: 3. Zero disables retrying.
func WithRetries(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.retries = n
	})
}

// WithRetryInterval sets the fixed wait between attempts. Default: 1s.
func WithRetryInterval(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.retryInterval = d
	})
}

// WithoutTelemetry stops sending the SDK, runtime and platform headers.
func WithoutTelemetry() Option {
	return optionFunc(func(c *clientConfig) {
		c.telemetry = false
	})
}

// WithHTTPClient replaces the default HTTP client (10s connect, 600s overall).
func WithHTTPClient(hc *http.Client) Option {
	return optionFunc(func(c *clientConfig) {
		c.httpClient = hc
	})
}

// WithEnvFile makes FromEnv load the given dotenv file before reading the
// environment. Variables already set take precedence. Ignored by New.
func WithEnvFile(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.envFile = path
	})
}

// WithLogger enables structured logging for SDK operations and HTTP attempts.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations, HTTP
// attempts and retries) on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}

// SearchOption tunes a single search call.
type SearchOption func(*searchConfig)

type searchConfig struct {
	limit     int
	filter    string
	reranking bool
}

const defaultSearchLimit = 10

// WithLimit sets the maximum number of hits. Default: 10.
func WithLimit(n int) SearchOption {
	return func(c *searchConfig) { c.limit = n }
}

// WithFilter narrows results with a service-side filter expression.
// The expression is passed through verbatim.
func WithFilter(expr string) SearchOption {
	return func(c *searchConfig) { c.filter = expr }
}

// WithReranking asks the service to rerank hits.
func WithReranking(enabled bool) SearchOption {
	return func(c *searchConfig) { c.reranking = enabled }
}
