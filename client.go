package upsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/upsearch/internal/codec"
	"github.com/kailas-cloud/upsearch/internal/config"
	"github.com/kailas-cloud/upsearch/internal/domain"
	"github.com/kailas-cloud/upsearch/internal/metrics"
	"github.com/kailas-cloud/upsearch/internal/transport/rest"
)

// maxParallelDeletes bounds the fan-out of DeleteIndexes.
const maxParallelDeletes = 8

// requester is the request executor contract, replaced by a mock in tests.
type requester interface {
	Post(ctx context.Context, path string, payload any, index string) (json.RawMessage, error)
}

// Client is the database-level entry point. It is safe for concurrent use and
// all indexes obtained from it share one request executor.
type Client struct {
	req requester
	obs *observer
}

// New creates a Client for the database at url authenticated with token.
// No request is made.
func New(url, token string, opts ...Option) (*Client, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o.apply(cfg)
	}
	return newFromConfig(url, token, cfg)
}

// FromEnv creates a Client from UPSTASH_SEARCH_REST_URL and
// UPSTASH_SEARCH_REST_TOKEN. It fails with ErrMissingCredentials when either
// is unset or empty.
func FromEnv(opts ...Option) (*Client, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.envFile != "" {
		if err := config.LoadDotEnv(cfg.envFile); err != nil {
			return nil, fmt.Errorf("upsearch: %w", err)
		}
	}
	creds, err := config.LoadCredentials()
	if err != nil {
		return nil, fmt.Errorf("upsearch: %w", err)
	}
	return newFromConfig(creds.URL, creds.Token, cfg)
}

func newFromConfig(url, token string, cfg *clientConfig) (*Client, error) {
	if url == "" {
		return nil, fmt.Errorf("upsearch: %w: url is required", ErrMissingCredentials)
	}
	if token == "" {
		return nil, fmt.Errorf("upsearch: %w: token is required", ErrMissingCredentials)
	}

	var (
		httpMetrics *metrics.HTTP
		sdkMetrics  *metrics.SDK
	)
	if cfg.metricsReg != nil {
		var err error
		if httpMetrics, err = metrics.NewHTTP(cfg.metricsReg); err != nil {
			return nil, err
		}
		if sdkMetrics, err = metrics.NewSDK(cfg.metricsReg); err != nil {
			return nil, err
		}
	}

	req := rest.New(rest.Config{
		BaseURL:       url,
		Token:         token,
		Retries:       cfg.retries,
		RetryInterval: cfg.retryInterval,
		Telemetry:     cfg.telemetry,
		HTTPClient:    cfg.httpClient,
		Logger:        cfg.logger,
		Metrics:       httpMetrics,
	})
	return newClient(req, newObserver(cfg.logger, sdkMetrics)), nil
}

func newClient(req requester, obs *observer) *Client {
	return &Client{req: req, obs: obs}
}

// Index returns a handle for the named index. The index is created by the
// service on first upsert; calling Index has no side effects.
func (c *Client) Index(name string) *Index {
	return &Index{name: name, req: c.req, obs: c.obs}
}

// ListIndexes returns the names of the indexes of the database.
func (c *Client) ListIndexes(ctx context.Context) (names []string, err error) {
	start := time.Now()
	defer func() { c.obs.observe("list_indexes", "", start, err) }()

	raw, err := c.req.Post(ctx, rest.PathListIndexes, nil, "")
	if err != nil {
		return nil, fmt.Errorf("list indexes: %w", err)
	}
	names, err = codec.DecodeNames(raw)
	if err != nil {
		return nil, fmt.Errorf("list indexes: %w", err)
	}
	return names, nil
}

// DeleteIndex deletes the named index and all of its documents.
func (c *Client) DeleteIndex(ctx context.Context, name string) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("delete_index", name, start, err) }()

	if name == "" {
		return fmt.Errorf("delete index: %w", domain.NewClientError("index name is required"))
	}
	if _, err = c.req.Post(ctx, rest.PathDeleteIndex, nil, name); err != nil {
		return fmt.Errorf("delete index %q: %w", name, err)
	}
	return nil
}

// DeleteIndexes deletes several indexes concurrently. The first failure
// cancels the deletions that have not started yet.
func (c *Client) DeleteIndexes(ctx context.Context, names ...string) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelDeletes)
	for _, name := range names {
		g.Go(func() error {
			return c.DeleteIndex(gctx, name)
		})
	}
	return g.Wait() //nolint:wrapcheck // DeleteIndex already wraps
}

// Info returns database-wide counters and a per-index breakdown.
func (c *Client) Info(ctx context.Context) (res DatabaseInfo, err error) {
	start := time.Now()
	defer func() { c.obs.observe("info", "", start, err) }()

	raw, err := c.req.Post(ctx, rest.PathDatabaseInfo, nil, "")
	if err != nil {
		return DatabaseInfo{}, fmt.Errorf("info: %w", err)
	}
	d, err := codec.DecodeDatabaseInfo(raw)
	if err != nil {
		return DatabaseInfo{}, fmt.Errorf("info: %w", err)
	}
	return fromInternalDatabaseInfo(d), nil
}

// Async returns the concurrency-enabled view of this client.
func (c *Client) Async() *AsyncClient {
	return &AsyncClient{c: c}
}
