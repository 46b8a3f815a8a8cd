// Package rest implements the retrying JSON-over-POST request executor shared
// by every index and database handle of a client.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/upsearch/internal/domain"
	"github.com/kailas-cloud/upsearch/internal/metrics"
)

// Executor defaults.
const (
	DefaultRetries       = 3
	DefaultRetryInterval = time.Second
	ConnectTimeout       = 10 * time.Second
	RequestTimeout       = 600 * time.Second
)

// maxErrorBody caps how much of an unexpected response body ends up in a StatusError.
const maxErrorBody = 512

// Config holds the executor settings.
type Config struct {
	BaseURL       string
	Token         string
	Retries       int
	RetryInterval time.Duration
	Telemetry     bool
	HTTPClient    *http.Client // optional, NewHTTPClient() if nil
	Logger        *zap.Logger  // optional, nop if nil
	Metrics       *metrics.HTTP
}

// Requester posts JSON payloads and unwraps the {"result"} / {"error"} envelope.
// It is safe for concurrent use: the only shared state is the HTTP connection
// pool and the immutable header set.
type Requester struct {
	client        *http.Client
	baseURL       string
	headers       http.Header
	retries       int
	retryInterval time.Duration
	logger        *zap.Logger
	metrics       *metrics.HTTP
}

// New creates a Requester. Headers are computed once here.
func New(cfg Config) *Requester {
	client := cfg.HTTPClient
	if client == nil {
		client = NewHTTPClient()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Requester{
		client:        client,
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		headers:       Headers(cfg.Token, cfg.Telemetry),
		retries:       max(0, cfg.Retries),
		retryInterval: max(0, cfg.RetryInterval),
		logger:        logger,
		metrics:       cfg.Metrics,
	}
}

// NewHTTPClient returns a client with a short connect timeout and a long
// overall request timeout.
func NewHTTPClient() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{
		Timeout:   ConnectTimeout,
		KeepAlive: 30 * time.Second,
	}).DialContext
	transport.TLSHandshakeTimeout = ConnectTimeout

	return &http.Client{
		Transport: transport,
		Timeout:   RequestTimeout,
	}
}

// URL returns the request target for path and an optional index segment.
func (r *Requester) URL(path, index string) string {
	if index == "" {
		return r.baseURL + path
	}
	return r.baseURL + path + "/" + url.PathEscape(index)
}

// Post sends payload (nil for no body) to path, optionally scoped to an index,
// and returns the raw "result" value.
//
// Transport failures are retried up to the configured budget with a fixed
// interval; the last one is returned unchanged. Service error payloads are
// returned as *domain.ServiceError without retrying.
func (r *Requester) Post(ctx context.Context, path string, payload any, index string) (json.RawMessage, error) {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return nil, domain.NewClientError("encode request payload: %v", err)
		}
	}

	target := r.URL(path, index)
	attempt := 0

	op := func() (json.RawMessage, error) {
		attempt++
		start := time.Now()
		result, outcome, err := r.do(ctx, target, body)
		dur := time.Since(start)

		r.metrics.ObserveAttempt(path, outcome, dur)
		r.logger.Debug("request attempt",
			zap.String("path", path),
			zap.String("index", index),
			zap.Int("attempt", attempt),
			zap.String("outcome", outcome),
			zap.Duration("duration", dur),
		)
		return result, err
	}

	result, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(backoff.NewConstantBackOff(r.retryInterval)),
		backoff.WithMaxTries(uint(r.retries)+1),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, next time.Duration) {
			r.metrics.ObserveRetry(path)
			r.logger.Warn("request failed, retrying",
				zap.String("path", path),
				zap.String("index", index),
				zap.Int("attempt", attempt),
				zap.Duration("retry_in", next),
				zap.Error(err),
			)
		}),
	)
	if err != nil {
		var perm *backoff.PermanentError
		if errors.As(err, &perm) {
			err = perm.Unwrap()
		}
		return nil, err
	}
	return result, nil
}

// envelope is the service response wrapper. Exactly one key is expected.
type envelope struct {
	Result json.RawMessage `json:"result"`
	Error  json.RawMessage `json:"error"`
}

// do performs a single attempt. Errors meant to stop the retry loop are
// wrapped with backoff.Permanent.
func (r *Requester) do(ctx context.Context, target string, body []byte) (json.RawMessage, string, error) {
	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, reader)
	if err != nil {
		return nil, metrics.OutcomeTransportError, backoff.Permanent(fmt.Errorf("build request: %w", err))
	}
	req.Header = r.headers.Clone()

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, metrics.OutcomeTransportError, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, metrics.OutcomeTransportError, err
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil || (env.Error == nil && env.Result == nil) {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, metrics.OutcomeStatusError, &domain.StatusError{
				StatusCode: resp.StatusCode,
				Body:       truncate(string(data), maxErrorBody),
			}
		}
		return nil, metrics.OutcomeMalformed, backoff.Permanent(fmt.Errorf(
			"%w: status %d: %s", domain.ErrMalformedResponse, resp.StatusCode, truncate(string(data), maxErrorBody),
		))
	}

	if env.Error != nil {
		return nil, metrics.OutcomeServiceError, backoff.Permanent(&domain.ServiceError{
			Message: errorMessage(env.Error),
		})
	}
	return env.Result, metrics.OutcomeOK, nil
}

// errorMessage returns a JSON string error as plain text and anything else
// verbatim. The result is never empty.
func errorMessage(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil && s != "" {
		return s
	}
	return string(raw)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
