package upsearch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
)

func TestNew_MissingCredentials(t *testing.T) {
	if _, err := New("", "token"); !errors.Is(err, ErrMissingCredentials) {
		t.Errorf("empty url: got %v, want ErrMissingCredentials", err)
	}
	if _, err := New("https://x.upstash.io", ""); !errors.Is(err, ErrMissingCredentials) {
		t.Errorf("empty token: got %v, want ErrMissingCredentials", err)
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("UPSTASH_SEARCH_REST_URL", "https://x.upstash.io")
	t.Setenv("UPSTASH_SEARCH_REST_TOKEN", "secret")

	c, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if c.Index("movies").Name() != "movies" {
		t.Error("unexpected index handle")
	}
}

func TestFromEnv_Missing(t *testing.T) {
	t.Setenv("UPSTASH_SEARCH_REST_URL", "")
	t.Setenv("UPSTASH_SEARCH_REST_TOKEN", "secret")

	if _, err := FromEnv(); !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("got %v, want ErrMissingCredentials", err)
	}
}

func TestClientOptions(t *testing.T) {
	cfg := defaultConfig()
	if cfg.retries != 3 || cfg.retryInterval != time.Second || !cfg.telemetry {
		t.Fatalf("defaults = %+v", cfg)
	}

	WithRetries(5).apply(cfg)
	WithRetryInterval(250 * time.Millisecond).apply(cfg)
	WithoutTelemetry().apply(cfg)
	if cfg.retries != 5 {
		t.Errorf("retries = %d, want 5", cfg.retries)
	}
	if cfg.retryInterval != 250*time.Millisecond {
		t.Errorf("retryInterval = %v", cfg.retryInterval)
	}
	if cfg.telemetry {
		t.Error("telemetry should be disabled")
	}

	hc := &http.Client{}
	WithHTTPClient(hc).apply(cfg)
	if cfg.httpClient != hc {
		t.Error("expected http client to be set")
	}

	logger := zap.NewNop()
	WithLogger(logger).apply(cfg)
	if cfg.logger != logger {
		t.Error("expected logger to be set")
	}

	reg := prometheus.NewRegistry()
	WithPrometheus(reg).apply(cfg)
	if cfg.metricsReg != reg {
		t.Error("expected registerer to be set")
	}

	WithEnvFile("test.env").apply(cfg)
	if cfg.envFile != "test.env" {
		t.Errorf("envFile = %q", cfg.envFile)
	}
}

func TestClient_ListIndexes(t *testing.T) {
	mock := respond(`["movies","books"]`)
	names, err := newTestClient(mock).ListIndexes(context.Background())
	if err != nil {
		t.Fatalf("ListIndexes: %v", err)
	}
	if len(names) != 2 || names[0] != "movies" {
		t.Errorf("names = %v", names)
	}
	call := mock.lastCall()
	if call.path != "/list-indexes" || call.index != "" || call.payload != nil {
		t.Errorf("call = %+v", call)
	}
}

func TestClient_DeleteIndex(t *testing.T) {
	mock := respond(`"Success"`)
	if err := newTestClient(mock).DeleteIndex(context.Background(), "movies"); err != nil {
		t.Fatalf("DeleteIndex: %v", err)
	}
	call := mock.lastCall()
	if call.path != "/delete-index" || call.index != "movies" {
		t.Errorf("call = %+v", call)
	}

	if err := newTestClient(mock).DeleteIndex(context.Background(), ""); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("empty name: got %v, want ErrInvalidInput", err)
	}
}

func TestClient_DeleteIndexes(t *testing.T) {
	var (
		mu      sync.Mutex
		deleted []string
	)
	mock := &mockRequester{
		postFn: func(_ context.Context, _ string, _ any, index string) (json.RawMessage, error) {
			mu.Lock()
			deleted = append(deleted, index)
			mu.Unlock()
			return json.RawMessage(`"Success"`), nil
		},
	}

	if err := newTestClient(mock).DeleteIndexes(context.Background(), "a", "b", "c"); err != nil {
		t.Fatalf("DeleteIndexes: %v", err)
	}
	sort.Strings(deleted)
	if len(deleted) != 3 || deleted[0] != "a" || deleted[2] != "c" {
		t.Errorf("deleted = %v", deleted)
	}
}

func TestClient_DeleteIndexes_Error(t *testing.T) {
	mock := &mockRequester{
		postFn: func(_ context.Context, _ string, _ any, index string) (json.RawMessage, error) {
			if index == "b" {
				return nil, &ServiceError{Message: "forbidden"}
			}
			return json.RawMessage(`"Success"`), nil
		},
	}

	err := newTestClient(mock).DeleteIndexes(context.Background(), "a", "b", "c")
	var se *ServiceError
	if !errors.As(err, &se) {
		t.Fatalf("expected *ServiceError, got %v", err)
	}
}

func TestClient_Info(t *testing.T) {
	mock := respond(`{"vectorCount":7,"pendingVectorCount":2,"indexSize":4096,` +
		`"namespaces":{"movies":{"vectorCount":7,"pendingVectorCount":2}}}`)
	info, err := newTestClient(mock).Info(context.Background())
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if info.DocumentCount != 7 || info.PendingDocumentCount != 2 || info.DiskSizeBytes != 4096 {
		t.Errorf("info = %+v", info)
	}
	if info.Indexes["movies"].DocumentCount != 7 {
		t.Errorf("indexes = %+v", info.Indexes)
	}
	if mock.lastCall().path != "/database-info" {
		t.Errorf("path = %s", mock.lastCall().path)
	}
}

func TestClient_HandlesShareRequester(t *testing.T) {
	mock := respond(`"Success"`)
	c := newTestClient(mock)
	a, b := c.Index("movies"), c.Index("movies")
	if a.req != b.req || a.req != c.req {
		t.Error("index handles should share the client's requester")
	}
}

func TestObserver_RecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"result":["movies"]}`))
	}))
	defer srv.Close()

	c, err := New(srv.URL, "token", WithPrometheus(reg), WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := c.ListIndexes(context.Background()); err != nil {
		t.Fatalf("ListIndexes: %v", err)
	}

	ops, err := testutil.GatherAndCount(reg, "upsearch_sdk_operations_total")
	if err != nil {
		t.Fatalf("GatherAndCount: %v", err)
	}
	if ops != 1 {
		t.Errorf("operations series = %d, want 1", ops)
	}
	attempts, err := testutil.GatherAndCount(reg, "upsearch_http_attempts_total")
	if err != nil {
		t.Fatalf("GatherAndCount: %v", err)
	}
	if attempts != 1 {
		t.Errorf("attempt series = %d, want 1", attempts)
	}
}

func TestNew_PrometheusReuse(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := New("https://x.upstash.io", "t", WithPrometheus(reg)); err != nil {
		t.Fatalf("first New: %v", err)
	}
	if _, err := New("https://x.upstash.io", "t", WithPrometheus(reg)); err != nil {
		t.Fatalf("second New on same registry: %v", err)
	}
}

func TestObserver_NilSafe(t *testing.T) {
	var o *observer
	o.observe("search", "movies", time.Now(), errors.New("boom"))
}
