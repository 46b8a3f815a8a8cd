package fakesearch

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	logpkg "github.com/kailas-cloud/upsearch/internal/logger"
	"github.com/kailas-cloud/upsearch/internal/metrics"
)

// Option configures the Server.
type Option func(*Server)

// WithTokens enables bearer authentication with the given tokens.
func WithTokens(tokens ...string) Option {
	return func(s *Server) { s.tokens = tokens }
}

// WithIndexingLag delays search visibility of written documents.
func WithIndexingLag(d time.Duration) Option {
	return func(s *Server) { s.lag = d }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithLogger sets the server logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithRegistry records request metrics on reg and serves them on /metrics.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) { s.registry = reg }
}

// Server is the HTTP front of a Store.
type Server struct {
	store    *Store
	tokens   []string
	lag      time.Duration
	now      func() time.Time
	logger   *zap.Logger
	registry *prometheus.Registry
	metrics  *metrics.Server

	faults      atomic.Int32
	faultStatus atomic.Int32
}

// New creates a fake service with an empty store.
func New(opts ...Option) (*Server, error) {
	s := &Server{logger: zap.NewNop()}
	for _, o := range opts {
		o(s)
	}
	s.store = NewStore(s.lag, s.now)

	if s.registry != nil {
		m, err := metrics.NewServer(s.registry)
		if err != nil {
			return nil, fmt.Errorf("fake metrics: %w", err)
		}
		s.metrics = m
	}
	return s, nil
}

// Store exposes the backing store for assertions.
func (s *Server) Store() *Store { return s.store }

// InjectFailures makes the next n requests fail with status and a non-JSON
// body, the way a proxy in front of the service would.
func (s *Server) InjectFailures(n, status int) {
	s.faultStatus.Store(int32(status)) //nolint:gosec // HTTP status codes fit
	s.faults.Store(int32(n))           //nolint:gosec // test helper
}

// Handler builds the chi router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	if s.metrics != nil {
		r.Use(s.metrics.Middleware())
	}
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(s.requestLog)
	r.Use(s.faultMiddleware)
	r.Use(BearerAuthMiddleware(s.tokens))

	if s.registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}

	r.Post("/list-indexes", s.listIndexes)
	r.Post("/delete-index/{index}", s.deleteIndex)
	r.Post("/database-info", s.info)
	r.Post("/upsert/{index}", s.upsert)
	r.Post("/search/{index}", s.search)
	r.Post("/fetch/{index}", s.fetch)
	r.Post("/delete/{index}", s.delete)
	r.Post("/range/{index}", s.rangeDocs)
	r.Post("/reset/{index}", s.reset)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
	return r
}

// requestLog emits one log line per request and puts a request-scoped
// logger into the context.
func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := chiMiddleware.GetReqID(r.Context())
		if requestID != "" {
			w.Header().Set("X-Request-ID", requestID)
		}

		reqLogger := s.logger.With(zap.String("request_id", requestID))
		ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

		ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		reqLogger.Debug("http_request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.Int("response_bytes", ww.BytesWritten()),
		)
	})
}

func (s *Server) faultMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for {
			n := s.faults.Load()
			if n <= 0 {
				break
			}
			if s.faults.CompareAndSwap(n, n-1) {
				w.Header().Set("Content-Type", "text/html")
				w.WriteHeader(int(s.faultStatus.Load()))
				_, _ = w.Write([]byte("<html><body>upstream unavailable</body></html>"))
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

type upsertItem struct {
	ID       *string         `json:"id"`
	Content  json.RawMessage `json:"content"`
	Metadata map[string]any  `json:"metadata"`
}

func (s *Server) upsert(w http.ResponseWriter, r *http.Request) {
	name := indexParam(r)

	var items []upsertItem
	if !s.decode(w, r, &items) {
		return
	}
	docs := make([]Document, len(items))
	for i, it := range items {
		if it.ID == nil || *it.ID == "" {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("document %d: id is required", i))
			return
		}
		if len(it.Content) == 0 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("document %d: content is required", i))
			return
		}
		var content any
		if err := json.Unmarshal(it.Content, &content); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("document %d: invalid content", i))
			return
		}
		docs[i] = Document{ID: *it.ID, Content: content, Metadata: it.Metadata}
	}

	if err := s.store.Upsert(name, docs); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	logpkg.FromContext(r.Context()).Debug("upserted", zap.String("index", name), zap.Int("count", len(docs)))
	writeResult(w, "Success")
}

type searchBody struct {
	Query           string `json:"query"`
	TopK            int    `json:"topK"`
	Filter          string `json:"filter"`
	Reranking       bool   `json:"reranking"`
	IncludeData     bool   `json:"includeData"`
	IncludeMetadata bool   `json:"includeMetadata"`
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	var body searchBody
	if !s.decode(w, r, &body) {
		return
	}
	hits, err := s.store.Search(indexParam(r), body.Query, body.TopK, body.Filter)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	for i := range hits {
		hits[i].Document = project(hits[i].Document, body.IncludeData, body.IncludeMetadata)
	}
	writeResult(w, hits)
}

type fetchBody struct {
	IDs             []string `json:"ids"`
	Prefix          *string  `json:"prefix"`
	IncludeData     bool     `json:"includeData"`
	IncludeMetadata bool     `json:"includeMetadata"`
}

func (s *Server) fetch(w http.ResponseWriter, r *http.Request) {
	var body fetchBody
	if !s.decode(w, r, &body) {
		return
	}
	name := indexParam(r)

	switch {
	case body.IDs != nil:
		docs := s.store.FetchIDs(name, body.IDs)
		for i, d := range docs {
			if d != nil {
				p := project(*d, body.IncludeData, body.IncludeMetadata)
				docs[i] = &p
			}
		}
		writeResult(w, docs)
	case body.Prefix != nil:
		docs := s.store.FetchPrefix(name, *body.Prefix)
		for i := range docs {
			docs[i] = project(docs[i], body.IncludeData, body.IncludeMetadata)
		}
		writeResult(w, docs)
	default:
		writeError(w, http.StatusBadRequest, "ids or prefix is required")
	}
}

type deleteBody struct {
	IDs    []string `json:"ids"`
	Prefix *string  `json:"prefix"`
	Filter *string  `json:"filter"`
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	var body deleteBody
	if !s.decode(w, r, &body) {
		return
	}
	if body.IDs == nil && body.Prefix == nil && body.Filter == nil {
		writeError(w, http.StatusBadRequest, "ids, prefix or filter is required")
		return
	}
	n, err := s.store.Delete(indexParam(r), DeleteSelector(body))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeResult(w, map[string]int{"deleted": n})
}

type rangeBody struct {
	Cursor          string  `json:"cursor"`
	Limit           int     `json:"limit"`
	Prefix          *string `json:"prefix"`
	IncludeData     bool    `json:"includeData"`
	IncludeMetadata bool    `json:"includeMetadata"`
}

func (s *Server) rangeDocs(w http.ResponseWriter, r *http.Request) {
	var body rangeBody
	if !s.decode(w, r, &body) {
		return
	}
	prefix := ""
	if body.Prefix != nil {
		prefix = *body.Prefix
	}
	next, docs, err := s.store.Range(indexParam(r), body.Cursor, body.Limit, prefix)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	for i := range docs {
		docs[i] = project(docs[i], body.IncludeData, body.IncludeMetadata)
	}
	writeResult(w, map[string]any{"nextCursor": next, "vectors": docs})
}

func (s *Server) reset(w http.ResponseWriter, r *http.Request) {
	s.store.Reset(indexParam(r))
	writeResult(w, "Success")
}

func (s *Server) deleteIndex(w http.ResponseWriter, r *http.Request) {
	s.store.DeleteIndex(indexParam(r))
	writeResult(w, "Success")
}

func (s *Server) listIndexes(w http.ResponseWriter, _ *http.Request) {
	writeResult(w, s.store.ListIndexes())
}

func (s *Server) info(w http.ResponseWriter, _ *http.Request) {
	writeResult(w, s.store.Info())
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		logpkg.FromContext(r.Context()).Warn("invalid request body", zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func indexParam(r *http.Request) string {
	raw := chi.URLParam(r, "index")
	if name, err := url.PathUnescape(raw); err == nil {
		return name
	}
	return raw
}

// project drops the parts of a document the caller did not ask for.
func project(d Document, includeData, includeMetadata bool) Document {
	if !includeData {
		d.Content = nil
	}
	if !includeMetadata {
		d.Metadata = nil
	}
	return d
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeResult(w http.ResponseWriter, v any) {
	writeJSON(w, http.StatusOK, map[string]any{"result": v})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
