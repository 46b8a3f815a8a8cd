package upsearch

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/upsearch/internal/codec"
	"github.com/kailas-cloud/upsearch/internal/domain"
	domdoc "github.com/kailas-cloud/upsearch/internal/domain/document"
	"github.com/kailas-cloud/upsearch/internal/transport/rest"
)

// defaultRangeLimit is the page size of Range when none is given.
const defaultRangeLimit = 1

// Index is a handle for one named index of a database.
// Handles are cheap, stateless and safe for concurrent use.
type Index struct {
	name string
	req  requester
	obs  *observer
}

// Name returns the index name.
func (idx *Index) Name() string { return idx.name }

// Upsert inserts or replaces documents by id in one request.
//
// Each argument is one document in any of the accepted shapes:
//   - Document or *Document
//   - []any{id, content} or []any{id, content, metadata}
//   - []string{id, content}
//   - map[string]any with "id", "content" (or "data") and optional "metadata" (or "fields")
//
// Pass a batch held in a []any with batch... so that each element is a
// separate document. The whole batch is validated before any request is made;
// an empty batch makes no request.
func (idx *Index) Upsert(ctx context.Context, docs ...any) (err error) {
	start := time.Now()
	defer func() { idx.obs.observe("upsert", idx.name, start, err) }()

	if err = idx.checkName(); err != nil {
		return fmt.Errorf("upsert: %w", err)
	}
	items, err := domdoc.NormalizeAll(toNormalizerInput(docs))
	if err != nil {
		return fmt.Errorf("upsert: %w", err)
	}
	if len(items) == 0 {
		return nil
	}
	if _, err = idx.req.Post(ctx, rest.PathUpsert, codec.EncodeUpsert(items), idx.name); err != nil {
		return fmt.Errorf("upsert %d documents: %w", len(items), err)
	}
	return nil
}

// Search returns the documents most relevant to query, best first.
// Defaults: limit 10, no filter, no reranking.
func (idx *Index) Search(ctx context.Context, query string, opts ...SearchOption) (res []ScoredDocument, err error) {
	start := time.Now()
	defer func() { idx.obs.observe("search", idx.name, start, err) }()

	if err = idx.checkName(); err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	sc := searchConfig{limit: defaultSearchLimit}
	for _, o := range opts {
		o(&sc)
	}

	raw, err := idx.req.Post(ctx, rest.PathSearch,
		codec.NewSearchRequest(query, sc.limit, sc.filter, sc.reranking), idx.name)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	hits, err := codec.DecodeScored(raw)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return fromInternalScored(hits), nil
}

// Fetch returns documents by ids or id prefix. For an ids request the result
// is positionally aligned with req.IDs and holds nil where an id is unknown.
func (idx *Index) Fetch(ctx context.Context, req FetchRequest) (res []*Document, err error) {
	start := time.Now()
	defer func() { idx.obs.observe("fetch", idx.name, start, err) }()

	if err = idx.checkName(); err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	raw, err := idx.req.Post(ctx, rest.PathFetch, codec.NewFetchRequest(req.IDs, req.Prefix), idx.name)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	docs, err := codec.DecodeFetch(raw)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	return fromInternalFetched(docs), nil
}

// FetchIDs is Fetch by ids.
func (idx *Index) FetchIDs(ctx context.Context, ids ...string) ([]*Document, error) {
	return idx.Fetch(ctx, FetchRequest{IDs: ids})
}

// FetchPrefix is Fetch of every document whose id starts with prefix.
func (idx *Index) FetchPrefix(ctx context.Context, prefix string) ([]*Document, error) {
	return idx.Fetch(ctx, FetchRequest{Prefix: &prefix})
}

// Delete removes documents by ids, id prefix or filter and returns how many
// were actually removed. Ids that did not exist are not counted.
func (idx *Index) Delete(ctx context.Context, req DeleteRequest) (deleted int, err error) {
	start := time.Now()
	defer func() { idx.obs.observe("delete", idx.name, start, err) }()

	if err = idx.checkName(); err != nil {
		return 0, fmt.Errorf("delete: %w", err)
	}
	payload := codec.DeleteRequest{IDs: req.IDs, Prefix: req.Prefix, Filter: req.Filter}
	raw, err := idx.req.Post(ctx, rest.PathDelete, payload, idx.name)
	if err != nil {
		return 0, fmt.Errorf("delete: %w", err)
	}
	deleted, err = codec.DecodeDeleted(raw)
	if err != nil {
		return 0, fmt.Errorf("delete: %w", err)
	}
	return deleted, nil
}

// Range returns one page of documents starting at req.Cursor ("" for the
// first page). Iteration is complete when the returned NextCursor is empty.
func (idx *Index) Range(ctx context.Context, req RangeRequest) (page Page, err error) {
	start := time.Now()
	defer func() { idx.obs.observe("range", idx.name, start, err) }()

	if err = idx.checkName(); err != nil {
		return Page{}, fmt.Errorf("range: %w", err)
	}
	limit := req.Limit
	if limit == 0 {
		limit = defaultRangeLimit
	}
	if limit < 0 {
		return Page{}, fmt.Errorf("range: %w", domain.NewClientError("limit must be positive, got %d", limit))
	}

	raw, err := idx.req.Post(ctx, rest.PathRange, codec.NewRangeRequest(req.Cursor, limit, req.Prefix), idx.name)
	if err != nil {
		return Page{}, fmt.Errorf("range: %w", err)
	}
	p, err := codec.DecodePage(raw)
	if err != nil {
		return Page{}, fmt.Errorf("range: %w", err)
	}
	return fromInternalPage(p), nil
}

// Reset deletes every document of the index.
func (idx *Index) Reset(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { idx.obs.observe("reset", idx.name, start, err) }()

	if err = idx.checkName(); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	if _, err = idx.req.Post(ctx, rest.PathReset, nil, idx.name); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	return nil
}

// Info returns the counters of this index taken from the database info.
// An index that does not exist yet reports zero counts.
func (idx *Index) Info(ctx context.Context) (res IndexInfo, err error) {
	start := time.Now()
	defer func() { idx.obs.observe("index_info", idx.name, start, err) }()

	raw, err := idx.req.Post(ctx, rest.PathDatabaseInfo, nil, "")
	if err != nil {
		return IndexInfo{}, fmt.Errorf("index info: %w", err)
	}
	d, err := codec.DecodeDatabaseInfo(raw)
	if err != nil {
		return IndexInfo{}, fmt.Errorf("index info: %w", err)
	}
	return fromInternalIndexInfo(d.Indexes[idx.name]), nil
}

func (idx *Index) checkName() error {
	if idx.name == "" {
		return domain.NewClientError("index name is required")
	}
	return nil
}
