package upsearch

import "context"

// Future is the pending result of an operation started by AsyncClient or
// AsyncIndex. It completes exactly once.
type Future[T any] struct {
	done chan struct{}
	val  T
	err  error
}

func startFuture[T any](ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		f.val, f.err = fn(ctx)
	}()
	return f
}

// Done is closed when the operation has completed.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Await blocks until the operation completes or ctx is done. Giving up on the
// wait does not cancel the operation; cancel the context it was started with
// for that.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// noResult adapts an error-only call to a Future.
func noResult(fn func(context.Context) error) func(context.Context) (struct{}, error) {
	return func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	}
}

// AsyncClient is the concurrency-enabled view of a Client. Every method
// starts the operation on its own goroutine and returns immediately.
// Semantics and errors are those of the blocking Client.
type AsyncClient struct {
	c *Client
}

// Sync returns the blocking client this view was derived from.
func (a *AsyncClient) Sync() *Client { return a.c }

// Index returns an async handle for the named index.
func (a *AsyncClient) Index(name string) *AsyncIndex {
	return &AsyncIndex{idx: a.c.Index(name)}
}

// ListIndexes starts Client.ListIndexes.
func (a *AsyncClient) ListIndexes(ctx context.Context) *Future[[]string] {
	return startFuture(ctx, a.c.ListIndexes)
}

// DeleteIndex starts Client.DeleteIndex.
func (a *AsyncClient) DeleteIndex(ctx context.Context, name string) *Future[struct{}] {
	return startFuture(ctx, noResult(func(ctx context.Context) error {
		return a.c.DeleteIndex(ctx, name)
	}))
}

// DeleteIndexes starts Client.DeleteIndexes.
func (a *AsyncClient) DeleteIndexes(ctx context.Context, names ...string) *Future[struct{}] {
	return startFuture(ctx, noResult(func(ctx context.Context) error {
		return a.c.DeleteIndexes(ctx, names...)
	}))
}

// Info starts Client.Info.
func (a *AsyncClient) Info(ctx context.Context) *Future[DatabaseInfo] {
	return startFuture(ctx, a.c.Info)
}

// AsyncIndex is the concurrency-enabled view of an Index.
type AsyncIndex struct {
	idx *Index
}

// Name returns the index name.
func (a *AsyncIndex) Name() string { return a.idx.Name() }

// Sync returns the blocking handle for the same index.
func (a *AsyncIndex) Sync() *Index { return a.idx }

// Upsert starts Index.Upsert.
func (a *AsyncIndex) Upsert(ctx context.Context, docs ...any) *Future[struct{}] {
	return startFuture(ctx, noResult(func(ctx context.Context) error {
		return a.idx.Upsert(ctx, docs...)
	}))
}

// Search starts Index.Search.
func (a *AsyncIndex) Search(ctx context.Context, query string, opts ...SearchOption) *Future[[]ScoredDocument] {
	return startFuture(ctx, func(ctx context.Context) ([]ScoredDocument, error) {
		return a.idx.Search(ctx, query, opts...)
	})
}

// Fetch starts Index.Fetch.
func (a *AsyncIndex) Fetch(ctx context.Context, req FetchRequest) *Future[[]*Document] {
	return startFuture(ctx, func(ctx context.Context) ([]*Document, error) {
		return a.idx.Fetch(ctx, req)
	})
}

// FetchIDs starts Index.FetchIDs.
func (a *AsyncIndex) FetchIDs(ctx context.Context, ids ...string) *Future[[]*Document] {
	return a.Fetch(ctx, FetchRequest{IDs: ids})
}

// FetchPrefix starts Index.FetchPrefix.
func (a *AsyncIndex) FetchPrefix(ctx context.Context, prefix string) *Future[[]*Document] {
	return a.Fetch(ctx, FetchRequest{Prefix: &prefix})
}

// Delete starts Index.Delete.
func (a *AsyncIndex) Delete(ctx context.Context, req DeleteRequest) *Future[int] {
	return startFuture(ctx, func(ctx context.Context) (int, error) {
		return a.idx.Delete(ctx, req)
	})
}

// Range starts Index.Range.
func (a *AsyncIndex) Range(ctx context.Context, req RangeRequest) *Future[Page] {
	return startFuture(ctx, func(ctx context.Context) (Page, error) {
		return a.idx.Range(ctx, req)
	})
}

// Reset starts Index.Reset.
func (a *AsyncIndex) Reset(ctx context.Context) *Future[struct{}] {
	return startFuture(ctx, noResult(a.idx.Reset))
}

// Info starts Index.Info.
func (a *AsyncIndex) Info(ctx context.Context) *Future[IndexInfo] {
	return startFuture(ctx, a.idx.Info)
}
