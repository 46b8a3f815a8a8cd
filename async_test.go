package upsearch

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestFuture_Await(t *testing.T) {
	f := startFuture(context.Background(), func(context.Context) (int, error) {
		return 42, nil
	})

	got, err := f.Await(context.Background())
	if err != nil {
		t.Fatalf("Await: %v", err)
	}
	if got != 42 {
		t.Errorf("got %d, want 42", got)
	}
	select {
	case <-f.Done():
	default:
		t.Error("Done should be closed after Await returned the result")
	}
}

func TestFuture_AwaitContextDone(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	f := startFuture(context.Background(), func(context.Context) (int, error) {
		<-release
		return 1, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := f.Await(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("got %v, want DeadlineExceeded", err)
	}
}

func TestAsyncIndex_ConcurrentSearches(t *testing.T) {
	mock := respond(`[{"id":"a","score":1,"content":"x"}]`)
	idx := newTestClient(mock).Async().Index("movies")

	futures := make([]*Future[[]ScoredDocument], 10)
	for i := range futures {
		futures[i] = idx.Search(context.Background(), "q")
	}
	for i, f := range futures {
		hits, err := f.Await(context.Background())
		if err != nil {
			t.Fatalf("search %d: %v", i, err)
		}
		if len(hits) != 1 {
			t.Errorf("search %d: %d hits", i, len(hits))
		}
	}
	if n := mock.callCount(); n != 10 {
		t.Errorf("requests = %d, want 10", n)
	}
}

func TestAsyncIndex_SameErrors(t *testing.T) {
	mock := respond(`"Success"`)
	idx := newTestClient(mock).Async().Index("movies")

	_, err := idx.Upsert(context.Background(), []any{"only-id"}).Await(context.Background())
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("got %v, want ErrInvalidInput", err)
	}
	if mock.callCount() != 0 {
		t.Error("expected no request")
	}
}

func TestAsyncIndex_Operations(t *testing.T) {
	mock := &mockRequester{
		postFn: func(_ context.Context, path string, _ any, _ string) (json.RawMessage, error) {
			switch path {
			case "/fetch":
				return json.RawMessage(`[null]`), nil
			case "/delete":
				return json.RawMessage(`{"deleted":1}`), nil
			case "/range":
				return json.RawMessage(`{"nextCursor":"","vectors":[]}`), nil
			default:
				return json.RawMessage(`"Success"`), nil
			}
		},
	}
	ctx := context.Background()
	idx := newTestClient(mock).Async().Index("movies")

	docs, err := idx.FetchIDs(ctx, "x").Await(ctx)
	if err != nil || len(docs) != 1 || docs[0] != nil {
		t.Errorf("FetchIDs = %v, %v", docs, err)
	}
	n, err := idx.Delete(ctx, DeleteRequest{IDs: []string{"x"}}).Await(ctx)
	if err != nil || n != 1 {
		t.Errorf("Delete = %d, %v", n, err)
	}
	page, err := idx.Range(ctx, RangeRequest{}).Await(ctx)
	if err != nil || !page.Done() {
		t.Errorf("Range = %+v, %v", page, err)
	}
	if _, err := idx.Reset(ctx).Await(ctx); err != nil {
		t.Errorf("Reset: %v", err)
	}
	if idx.Name() != "movies" || idx.Sync().Name() != "movies" {
		t.Error("unexpected name")
	}
}

func TestAsyncClient_Operations(t *testing.T) {
	mock := &mockRequester{
		postFn: func(_ context.Context, path string, _ any, _ string) (json.RawMessage, error) {
			switch path {
			case "/list-indexes":
				return json.RawMessage(`["a"]`), nil
			case "/database-info":
				return json.RawMessage(`{"vectorCount":1,"pendingVectorCount":0,"indexSize":1,"namespaces":{}}`), nil
			default:
				return json.RawMessage(`"Success"`), nil
			}
		},
	}
	ctx := context.Background()
	c := newTestClient(mock).Async()

	names, err := c.ListIndexes(ctx).Await(ctx)
	if err != nil || len(names) != 1 {
		t.Errorf("ListIndexes = %v, %v", names, err)
	}
	info, err := c.Info(ctx).Await(ctx)
	if err != nil || info.DocumentCount != 1 {
		t.Errorf("Info = %+v, %v", info, err)
	}
	if _, err := c.DeleteIndex(ctx, "a").Await(ctx); err != nil {
		t.Errorf("DeleteIndex: %v", err)
	}
	if _, err := c.DeleteIndexes(ctx, "a", "b").Await(ctx); err != nil {
		t.Errorf("DeleteIndexes: %v", err)
	}
	if c.Sync() == nil {
		t.Error("Sync returned nil")
	}
}
