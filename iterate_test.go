package upsearch

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/kailas-cloud/upsearch/internal/codec"
)

// pagedRequester serves pages keyed by cursor.
func pagedRequester(t *testing.T, pages map[string]string) *mockRequester {
	t.Helper()
	return &mockRequester{
		postFn: func(_ context.Context, _ string, payload any, _ string) (json.RawMessage, error) {
			req, ok := payload.(codec.RangeRequest)
			if !ok {
				t.Fatalf("payload type %T", payload)
			}
			page, ok := pages[req.Cursor]
			if !ok {
				return nil, &ServiceError{Message: "unknown cursor " + req.Cursor}
			}
			return json.RawMessage(page), nil
		},
	}
}

func TestIndex_All(t *testing.T) {
	mock := pagedRequester(t, map[string]string{
		"":  `{"nextCursor":"2","vectors":[{"id":"a","content":1},{"id":"b","content":2}]}`,
		"2": `{"nextCursor":"4","vectors":[{"id":"c","content":3},{"id":"d","content":4}]}`,
		"4": `{"nextCursor":"","vectors":[{"id":"e","content":5}]}`,
	})

	var ids []string
	for doc, err := range newTestClient(mock).Index("movies").All(context.Background(), RangeRequest{Limit: 2}) {
		if err != nil {
			t.Fatalf("All: %v", err)
		}
		ids = append(ids, doc.ID)
	}

	if len(ids) != 5 || ids[0] != "a" || ids[4] != "e" {
		t.Errorf("ids = %v", ids)
	}
	if n := mock.callCount(); n != 3 {
		t.Errorf("requests = %d, want 3", n)
	}
}

func TestIndex_All_EmptyIndex(t *testing.T) {
	mock := pagedRequester(t, map[string]string{
		"": `{"nextCursor":"","vectors":[]}`,
	})

	count := 0
	for _, err := range newTestClient(mock).Index("movies").All(context.Background(), RangeRequest{}) {
		if err != nil {
			t.Fatalf("All: %v", err)
		}
		count++
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}
}

func TestIndex_All_StopsOnError(t *testing.T) {
	mock := pagedRequester(t, map[string]string{
		"": `{"nextCursor":"9","vectors":[{"id":"a","content":1}]}`,
	})

	var gotErr error
	count := 0
	for _, err := range newTestClient(mock).Index("movies").All(context.Background(), RangeRequest{}) {
		if err != nil {
			gotErr = err
			continue
		}
		count++
	}
	var se *ServiceError
	if !errors.As(gotErr, &se) {
		t.Fatalf("expected *ServiceError, got %v", gotErr)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestIndex_All_EarlyBreak(t *testing.T) {
	mock := pagedRequester(t, map[string]string{
		"":  `{"nextCursor":"2","vectors":[{"id":"a","content":1},{"id":"b","content":2}]}`,
		"2": `{"nextCursor":"","vectors":[{"id":"c","content":3}]}`,
	})

	for doc, err := range newTestClient(mock).Index("movies").All(context.Background(), RangeRequest{Limit: 2}) {
		if err != nil {
			t.Fatalf("All: %v", err)
		}
		if doc.ID == "a" {
			break
		}
	}
	if n := mock.callCount(); n != 1 {
		t.Errorf("requests = %d, want 1", n)
	}
}
