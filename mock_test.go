package upsearch

import (
	"context"
	"encoding/json"
	"sync"
)

// --- requester mock ---

type postCall struct {
	path    string
	payload any
	index   string
}

type mockRequester struct {
	postFn func(ctx context.Context, path string, payload any, index string) (json.RawMessage, error)

	mu    sync.Mutex
	calls []postCall
}

func (m *mockRequester) Post(ctx context.Context, path string, payload any, index string) (json.RawMessage, error) {
	m.mu.Lock()
	m.calls = append(m.calls, postCall{path: path, payload: payload, index: index})
	m.mu.Unlock()
	return m.postFn(ctx, path, payload, index)
}

func (m *mockRequester) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func (m *mockRequester) lastCall() postCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[len(m.calls)-1]
}

// respond returns a mock that answers every call with the given raw result.
func respond(result string) *mockRequester {
	return &mockRequester{
		postFn: func(context.Context, string, any, string) (json.RawMessage, error) {
			return json.RawMessage(result), nil
		},
	}
}

func newTestClient(req requester) *Client {
	return newClient(req, newObserver(nil, nil))
}

// payloadJSON marshals a captured payload for comparison.
func payloadJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}
