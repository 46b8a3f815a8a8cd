// Package upsearch is a Go client for a hosted full-text and semantic search
// service reached over HTTP.
//
// A database holds named indexes. Indexes are created by the service on first
// write; documents carry free-form content and optional metadata.
//
// # Blocking API
//
//	client, _ := upsearch.FromEnv()
//	movies := client.Index("movies")
//	_ = movies.Upsert(ctx,
//	    upsearch.Document{ID: "1", Content: map[string]any{"title": "Heat"}},
//	    []any{"2", map[string]any{"title": "Alien"}, map[string]any{"year": 1979}},
//	    map[string]any{"id": "3", "content": map[string]any{"title": "Ran"}},
//	)
//	hits, _ := movies.Search(ctx, "space horror", upsearch.WithLimit(5))
//
// # Concurrent API
//
// Async returns a view whose methods start the call on a new goroutine and
// return a Future:
//
//	f := client.Async().Index("movies").Search(ctx, "heist")
//	hits, err := f.Await(ctx)
//
// # Errors
//
// Input rejected locally is a *ClientError (ErrInvalidInput). An error
// payload from the service is a *ServiceError (ErrService) and is never
// retried. Transport failures are retried with a fixed interval and the last
// one is returned as is, so errors.As reaches e.g. *url.Error.
package upsearch
