package upsearch

import (
	"context"
	"iter"
)

// All ranges over every document of the index, following cursors until the
// service reports the end. req.Cursor is the starting point and req.Limit the
// page size. Iteration stops at the first error, which is yielded once.
//
//	for doc, err := range idx.All(ctx, upsearch.RangeRequest{Limit: 100}) {
//	    if err != nil {
//	        return err
//	    }
//	    ...
//	}
func (idx *Index) All(ctx context.Context, req RangeRequest) iter.Seq2[Document, error] {
	return func(yield func(Document, error) bool) {
		cursor := req.Cursor
		for {
			page, err := idx.Range(ctx, RangeRequest{Cursor: cursor, Limit: req.Limit, Prefix: req.Prefix})
			if err != nil {
				yield(Document{}, err)
				return
			}
			for _, d := range page.Documents {
				if !yield(d, nil) {
					return
				}
			}
			if page.Done() {
				return
			}
			cursor = page.NextCursor
		}
	}
}
