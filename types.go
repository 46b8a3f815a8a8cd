package upsearch

// Document is a canonical document.
// A nil Metadata means metadata was never set and is distinct from an empty map.
type Document struct {
	ID       string         `json:"id"`
	Content  any            `json:"content"`
	Metadata map[string]any `json:"metadata"`
}

// ScoredDocument is a search hit.
type ScoredDocument struct {
	ID       string         `json:"id"`
	Score    float64        `json:"score"`
	Content  any            `json:"content,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Page is one range step. An empty NextCursor means iteration is complete.
type Page struct {
	NextCursor string     `json:"nextCursor"`
	Documents  []Document `json:"documents"`
}

// Done reports whether this is the last page.
func (p Page) Done() bool { return p.NextCursor == "" }

// IndexInfo holds per-index counters. Counts are eventually consistent.
type IndexInfo struct {
	DocumentCount        int `json:"documentCount"`
	PendingDocumentCount int `json:"pendingDocumentCount"`
}

// DatabaseInfo holds database-wide counters and a per-index breakdown.
type DatabaseInfo struct {
	DocumentCount        int                  `json:"documentCount"`
	PendingDocumentCount int                  `json:"pendingDocumentCount"`
	DiskSizeBytes        int64                `json:"diskSizeBytes"`
	Indexes              map[string]IndexInfo `json:"indexes"`
}

// Settled reports whether every written document is searchable.
func (d DatabaseInfo) Settled() bool { return d.PendingDocumentCount == 0 }

// FetchRequest selects documents by ids or by id prefix.
// A nil Prefix is omitted from the request.
type FetchRequest struct {
	IDs    []string
	Prefix *string
}

// DeleteRequest selects documents to remove by ids, id prefix or filter.
type DeleteRequest struct {
	IDs    []string
	Prefix *string
	Filter *string
}

// RangeRequest is a cursor pagination step. A zero Limit means 1.
type RangeRequest struct {
	Cursor string
	Limit  int
	Prefix *string
}

// Ptr returns a pointer to v. Handy for the optional request fields.
func Ptr[T any](v T) *T { return &v }
