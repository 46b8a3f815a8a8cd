// Package codec maps request parameters to wire payloads and raw JSON results
// back to domain records.
package codec

// UpsertItem is one element of the upsert payload array.
// Metadata is sent as null when never set.
type UpsertItem struct {
	ID       string         `json:"id"`
	Content  any            `json:"content"`
	Metadata map[string]any `json:"metadata"`
}

// SearchRequest is the payload of /search/{index}.
type SearchRequest struct {
	Query           string `json:"query"`
	TopK            int    `json:"topK"`
	Filter          string `json:"filter"`
	Reranking       bool   `json:"reranking"`
	IncludeData     bool   `json:"includeData"`
	IncludeMetadata bool   `json:"includeMetadata"`
}

// FetchRequest is the payload of /fetch/{index}.
type FetchRequest struct {
	IDs             []string `json:"ids,omitempty"`
	Prefix          *string  `json:"prefix,omitempty"`
	IncludeData     bool     `json:"includeData"`
	IncludeMetadata bool     `json:"includeMetadata"`
}

// DeleteRequest is the payload of /delete/{index}.
type DeleteRequest struct {
	IDs    []string `json:"ids,omitempty"`
	Prefix *string  `json:"prefix,omitempty"`
	Filter *string  `json:"filter,omitempty"`
}

// RangeRequest is the payload of /range/{index}.
type RangeRequest struct {
	Cursor          string  `json:"cursor"`
	Limit           int     `json:"limit"`
	Prefix          *string `json:"prefix,omitempty"`
	IncludeData     bool    `json:"includeData"`
	IncludeMetadata bool    `json:"includeMetadata"`
}

// documentDTO mirrors a document as returned by fetch, range and search.
// Content/data and metadata/fields are alternative spellings across service generations.
type documentDTO struct {
	ID       *string        `json:"id"`
	Score    *float64       `json:"score"`
	Content  any            `json:"content"`
	Data     any            `json:"data"`
	Metadata map[string]any `json:"metadata"`
	Fields   map[string]any `json:"fields"`
}

type pageDTO struct {
	NextCursor *string        `json:"nextCursor"`
	Vectors    []*documentDTO `json:"vectors"`
	Documents  []*documentDTO `json:"documents"`
}

type indexInfoDTO struct {
	VectorCount        int `json:"vectorCount"`
	PendingVectorCount int `json:"pendingVectorCount"`
}

type databaseInfoDTO struct {
	VectorCount        int                     `json:"vectorCount"`
	PendingVectorCount int                     `json:"pendingVectorCount"`
	IndexSize          int64                   `json:"indexSize"`
	Namespaces         map[string]indexInfoDTO `json:"namespaces"`
}

type deletedDTO struct {
	Deleted *int `json:"deleted"`
}
