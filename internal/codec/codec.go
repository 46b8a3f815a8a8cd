package codec

import (
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/upsearch/internal/domain"
	domdoc "github.com/kailas-cloud/upsearch/internal/domain/document"
	"github.com/kailas-cloud/upsearch/internal/domain/info"
)

// EncodeUpsert converts canonical documents into the upsert payload.
func EncodeUpsert(docs []domdoc.Document) []UpsertItem {
	items := make([]UpsertItem, len(docs))
	for i := range docs {
		items[i] = UpsertItem{
			ID:       docs[i].ID(),
			Content:  docs[i].Content(),
			Metadata: docs[i].Metadata(),
		}
	}
	return items
}

// NewSearchRequest builds a search payload. Content and metadata are always requested.
func NewSearchRequest(query string, limit int, filter string, reranking bool) SearchRequest {
	return SearchRequest{
		Query:           query,
		TopK:            limit,
		Filter:          filter,
		Reranking:       reranking,
		IncludeData:     true,
		IncludeMetadata: true,
	}
}

// NewFetchRequest builds a fetch payload from ids or a prefix.
func NewFetchRequest(ids []string, prefix *string) FetchRequest {
	return FetchRequest{IDs: ids, Prefix: prefix, IncludeData: true, IncludeMetadata: true}
}

// NewRangeRequest builds a range payload.
func NewRangeRequest(cursor string, limit int, prefix *string) RangeRequest {
	return RangeRequest{
		Cursor:          cursor,
		Limit:           limit,
		Prefix:          prefix,
		IncludeData:     true,
		IncludeMetadata: true,
	}
}

// DecodeScored decodes a search result.
func DecodeScored(raw json.RawMessage) ([]domdoc.Scored, error) {
	var dtos []*documentDTO
	if err := unmarshal(raw, &dtos, "search result"); err != nil {
		return nil, err
	}
	out := make([]domdoc.Scored, 0, len(dtos))
	for i, d := range dtos {
		if d == nil {
			return nil, malformed("search result %d is null", i)
		}
		doc, err := toDocument(d)
		if err != nil {
			return nil, fmt.Errorf("search result %d: %w", i, err)
		}
		if d.Score == nil {
			return nil, malformed("search result %d has no score", i)
		}
		out = append(out, domdoc.ReconstructScored(doc, *d.Score))
	}
	return out, nil
}

// DecodeFetch decodes a fetch result. Null entries stay nil so the output is
// positionally aligned with the requested ids.
func DecodeFetch(raw json.RawMessage) ([]*domdoc.Document, error) {
	var dtos []*documentDTO
	if err := unmarshal(raw, &dtos, "fetch result"); err != nil {
		return nil, err
	}
	out := make([]*domdoc.Document, len(dtos))
	for i, d := range dtos {
		if d == nil {
			continue
		}
		doc, err := toDocument(d)
		if err != nil {
			return nil, fmt.Errorf("fetch result %d: %w", i, err)
		}
		out[i] = &doc
	}
	return out, nil
}

// DecodePage decodes a range result.
func DecodePage(raw json.RawMessage) (domdoc.Page, error) {
	var dto pageDTO
	if err := unmarshal(raw, &dto, "range result"); err != nil {
		return domdoc.Page{}, err
	}
	if dto.NextCursor == nil {
		return domdoc.Page{}, malformed("range result has no nextCursor")
	}
	items := dto.Vectors
	if items == nil {
		items = dto.Documents
	}
	docs := make([]domdoc.Document, 0, len(items))
	for i, d := range items {
		if d == nil {
			return domdoc.Page{}, malformed("range document %d is null", i)
		}
		doc, err := toDocument(d)
		if err != nil {
			return domdoc.Page{}, fmt.Errorf("range document %d: %w", i, err)
		}
		docs = append(docs, doc)
	}
	return domdoc.Page{NextCursor: *dto.NextCursor, Documents: docs}, nil
}

// DecodeDatabaseInfo decodes a database info result.
func DecodeDatabaseInfo(raw json.RawMessage) (info.Database, error) {
	var dto databaseInfoDTO
	if err := unmarshal(raw, &dto, "info result"); err != nil {
		return info.Database{}, err
	}
	var indexes map[string]info.Index
	if dto.Namespaces != nil {
		indexes = make(map[string]info.Index, len(dto.Namespaces))
		for name, ns := range dto.Namespaces {
			indexes[name] = toIndexInfo(ns)
		}
	}
	return info.Database{
		DocumentCount:        dto.VectorCount,
		PendingDocumentCount: dto.PendingVectorCount,
		DiskSizeBytes:        dto.IndexSize,
		Indexes:              indexes,
	}, nil
}

// DecodeDeleted decodes the number of removed documents.
func DecodeDeleted(raw json.RawMessage) (int, error) {
	var dto deletedDTO
	if err := unmarshal(raw, &dto, "delete result"); err != nil {
		return 0, err
	}
	if dto.Deleted == nil {
		return 0, malformed("delete result has no deleted count")
	}
	return *dto.Deleted, nil
}

// DecodeNames decodes a list of index names.
func DecodeNames(raw json.RawMessage) ([]string, error) {
	var names []string
	if err := unmarshal(raw, &names, "index list"); err != nil {
		return nil, err
	}
	return names, nil
}

func toDocument(d *documentDTO) (domdoc.Document, error) {
	if d.ID == nil {
		return domdoc.Document{}, malformed("document has no id")
	}
	content := d.Content
	if content == nil {
		content = d.Data
	}
	metadata := d.Metadata
	if metadata == nil {
		metadata = d.Fields
	}
	return domdoc.Reconstruct(*d.ID, content, metadata), nil
}

func toIndexInfo(dto indexInfoDTO) info.Index {
	return info.Index{
		DocumentCount:        dto.VectorCount,
		PendingDocumentCount: dto.PendingVectorCount,
	}
}

func unmarshal(raw json.RawMessage, v any, what string) error {
	if len(raw) == 0 {
		return malformed("empty %s", what)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return malformed("decode %s: %v", what, err)
	}
	return nil
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrMalformedResponse, fmt.Sprintf(format, args...))
}
