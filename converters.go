package upsearch

import (
	domdoc "github.com/kailas-cloud/upsearch/internal/domain/document"
	"github.com/kailas-cloud/upsearch/internal/domain/info"
)

// toNormalizerInput swaps public Documents for their domain form so the
// normalizer sees a single canonical type. Other shapes pass through.
func toNormalizerInput(docs []any) []any {
	out := make([]any, len(docs))
	for i, d := range docs {
		switch v := d.(type) {
		case Document:
			out[i] = toInternalDocument(v)
		case *Document:
			if v == nil {
				out[i] = (*domdoc.Document)(nil)
				continue
			}
			out[i] = toInternalDocument(*v)
		default:
			out[i] = d
		}
	}
	return out
}

func toInternalDocument(d Document) domdoc.Document {
	return domdoc.Reconstruct(d.ID, d.Content, d.Metadata)
}

func fromInternalDocument(d domdoc.Document) Document {
	return Document{
		ID:       d.ID(),
		Content:  d.Content(),
		Metadata: d.Metadata(),
	}
}

func fromInternalScored(hits []domdoc.Scored) []ScoredDocument {
	out := make([]ScoredDocument, len(hits))
	for i := range hits {
		out[i] = ScoredDocument{
			ID:       hits[i].ID(),
			Score:    hits[i].Score(),
			Content:  hits[i].Content(),
			Metadata: hits[i].Metadata(),
		}
	}
	return out
}

func fromInternalFetched(docs []*domdoc.Document) []*Document {
	out := make([]*Document, len(docs))
	for i, d := range docs {
		if d == nil {
			continue
		}
		doc := fromInternalDocument(*d)
		out[i] = &doc
	}
	return out
}

func fromInternalPage(p domdoc.Page) Page {
	docs := make([]Document, len(p.Documents))
	for i, d := range p.Documents {
		docs[i] = fromInternalDocument(d)
	}
	return Page{NextCursor: p.NextCursor, Documents: docs}
}

func fromInternalIndexInfo(i info.Index) IndexInfo {
	return IndexInfo{
		DocumentCount:        i.DocumentCount,
		PendingDocumentCount: i.PendingDocumentCount,
	}
}

func fromInternalDatabaseInfo(d info.Database) DatabaseInfo {
	var indexes map[string]IndexInfo
	if d.Indexes != nil {
		indexes = make(map[string]IndexInfo, len(d.Indexes))
		for name, i := range d.Indexes {
			indexes[name] = fromInternalIndexInfo(i)
		}
	}
	return DatabaseInfo{
		DocumentCount:        d.DocumentCount,
		PendingDocumentCount: d.PendingDocumentCount,
		DiskSizeBytes:        d.DiskSizeBytes,
		Indexes:              indexes,
	}
}
