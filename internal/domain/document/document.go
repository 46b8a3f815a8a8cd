package document

import (
	"maps"

	"github.com/kailas-cloud/upsearch/internal/domain"
)

// Document is the canonical {id, content, metadata} record used on the wire.
type Document struct {
	id       string
	content  any
	metadata map[string]any
}

// New validates and creates a Document.
// ID must be non-empty. A nil metadata map means metadata was never set.
func New(id string, content any, metadata map[string]any) (Document, error) {
	if id == "" {
		return Document{}, domain.NewClientError("document id is required")
	}
	return Document{id: id, content: content, metadata: cloneMetadata(metadata)}, nil
}

// Reconstruct creates a Document without validation (response hydration).
func Reconstruct(id string, content any, metadata map[string]any) Document {
	return Document{id: id, content: content, metadata: metadata}
}

// ID returns the document identifier.
func (d *Document) ID() string { return d.id }

// Content returns the document content.
func (d *Document) Content() any { return d.content }

// Metadata returns the metadata map, nil if never set.
func (d *Document) Metadata() map[string]any { return d.metadata }

// Scored is a document with its relevance score.
type Scored struct {
	Document
	score float64
}

// ReconstructScored creates a scored document from response data.
func ReconstructScored(d Document, score float64) Scored {
	return Scored{Document: d, score: score}
}

// Score returns the service-assigned relevance score.
func (s *Scored) Score() float64 { return s.score }

// Page is one step of a cursor range.
type Page struct {
	NextCursor string
	Documents  []Document
}

// Done reports whether the cursor chain has ended.
func (p Page) Done() bool { return p.NextCursor == "" }

func cloneMetadata(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	return maps.Clone(m)
}
