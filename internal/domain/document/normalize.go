package document

import (
	"errors"
	"fmt"

	"github.com/kailas-cloud/upsearch/internal/domain"
)

// Keys accepted in keyed (map) input. The data/fields spellings are aliases
// used by newer service generations.
const (
	KeyID       = "id"
	KeyContent  = "content"
	KeyData     = "data"
	KeyMetadata = "metadata"
	KeyFields   = "fields"
)

// Normalize converts one caller-supplied input into a canonical Document.
//
// Accepted shapes:
//   - Document or *Document: returned as is
//   - []any{id, content[, metadata]}: extra trailing elements are ignored
//   - []string{id, content}: string content, no metadata
//   - map[string]any with "id", "content" (or "data") and optional "metadata" (or "fields")
//
// Anything else is rejected with a ClientError.
func Normalize(in any) (Document, error) {
	switch v := in.(type) {
	case Document:
		return fromCanonical(v)
	case *Document:
		if v == nil {
			return Document{}, domain.NewClientError("unsupported document type: nil")
		}
		return fromCanonical(*v)
	case []any:
		return fromSequence(v)
	case []string:
		if len(v) > 2 {
			v = v[:2]
		}
		seq := make([]any, len(v))
		for i, s := range v {
			seq[i] = s
		}
		return fromSequence(seq)
	case map[string]any:
		return fromMap(v)
	default:
		return Document{}, domain.NewClientError("unsupported document type: %T", in)
	}
}

// NormalizeAll normalizes every input, preserving order.
// A single bad element fails the whole batch.
func NormalizeAll(in []any) ([]Document, error) {
	out := make([]Document, len(in))
	for i, v := range in {
		d, err := Normalize(v)
		if err != nil {
			var ce *domain.ClientError
			if errors.As(err, &ce) {
				return nil, domain.NewClientError("document %d: %s", i, ce.Message)
			}
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		out[i] = d
	}
	return out, nil
}

func fromCanonical(d Document) (Document, error) {
	if d.id == "" {
		return Document{}, domain.NewClientError("document id is required")
	}
	return d, nil
}

func fromSequence(seq []any) (Document, error) {
	if len(seq) < 2 {
		return Document{}, domain.NewClientError("sequence must contain at least id and content")
	}
	id, err := asID(seq[0])
	if err != nil {
		return Document{}, err
	}
	var metadata map[string]any
	if len(seq) > 2 {
		metadata, err = asMetadata(seq[2])
		if err != nil {
			return Document{}, err
		}
	}
	return New(id, seq[1], metadata)
}

func fromMap(m map[string]any) (Document, error) {
	rawID, ok := m[KeyID]
	if !ok {
		return Document{}, domain.NewClientError("document is missing required key %q", KeyID)
	}
	id, err := asID(rawID)
	if err != nil {
		return Document{}, err
	}

	content, ok := m[KeyContent]
	if !ok {
		content, ok = m[KeyData]
	}
	if !ok {
		return Document{}, domain.NewClientError("document is missing required key %q", KeyContent)
	}

	rawMeta, ok := m[KeyMetadata]
	if !ok {
		rawMeta = m[KeyFields]
	}
	metadata, err := asMetadata(rawMeta)
	if err != nil {
		return Document{}, err
	}
	return New(id, content, metadata)
}

func asID(v any) (string, error) {
	id, ok := v.(string)
	if !ok {
		return "", domain.NewClientError("document id must be a string, got %T", v)
	}
	if id == "" {
		return "", domain.NewClientError("document id is required")
	}
	return id, nil
}

func asMetadata(v any) (map[string]any, error) {
	switch m := v.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return m, nil
	case map[string]string:
		out := make(map[string]any, len(m))
		for k, s := range m {
			out[k] = s
		}
		return out, nil
	default:
		return nil, domain.NewClientError("document metadata must be a map, got %T", v)
	}
}
