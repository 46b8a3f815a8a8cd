package document

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/kailas-cloud/upsearch/internal/domain"
)

func TestNew_Valid(t *testing.T) {
	meta := map[string]any{"lang": "go"}

	doc, err := New("doc-1", "hello world", meta)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.ID() != "doc-1" {
		t.Errorf("ID() = %q", doc.ID())
	}
	if doc.Content() != "hello world" {
		t.Errorf("Content() = %v", doc.Content())
	}
	if doc.Metadata()["lang"] != "go" {
		t.Errorf("Metadata() = %v", doc.Metadata())
	}
}

func TestNew_EmptyID(t *testing.T) {
	_, err := New("", "content", nil)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestNew_NilVersusEmptyMetadata(t *testing.T) {
	doc, _ := New("doc-1", "content", nil)
	if doc.Metadata() != nil {
		t.Errorf("Metadata() = %v, want nil", doc.Metadata())
	}

	doc, _ = New("doc-1", "content", map[string]any{})
	if doc.Metadata() == nil {
		t.Error("empty metadata must stay non-nil")
	}
}

func TestNew_ClonesMetadata(t *testing.T) {
	meta := map[string]any{"k": "v"}
	doc, _ := New("doc-1", "content", meta)

	// Mutating the original map must not affect the document
	meta["k"] = "mutated"

	if doc.Metadata()["k"] != "v" {
		t.Error("metadata mutation leaked into document")
	}
}

func TestNormalize_EquivalentShapes(t *testing.T) {
	meta := map[string]any{"key": "value"}
	canonical, err := New("id-1", "data-1", meta)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	inputs := map[string]any{
		"sequence":      []any{"id-1", "data-1", map[string]any{"key": "value"}},
		"map content":   map[string]any{"id": "id-1", "content": "data-1", "metadata": map[string]any{"key": "value"}},
		"map data":      map[string]any{"id": "id-1", "data": "data-1", "fields": map[string]any{"key": "value"}},
		"canonical":     canonical,
		"canonical ptr": &canonical,
	}

	for name, in := range inputs {
		t.Run(name, func(t *testing.T) {
			got, err := Normalize(in)
			if err != nil {
				t.Fatalf("Normalize: %v", err)
			}
			if !reflect.DeepEqual(got, canonical) {
				t.Errorf("Normalize = %+v, want %+v", got, canonical)
			}
		})
	}
}

func TestNormalize_SequenceWithoutMetadata(t *testing.T) {
	doc, err := Normalize([]any{"id-0", "data-0"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Metadata() != nil {
		t.Errorf("Metadata() = %v, want nil", doc.Metadata())
	}
}

func TestNormalize_SequenceExtraElementsIgnored(t *testing.T) {
	doc, err := Normalize([]any{"id-0", "data-0", map[string]any{"k": 1}, "ignored", 42})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.ID() != "id-0" || doc.Metadata()["k"] != 1 {
		t.Errorf("doc = %+v", doc)
	}
}

func TestNormalize_StringSequence(t *testing.T) {
	doc, err := Normalize([]string{"id-0", "data-0", "ignored"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.ID() != "id-0" || doc.Content() != "data-0" || doc.Metadata() != nil {
		t.Errorf("doc = %+v", doc)
	}
}

func TestNormalize_StructuredContent(t *testing.T) {
	content := map[string]any{"title": "Go", "year": 2009}
	doc, err := Normalize(map[string]any{"id": "lang-go", "content": content})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(doc.Content(), content) {
		t.Errorf("Content() = %v", doc.Content())
	}
}

func TestNormalize_StringMetadata(t *testing.T) {
	doc, err := Normalize([]any{"id", "c", map[string]string{"a": "b"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Metadata()["a"] != "b" {
		t.Errorf("Metadata() = %v", doc.Metadata())
	}
}

func TestNormalize_Rejects(t *testing.T) {
	var nilDoc *Document
	tests := []struct {
		name    string
		in      any
		wantMsg string
	}{
		{"short sequence", []any{"id"}, "at least id and content"},
		{"empty sequence", []any{}, "at least id and content"},
		{"short string sequence", []string{"id"}, "at least id and content"},
		{"empty string id", []string{"", "c"}, "id is required"},
		{"map without id", map[string]any{"content": "c"}, `"id"`},
		{"map without content", map[string]any{"id": "x"}, `"content"`},
		{"bare string", "something else", "unsupported document type"},
		{"int", 42, "unsupported document type"},
		{"nil", nil, "unsupported document type"},
		{"nil pointer", nilDoc, "unsupported document type"},
		{"non-string id", []any{7, "c"}, "must be a string"},
		{"empty id", []any{"", "c"}, "id is required"},
		{"bad metadata", []any{"id", "c", "meta"}, "metadata must be a map"},
		{"empty canonical", Document{}, "id is required"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Normalize(tc.in)
			if err == nil {
				t.Fatal("expected error")
			}
			var ce *domain.ClientError
			if !errors.As(err, &ce) {
				t.Fatalf("err = %T, want *ClientError", err)
			}
			if !strings.Contains(err.Error(), tc.wantMsg) {
				t.Errorf("err = %q, want to contain %q", err.Error(), tc.wantMsg)
			}
		})
	}
}

func TestNormalizeAll_PreservesOrder(t *testing.T) {
	docs, err := NormalizeAll([]any{
		[]any{"a", "1"},
		map[string]any{"id": "b", "content": "2"},
		[]any{"c", "3"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ids := make([]string, len(docs))
	for i := range docs {
		ids[i] = docs[i].ID()
	}
	if !reflect.DeepEqual(ids, []string{"a", "b", "c"}) {
		t.Errorf("ids = %v", ids)
	}
}

func TestNormalizeAll_AllOrNothing(t *testing.T) {
	docs, err := NormalizeAll([]any{
		[]any{"a", "1"},
		[]any{"b"},
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if docs != nil {
		t.Errorf("docs = %v, want nil on failure", docs)
	}
	if !strings.Contains(err.Error(), "document 1") {
		t.Errorf("err = %q, want position", err.Error())
	}
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("err should wrap ErrInvalidInput")
	}
}

func TestPage_Done(t *testing.T) {
	if !(Page{}).Done() {
		t.Error("empty cursor must be done")
	}
	if (Page{NextCursor: "5"}).Done() {
		t.Error("non-empty cursor must not be done")
	}
}
