package upsearch

import (
	"testing"

	domdoc "github.com/kailas-cloud/upsearch/internal/domain/document"
	"github.com/kailas-cloud/upsearch/internal/domain/info"
)

func TestToNormalizerInput(t *testing.T) {
	in := []any{
		Document{ID: "a", Content: "x"},
		&Document{ID: "b", Content: "y", Metadata: map[string]any{"k": "v"}},
		(*Document)(nil),
		[]any{"c", "z"},
	}

	out := toNormalizerInput(in)
	if len(out) != 4 {
		t.Fatalf("len = %d, want 4", len(out))
	}
	if d, ok := out[0].(domdoc.Document); !ok || d.ID() != "a" {
		t.Errorf("out[0] = %#v", out[0])
	}
	if d, ok := out[1].(domdoc.Document); !ok || d.Metadata()["k"] != "v" {
		t.Errorf("out[1] = %#v", out[1])
	}
	if d, ok := out[2].(*domdoc.Document); !ok || d != nil {
		t.Errorf("out[2] = %#v, want typed nil", out[2])
	}
	if _, ok := out[3].([]any); !ok {
		t.Errorf("out[3] = %#v", out[3])
	}
}

func TestFromInternalScored(t *testing.T) {
	hits := []domdoc.Scored{
		domdoc.ReconstructScored(domdoc.Reconstruct("a", "x", nil), 0.5),
	}
	got := fromInternalScored(hits)
	if len(got) != 1 || got[0].ID != "a" || got[0].Score != 0.5 || got[0].Metadata != nil {
		t.Errorf("got %+v", got)
	}
}

func TestFromInternalDatabaseInfo_NilIndexes(t *testing.T) {
	got := fromInternalDatabaseInfo(info.Database{DocumentCount: 1})
	if got.Indexes != nil {
		t.Errorf("Indexes = %v, want nil", got.Indexes)
	}
	if got.DocumentCount != 1 {
		t.Errorf("DocumentCount = %d", got.DocumentCount)
	}
}
