package knowledge

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIndex_Search_RanksGSTRateFirst(t *testing.T) {
	idx := NewIndex()

	hits := idx.Search("What is the current GST rate?", 5)
	if len(hits) == 0 {
		t.Fatal("expected hits for GST rate query, got none")
	}
	if hits[0].Entry.Locator != "kb:gst/rate" {
		t.Errorf("top hit = %s, want kb:gst/rate", hits[0].Entry.Locator)
	}
	if hits[0].Entry.Confidence != 0.95 {
		t.Errorf("top hit confidence = %v, want 0.95", hits[0].Entry.Confidence)
	}
}

func TestIndex_Search_TopKCapsResults(t *testing.T) {
	idx := NewIndex()

	hits := idx.Search("tax return due dates", 2)
	if len(hits) > 2 {
		t.Errorf("got %d hits, want at most 2", len(hits))
	}

	// Non-positive topK falls back to the default cap rather than
	// returning everything.
	hits = idx.Search("tax return due dates", 0)
	if len(hits) > 5 {
		t.Errorf("got %d hits with topK=0, want at most 5", len(hits))
	}
}

func TestIndex_Search_NoMatchReturnsEmpty(t *testing.T) {
	idx := NewIndex()

	hits := idx.Search("quantum chromodynamics lattice simulation", 5)
	if len(hits) != 0 {
		t.Errorf("got %d hits for unrelated query, want 0", len(hits))
	}
}

func TestIndex_Search_Deterministic(t *testing.T) {
	idx := NewIndex()

	first := idx.Search("when are provisional tax payments due", 5)
	for i := 0; i < 20; i++ {
		again := idx.Search("when are provisional tax payments due", 5)
		if len(again) != len(first) {
			t.Fatalf("iteration %d: got %d hits, want %d", i, len(again), len(first))
		}
		for j := range again {
			if again[j].Entry.Locator != first[j].Entry.Locator {
				t.Fatalf("iteration %d: hit %d = %s, want %s",
					i, j, again[j].Entry.Locator, first[j].Entry.Locator)
			}
		}
	}
}

func TestIndex_LoadYAML_MergesEntries(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "extra.yaml")
	data := `entries:
  - topic: "FBT rate"
    content: "Fringe benefit tax applies to non-cash benefits provided to employees."
    document_type: "tax_rule"
    source_name: "Inland Revenue"
    locator: "kb:fbt/rate"
    keywords: ["fbt", "fringe", "benefit"]
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	idx := NewIndex()
	before := idx.Len()
	if err := idx.LoadYAML(path); err != nil {
		t.Fatalf("LoadYAML failed: %v", err)
	}
	if idx.Len() != before+1 {
		t.Errorf("Len() = %d, want %d", idx.Len(), before+1)
	}

	hits := idx.Search("fringe benefit tax", 3)
	if len(hits) == 0 {
		t.Fatal("expected hits for loaded entry, got none")
	}
	if hits[0].Entry.Locator != "kb:fbt/rate" {
		t.Errorf("top hit = %s, want kb:fbt/rate", hits[0].Entry.Locator)
	}
	// Defaults applied during normalization.
	if hits[0].Entry.Confidence != 0.8 {
		t.Errorf("default confidence = %v, want 0.8", hits[0].Entry.Confidence)
	}
	if hits[0].Entry.Authority != "primary" {
		t.Errorf("default authority = %s, want primary", hits[0].Entry.Authority)
	}
}

func TestIndex_LoadYAML_RejectsIncompleteEntry(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	data := `entries:
  - topic: "Missing content"
    locator: "kb:bad/entry"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	idx := NewIndex()
	if err := idx.LoadYAML(path); err == nil {
		t.Error("expected error for entry without content, got nil")
	}
}

func TestIndex_LoadYAML_EmptyPathIsNoop(t *testing.T) {
	idx := NewIndex()
	before := idx.Len()
	if err := idx.LoadYAML(""); err != nil {
		t.Fatalf("LoadYAML(\"\") failed: %v", err)
	}
	if idx.Len() != before {
		t.Errorf("Len() changed from %d to %d on empty path", before, idx.Len())
	}
}

func TestIndex_LoadYAML_MissingFile(t *testing.T) {
	idx := NewIndex()
	if err := idx.LoadYAML(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file, got nil")
	}
}
