package history

import (
	"os"
	"path/filepath"
	"testing"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "history.json"))
}

func TestMissingFileReadsEmpty(t *testing.T) {
	s := testStore(t)
	entries, err := s.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty list, got %d entries", len(entries))
	}
}

func TestUpsertAppendsAndReplaces(t *testing.T) {
	s := testStore(t)

	if err := s.Upsert(Entry{DataID: "99", EpisodeID: "11", EpisodeNum: "11", Title: "Frieren"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := s.Upsert(Entry{DataID: "42", EpisodeID: "1", EpisodeNum: "1", Title: "Mushishi"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	// Same title again: replaced in place, not duplicated.
	if err := s.Upsert(Entry{DataID: "99", EpisodeID: "12", EpisodeNum: "12", Title: "Frieren"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	entries, err := s.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].DataID != "99" || entries[0].EpisodeID != "12" {
		t.Fatalf("entry not replaced in place: %+v", entries[0])
	}
	if entries[0].UpdatedAt == 0 {
		t.Fatalf("upsert must stamp UpdatedAt")
	}
}

func TestUpsertRequiresDataID(t *testing.T) {
	s := testStore(t)
	if err := s.Upsert(Entry{Title: "nameless"}); err == nil {
		t.Fatalf("expected error for missing data_id")
	}
}

func TestRemove(t *testing.T) {
	s := testStore(t)
	if err := s.Upsert(Entry{DataID: "99", EpisodeID: "12"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := s.Remove("99"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := s.Remove("99"); err != nil {
		t.Fatalf("remove absent should be a no-op: %v", err)
	}
	entries, err := s.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty list after remove, got %d", len(entries))
	}
}

func TestCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "history.json")
	s := NewStore(path)
	if err := s.Upsert(Entry{DataID: "99"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("history file not created: %v", err)
	}
}

func TestCorruptFileSurfacesError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("seed corrupt file: %v", err)
	}
	s := NewStore(path)
	if _, err := s.List(); err == nil {
		t.Fatalf("expected parse error")
	}
}
