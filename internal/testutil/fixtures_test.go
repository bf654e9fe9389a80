package testutil

import (
	"testing"
)

func TestSeedNotebookAndInsertEntry(t *testing.T) {
	s := NewTestStore(t)

	notebookID, author := SeedNotebook(t, s, "scratch")

	entry := NewTestEntry(author, "hello world")
	MustInsertEntry(t, s, notebookID, entry)

	entries, found, err := s.HydrateNotebook(notebookID)
	if err != nil {
		t.Fatalf("hydrate notebook: %v", err)
	}
	if !found {
		t.Fatal("expected notebook to be registered")
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if string(entries[0].Content) != "hello world" {
		t.Errorf("expected content %q, got %q", "hello world", entries[0].Content)
	}
}

func TestNewAuthorIDDeterministic(t *testing.T) {
	a := NewAuthorID(7)
	b := NewAuthorID(7)
	if a != b {
		t.Error("expected NewAuthorID to be deterministic for the same seed")
	}

	c := NewAuthorID(9)
	if a == c {
		t.Error("expected different seeds to produce different author IDs")
	}
}
