// Package testutil provides notebook-domain test fixtures: an in-memory
// store with its schema initialized, and builders for the authors,
// notebooks, and entries a test needs to seed before it can exercise
// the store, entropy, or propagation packages.
package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/coherentnotebook/entropy/internal/notebook"
	"github.com/coherentnotebook/entropy/internal/store"
)

// NewTestStore opens an in-memory store with its schema initialized,
// closing it automatically when the test completes.
func NewTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	if err := s.InitSchema(); err != nil {
		t.Fatalf("init test store schema: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	return s
}

// NewAuthorID derives a deterministic AuthorID from seed, so tests can
// refer to "author 1" and "author 2" without hand-writing 32 bytes.
func NewAuthorID(seed byte) notebook.AuthorID {
	var id notebook.AuthorID
	for i := range id {
		id[i] = seed
	}
	return id
}

// MustInsertAuthor registers an author in s, failing the test on error.
func MustInsertAuthor(t *testing.T, s *store.Store, id notebook.AuthorID) {
	t.Helper()

	if err := s.CreateAuthor(context.Background(), id, nil); err != nil {
		t.Fatalf("insert author: %v", err)
	}
}

// MustInsertNotebook registers a notebook owned by ownerID in s, failing
// the test on error.
func MustInsertNotebook(t *testing.T, s *store.Store, id notebook.NotebookID, name string, ownerID notebook.AuthorID) {
	t.Helper()

	if err := s.CreateNotebook(context.Background(), id, name, ownerID); err != nil {
		t.Fatalf("insert notebook: %v", err)
	}
}

// NewTestEntry builds a minimal text entry with a random ID, the given
// author and content, and a zero-value CausalPosition/IntegrationCost
// ready for a caller to fill in before insertion.
func NewTestEntry(author notebook.AuthorID, content string) *notebook.Entry {
	entry := notebook.NewEntry(uuid.New(), author, []byte(content), "text/plain")
	return &entry
}

// MustInsertEntry persists entry into notebookID via s, failing the test
// on error.
func MustInsertEntry(t *testing.T, s *store.Store, notebookID notebook.NotebookID, entry *notebook.Entry) {
	t.Helper()

	if err := s.InsertEntry(context.Background(), notebookID, entry); err != nil {
		t.Fatalf("insert entry: %v", err)
	}
}

// SeedNotebook creates an author and a notebook owned by that author in
// one call, returning their IDs for convenience in table-driven tests.
func SeedNotebook(t *testing.T, s *store.Store, name string) (notebook.NotebookID, notebook.AuthorID) {
	t.Helper()

	author := NewAuthorID(1)
	MustInsertAuthor(t, s, author)

	id := uuid.New()
	MustInsertNotebook(t, s, id, name, author)

	return id, author
}
