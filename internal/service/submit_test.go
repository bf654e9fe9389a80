package service

import (
	"context"
	"testing"

	"github.com/coherentnotebook/entropy/internal/causal"
	"github.com/coherentnotebook/entropy/internal/clustering"
	"github.com/coherentnotebook/entropy/internal/entropy"
	"github.com/coherentnotebook/entropy/internal/notebook"
	"github.com/coherentnotebook/entropy/internal/propagation"
	"github.com/coherentnotebook/entropy/internal/testutil"
)

func newTestNotebookService(t *testing.T) (*Notebook, notebook.NotebookID, notebook.AuthorID) {
	t.Helper()

	s := testutil.NewTestStore(t)
	notebookID, authorID := testutil.SeedNotebook(t, s, "test notebook")

	engine := entropy.New(clustering.DefaultConfig(), s)
	position := causal.NewService(s.DB())
	queue := propagation.NewQueue()

	return NewNotebook(engine, position, s, queue), notebookID, authorID
}

func TestSubmitEntryAssignsPositionAndCost(t *testing.T) {
	svc, notebookID, authorID := newTestNotebookService(t)

	entry := notebook.NewEntry(NewEntryID(), authorID, []byte("first entry in the notebook."), "text/plain")

	stamped, err := svc.SubmitEntry(context.Background(), notebookID, entry)
	if err != nil {
		t.Fatalf("submit entry: %v", err)
	}

	if stamped.CausalPosition.Sequence != 1 {
		t.Fatalf("expected sequence 1, got %d", stamped.CausalPosition.Sequence)
	}
	if stamped.IntegrationCost.CatalogShift != 0.5 {
		t.Fatalf("expected first-entry catalog_shift 0.5, got %f", stamped.IntegrationCost.CatalogShift)
	}
	if !stamped.IntegrationCost.Orphan {
		t.Fatalf("expected first entry with no references to be orphan")
	}
}

func TestSubmitEntryEnqueuesPropagationJob(t *testing.T) {
	svc, notebookID, authorID := newTestNotebookService(t)

	first, err := svc.SubmitEntry(context.Background(), notebookID,
		notebook.NewEntry(NewEntryID(), authorID, []byte("first entry about databases."), "text/plain"))
	if err != nil {
		t.Fatalf("submit first entry: %v", err)
	}

	second := notebook.NewEntry(NewEntryID(), authorID, []byte("second entry about databases, referencing the first."), "text/plain")
	second.References = []notebook.EntryID{first.ID}

	if _, err := svc.SubmitEntry(context.Background(), notebookID, second); err != nil {
		t.Fatalf("submit second entry: %v", err)
	}

	if svc.queue.Len() != 2 {
		t.Fatalf("expected 2 propagation jobs enqueued, got %d", svc.queue.Len())
	}
}

func TestSubmitEntryPersistsToStore(t *testing.T) {
	svc, notebookID, authorID := newTestNotebookService(t)

	entry := notebook.NewEntry(NewEntryID(), authorID, []byte("persisted entry."), "text/plain")
	stamped, err := svc.SubmitEntry(context.Background(), notebookID, entry)
	if err != nil {
		t.Fatalf("submit entry: %v", err)
	}

	entries, found, err := svc.store.HydrateNotebook(notebookID)
	if err != nil {
		t.Fatalf("hydrate notebook: %v", err)
	}
	if !found {
		t.Fatalf("expected notebook to be found")
	}
	if len(entries) != 1 || entries[0].ID != stamped.ID {
		t.Fatalf("expected persisted entry to match stamped entry")
	}
}
