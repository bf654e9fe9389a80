package store

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/coherentnotebook/entropy/internal/notebook"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.InitSchema())
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateAuthorAndNotebookRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	author := notebook.AuthorID{1, 2, 3}
	require.NoError(t, s.CreateAuthor(ctx, author, []byte("pubkey")))

	notebookID := uuid.New()
	require.NoError(t, s.CreateNotebook(ctx, notebookID, "scratch", author))

	exists, err := s.NotebookExists(ctx, notebookID)
	require.NoError(t, err)
	require.True(t, exists)

	missing, err := s.NotebookExists(ctx, uuid.New())
	require.NoError(t, err)
	require.False(t, missing)
}

func TestInsertAndLoadEntryRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	author := notebook.AuthorID{9}
	require.NoError(t, s.CreateAuthor(ctx, author, nil))
	notebookID := uuid.New()
	require.NoError(t, s.CreateNotebook(ctx, notebookID, "scratch", author))

	entry := notebook.NewEntry(uuid.New(), author, []byte("hello world"), "text/plain")
	entry.CausalPosition = notebook.CausalPosition{
		Sequence: 1,
		ActivityContext: notebook.ActivityContext{
			TotalNotebookEntries: 0,
		},
	}
	entry.IntegrationCost = notebook.IntegrationCost{CatalogShift: 0.5}
	require.NoError(t, s.InsertEntry(ctx, notebookID, &entry))

	loaded, err := s.LoadEntries(ctx, notebookID)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	require.Equal(t, entry.ID, loaded[0].ID)
	require.Equal(t, entry.Author, loaded[0].Author)
	require.Equal(t, "hello world", string(loaded[0].Content))
	require.Equal(t, uint64(1), loaded[0].CausalPosition.Sequence)
	require.InDelta(t, 0.5, loaded[0].IntegrationCost.CatalogShift, 0.0001)
}

func TestHydrateNotebookReportsUnregisteredNotebook(t *testing.T) {
	s := newTestStore(t)
	_, found, err := s.HydrateNotebook(uuid.New())
	require.NoError(t, err)
	require.False(t, found)
}

func TestHydrateNotebookReportsEmptyRegisteredNotebook(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	author := notebook.AuthorID{1}
	require.NoError(t, s.CreateAuthor(ctx, author, nil))
	notebookID := uuid.New()
	require.NoError(t, s.CreateNotebook(ctx, notebookID, "scratch", author))

	entries, found, err := s.HydrateNotebook(notebookID)
	require.NoError(t, err)
	require.True(t, found)
	require.Empty(t, entries)
}

func TestUpdateCumulativeCostAccumulates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	author := notebook.AuthorID{1}
	require.NoError(t, s.CreateAuthor(ctx, author, nil))
	notebookID := uuid.New()
	require.NoError(t, s.CreateNotebook(ctx, notebookID, "scratch", author))

	entry := notebook.NewEntry(uuid.New(), author, []byte("x"), "text/plain")
	entry.CausalPosition.Sequence = 1
	require.NoError(t, s.InsertEntry(ctx, notebookID, &entry))

	count, err := s.UpdateCumulativeCost(ctx, uuid.New(), notebookID, []notebook.EntryID{entry.ID}, 0.3)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	count, err = s.UpdateCumulativeCost(ctx, uuid.New(), notebookID, []notebook.EntryID{entry.ID}, 0.2)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	loaded, err := s.LoadEntries(ctx, notebookID)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
}

func TestUpdateCumulativeCostMissingEntryUpdatesNothing(t *testing.T) {
	s := newTestStore(t)
	count, err := s.UpdateCumulativeCost(context.Background(), uuid.New(), uuid.New(), []notebook.EntryID{uuid.New()}, 0.5)
	require.NoError(t, err)
	require.Equal(t, 0, count)
}

func TestUpdateCumulativeCostSkipsReplayedJob(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	author := notebook.AuthorID{1}
	require.NoError(t, s.CreateAuthor(ctx, author, nil))
	notebookID := uuid.New()
	require.NoError(t, s.CreateNotebook(ctx, notebookID, "scratch", author))

	entry := notebook.NewEntry(uuid.New(), author, []byte("x"), "text/plain")
	entry.CausalPosition.Sequence = 1
	require.NoError(t, s.InsertEntry(ctx, notebookID, &entry))

	jobID := uuid.New()
	count, err := s.UpdateCumulativeCost(ctx, jobID, notebookID, []notebook.EntryID{entry.ID}, 0.3)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	count, err = s.UpdateCumulativeCost(ctx, jobID, notebookID, []notebook.EntryID{entry.ID}, 0.3)
	require.NoError(t, err)
	require.Equal(t, 0, count)

	loaded, err := s.LoadEntries(ctx, notebookID)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
}
