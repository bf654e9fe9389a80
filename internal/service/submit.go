// Package service composes the causal-position, integration-cost,
// durable-store, and propagation components into the one end-to-end
// write path component design 4 describes across its subsections:
// assign a position, compute integration cost, persist the entry, and
// enqueue a propagation job for its cost delta. It is a library
// surface, not a transport; no HTTP/CLI framing lives here, per the
// external-collaborator boundary.
package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/coherentnotebook/entropy/internal/entropy"
	"github.com/coherentnotebook/entropy/internal/logging"
	"github.com/coherentnotebook/entropy/internal/notebook"
	"github.com/coherentnotebook/entropy/internal/propagation"
	"github.com/coherentnotebook/entropy/internal/store"
)

var log = logging.GetLogger("service")

// PositionAssigner is the causal-position half of the write path
// (internal/causal.Service satisfies this).
type PositionAssigner interface {
	AssignPosition(ctx context.Context, notebookID notebook.NotebookID, authorID notebook.AuthorID) (notebook.CausalPosition, error)
}

// Notebook composes one notebook's write path: a shared entropy engine
// (which holds the in-memory CoherenceSnapshot), the causal-position
// assigner, the durable store, and a propagation queue jobs are
// enqueued onto for the background worker to apply.
//
// A Notebook is not itself safe for concurrent SubmitEntry calls against
// the same notebook ID beyond what AssignPosition's row lock already
// serializes; the lock only protects sequence assignment, not the
// engine's snapshot mutation that follows. Callers submitting entries to
// the same notebook concurrently must serialize SubmitEntry calls
// themselves (e.g. one submission goroutine per notebook), matching
// component design 5's "callers cap notebook size upstream" model of
// pushing concurrency discipline to the caller.
type Notebook struct {
	engine   *entropy.Engine
	position PositionAssigner
	store    *store.Store
	queue    *propagation.Queue
}

// NewNotebook wires the four write-path collaborators together.
func NewNotebook(engine *entropy.Engine, position PositionAssigner, st *store.Store, queue *propagation.Queue) *Notebook {
	return &Notebook{engine: engine, position: position, store: st, queue: queue}
}

// SubmitEntry implements the full write path for a new entry:
//  1. assign its causal position (serializes concurrent writers via the
//     durable store's row lock),
//  2. compute its integration cost against the notebook's live snapshot,
//  3. persist the entry with both stamped,
//  4. enqueue a propagation job for the entries its cost affects.
//
// The caller supplies an already-constructed Entry (content, topic,
// references, signature); SubmitEntry stamps CausalPosition and
// IntegrationCost onto it and returns the stamped entry.
func (n *Notebook) SubmitEntry(ctx context.Context, notebookID notebook.NotebookID, entry notebook.Entry) (*notebook.Entry, error) {
	pos, err := n.position.AssignPosition(ctx, notebookID, entry.Author)
	if err != nil {
		return nil, fmt.Errorf("service: assign position: %w", err)
	}
	entry.CausalPosition = pos

	cost := n.engine.ComputeCost(&entry, notebookID)
	entry.IntegrationCost = cost

	if err := n.store.InsertEntry(ctx, notebookID, &entry); err != nil {
		return nil, fmt.Errorf("service: insert entry: %w", err)
	}

	affected := affectedEntryIDs(&entry)
	if job, ok := propagation.NewJobFromIntegrationCost(notebookID, affected, cost); ok {
		n.queue.Enqueue(job)
	}

	log.LogOperation("submit_entry",
		"notebook_id", notebookID,
		"entry_id", entry.ID,
		"sequence", pos.Sequence,
		"catalog_shift", cost.CatalogShift,
	)

	return &entry, nil
}

// affectedEntryIDs is the set of entries a propagation job should apply
// its cost delta to: the new entry itself plus every entry it
// references, mirroring component design 4.9's "affected_entry_ids"
// input to create_propagation_job.
func affectedEntryIDs(entry *notebook.Entry) []notebook.EntryID {
	affected := make([]notebook.EntryID, 0, 1+len(entry.References))
	affected = append(affected, entry.ID)
	affected = append(affected, entry.References...)
	return affected
}

// NewEntryID returns a fresh random entry identifier, for callers that
// don't already have one (e.g. a newly authored entry rather than one
// read back from storage).
func NewEntryID() notebook.EntryID {
	return notebook.EntryID(uuid.New())
}
