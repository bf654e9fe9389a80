package propagation

import (
	"context"

	"github.com/google/uuid"

	"github.com/coherentnotebook/entropy/internal/notebook"
)

// CostUpdater applies a cumulative cost delta to a set of entries. The
// real implementation lives in the durable store; this abstraction lets
// the worker be tested without one.
type CostUpdater interface {
	// UpdateCumulativeCost adds costDelta to each of entryIDs'
	// cumulative_cost within notebookID, returning the number of
	// entries actually updated. Implementations must be idempotent per
	// jobID: a replayed call with a jobID already applied must not
	// double-apply costDelta, per component design 4.9's defence in
	// depth against a worker's own completed-job set being lost or
	// bypassed.
	UpdateCumulativeCost(ctx context.Context, jobID uuid.UUID, notebookID notebook.NotebookID, entryIDs []notebook.EntryID, costDelta float64) (int, error)
}

// NoOpCostUpdater reports every entry updated without touching any
// storage. Useful in tests and as a placeholder before a store is wired
// in.
type NoOpCostUpdater struct{}

// UpdateCumulativeCost implements CostUpdater.
func (NoOpCostUpdater) UpdateCumulativeCost(_ context.Context, _ uuid.UUID, _ notebook.NotebookID, entryIDs []notebook.EntryID, _ float64) (int, error) {
	return len(entryIDs), nil
}
