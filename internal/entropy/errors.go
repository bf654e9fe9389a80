package entropy

import "errors"

// ErrNotebookNotFound is surfaced by PreviewCost when a notebook has no
// materialized snapshot and its persisted entries cannot be hydrated.
var ErrNotebookNotFound = errors.New("entropy: notebook not found")

// ErrIntegrationInvariantViolated is defensive and should be unreachable:
// it signals that a tracked entry went missing from the entry->cluster
// map after AddEntry.
var ErrIntegrationInvariantViolated = errors.New("entropy: integration invariant violated")
