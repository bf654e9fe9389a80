package propagation

import (
	"github.com/google/uuid"

	"github.com/coherentnotebook/entropy/internal/notebook"
)

// Job is a unit of deferred cost propagation work: some set of entries
// in a notebook whose cumulative_cost should be incremented by Delta.
// JobID makes replay idempotent: a worker that has already applied a
// job skips it if asked to process it again.
type Job struct {
	JobID            uuid.UUID
	NotebookID       notebook.NotebookID
	AffectedEntryIDs []notebook.EntryID
	CostDelta        float64
}

// NewJob creates a job with a fresh random JobID.
func NewJob(notebookID notebook.NotebookID, affected []notebook.EntryID, costDelta float64) Job {
	return Job{
		JobID:            uuid.New(),
		NotebookID:       notebookID,
		AffectedEntryIDs: affected,
		CostDelta:        costDelta,
	}
}

// NewJobWithID creates a job with an explicit JobID, for tests or for
// replaying a job recovered from durable storage.
func NewJobWithID(jobID uuid.UUID, notebookID notebook.NotebookID, affected []notebook.EntryID, costDelta float64) Job {
	return Job{
		JobID:            jobID,
		NotebookID:       notebookID,
		AffectedEntryIDs: affected,
		CostDelta:        costDelta,
	}
}

// AffectedCount returns the number of entries this job would update.
func (j Job) AffectedCount() int {
	return len(j.AffectedEntryIDs)
}

// IsEmpty reports whether the job has no affected entries.
func (j Job) IsEmpty() bool {
	return len(j.AffectedEntryIDs) == 0
}

// weightEntriesRevised, weightReferencesBroken and weightCatalogShift are
// the contribution each integration-cost component makes to a
// propagation job's cost delta.
const (
	weightEntriesRevised   = 0.5
	weightReferencesBroken = 0.3
	weightCatalogShift     = 0.2
)

// NewJobFromIntegrationCost builds a propagation job from the components
// of an integration cost computation, or returns false if there are no
// affected entries to propagate to. Each affected entry accumulates a
// share of the disruption the new write caused.
func NewJobFromIntegrationCost(notebookID notebook.NotebookID, affected []notebook.EntryID, cost notebook.IntegrationCost) (Job, bool) {
	if len(affected) == 0 {
		return Job{}, false
	}
	delta := float64(cost.EntriesRevised)*weightEntriesRevised +
		float64(cost.ReferencesBroken)*weightReferencesBroken +
		cost.CatalogShift*weightCatalogShift
	return NewJob(notebookID, affected, delta), true
}
