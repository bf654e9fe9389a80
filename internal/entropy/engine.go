package entropy

import (
	"sync"

	"github.com/coherentnotebook/entropy/internal/clustering"
	"github.com/coherentnotebook/entropy/internal/coherence"
	"github.com/coherentnotebook/entropy/internal/logging"
	"github.com/coherentnotebook/entropy/internal/notebook"
)

var log = logging.GetLogger("entropy")

// Hydrator reconstructs a notebook's coherence snapshot from durable
// storage on cold start. Engine calls it only from PreviewCost when no
// in-memory snapshot exists yet; found=false means the notebook truly has
// no backing entries and PreviewCost returns ErrNotebookNotFound.
type Hydrator interface {
	HydrateNotebook(notebookID notebook.NotebookID) (entries []*notebook.Entry, found bool, err error)
}

// Engine holds one CoherenceSnapshot per notebook and computes
// IntegrationCost for each prospective write. The engine itself does not
// serialize concurrent writers to the same notebook; callers must hold
// the notebook's causal-position lock (or an equivalent per-notebook
// mutex) while calling ComputeCost, per the concurrency model in
// component design 5.
type Engine struct {
	mu            sync.Mutex
	snapshots     map[notebook.NotebookID]*coherence.Snapshot
	clusterConfig clustering.Config
	hydrator      Hydrator
}

// New returns an Engine using cfg for any snapshot it must create.
func New(cfg clustering.Config, hydrator Hydrator) *Engine {
	return &Engine{
		snapshots:     make(map[notebook.NotebookID]*coherence.Snapshot),
		clusterConfig: cfg,
		hydrator:      hydrator,
	}
}

func (e *Engine) getOrCreate(notebookID notebook.NotebookID) *coherence.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.snapshots[notebookID]
	if !ok {
		s = coherence.New(e.clusterConfig)
		e.snapshots[notebookID] = s
	}
	return s
}

// Snapshot returns the notebook's current snapshot if it has been
// materialized, for read-only inspection by the catalog generator and
// cache.
func (e *Engine) Snapshot(notebookID notebook.NotebookID) (*coherence.Snapshot, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.snapshots[notebookID]
	return s, ok
}

// SetSnapshot installs a snapshot directly, used after a cold-start
// rebuild from durable storage.
func (e *Engine) SetSnapshot(notebookID notebook.NotebookID, s *coherence.Snapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.snapshots[notebookID] = s
}

// ComputeCost implements component design 4.5: it gets or lazily creates
// the notebook's snapshot, captures the before-state, commits the write
// via Snapshot.AddEntry, captures the after-state, and diffs the two.
func (e *Engine) ComputeCost(entry *notebook.Entry, notebookID notebook.NotebookID) notebook.IntegrationCost {
	snapshot := e.getOrCreate(notebookID)
	return e.computeCostOn(snapshot, entry)
}

// PreviewCost implements compute_cost_preview: the same computation
// against a clone of the snapshot, without committing. Returns
// ErrNotebookNotFound if no snapshot exists and the hydrator (if any)
// reports the notebook has no backing entries.
func (e *Engine) PreviewCost(entry *notebook.Entry, notebookID notebook.NotebookID) (notebook.IntegrationCost, error) {
	e.mu.Lock()
	s, ok := e.snapshots[notebookID]
	e.mu.Unlock()

	if !ok {
		if e.hydrator == nil {
			// No hydrator configured: behave like ComputeCost and treat
			// an unmaterialized notebook as legitimately empty.
			s = coherence.New(e.clusterConfig)
		} else {
			entries, found, err := e.hydrator.HydrateNotebook(notebookID)
			if err != nil {
				log.LogError("hydrate_notebook", err, "notebook_id", notebookID)
				return notebook.IntegrationCost{}, err
			}
			if !found {
				return notebook.IntegrationCost{}, ErrNotebookNotFound
			}
			s = coherence.New(e.clusterConfig)
			if len(entries) > 0 {
				s.Rebuild(entries, entries[len(entries)-1].CausalPosition)
			}
		}
	}

	clone := s.Clone()
	return e.computeCostOn(clone, entry), nil
}

func (e *Engine) computeCostOn(s *coherence.Snapshot, entry *notebook.Entry) notebook.IntegrationCost {
	wasEmpty := s.EntryCount() == 0

	beforeCluster := cloneEntryClusterMap(s.EntryCluster)
	beforeClusterIDs := clusterIDSet(s)
	beforeCatalogVector := catalogVector(s)

	assigned := s.AddEntry(entry)

	afterCatalogVector := catalogVector(s)

	entriesRevised := uint32(0)
	for id, before := range beforeCluster {
		after, ok := s.EntryCluster[id]
		if !ok {
			continue
		}
		if before != after {
			entriesRevised++
		}
	}

	referencesBroken := uint32(0)
	assignedAfter := s.EntryCluster[entry.ID]
	for _, r := range entry.References {
		afterR, tracked := s.EntryCluster[r]
		if !tracked {
			continue
		}
		if assignedAfter != afterR {
			referencesBroken++
		}
	}

	var catalogShift float64
	if wasEmpty {
		catalogShift = 0.5
	} else {
		catalogShift = notebook.ClampCatalogShift(1 - cosineVector(beforeCatalogVector, afterCatalogVector))
	}

	_, wasExisting := beforeClusterIDs[assigned]
	orphan := !wasExisting && len(entry.References) == 0

	cost := notebook.IntegrationCost{
		EntriesRevised:   entriesRevised,
		ReferencesBroken: referencesBroken,
		CatalogShift:     catalogShift,
		Orphan:           orphan,
	}
	entry.IntegrationCost = cost
	return cost
}

func cloneEntryClusterMap(m map[notebook.EntryID]clustering.ClusterID) map[notebook.EntryID]clustering.ClusterID {
	clone := make(map[notebook.EntryID]clustering.ClusterID, len(m))
	for k, v := range m {
		clone[k] = v
	}
	return clone
}

func clusterIDSet(s *coherence.Snapshot) map[clustering.ClusterID]struct{} {
	set := make(map[clustering.ClusterID]struct{}, len(s.Clusters))
	for id := range s.Clusters {
		set[id] = struct{}{}
	}
	return set
}
