package clustering

import (
	"github.com/coherentnotebook/entropy/internal/notebook"
	"github.com/coherentnotebook/entropy/internal/refgraph"
	"github.com/coherentnotebook/entropy/internal/tfidf"
)

// MaxKeywords bounds the topic-keyword list carried by a cluster.
const MaxKeywords = 5

// ClusterID is a monotonic per-notebook allocator value. Ids are never
// reused; a higher id is always newer.
type ClusterID = uint64

// Cluster is one agglomerative grouping of entries.
type Cluster struct {
	ID               ClusterID
	TopicKeywords    []string
	EntryIDs         []notebook.EntryID
	ReferenceDensity float64
}

// Config holds the clustering thresholds enumerated in the external
// configuration surface.
type Config struct {
	// SimilarityThreshold is the minimum cosine similarity for a merge
	// (bulk) or an assignment (incremental). Default 0.3.
	SimilarityThreshold float64
	// MaxClusters bounds the bulk-rebuild cluster count; 0 means
	// unbounded (merge only stops when no pair clears the threshold).
	MaxClusters int
}

// DefaultConfig returns the spec's documented defaults.
func DefaultConfig() Config {
	return Config{SimilarityThreshold: 0.3, MaxClusters: 0}
}

// recomputeDensity recomputes reference density for a cluster's full
// member set against the reference graph.
func recomputeDensity(refs *refgraph.Graph, ids []notebook.EntryID) float64 {
	return refgraph.ReferenceDensity(refs, ids)
}

// clusterVector returns the term-wise merge of a cluster's member entry
// vectors.
func clusterVector(ids []notebook.EntryID, entryVectors map[notebook.EntryID]tfidf.Vector) tfidf.Vector {
	vectors := make([]tfidf.Vector, 0, len(ids))
	for _, id := range ids {
		vectors = append(vectors, entryVectors[id])
	}
	return tfidf.MergeVectors(vectors...)
}
