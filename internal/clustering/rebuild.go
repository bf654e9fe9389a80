package clustering

import (
	"sort"

	"github.com/coherentnotebook/entropy/internal/notebook"
	"github.com/coherentnotebook/entropy/internal/refgraph"
	"github.com/coherentnotebook/entropy/internal/tfidf"
)

// RebuildResult is the outcome of a bulk agglomerative rebuild.
type RebuildResult struct {
	Clusters       map[ClusterID]*Cluster
	ClusterVectors map[ClusterID]tfidf.Vector
	NextClusterID  ClusterID
}

// ClusterEntries performs the bulk agglomerative rebuild described in
// component design 4.3: seed one singleton per entry (in entryOrder),
// then repeatedly merge the pair with the highest cosine similarity at or
// above cfg.SimilarityThreshold, tie-broken by the smaller (idA, idB)
// pair, until no pair clears the threshold or the cluster count has been
// reduced to cfg.MaxClusters (when positive).
func ClusterEntries(
	entryOrder []notebook.EntryID,
	entryVectors map[notebook.EntryID]tfidf.Vector,
	refs *refgraph.Graph,
	cfg Config,
) RebuildResult {
	clusters := make(map[ClusterID]*Cluster, len(entryOrder))
	vectors := make(map[ClusterID]tfidf.Vector, len(entryOrder))

	var nextID ClusterID = 1
	for _, id := range entryOrder {
		v := entryVectors[id]
		c := &Cluster{
			ID:               nextID,
			TopicKeywords:    v.TopTerms(MaxKeywords),
			EntryIDs:         []notebook.EntryID{id},
			ReferenceDensity: 1.0,
		}
		clusters[nextID] = c
		vectors[nextID] = v.Clone()
		nextID++
	}

	for {
		if cfg.MaxClusters > 0 && len(clusters) <= cfg.MaxClusters {
			break
		}
		bestA, bestB, bestSim, found := findBestMerge(clusters, vectors, cfg.SimilarityThreshold)
		if !found {
			break
		}

		merged := tfidf.MergeVectors(vectors[bestA], vectors[bestB])
		mergedEntries := make([]notebook.EntryID, 0, len(clusters[bestA].EntryIDs)+len(clusters[bestB].EntryIDs))
		mergedEntries = append(mergedEntries, clusters[bestA].EntryIDs...)
		mergedEntries = append(mergedEntries, clusters[bestB].EntryIDs...)

		newCluster := &Cluster{
			ID:               nextID,
			TopicKeywords:    merged.TopTerms(MaxKeywords),
			EntryIDs:         mergedEntries,
			ReferenceDensity: recomputeDensity(refs, mergedEntries),
		}

		delete(clusters, bestA)
		delete(clusters, bestB)
		delete(vectors, bestA)
		delete(vectors, bestB)
		clusters[nextID] = newCluster
		vectors[nextID] = merged
		nextID++
		_ = bestSim
	}

	return RebuildResult{Clusters: clusters, ClusterVectors: vectors, NextClusterID: nextID}
}

// findBestMerge scans every unordered pair of active clusters and returns
// the pair with the highest cosine similarity at or above threshold,
// ties broken by the lexicographically smaller (idA, idB) pair with
// idA < idB.
func findBestMerge(clusters map[ClusterID]*Cluster, vectors map[ClusterID]tfidf.Vector, threshold float64) (ClusterID, ClusterID, float64, bool) {
	ids := sortedIDs(clusters)

	var bestA, bestB ClusterID
	bestSim := -1.0
	found := false

	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			a, b := ids[i], ids[j]
			sim := tfidf.CosineSimilarity(vectors[a], vectors[b])
			if sim < threshold {
				continue
			}
			if !found || sim > bestSim || (sim == bestSim && lessPair(a, b, bestA, bestB)) {
				bestA, bestB, bestSim, found = a, b, sim, true
			}
		}
	}
	return bestA, bestB, bestSim, found
}

// lessPair reports whether (a,b) sorts before (c,d) lexicographically.
func lessPair(a, b, c, d ClusterID) bool {
	if a != c {
		return a < c
	}
	return b < d
}

func sortedIDs(clusters map[ClusterID]*Cluster) []ClusterID {
	ids := make([]ClusterID, 0, len(clusters))
	for id := range clusters {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
