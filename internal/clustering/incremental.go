package clustering

import (
	"strings"

	"github.com/coherentnotebook/entropy/internal/notebook"
	"github.com/coherentnotebook/entropy/internal/refgraph"
	"github.com/coherentnotebook/entropy/internal/tfidf"
)

// AssignToCluster implements component design 4.3's incremental
// assignment: if entryVector is empty it falls back to topic-keyword
// substring overlap, otherwise it picks the cluster with the highest
// cosine similarity at or above cfg.SimilarityThreshold. Ties in both
// paths are broken by the smaller cluster id. Returns found=false when
// nothing matches.
func AssignToCluster(
	entryVector tfidf.Vector,
	topic string,
	clusters map[ClusterID]*Cluster,
	clusterVectors map[ClusterID]tfidf.Vector,
	cfg Config,
) (ClusterID, bool) {
	if len(entryVector) == 0 {
		return assignByTopicOverlap(topic, clusters)
	}
	return assignByCosineSimilarity(entryVector, clusters, clusterVectors, cfg.SimilarityThreshold)
}

func assignByTopicOverlap(topic string, clusters map[ClusterID]*Cluster) (ClusterID, bool) {
	if topic == "" {
		return 0, false
	}
	lowerTopic := strings.ToLower(topic)

	ids := sortedIDs(clusters)
	var bestID ClusterID
	bestCount := 0
	found := false

	for _, id := range ids {
		count := 0
		for _, kw := range clusters[id].TopicKeywords {
			lowerKw := strings.ToLower(kw)
			if strings.Contains(lowerTopic, lowerKw) || strings.Contains(lowerKw, lowerTopic) {
				count++
			}
		}
		if count > 0 && (!found || count > bestCount) {
			bestID, bestCount, found = id, count, true
		}
	}
	return bestID, found
}

func assignByCosineSimilarity(
	entryVector tfidf.Vector,
	clusters map[ClusterID]*Cluster,
	clusterVectors map[ClusterID]tfidf.Vector,
	threshold float64,
) (ClusterID, bool) {
	ids := sortedIDs(clusters)
	var bestID ClusterID
	bestSim := -1.0
	found := false

	for _, id := range ids {
		sim := tfidf.CosineSimilarity(entryVector, clusterVectors[id])
		if sim < threshold {
			continue
		}
		if !found || sim > bestSim {
			bestID, bestSim, found = id, sim, true
		}
	}
	return bestID, found
}

// CreateSingleton allocates a new singleton cluster for an entry that
// matched nothing, with density 1.0 and keywords from its own vector.
func CreateSingleton(id ClusterID, entryID notebook.EntryID, entryVector tfidf.Vector) *Cluster {
	return &Cluster{
		ID:               id,
		TopicKeywords:    entryVector.TopTerms(MaxKeywords),
		EntryIDs:         []notebook.EntryID{entryID},
		ReferenceDensity: 1.0,
	}
}

// AppendToCluster appends entryID to an existing cluster and recomputes
// its vector, keywords, and reference density over the full (post-append)
// member set.
func AppendToCluster(
	c *Cluster,
	entryID notebook.EntryID,
	entryVectors map[notebook.EntryID]tfidf.Vector,
	refs *refgraph.Graph,
) tfidf.Vector {
	c.EntryIDs = append(c.EntryIDs, entryID)
	vec := clusterVector(c.EntryIDs, entryVectors)
	c.TopicKeywords = vec.TopTerms(MaxKeywords)
	c.ReferenceDensity = recomputeDensity(refs, c.EntryIDs)
	return vec
}
