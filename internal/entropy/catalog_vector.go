package entropy

import (
	"github.com/coherentnotebook/entropy/internal/coherence"
	"github.com/coherentnotebook/entropy/internal/tfidf"
)

// catalogVector implements component design 4.5's "catalog vector":
// sigma over clusters of a weighted sum of keywords, where the i-th
// keyword of a cluster of size s contributes s/(i+1) to that term's
// weight.
func catalogVector(s *coherence.Snapshot) tfidf.Vector {
	v := make(tfidf.Vector)
	for _, clusterID := range s.SortedClusterIDs() {
		c := s.Clusters[clusterID]
		size := float64(len(c.EntryIDs))
		for i, kw := range c.TopicKeywords {
			v[kw] += size / float64(i+1)
		}
	}
	return v
}

// cosineVector is a thin alias kept local to this package so engine.go
// reads as a diff of two catalog vectors rather than a generic TF-IDF
// operation.
func cosineVector(a, b tfidf.Vector) float64 {
	return tfidf.CosineSimilarity(a, b)
}
