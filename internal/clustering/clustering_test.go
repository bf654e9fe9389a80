package clustering

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coherentnotebook/entropy/internal/notebook"
	"github.com/coherentnotebook/entropy/internal/refgraph"
	"github.com/coherentnotebook/entropy/internal/tfidf"
)

func TestClusterEntriesMergesSimilarEntries(t *testing.T) {
	e1, e2, e3 := uuid.New(), uuid.New(), uuid.New()
	stats := tfidf.NewCorpusStats()
	t1 := tfidf.Tokenize("machine learning fundamentals")
	t2 := tfidf.Tokenize("neural networks deep learning machine learning models")
	t3 := tfidf.Tokenize("cooking recipes ingredients kitchen baking")
	stats.AddDocument(t1)
	stats.AddDocument(t2)
	stats.AddDocument(t3)

	entryVectors := map[notebook.EntryID]tfidf.Vector{
		e1: tfidf.BuildVector(t1, stats),
		e2: tfidf.BuildVector(t2, stats),
		e3: tfidf.BuildVector(t3, stats),
	}

	result := ClusterEntries([]notebook.EntryID{e1, e2, e3}, entryVectors, refgraph.New(), DefaultConfig())

	require.Len(t, result.Clusters, 2, "machine-learning pair should merge, cooking stays separate")

	foundPair := false
	for _, c := range result.Clusters {
		if len(c.EntryIDs) == 2 {
			foundPair = true
			assert.ElementsMatch(t, []notebook.EntryID{e1, e2}, c.EntryIDs)
		}
	}
	assert.True(t, foundPair)
}

func TestClusterEntriesSingletonDensityIsOne(t *testing.T) {
	e1 := uuid.New()
	stats := tfidf.NewCorpusStats()
	tokens := tfidf.Tokenize("solo entry about nothing shared")
	stats.AddDocument(tokens)

	entryVectors := map[notebook.EntryID]tfidf.Vector{e1: tfidf.BuildVector(tokens, stats)}
	result := ClusterEntries([]notebook.EntryID{e1}, entryVectors, refgraph.New(), DefaultConfig())

	require.Len(t, result.Clusters, 1)
	for _, c := range result.Clusters {
		assert.Equal(t, 1.0, c.ReferenceDensity)
	}
}

func TestAssignToClusterTopicFallbackWhenVectorEmpty(t *testing.T) {
	clusters := map[ClusterID]*Cluster{
		1: {ID: 1, TopicKeywords: []string{"greeting", "hello"}},
		2: {ID: 2, TopicKeywords: []string{"farewell", "goodbye"}},
	}
	id, found := AssignToCluster(tfidf.Vector{}, "greeting", clusters, nil, DefaultConfig())
	require.True(t, found)
	assert.Equal(t, ClusterID(1), id)
}

func TestAssignToClusterNoMatchReturnsFalse(t *testing.T) {
	clusters := map[ClusterID]*Cluster{
		1: {ID: 1, TopicKeywords: []string{"unrelated"}},
	}
	_, found := AssignToCluster(tfidf.Vector{}, "", clusters, nil, DefaultConfig())
	assert.False(t, found)
}

func TestAssignToClusterCosineTieBrokenBySmallerID(t *testing.T) {
	v := tfidf.Vector{"x": 1.0}
	clusters := map[ClusterID]*Cluster{
		2: {ID: 2},
		1: {ID: 1},
	}
	vectors := map[ClusterID]tfidf.Vector{
		1: {"x": 1.0},
		2: {"x": 1.0},
	}
	id, found := AssignToCluster(v, "", clusters, vectors, Config{SimilarityThreshold: 0.3})
	require.True(t, found)
	assert.Equal(t, ClusterID(1), id)
}

func TestAppendToClusterRecomputesVectorAndDensity(t *testing.T) {
	e1, e2 := uuid.New(), uuid.New()
	c := &Cluster{ID: 1, EntryIDs: []notebook.EntryID{e1}}
	entryVectors := map[notebook.EntryID]tfidf.Vector{
		e1: {"machine": 0.5},
		e2: {"machine": 0.5, "learning": 0.3},
	}
	refs := refgraph.New()
	refs.AddEntryReferences(e2, []notebook.EntryID{e1})

	vec := AppendToCluster(c, e2, entryVectors, refs)

	assert.ElementsMatch(t, []notebook.EntryID{e1, e2}, c.EntryIDs)
	assert.Equal(t, 1.0, vec["machine"])
	assert.Equal(t, 1.0, c.ReferenceDensity)
}
