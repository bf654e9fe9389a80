package tfidf

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorpusStatsIDF(t *testing.T) {
	stats := NewCorpusStats()
	stats.AddDocument([]string{"machine", "learning"})
	stats.AddDocument([]string{"cooking", "recipes"})

	// "machine" appears in 1 of 2 documents: idf = ln(2/1)
	assert.InDelta(t, math.Log(2), stats.IDF("machine"), 1e-9)
	// unseen term has zero IDF
	assert.Equal(t, 0.0, stats.IDF("unseen"))
}

func TestBuildVectorDropsZeroWeights(t *testing.T) {
	stats := NewCorpusStats()
	stats.AddDocument([]string{"a", "b"})
	stats.AddDocument([]string{"a", "c"})

	// "a" is in every document -> idf = ln(2/2) = 0 -> dropped
	v := BuildVector([]string{"a", "b"}, stats)
	_, hasA := v["a"]
	assert.False(t, hasA)
	assert.Greater(t, v["b"], 0.0)
}

func TestCosineSimilarityIdenticalVectors(t *testing.T) {
	a := Vector{"x": 1.0, "y": 2.0}
	b := Vector{"x": 1.0, "y": 2.0}
	sim := CosineSimilarity(a, b)
	assert.InDelta(t, 1.0, sim, 1e-9)
}

func TestCosineSimilarityZeroMagnitude(t *testing.T) {
	a := Vector{}
	b := Vector{"x": 1.0}
	assert.Equal(t, 0.0, CosineSimilarity(a, b))
}

func TestTopTermsTiesBrokenLexicographically(t *testing.T) {
	v := Vector{"zebra": 0.5, "apple": 0.5, "mango": 0.9}
	top := v.TopTerms(3)
	require.Len(t, top, 3)
	assert.Equal(t, []string{"mango", "apple", "zebra"}, top)
}

func TestMergeVectorsSumsWeights(t *testing.T) {
	a := Vector{"x": 1.0, "y": 2.0}
	b := Vector{"x": 3.0, "z": 4.0}
	merged := MergeVectors(a, b)
	assert.Equal(t, 4.0, merged["x"])
	assert.Equal(t, 2.0, merged["y"])
	assert.Equal(t, 4.0, merged["z"])
}
