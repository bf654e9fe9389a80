package coherence

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coherentnotebook/entropy/internal/clustering"
	"github.com/coherentnotebook/entropy/internal/notebook"
)

func newTestEntry(content, topic string, refs []notebook.EntryID) *notebook.Entry {
	return &notebook.Entry{
		ID:          uuid.New(),
		Content:     []byte(content),
		ContentType: "text/plain",
		Topic:       topic,
		References:  refs,
	}
}

func TestAddEntryFirstEntryCreatesSingleton(t *testing.T) {
	s := New(clustering.DefaultConfig())
	e := newTestEntry("Machine learning fundamentals", "", nil)

	clusterID := s.AddEntry(e)

	require.Len(t, s.Clusters, 1)
	assert.Equal(t, clusterID, s.EntryCluster[e.ID])
	assert.Equal(t, 1.0, s.Clusters[clusterID].ReferenceDensity)
	assert.Equal(t, 1, s.EntryCount())
}

func TestAddEntrySimilarFollowUpJoinsCluster(t *testing.T) {
	s := New(clustering.DefaultConfig())
	e1 := newTestEntry("Machine learning fundamentals", "", nil)
	c1 := s.AddEntry(e1)

	e2 := newTestEntry("Neural networks deep learning machine learning models", "", nil)
	c2 := s.AddEntry(e2)

	assert.Equal(t, c1, c2)
	require.Len(t, s.Clusters, 1)
	assert.Len(t, s.Clusters[c1].EntryIDs, 2)
}

func TestAddEntryUnrelatedFollowUpCreatesNewSingleton(t *testing.T) {
	s := New(clustering.DefaultConfig())
	e1 := newTestEntry("Machine learning fundamentals", "", nil)
	c1 := s.AddEntry(e1)

	e2 := newTestEntry("Cooking recipes ingredients kitchen baking", "", nil)
	c2 := s.AddEntry(e2)

	assert.NotEqual(t, c1, c2)
	assert.Len(t, s.Clusters, 2)
}

func TestRebuildRepopulatesFromScratch(t *testing.T) {
	s := New(clustering.DefaultConfig())
	entries := []*notebook.Entry{
		newTestEntry("Machine learning fundamentals", "", nil),
		newTestEntry("Neural networks deep learning machine learning models", "", nil),
		newTestEntry("Cooking recipes ingredients kitchen baking", "", nil),
	}
	for i, e := range entries {
		e.CausalPosition.Sequence = uint64(i + 1)
	}

	s.Rebuild(entries, notebook.CausalPosition{Sequence: 3})

	assert.Equal(t, 3, s.EntryCount())
	assert.Len(t, s.Clusters, 2)
	for id := range s.Clusters {
		assert.Less(t, id, s.NextClusterID)
	}
}

func TestWeightedAverageDensityEmptyIsZero(t *testing.T) {
	s := New(clustering.DefaultConfig())
	assert.Equal(t, 0.0, s.WeightedAverageDensity())
	assert.Equal(t, 0.0, s.AverageDensity())
}

func TestCloneIsIndependent(t *testing.T) {
	s := New(clustering.DefaultConfig())
	e1 := newTestEntry("Machine learning fundamentals", "", nil)
	s.AddEntry(e1)

	clone := s.Clone()
	e2 := newTestEntry("Cooking recipes ingredients kitchen baking", "", nil)
	clone.AddEntry(e2)

	assert.Equal(t, 1, s.EntryCount())
	assert.Equal(t, 2, clone.EntryCount())
}
