package refgraph

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/coherentnotebook/entropy/internal/notebook"
)

func TestHasEdgeIsSymmetric(t *testing.T) {
	g := New()
	a, b := uuid.New(), uuid.New()
	g.AddEntryReferences(a, []notebook.EntryID{b})

	assert.True(t, g.HasEdge(a, b))
	assert.True(t, g.HasEdge(b, a))
}

func TestReferenceDensitySingletonIsOne(t *testing.T) {
	g := New()
	assert.Equal(t, 1.0, ReferenceDensity(g, nil))
	assert.Equal(t, 1.0, ReferenceDensity(g, []notebook.EntryID{uuid.New()}))
}

func TestReferenceDensityBounds(t *testing.T) {
	g := New()
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	g.AddEntryReferences(a, []notebook.EntryID{b})

	density := ReferenceDensity(g, []notebook.EntryID{a, b, c})
	assert.GreaterOrEqual(t, density, 0.0)
	assert.LessOrEqual(t, density, 1.0)
	// 1 edge out of C(3,2)=3 possible pairs
	assert.InDelta(t, 1.0/3.0, density, 1e-9)
}

func TestReferenceDensityFullyConnected(t *testing.T) {
	g := New()
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	g.AddEntryReferences(a, []notebook.EntryID{b, c})
	g.AddEntryReferences(b, []notebook.EntryID{c})

	density := ReferenceDensity(g, []notebook.EntryID{a, b, c})
	assert.Equal(t, 1.0, density)
}
