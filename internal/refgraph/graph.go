// Package refgraph maintains the in-memory reference adjacency used to
// compute a cluster's reference density. Edges are recorded
// directionally (as authored) but every lookup is symmetric.
package refgraph

import "github.com/coherentnotebook/entropy/internal/notebook"

// Graph is a directed adjacency multimap queried symmetrically: has_edge
// returns true if either direction was recorded.
type Graph struct {
	adjacency map[notebook.EntryID]map[notebook.EntryID]struct{}
}

// New returns an empty Graph.
func New() *Graph {
	return &Graph{adjacency: make(map[notebook.EntryID]map[notebook.EntryID]struct{})}
}

// AddEntryReferences records one directional edge from id to each entry in
// refs.
func (g *Graph) AddEntryReferences(id notebook.EntryID, refs []notebook.EntryID) {
	if len(refs) == 0 {
		return
	}
	set, ok := g.adjacency[id]
	if !ok {
		set = make(map[notebook.EntryID]struct{}, len(refs))
		g.adjacency[id] = set
	}
	for _, r := range refs {
		set[r] = struct{}{}
	}
}

// HasEdge returns true if a reference edge exists between a and b in
// either direction.
func (g *Graph) HasEdge(a, b notebook.EntryID) bool {
	if set, ok := g.adjacency[a]; ok {
		if _, ok := set[b]; ok {
			return true
		}
	}
	if set, ok := g.adjacency[b]; ok {
		if _, ok := set[a]; ok {
			return true
		}
	}
	return false
}

// CountInternalEdges returns the number of unordered pairs {a,b} within
// ids with HasEdge(a,b) true.
func (g *Graph) CountInternalEdges(ids []notebook.EntryID) int {
	count := 0
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			if g.HasEdge(ids[i], ids[j]) {
				count++
			}
		}
	}
	return count
}

// ReferenceDensity returns count_internal_edges(ids) / C(|ids|,2) for
// |ids| >= 2, and 1.0 for |ids| <= 1 by convention.
func ReferenceDensity(g *Graph, ids []notebook.EntryID) float64 {
	n := len(ids)
	if n <= 1 {
		return 1.0
	}
	pairs := float64(n*(n-1)) / 2.0
	return float64(g.CountInternalEdges(ids)) / pairs
}

// Clone returns a deep copy, used when previewing a tentative write.
func (g *Graph) Clone() *Graph {
	clone := New()
	for k, set := range g.adjacency {
		newSet := make(map[notebook.EntryID]struct{}, len(set))
		for v := range set {
			newSet[v] = struct{}{}
		}
		clone.adjacency[k] = newSet
	}
	return clone
}
