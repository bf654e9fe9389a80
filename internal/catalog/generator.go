package catalog

import (
	"sort"

	"github.com/coherentnotebook/entropy/internal/coherence"
	"github.com/coherentnotebook/entropy/internal/notebook"
)

// Generator produces Catalogs bounded by a token budget.
type Generator struct {
	maxTokens int
}

// NewGenerator returns a Generator using DefaultMaxTokens.
func NewGenerator() *Generator {
	return &Generator{maxTokens: DefaultMaxTokens}
}

// NewGeneratorWithMaxTokens returns a Generator using an explicit budget.
func NewGeneratorWithMaxTokens(maxTokens int) *Generator {
	return &Generator{maxTokens: maxTokens}
}

// MaxTokens returns the generator's current token budget.
func (g *Generator) MaxTokens() int {
	return g.maxTokens
}

// SetMaxTokens updates the generator's token budget.
func (g *Generator) SetMaxTokens(maxTokens int) {
	g.maxTokens = maxTokens
}

// Generate implements component design 4.7: summarize every cluster,
// sort by cumulative cost then stability (both descending), and truncate
// to the budget's derived max cluster count.
func (g *Generator) Generate(s *coherence.Snapshot, entries map[notebook.EntryID]*notebook.Entry) Catalog {
	maxClusters := g.maxTokens / TokensPerSummary

	summaries := make([]ClusterSummary, 0, len(s.Clusters))
	for _, clusterID := range s.SortedClusterIDs() {
		c := s.Clusters[clusterID]
		summaries = append(summaries, summarizeCluster(c.TopicKeywords, c.EntryIDs, entries, s.Timestamp.Sequence))
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		if summaries[i].CumulativeCost != summaries[j].CumulativeCost {
			return summaries[i].CumulativeCost > summaries[j].CumulativeCost
		}
		return summaries[i].Stability > summaries[j].Stability
	})

	if maxClusters > 0 && len(summaries) > maxClusters {
		summaries = summaries[:maxClusters]
	}

	var entropy float64
	for _, cs := range summaries {
		entropy += cs.CumulativeCost
	}

	return Catalog{
		Clusters:        summaries,
		NotebookEntropy: entropy,
		TotalEntries:    s.EntryCount(),
		GeneratedAt:     s.Timestamp,
	}
}

func summarizeCluster(keywords []string, memberIDs []notebook.EntryID, entries map[notebook.EntryID]*notebook.Entry, snapshotSequence uint64) ClusterSummary {
	var cumulativeCost float64
	var maxSequence uint64
	for _, id := range memberIDs {
		if e, ok := entries[id]; ok {
			cumulativeCost += e.IntegrationCost.CatalogShift
			if e.CausalPosition.Sequence > maxSequence {
				maxSequence = e.CausalPosition.Sequence
			}
		}
	}

	var stability uint64
	if snapshotSequence > maxSequence {
		stability = snapshotSequence - maxSequence
	}

	repCount := len(memberIDs)
	if repCount > MaxRepresentativeEntries {
		repCount = MaxRepresentativeEntries
	}

	return ClusterSummary{
		Topic:                  buildTopic(keywords),
		Summary:                buildSummaryText(memberIDs, entries, keywords),
		EntryCount:             len(memberIDs),
		CumulativeCost:         cumulativeCost,
		Stability:              stability,
		RepresentativeEntryIDs: append([]notebook.EntryID(nil), memberIDs[:repCount]...),
	}
}
