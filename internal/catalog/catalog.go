package catalog

import "github.com/coherentnotebook/entropy/internal/notebook"

// DefaultMaxTokens is the default token budget for a generated catalog.
const DefaultMaxTokens = 4000

// TokensPerSummary is the conversion factor used to derive max_clusters
// from a token budget.
const TokensPerSummary = 75

// MaxSummaryChars bounds a cluster summary's extracted-sentence text.
const MaxSummaryChars = 150

// MaxRepresentativeEntries bounds the representative entry ids carried
// per cluster summary.
const MaxRepresentativeEntries = 3

// MaxTopicKeywords bounds how many of a cluster's topic keywords are
// joined into the summary's topic string.
const MaxTopicKeywords = 3

// ClusterSummary is the catalog's per-cluster projection.
type ClusterSummary struct {
	Topic                  string
	Summary                string
	EntryCount             int
	CumulativeCost         float64
	Stability              uint64
	RepresentativeEntryIDs []notebook.EntryID
}

// Catalog is the token-bounded dense projection of a notebook's coherence
// state.
type Catalog struct {
	Clusters       []ClusterSummary
	NotebookEntropy float64
	TotalEntries   int
	GeneratedAt    notebook.CausalPosition
}
