package tfidf

import "math"

// CorpusStats tracks document frequency across every document ever added
// to a notebook's coherence snapshot. Documents are never withdrawn, even
// when the entry they came from is later reassigned to a different
// cluster; the IDF bias this introduces over long notebook lifetimes is
// accepted (see DESIGN.md, Open Question 3).
type CorpusStats struct {
	DocumentCount       int
	DocumentFrequencies map[string]int
}

// NewCorpusStats returns an empty CorpusStats.
func NewCorpusStats() *CorpusStats {
	return &CorpusStats{
		DocumentFrequencies: make(map[string]int),
	}
}

// AddDocument increments DocumentCount and, for each unique token in
// tokens, increments its document frequency by exactly one.
func (c *CorpusStats) AddDocument(tokens []string) {
	c.DocumentCount++
	seen := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		c.DocumentFrequencies[t]++
	}
}

// IDF returns ln(document_count / document_frequency) for a term, or 0 if
// the term has never been observed.
func (c *CorpusStats) IDF(term string) float64 {
	df := c.DocumentFrequencies[term]
	if df <= 0 {
		return 0
	}
	return math.Log(float64(c.DocumentCount) / float64(df))
}

// Clone returns a deep copy, used by compute_cost_preview to evaluate a
// tentative write without mutating the committed snapshot.
func (c *CorpusStats) Clone() *CorpusStats {
	clone := &CorpusStats{
		DocumentCount:       c.DocumentCount,
		DocumentFrequencies: make(map[string]int, len(c.DocumentFrequencies)),
	}
	for k, v := range c.DocumentFrequencies {
		clone.DocumentFrequencies[k] = v
	}
	return clone
}
