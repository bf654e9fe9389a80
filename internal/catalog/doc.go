// Package catalog projects a coherence snapshot into a token-bounded
// dense summary: one ClusterSummary per retained cluster, ordered by
// cumulative cost then stability, truncated to a token budget.
package catalog
