// Package coherence maintains the per-notebook CoherenceSnapshot: the
// clustering, corpus statistics, and TF-IDF vectors that the integration
// cost engine diffs around every write.
package coherence
