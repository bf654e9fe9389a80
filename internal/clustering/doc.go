// Package clustering implements agglomerative clustering of notebook
// entries by TF-IDF similarity: bulk rebuild via repeated best-pair
// merging, and the incremental single-entry assignment used on every
// write. All tie-breaks are made deterministic by sorting candidate
// cluster ids, generalizing the source implementation's unordered
// HashMap iteration into a reproducible total order.
package clustering
