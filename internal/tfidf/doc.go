// Package tfidf tokenizes entry content and maintains TF-IDF corpus
// statistics and document vectors, the substrate the clustering package
// compares entries against.
package tfidf
