// Package notebook defines the core data model shared by every entropy
// component: entry and notebook identifiers, the immutable Entry record,
// causal position, and integration cost.
//
// Nothing in this package touches storage, clustering, or caching; it is
// the vocabulary the rest of the tree is written against.
package notebook
