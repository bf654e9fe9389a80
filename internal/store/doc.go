// Package store is the durable-storage collaborator: a SQLite-backed
// implementation of the interfaces the entropy engine, causal-position
// service, and propagation worker need to persist and recover
// notebooks, authors, and entries. It follows the connection-pool and
// schema-initialization conventions of the wider codebase's SQLite
// layer, adapted to this domain's tables.
package store
