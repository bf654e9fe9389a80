// Package causal assigns causal positions to new entries: a
// monotonically increasing per-notebook sequence number plus an
// ActivityContext snapshot of notebook activity at write time. Position
// assignment runs inside a BEGIN IMMEDIATE transaction that serializes
// concurrent writers to the same notebook, the SQLite analogue of the
// row-level "SELECT ... FOR UPDATE" lock a multi-writer database would
// use for the same purpose.
package causal
