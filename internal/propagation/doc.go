// Package propagation implements retroactive cost propagation: when
// adding an entry shifts other entries between clusters, those entries'
// cumulative_cost metadata needs to catch up asynchronously rather than
// block the write. A Queue holds pending jobs FIFO; a Worker drains it
// on an interval, retrying failed updates
// and skipping jobs it has already completed.
package propagation
