// Package sync implements the replication engine: the single-writer
// event loop that owns the obligation Book and keeps it converged with
// the remote workspace under intermittent connectivity.
//
// # Architecture
//
// All mutations happen on one logical thread. Remote snapshot pushes,
// connectivity changes, and flush ticks are events on a FIFO queue
// drained by Run; user intents take the engine mutex and apply inline.
// Nothing in the engine requires parallel workers.
//
// # Replication semantics
//
// Each category is a whole JSON value at a workspace path. While the
// device is online and a category has no queued writes, an inbound
// snapshot replaces local state wholesale. Otherwise the snapshot is
// merged by record id with last-write-wins resolution: the later
// ModifiedAt wins, ties favor the remote copy, local-only ids are
// always kept, and remote-only ids are adopted unless a queued local
// delete tombstones them.
//
// Writes are attempted immediately when online and the category is
// clean. A failed or offline write lands in the durable dirty queue,
// and once a category has queued entries every later write joins the
// queue behind them, so writes from one device always reach the remote
// in submission order. The flush loop replays the queue in that order,
// backs off exponentially (capped) on failure and never drops an entry.
package sync
