// Package ledger defines the obligation data model and the in-memory
// snapshot collection (Book) the rest of the system operates on.
//
// # Record kinds
//
// A record with a non-empty recurrence rule is a "master": it generates
// dated occurrences which are materialized on read, never persisted.
// A record with a ParentID is a "detached override": a standalone record
// produced by a single-occurrence edit, with no rule of its own.
// Linking is strictly single-level: an override points at its master and
// nothing points at an override. FindMaster is therefore an O(1) index
// lookup, not a pointer chase.
//
// # Snapshot discipline
//
// Mutations are expressed as whole-list replacement (copy-on-write) so a
// render or sync pass always observes one consistent snapshot. The single
// documented exception is Book.UpdateInPlace, used for "all"-scope master
// edits; callers outside that path must not mutate records obtained from
// the Book.
package ledger
