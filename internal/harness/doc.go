// Package harness runs declarative YAML scenarios against the
// obligation core: a scenario seeds instruments, applies a series of
// add/edit/delete steps with scopes, and materializes the occurrences
// inside a window.
//
// Scenarios execute with a frozen clock and sequential ids, so the
// resulting trace is byte-stable and can be compared against golden
// files. Used by tests; not compiled into the production binary.
package harness
