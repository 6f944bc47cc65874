package sync

import (
	"github.com/roach88/dueline/internal/ledger"
)

// mergeRecords reconciles the local record list with a remote snapshot
// by id, last-write-wins.
//
// Resolution rules:
//   - Present on both sides: the later ModifiedAt wins; a tie favors
//     the remote copy.
//   - Local-only: kept. It is either a write the remote has not seen
//     yet or a record another device cannot know about.
//   - Remote-only: adopted, unless tombstoned. A tombstone means a
//     queued local write removed the id; adopting it back would
//     resurrect a deletion the remote simply has not received.
//
// Local order is preserved; adopted remote records append in snapshot
// order. Output determinism matters because the merged list is written
// straight back to the cache and, eventually, the remote.
func mergeRecords(local, rem []*ledger.Obligation, tombstones map[string]bool) []*ledger.Obligation {
	remByID := make(map[string]*ledger.Obligation, len(rem))
	for _, r := range rem {
		remByID[r.ID] = r
	}

	out := make([]*ledger.Obligation, 0, len(local))
	both := make(map[string]bool, len(local))
	for _, l := range local {
		r, ok := remByID[l.ID]
		if !ok {
			out = append(out, l)
			continue
		}
		both[l.ID] = true
		if r.ModifiedAt.Before(l.ModifiedAt) {
			out = append(out, l)
		} else {
			out = append(out, r)
		}
	}
	for _, r := range rem {
		if both[r.ID] || tombstones[r.ID] {
			continue
		}
		out = append(out, r)
	}
	return out
}

// mergeBudgets applies the same id-keyed last-write-wins resolution to
// the budget list.
func mergeBudgets(local, rem []ledger.Budget, tombstones map[string]bool) []ledger.Budget {
	remByID := make(map[string]ledger.Budget, len(rem))
	for _, r := range rem {
		remByID[r.ID] = r
	}

	out := make([]ledger.Budget, 0, len(local))
	both := make(map[string]bool, len(local))
	for _, l := range local {
		r, ok := remByID[l.ID]
		if !ok {
			out = append(out, l)
			continue
		}
		both[l.ID] = true
		if r.ModifiedAt.Before(l.ModifiedAt) {
			out = append(out, l)
		} else {
			out = append(out, r)
		}
	}
	for _, r := range rem {
		if both[r.ID] || tombstones[r.ID] {
			continue
		}
		out = append(out, r)
	}
	return out
}
