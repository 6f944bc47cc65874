package ledger

import "sync"

// Book is the id-indexed in-memory collection of obligation records.
//
// Reads return the current snapshot slice; callers must treat it as
// immutable. Mutations swap in a whole new list (Replace/Append), so a
// concurrent reader always observes one consistent snapshot. The single
// sanctioned exception is UpdateInPlace, used for "all"-scope master
// edits.
//
// Thread-safety: all methods are safe for concurrent use. In practice
// the replication engine's single-writer loop is the only mutator.
type Book struct {
	mu      sync.RWMutex
	records []*Obligation
	byID    map[string]*Obligation
}

// NewBook creates a Book holding the given records.
func NewBook(records ...*Obligation) *Book {
	b := &Book{}
	b.Replace(records)
	return b
}

// List returns the current snapshot. The returned slice and its records
// must not be mutated.
func (b *Book) List() []*Obligation {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.records
}

// Len returns the number of records in the current snapshot.
func (b *Book) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.records)
}

// Get returns the record with the given id, or false when absent. O(1).
func (b *Book) Get(id string) (*Obligation, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	o, ok := b.byID[id]
	return o, ok
}

// Replace swaps the entire collection for newList and rebuilds the id
// index. The caller hands over ownership of newList.
func (b *Book) Replace(newList []*Obligation) {
	idx := make(map[string]*Obligation, len(newList))
	for _, o := range newList {
		idx[o.ID] = o
	}
	b.mu.Lock()
	b.records = newList
	b.byID = idx
	b.mu.Unlock()
}

// Append adds a record, producing a new snapshot. The previous snapshot
// slice is never mutated.
func (b *Book) Append(o *Obligation) {
	b.mu.Lock()
	defer b.mu.Unlock()
	next := make([]*Obligation, len(b.records), len(b.records)+1)
	copy(next, b.records)
	next = append(next, o)
	idx := make(map[string]*Obligation, len(next))
	for _, r := range next {
		idx[r.ID] = r
	}
	b.records = next
	b.byID = idx
}

// FindMaster resolves the master a record belongs to: the record itself
// when it is not an override, otherwise its parent. Linking is single
// level, so this is one index lookup. Returns false when the parent id
// dangles.
func (b *Book) FindMaster(o *Obligation) (*Obligation, bool) {
	if !o.IsOverride() {
		return o, true
	}
	return b.Get(o.ParentID)
}

// Overrides returns the detached occurrences of the given master.
func (b *Book) Overrides(masterID string) []*Obligation {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []*Obligation
	for _, o := range b.records {
		if o.ParentID == masterID {
			out = append(out, o)
		}
	}
	return out
}

// UpdateInPlace mutates the record with the given id through fn while
// holding the write lock.
//
// This is the documented exception to the copy-on-write discipline,
// reserved for "all"-scope master edits where exceptions and overrides
// must stay attached to the same record identity. Returns false when the
// id is absent.
func (b *Book) UpdateInPlace(id string, fn func(*Obligation)) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	o, ok := b.byID[id]
	if !ok {
		return false
	}
	fn(o)
	return true
}
