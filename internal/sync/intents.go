package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/roach88/dueline/internal/ledger"
	"github.com/roach88/dueline/internal/mutate"
)

// Intent methods: the write API of the engine. Each one validates
// through the mutate resolver, applies the delta to in-memory state,
// persists the category to the durable cache and replicates it. On a
// validation error nothing is touched.

// AddOccurrence creates a new obligation record from f.
func (e *Engine) AddOccurrence(ctx context.Context, f mutate.Fields) (*ledger.Obligation, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	prior := e.restorePointLocked("")
	o, err := e.resolver.Add(e.book, f)
	if err != nil {
		return nil, err
	}
	if err := e.persistTransactionsLocked(ctx, nil); err != nil {
		e.rollbackLocked(prior)
		return nil, err
	}
	return o, nil
}

// EditOccurrence applies a scoped edit to the occurrence of id on date.
func (e *Engine) EditOccurrence(ctx context.Context, scope mutate.Scope, id string, date time.Time, f mutate.Fields) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	prior := e.restorePointLocked(id)
	if err := e.resolver.Edit(e.book, scope, id, date, f); err != nil {
		return err
	}
	if err := e.persistTransactionsLocked(ctx, nil); err != nil {
		e.rollbackLocked(prior)
		return err
	}
	return nil
}

// DeleteOccurrence applies a scoped delete. Physically removed ids ride
// along as tombstones so a concurrent remote snapshot cannot resurrect
// them while the write is queued.
func (e *Engine) DeleteOccurrence(ctx context.Context, scope mutate.Scope, id string, date time.Time) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	prior := e.restorePointLocked("")
	removed, err := e.resolver.Delete(e.book, scope, id, date)
	if err != nil {
		return err
	}
	if err := e.persistTransactionsLocked(ctx, removed); err != nil {
		e.rollbackLocked(prior)
		return err
	}
	return nil
}

// restorePoint captures the record list before a mutation so a failed
// persist can undo it. All-scope edits mutate the target master in
// place, so its pre-edit state needs a clone; everything else is
// copy-on-write and the list snapshot alone suffices.
type restorePoint struct {
	list   []*ledger.Obligation
	target *ledger.Obligation
}

func (e *Engine) restorePointLocked(targetID string) restorePoint {
	rp := restorePoint{list: e.book.List()}
	if targetID != "" {
		if o, ok := e.book.Get(targetID); ok {
			rp.target = o.Clone()
		}
	}
	return rp
}

func (e *Engine) rollbackLocked(rp restorePoint) {
	list := rp.list
	if rp.target != nil {
		list = make([]*ledger.Obligation, len(rp.list))
		for i, o := range rp.list {
			if o.ID == rp.target.ID {
				list[i] = rp.target
			} else {
				list[i] = o
			}
		}
	}
	e.book.Replace(list)
}

// SetInstruments replaces the card instrument definitions. Every
// instrument is validated before anything changes.
func (e *Engine) SetInstruments(ctx context.Context, instruments []ledger.Instrument) error {
	for _, in := range instruments {
		if err := in.Validate(); err != nil {
			return err
		}
	}
	seen := make(map[string]bool, len(instruments))
	for _, in := range instruments {
		if in.Name == ledger.CashInstrument {
			return &ledger.ValidationError{Field: "name", Message: `"cash" is reserved`}
		}
		if seen[in.Name] {
			return &ledger.ValidationError{Field: "name", Message: fmt.Sprintf("duplicate instrument %q", in.Name)}
		}
		seen[in.Name] = true
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	prior := e.instruments
	e.instruments = slices.Clone(instruments)
	if err := e.persistLocked(ctx, CategoryInstruments, e.instruments, nil); err != nil {
		e.instruments = prior
		return err
	}
	if e.onInstruments != nil {
		e.onInstruments(e.instruments)
	}
	return nil
}

// AddBudget creates a budget for a classification tag.
func (e *Engine) AddBudget(ctx context.Context, tag string, amount int64, recurring bool, start time.Time) (ledger.Budget, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	b, err := e.resolver.AddBudget(e.budgets, tag, amount, recurring, start)
	if err != nil {
		return ledger.Budget{}, err
	}
	prior := e.budgets
	e.budgets = append(slices.Clone(e.budgets), b)
	if err := e.persistLocked(ctx, CategoryBudgets, e.budgets, nil); err != nil {
		e.budgets = prior
		return ledger.Budget{}, err
	}
	return b, nil
}

// RemoveBudget deletes a budget by id.
func (e *Engine) RemoveBudget(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := slices.IndexFunc(e.budgets, func(b ledger.Budget) bool { return b.ID == id })
	if idx < 0 {
		return &ledger.NotFoundError{ID: id}
	}
	prior := e.budgets
	e.budgets = slices.Delete(slices.Clone(e.budgets), idx, idx+1)
	if err := e.persistLocked(ctx, CategoryBudgets, e.budgets, []string{id}); err != nil {
		e.budgets = prior
		return err
	}
	return nil
}

// SetOpeningBalance sets the opening balance in minor units.
func (e *Engine) SetOpeningBalance(ctx context.Context, balance int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	prior := e.openingBalance
	e.openingBalance = balance
	if err := e.persistLocked(ctx, CategoryOpeningBalance, balance, nil); err != nil {
		e.openingBalance = prior
		return err
	}
	return nil
}

// SetOpeningDate sets the tracking start date.
func (e *Engine) SetOpeningDate(ctx context.Context, date time.Time) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	prior := e.openingDate
	e.openingDate = ledger.DateOf(date)
	if err := e.persistLocked(ctx, CategoryOpeningDate, e.openingDate, nil); err != nil {
		e.openingDate = prior
		return err
	}
	return nil
}

// SetOpeningFlag marks the opening state as configured (or not).
func (e *Engine) SetOpeningFlag(ctx context.Context, configured bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	prior := e.openingFlag
	e.openingFlag = configured
	if err := e.persistLocked(ctx, CategoryOpeningFlag, configured, nil); err != nil {
		e.openingFlag = prior
		return err
	}
	return nil
}

// persistTransactionsLocked caches and replicates the record list,
// notifying the change callback.
func (e *Engine) persistTransactionsLocked(ctx context.Context, removed []string) error {
	if err := e.persistLocked(ctx, CategoryTransactions, e.book.List(), removed); err != nil {
		return err
	}
	if e.onTransactions != nil {
		e.onTransactions(e.book.List())
	}
	return nil
}

// persistLocked writes a category's current value through the cache and
// out to the remote (or the dirty queue).
func (e *Engine) persistLocked(ctx context.Context, cat Category, v any, removed []string) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return newCacheError(cat, err)
	}
	if err := e.cfg.Cache.Put(ctx, e.path(cat), v, e.clock.Now().Unix()); err != nil {
		return newCacheError(cat, err)
	}
	return e.replicateLocked(ctx, cat, payload, removed)
}
