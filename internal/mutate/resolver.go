// Package mutate implements the scope-aware edit/delete state machine
// over obligation records.
//
// Every operation validates first and mutates second: on any error the
// Book is untouched. Whole-list replacement keeps mutations atomic; the
// one in-place path ("all"-scope master edits) goes through
// ledger.Book.UpdateInPlace.
package mutate

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/roach88/dueline/internal/billing"
	"github.com/roach88/dueline/internal/ledger"
	"github.com/roach88/dueline/internal/recur"
)

// ErrConfirmationDeclined is returned when the user declines the
// off-plan confirmation prompt. State is unchanged.
var ErrConfirmationDeclined = errors.New("confirmation declined")

// Confirmer asks the user to confirm a risky toggle. Implementations
// live with the consumer (CLI prompt, UI dialog); a nil Confirmer means
// headless operation and implies consent.
type Confirmer interface {
	Confirm(message string) bool
}

// Resolver validates user intents and computes the record deltas they
// imply. It holds no record state of its own; all state lives in the
// Book it is handed.
type Resolver struct {
	// Instruments supplies the current card instruments for settlement
	// resolution. Must not be nil.
	Instruments func() []ledger.Instrument

	// IDs generates record ids. Defaults to UUIDGenerator.
	IDs IDGenerator

	// Now stamps CreatedAt/ModifiedAt. Defaults to time.Now.
	Now func() time.Time

	// Today is the monotonic civil-date source used by validation.
	// Defaults to the date of Now.
	Today func() time.Time

	// Confirm is consulted when a cash planned occurrence is toggled
	// off-plan on a date other than today. Nil means proceed.
	Confirm Confirmer
}

func (r *Resolver) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Resolver) today() time.Time {
	if r.Today != nil {
		return ledger.DateOf(r.Today())
	}
	return ledger.DateOf(r.now())
}

func (r *Resolver) newID() string {
	if r.IDs != nil {
		return r.IDs.NewID()
	}
	return UUIDGenerator{}.NewID()
}

func (r *Resolver) instruments() []ledger.Instrument {
	if r.Instruments != nil {
		return r.Instruments()
	}
	return nil
}

// Add validates and appends a new record built from f.
//
// A record carrying an active recurrence code must not be anchored in
// the future; only scope-limited edits of an existing master may place
// occurrences there.
func (r *Resolver) Add(book *ledger.Book, f Fields) (*ledger.Obligation, error) {
	if f.OperationDate == nil {
		return nil, &ledger.ValidationError{Field: "operation_date", Message: "operation date is required"}
	}
	if f.Description == nil || *f.Description == "" {
		return nil, &ledger.ValidationError{Field: "description", Message: "description is required"}
	}

	rule := ledger.RuleNone
	if f.Rule != nil {
		rule = *f.Rule
	}
	if !rule.Valid() {
		return nil, &ledger.ValidationError{Field: "rule", Message: fmt.Sprintf("unknown recurrence code %q", rule)}
	}

	opDate := ledger.DateOf(*f.OperationDate)
	if rule != ledger.RuleNone && opDate.After(r.today()) {
		return nil, &ledger.ValidationError{Field: "operation_date", Message: "a recurring rule cannot start in the future"}
	}

	instrument := ledger.CashInstrument
	if f.Instrument != nil {
		instrument = *f.Instrument
	}
	settlement, err := billing.ResolveSettlementDate(opDate, instrument, r.instruments())
	if err != nil {
		return nil, err
	}

	now := r.now()
	o := &ledger.Obligation{
		ID:             r.newID(),
		Description:    *f.Description,
		Instrument:     instrument,
		OperationDate:  opDate,
		SettlementDate: settlement,
		Rule:           rule,
		CreatedAt:      now,
		ModifiedAt:     now,
	}
	if f.Amount != nil {
		o.Amount = *f.Amount
	}
	if f.Installments != nil {
		o.Installments = *f.Installments
	}
	if f.Planned != nil {
		o.Planned = *f.Planned
	}
	if f.Tag != nil {
		o.Tag = *f.Tag
	}

	book.Append(o)
	return o, nil
}

// Edit applies a scoped edit to the occurrence of targetID on
// targetDate. Scope semantics:
//
//   - single: excepts the date on the master and creates (or updates)
//     a detached override carrying the edited fields.
//   - future: truncates the master at the date (exclusive) and creates
//     a new independent master anchored there. The recurrence code and
//     installment count are inherited when left blank.
//   - all: mutates the master's fields in place; the anchor never
//     moves, only the settlement date is recomputed.
//   - none: mutates a non-recurring record (or override) directly.
func (r *Resolver) Edit(book *ledger.Book, scope Scope, targetID string, targetDate time.Time, f Fields) error {
	target, ok := book.Get(targetID)
	if !ok {
		return &ledger.NotFoundError{ID: targetID}
	}

	switch scope {
	case ScopeNone:
		return r.editDirect(book, target, f)
	case ScopeSingle:
		if !target.IsMaster() {
			// A detached override IS the single occurrence.
			return r.editDirect(book, target, f)
		}
		return r.editSingle(book, target, targetDate, f)
	case ScopeFuture:
		if !target.IsMaster() {
			return &ledger.ValidationError{Field: "scope", Message: "future scope requires a recurring master"}
		}
		return r.editFuture(book, target, targetDate, f)
	case ScopeAll:
		if !target.IsMaster() {
			return &ledger.ValidationError{Field: "scope", Message: "all scope requires a recurring master"}
		}
		return r.editAll(book, target, f)
	}
	return &ledger.ValidationError{Field: "scope", Message: fmt.Sprintf("unknown scope %d", scope)}
}

// editDirect mutates a non-recurring record copy-then-replace.
func (r *Resolver) editDirect(book *ledger.Book, target *ledger.Obligation, f Fields) error {
	if target.IsMaster() {
		return &ledger.ValidationError{Field: "scope", Message: "editing a recurring master requires an explicit scope"}
	}

	rule := target.Rule
	if f.Rule != nil {
		rule = *f.Rule
	}
	if !rule.Valid() {
		return &ledger.ValidationError{Field: "rule", Message: fmt.Sprintf("unknown recurrence code %q", rule)}
	}
	if rule != ledger.RuleNone {
		if target.IsOverride() {
			return &ledger.ValidationError{Field: "rule", Message: "a detached occurrence cannot carry a recurrence rule"}
		}
		opDate := ledger.DateOf(target.OperationDate)
		if f.OperationDate != nil {
			opDate = ledger.DateOf(*f.OperationDate)
		}
		if opDate.After(r.today()) {
			return &ledger.ValidationError{Field: "operation_date", Message: "a recurring rule cannot start in the future"}
		}
	}

	if err := r.confirmPlanToggle(target, f, target.OperationDate); err != nil {
		return err
	}

	next := target.Clone()
	f.apply(next)
	next.Rule = rule
	if f.Installments != nil {
		next.Installments = *f.Installments
	}
	settlement, err := billing.ResolveSettlementDate(next.OperationDate, next.Instrument, r.instruments())
	if err != nil {
		return err
	}
	next.SettlementDate = settlement
	next.ModifiedAt = r.now()

	book.Replace(swapRecord(book.List(), next))
	return nil
}

// editSingle excepts one occurrence and materializes it as an override.
func (r *Resolver) editSingle(book *ledger.Book, m *ledger.Obligation, targetDate time.Time, f Fields) error {
	date := ledger.DateOf(targetDate)

	// An existing override for (master, date) is updated, not duplicated.
	if ov := findOverride(book, m.ID, date); ov != nil {
		return r.editDirect(book, ov, f)
	}

	if !recur.OccursOn(m, date) {
		return &ledger.NotFoundError{ID: fmt.Sprintf("%s@%s", m.ID, date.Format(time.DateOnly))}
	}
	if err := r.confirmPlanToggle(m, f, date); err != nil {
		return err
	}

	ov := &ledger.Obligation{
		ID:            r.newID(),
		Description:   m.Description,
		Amount:        m.Amount,
		Instrument:    m.Instrument,
		OperationDate: date,
		ParentID:      m.ID,
		Planned:       m.Planned,
		Tag:           m.Tag,
	}
	f.apply(ov)
	settlement, err := billing.ResolveSettlementDate(ov.OperationDate, ov.Instrument, r.instruments())
	if err != nil {
		return err
	}
	ov.SettlementDate = settlement
	now := r.now()
	ov.CreatedAt = now
	ov.ModifiedAt = now

	next := m.Clone()
	next.AddException(date)
	next.ModifiedAt = now

	list := swapRecord(book.List(), next)
	book.Replace(append(list, ov))
	return nil
}

// editFuture splits the master: the old rule ends (exclusive) at the
// target date and a new independent master takes over from there.
//
// Policy: a blank rule or installment field inherits the original
// master's value. Anchoring the new master in the future is legal here;
// this is the one sanctioned way occurrences reach future dates.
func (r *Resolver) editFuture(book *ledger.Book, m *ledger.Obligation, targetDate time.Time, f Fields) error {
	date := ledger.DateOf(targetDate)
	if date.Before(ledger.DateOf(m.OperationDate)) {
		return &ledger.ValidationError{Field: "date", Message: "split date precedes the rule anchor"}
	}
	if err := r.confirmPlanToggle(m, f, date); err != nil {
		return err
	}

	rule := m.Rule
	if f.Rule != nil {
		rule = *f.Rule
	}
	if !rule.Valid() {
		return &ledger.ValidationError{Field: "rule", Message: fmt.Sprintf("unknown recurrence code %q", rule)}
	}
	installments := m.Installments
	if f.Installments != nil {
		installments = *f.Installments
	}

	now := r.now()
	split := &ledger.Obligation{
		ID:            r.newID(),
		Description:   m.Description,
		Amount:        m.Amount,
		Instrument:    m.Instrument,
		OperationDate: date,
		Rule:          rule,
		Installments:  installments,
		Planned:       m.Planned,
		Tag:           m.Tag,
		CreatedAt:     now,
		ModifiedAt:    now,
	}
	f.apply(split)
	settlement, err := billing.ResolveSettlementDate(split.OperationDate, split.Instrument, r.instruments())
	if err != nil {
		return err
	}
	split.SettlementDate = settlement

	truncated := m.Clone()
	truncated.TruncateRule(date)
	truncated.ModifiedAt = now

	list := swapRecord(book.List(), truncated)
	book.Replace(append(list, split))
	return nil
}

// editAll mutates the master in place. The anchor (operation date) is
// never moved; only the settlement date is recomputed. Exceptions and
// overrides stay attached.
func (r *Resolver) editAll(book *ledger.Book, m *ledger.Obligation, f Fields) error {
	if err := r.confirmPlanToggle(m, f, m.OperationDate); err != nil {
		return err
	}

	rule := m.Rule
	if f.Rule != nil {
		rule = *f.Rule
		if rule == ledger.RuleNone {
			return &ledger.ValidationError{Field: "rule", Message: "an all-scope edit cannot drop the recurrence rule; delete instead"}
		}
		if !rule.Valid() {
			return &ledger.ValidationError{Field: "rule", Message: fmt.Sprintf("unknown recurrence code %q", rule)}
		}
	}

	instrument := m.Instrument
	if f.Instrument != nil {
		instrument = *f.Instrument
	}
	settlement, err := billing.ResolveSettlementDate(m.OperationDate, instrument, r.instruments())
	if err != nil {
		return err
	}

	now := r.now()
	book.UpdateInPlace(m.ID, func(o *ledger.Obligation) {
		if f.Description != nil {
			o.Description = *f.Description
		}
		if f.Amount != nil {
			o.Amount = *f.Amount
		}
		if f.Planned != nil {
			o.Planned = *f.Planned
		}
		if f.Tag != nil {
			o.Tag = *f.Tag
		}
		if f.Installments != nil {
			o.Installments = *f.Installments
		}
		o.Rule = rule
		o.Instrument = instrument
		o.SettlementDate = settlement
		o.ModifiedAt = now
	})
	return nil
}

// Delete applies a scoped delete. It returns the ids physically removed
// from the book so the replication layer can track local tombstones.
//
// A master with generated history is retired by truncating its rule,
// never physically deleted; historical occurrences stay reproducible.
func (r *Resolver) Delete(book *ledger.Book, scope Scope, targetID string, targetDate time.Time) ([]string, error) {
	target, ok := book.Get(targetID)
	if !ok {
		return nil, &ledger.NotFoundError{ID: targetID}
	}

	if !target.IsMaster() {
		// Plain record or detached override: physical removal. The
		// master's exception (if any) keeps the occurrence hidden.
		book.Replace(removeRecords(book.List(), target.ID))
		return []string{target.ID}, nil
	}

	date := ledger.DateOf(targetDate)
	switch scope {
	case ScopeSingle:
		return r.deleteSingle(book, target, date)
	case ScopeFuture:
		return r.deleteFuture(book, target, date)
	case ScopeAll:
		return r.deleteAll(book, target)
	case ScopeNone:
		return nil, &ledger.ValidationError{Field: "scope", Message: "deleting a recurring master requires an explicit scope"}
	}
	return nil, &ledger.ValidationError{Field: "scope", Message: fmt.Sprintf("unknown scope %d", scope)}
}

func (r *Resolver) deleteSingle(book *ledger.Book, m *ledger.Obligation, date time.Time) ([]string, error) {
	ov := findOverride(book, m.ID, date)
	if ov == nil && !recur.OccursOn(m, date) {
		return nil, &ledger.NotFoundError{ID: fmt.Sprintf("%s@%s", m.ID, date.Format(time.DateOnly))}
	}

	next := m.Clone()
	next.AddException(date)
	next.ModifiedAt = r.now()

	list := swapRecord(book.List(), next)
	var removed []string
	if ov != nil {
		list = removeRecords(list, ov.ID)
		removed = []string{ov.ID}
	}
	book.Replace(list)
	return removed, nil
}

func (r *Resolver) deleteFuture(book *ledger.Book, m *ledger.Obligation, date time.Time) ([]string, error) {
	if !date.After(ledger.DateOf(m.OperationDate)) {
		// Cutting at or before the anchor leaves nothing behind.
		return r.deleteAll(book, m)
	}

	next := m.Clone()
	next.TruncateRule(date)
	next.ModifiedAt = r.now()

	list := swapRecord(book.List(), next)
	var removed []string
	for _, ov := range book.Overrides(m.ID) {
		if !ledger.DateOf(ov.OperationDate).Before(date) {
			list = removeRecords(list, ov.ID)
			removed = append(removed, ov.ID)
		}
	}
	book.Replace(list)
	return removed, nil
}

func (r *Resolver) deleteAll(book *ledger.Book, m *ledger.Obligation) ([]string, error) {
	today := r.today()
	anchor := ledger.DateOf(m.OperationDate)

	if anchor.Before(today) {
		// History exists: retire the rule, keep past occurrences.
		next := m.Clone()
		next.TruncateRule(today)
		next.ModifiedAt = r.now()

		list := swapRecord(book.List(), next)
		var removed []string
		for _, ov := range book.Overrides(m.ID) {
			if !ledger.DateOf(ov.OperationDate).Before(today) {
				list = removeRecords(list, ov.ID)
				removed = append(removed, ov.ID)
			}
		}
		book.Replace(list)
		return removed, nil
	}

	// No history yet: the master and its overrides go away entirely.
	removed := []string{m.ID}
	for _, ov := range book.Overrides(m.ID) {
		removed = append(removed, ov.ID)
	}
	book.Replace(removeRecords(book.List(), removed...))
	return removed, nil
}

// confirmPlanToggle consults the Confirmer when a cash planned
// occurrence is being toggled off-plan on a date other than today.
func (r *Resolver) confirmPlanToggle(o *ledger.Obligation, f Fields, date time.Time) error {
	if f.Planned == nil || *f.Planned || !o.Planned {
		return nil
	}
	instrument := o.Instrument
	if f.Instrument != nil {
		instrument = *f.Instrument
	}
	if instrument != ledger.CashInstrument && instrument != "" {
		return nil
	}
	if ledger.SameDate(date, r.today()) {
		return nil
	}
	if r.Confirm == nil {
		return nil
	}
	msg := fmt.Sprintf("mark %q on %s as settled?", o.Description, ledger.DateOf(date).Format(time.DateOnly))
	if !r.Confirm.Confirm(msg) {
		return ErrConfirmationDeclined
	}
	return nil
}

// AddBudget validates a new budget against the existing set. At most one
// recurring budget may be active per classification tag.
func (r *Resolver) AddBudget(existing []ledger.Budget, tag string, amount int64, recurring bool, start time.Time) (ledger.Budget, error) {
	if tag == "" {
		return ledger.Budget{}, &ledger.ValidationError{Field: "tag", Message: "budget tag is required"}
	}
	if recurring {
		for _, b := range existing {
			if b.Recurring && b.Tag == tag {
				return ledger.Budget{}, &ledger.ValidationError{
					Field:   "tag",
					Message: fmt.Sprintf("tag %q already has an active recurring budget", tag),
				}
			}
		}
	}
	now := r.now()
	return ledger.Budget{
		ID:         r.newID(),
		Tag:        tag,
		Amount:     amount,
		Recurring:  recurring,
		Start:      ledger.DateOf(start),
		CreatedAt:  now,
		ModifiedAt: now,
	}, nil
}

// swapRecord returns a new list with the record of the same id replaced.
func swapRecord(list []*ledger.Obligation, updated *ledger.Obligation) []*ledger.Obligation {
	next := make([]*ledger.Obligation, len(list))
	for i, o := range list {
		if o.ID == updated.ID {
			next[i] = updated
		} else {
			next[i] = o
		}
	}
	return next
}

// removeRecords returns a new list without the given ids.
func removeRecords(list []*ledger.Obligation, ids ...string) []*ledger.Obligation {
	next := make([]*ledger.Obligation, 0, len(list))
	for _, o := range list {
		if !slices.Contains(ids, o.ID) {
			next = append(next, o)
		}
	}
	return next
}

// findOverride locates the detached override of a master on a date.
func findOverride(book *ledger.Book, masterID string, date time.Time) *ledger.Obligation {
	for _, ov := range book.Overrides(masterID) {
		if ledger.SameDate(ov.OperationDate, date) {
			return ov
		}
	}
	return nil
}
