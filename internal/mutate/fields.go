package mutate

import (
	"time"

	"github.com/roach88/dueline/internal/ledger"
)

// Fields carries the edited fields of an add/edit intent. Nil pointers
// mean "left blank": the target's (or, for a future split, the original
// master's) value is kept. This presence distinction is what makes rule
// inheritance on future splits an explicit policy rather than an
// accident of zero values.
type Fields struct {
	Description   *string
	Amount        *int64
	Instrument    *string
	OperationDate *time.Time
	Rule          *ledger.RuleCode
	Installments  *int
	Planned       *bool
	Tag           *string
}

// String returns a pointer to s, for building Fields literals.
func String(s string) *string { return &s }

// Int64 returns a pointer to v.
func Int64(v int64) *int64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }

// DateP returns a pointer to the civil date of t.
func DateP(t time.Time) *time.Time {
	d := ledger.DateOf(t)
	return &d
}

// RuleP returns a pointer to c.
func RuleP(c ledger.RuleCode) *ledger.RuleCode { return &c }

// apply copies the set fields onto o. Recurrence fields are NOT applied
// here; each scope handles them explicitly.
func (f Fields) apply(o *ledger.Obligation) {
	if f.Description != nil {
		o.Description = *f.Description
	}
	if f.Amount != nil {
		o.Amount = *f.Amount
	}
	if f.Instrument != nil {
		o.Instrument = *f.Instrument
	}
	if f.OperationDate != nil {
		o.OperationDate = ledger.DateOf(*f.OperationDate)
	}
	if f.Planned != nil {
		o.Planned = *f.Planned
	}
	if f.Tag != nil {
		o.Tag = *f.Tag
	}
}
