package ledger

import (
	"slices"
	"time"
)

// RuleCode identifies a recurrence pattern anchored at a record's
// operation date.
type RuleCode string

const (
	// RuleNone marks a non-recurring record.
	RuleNone RuleCode = ""
	// RuleDaily repeats every day.
	RuleDaily RuleCode = "D"
	// RuleWeekly repeats every 7 days.
	RuleWeekly RuleCode = "W"
	// RuleBiweekly repeats every 14 days.
	RuleBiweekly RuleCode = "BW"
	// RuleMonthly repeats on the anchor's day-of-month, clamped to the
	// target month's length.
	RuleMonthly RuleCode = "M"
	// RuleQuarterly repeats every 3 months.
	RuleQuarterly RuleCode = "Q"
	// RuleSemiannual repeats every 6 months.
	RuleSemiannual RuleCode = "S"
	// RuleYearly repeats on the anchor's month and day.
	RuleYearly RuleCode = "Y"
)

// ValidRuleCodes lists every accepted recurrence code, RuleNone included.
var ValidRuleCodes = []RuleCode{
	RuleNone, RuleDaily, RuleWeekly, RuleBiweekly,
	RuleMonthly, RuleQuarterly, RuleSemiannual, RuleYearly,
}

// Valid reports whether c is a known recurrence code.
func (c RuleCode) Valid() bool {
	return slices.Contains(ValidRuleCodes, c)
}

// Obligation is a single financial obligation record.
//
// Identity (ID) is immutable, unique, and never reused; it is the basis
// of all merge and parent/child linking logic. Amounts are signed minor
// units (cents): expenses negative, income positive.
type Obligation struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Amount      int64  `json:"amount"`

	// Instrument names the cash or card instrument this record settles
	// against. For cash, SettlementDate equals OperationDate; for cards it
	// is derived from the instrument's billing cycle.
	Instrument     string    `json:"instrument"`
	OperationDate  time.Time `json:"operation_date"`
	SettlementDate time.Time `json:"settlement_date"`

	// Rule, Installments and RuleEnd describe recurrence. RuleEnd is an
	// exclusive bound; the zero time means unbounded. Installments caps
	// the number of generated occurrences (0 = unbounded).
	Rule         RuleCode  `json:"rule,omitempty"`
	Installments int       `json:"installments,omitempty"`
	RuleEnd      time.Time `json:"rule_end,omitzero"`

	// ParentID links a detached override back to its master. A master
	// never has a ParentID; an override never has a Rule.
	ParentID string `json:"parent_id,omitempty"`

	// Exceptions are dates excluded from the master's generated
	// occurrences, kept sorted. Never contains a date >= RuleEnd.
	Exceptions []time.Time `json:"exceptions,omitempty"`

	Planned    bool      `json:"planned"`
	Tag        string    `json:"tag,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
}

// IsMaster reports whether o carries an active recurrence rule.
func (o *Obligation) IsMaster() bool {
	return o.Rule != RuleNone
}

// IsOverride reports whether o is a detached occurrence of some master.
func (o *Obligation) IsOverride() bool {
	return o.ParentID != ""
}

// Clone returns a deep copy of o. The Exceptions slice is copied so the
// clone can be mutated without aliasing the original snapshot.
func (o *Obligation) Clone() *Obligation {
	c := *o
	if o.Exceptions != nil {
		c.Exceptions = make([]time.Time, len(o.Exceptions))
		copy(c.Exceptions, o.Exceptions)
	}
	return &c
}

// HasException reports whether d is excluded from o's occurrences.
func (o *Obligation) HasException(d time.Time) bool {
	d = DateOf(d)
	for _, e := range o.Exceptions {
		if e.Equal(d) {
			return true
		}
	}
	return false
}

// AddException records d as excluded, keeping Exceptions sorted and
// duplicate-free. Dates on or after RuleEnd are dropped: they are not
// occurrences, so excluding them would only violate the invariant.
func (o *Obligation) AddException(d time.Time) {
	d = DateOf(d)
	if !o.RuleEnd.IsZero() && !d.Before(o.RuleEnd) {
		return
	}
	if o.HasException(d) {
		return
	}
	o.Exceptions = append(o.Exceptions, d)
	slices.SortFunc(o.Exceptions, func(a, b time.Time) int {
		return a.Compare(b)
	})
}

// TruncateRule sets the exclusive recurrence end and prunes exceptions
// that the new bound makes unreachable.
func (o *Obligation) TruncateRule(end time.Time) {
	o.RuleEnd = DateOf(end)
	o.Exceptions = slices.DeleteFunc(o.Exceptions, func(e time.Time) bool {
		return !e.Before(o.RuleEnd)
	})
	if len(o.Exceptions) == 0 {
		o.Exceptions = nil
	}
}

// Budget is a spending budget for a classification tag. A recurring
// budget renews each cycle; at most one recurring budget may be active
// per tag at a time.
type Budget struct {
	ID         string    `json:"id"`
	Tag        string    `json:"tag"`
	Amount     int64     `json:"amount"`
	Recurring  bool      `json:"recurring"`
	Start      time.Time `json:"start"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
}
