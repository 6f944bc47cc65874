// Package recur evaluates recurrence rules: a pure predicate (OccursOn)
// and a matching enumerator (Enumerate) over obligation masters.
//
// Both are pure functions of the record's rule fields and the queried
// dates; no state is kept between calls, so enumeration is restartable
// from any window. Day-of-month clamping goes through ledger.ClampDay so
// projection agrees exactly with billing-cycle resolution.
package recur

import (
	"time"

	"github.com/roach88/dueline/internal/ledger"
)

// OccursOn reports whether the record generates an occurrence on date d.
//
// For a non-recurring record it is true only on the operation date
// itself. For a master it is false before the anchor, on or after the
// exclusive rule end, on excepted dates, past the installment cap, and
// on any date the rule's pattern does not reach.
func OccursOn(o *ledger.Obligation, d time.Time) bool {
	d = ledger.DateOf(d)
	anchor := ledger.DateOf(o.OperationDate)

	if !o.IsMaster() {
		return d.Equal(anchor)
	}
	if d.Before(anchor) {
		return false
	}
	if !o.RuleEnd.IsZero() && !d.Before(ledger.DateOf(o.RuleEnd)) {
		return false
	}
	if o.HasException(d) {
		return false
	}

	n, ok := occurrenceIndex(o.Rule, anchor, d)
	if !ok {
		return false
	}
	if o.Installments > 0 && n >= o.Installments {
		return false
	}
	return true
}

// Enumerate returns, in ascending order, every date in [from, to] for
// which OccursOn holds. The bounds are inclusive and truncated to civil
// dates. The sequence is finite even for unbounded rules because the
// window is.
func Enumerate(o *ledger.Obligation, from, to time.Time) []time.Time {
	from = ledger.DateOf(from)
	to = ledger.DateOf(to)
	if to.Before(from) {
		return nil
	}

	anchor := ledger.DateOf(o.OperationDate)
	if !o.IsMaster() {
		if !anchor.Before(from) && !anchor.After(to) {
			return []time.Time{anchor}
		}
		return nil
	}

	var out []time.Time
	for n := 0; ; n++ {
		if o.Installments > 0 && n >= o.Installments {
			break
		}
		d := occurrenceAt(o.Rule, anchor, n)
		if d.After(to) {
			break
		}
		if !o.RuleEnd.IsZero() && !d.Before(ledger.DateOf(o.RuleEnd)) {
			break
		}
		if d.Before(from) || o.HasException(d) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// occurrenceAt projects the nth occurrence (0-based, n=0 is the anchor)
// of a rule. Month-stepping rules clamp to the anchor's day-of-month,
// never compounding a previous clamp: occurrence n is always derived
// from the anchor, so Jan 31 yields Feb 28 then Mar 31.
func occurrenceAt(rule ledger.RuleCode, anchor time.Time, n int) time.Time {
	switch rule {
	case ledger.RuleDaily:
		return anchor.AddDate(0, 0, n)
	case ledger.RuleWeekly:
		return anchor.AddDate(0, 0, 7*n)
	case ledger.RuleBiweekly:
		return anchor.AddDate(0, 0, 14*n)
	case ledger.RuleMonthly:
		return ledger.AddMonthsClamped(anchor, n)
	case ledger.RuleQuarterly:
		return ledger.AddMonthsClamped(anchor, 3*n)
	case ledger.RuleSemiannual:
		return ledger.AddMonthsClamped(anchor, 6*n)
	case ledger.RuleYearly:
		return ledger.AddMonthsClamped(anchor, 12*n)
	}
	return anchor
}

// occurrenceIndex inverts occurrenceAt: which slot, if any, does d
// occupy in the rule's pattern. Used so the predicate and the enumerator
// can never disagree on clamped dates.
func occurrenceIndex(rule ledger.RuleCode, anchor, d time.Time) (int, bool) {
	switch rule {
	case ledger.RuleDaily:
		return ledger.DaysBetween(anchor, d), true
	case ledger.RuleWeekly:
		return divExact(ledger.DaysBetween(anchor, d), 7)
	case ledger.RuleBiweekly:
		return divExact(ledger.DaysBetween(anchor, d), 14)
	case ledger.RuleMonthly:
		return monthIndex(anchor, d, 1)
	case ledger.RuleQuarterly:
		return monthIndex(anchor, d, 3)
	case ledger.RuleSemiannual:
		return monthIndex(anchor, d, 6)
	case ledger.RuleYearly:
		return monthIndex(anchor, d, 12)
	}
	return 0, false
}

func divExact(days, step int) (int, bool) {
	if days%step != 0 {
		return 0, false
	}
	return days / step, true
}

// monthIndex checks that d sits a whole number of steps (in months) past
// the anchor and on the anchor's clamped day-of-month.
func monthIndex(anchor, d time.Time, stepMonths int) (int, bool) {
	months := ledger.MonthsBetween(anchor, d)
	if months < 0 || months%stepMonths != 0 {
		return 0, false
	}
	y, m, _ := d.Date()
	if d.Day() != ledger.ClampDay(y, m, anchor.Day()) {
		return 0, false
	}
	return months / stepMonths, true
}
