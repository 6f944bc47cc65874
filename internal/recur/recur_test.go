package recur

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dueline/internal/ledger"
)

func master(rule ledger.RuleCode, anchor time.Time) *ledger.Obligation {
	return &ledger.Obligation{
		ID:            "m1",
		Rule:          rule,
		OperationDate: anchor,
	}
}

func TestOccursOn_BeforeAnchorIsFalse(t *testing.T) {
	m := master(ledger.RuleDaily, ledger.Date(2025, time.March, 10))
	assert.False(t, OccursOn(m, ledger.Date(2025, time.March, 9)))
	assert.True(t, OccursOn(m, ledger.Date(2025, time.March, 10)))
}

func TestOccursOn_RuleEndIsExclusive(t *testing.T) {
	m := master(ledger.RuleDaily, ledger.Date(2025, time.March, 1))
	m.RuleEnd = ledger.Date(2025, time.March, 15)

	assert.True(t, OccursOn(m, ledger.Date(2025, time.March, 14)))
	assert.False(t, OccursOn(m, ledger.Date(2025, time.March, 15)))
	assert.False(t, OccursOn(m, ledger.Date(2025, time.April, 1)))
}

func TestOccursOn_ExceptionsExcluded(t *testing.T) {
	m := master(ledger.RuleWeekly, ledger.Date(2025, time.March, 3))
	m.AddException(ledger.Date(2025, time.March, 17))

	assert.True(t, OccursOn(m, ledger.Date(2025, time.March, 10)))
	assert.False(t, OccursOn(m, ledger.Date(2025, time.March, 17)))
	assert.True(t, OccursOn(m, ledger.Date(2025, time.March, 24)))
}

func TestOccursOn_WeeklyAndBiweeklySteps(t *testing.T) {
	anchor := ledger.Date(2025, time.March, 3)

	w := master(ledger.RuleWeekly, anchor)
	assert.True(t, OccursOn(w, ledger.Date(2025, time.March, 10)))
	assert.False(t, OccursOn(w, ledger.Date(2025, time.March, 11)))

	bw := master(ledger.RuleBiweekly, anchor)
	assert.False(t, OccursOn(bw, ledger.Date(2025, time.March, 10)))
	assert.True(t, OccursOn(bw, ledger.Date(2025, time.March, 17)))
}

func TestOccursOn_MonthlyClampsToShortMonths(t *testing.T) {
	m := master(ledger.RuleMonthly, ledger.Date(2025, time.January, 31))

	// Spec example: a day-31 anchor lands on April 30.
	assert.True(t, OccursOn(m, ledger.Date(2025, time.April, 30)))
	assert.True(t, OccursOn(m, ledger.Date(2025, time.February, 28)))
	assert.True(t, OccursOn(m, ledger.Date(2025, time.March, 31)))
	assert.False(t, OccursOn(m, ledger.Date(2025, time.April, 29)))
	assert.False(t, OccursOn(m, ledger.Date(2025, time.March, 30)), "clamp only applies to short months")
}

func TestOccursOn_QuarterlySemiannualYearly(t *testing.T) {
	anchor := ledger.Date(2025, time.January, 31)

	q := master(ledger.RuleQuarterly, anchor)
	assert.True(t, OccursOn(q, ledger.Date(2025, time.April, 30)))
	assert.False(t, OccursOn(q, ledger.Date(2025, time.February, 28)))

	s := master(ledger.RuleSemiannual, anchor)
	assert.True(t, OccursOn(s, ledger.Date(2025, time.July, 31)))
	assert.False(t, OccursOn(s, ledger.Date(2025, time.April, 30)))

	y := master(ledger.RuleYearly, anchor)
	assert.True(t, OccursOn(y, ledger.Date(2026, time.January, 31)))
	assert.False(t, OccursOn(y, ledger.Date(2025, time.July, 31)))
}

func TestOccursOn_YearlyLeapDayClamps(t *testing.T) {
	m := master(ledger.RuleYearly, ledger.Date(2024, time.February, 29))

	assert.True(t, OccursOn(m, ledger.Date(2025, time.February, 28)))
	assert.True(t, OccursOn(m, ledger.Date(2028, time.February, 29)))
	assert.False(t, OccursOn(m, ledger.Date(2025, time.March, 1)))
}

func TestOccursOn_InstallmentCap(t *testing.T) {
	m := master(ledger.RuleMonthly, ledger.Date(2025, time.January, 15))
	m.Installments = 3

	assert.True(t, OccursOn(m, ledger.Date(2025, time.January, 15)))
	assert.True(t, OccursOn(m, ledger.Date(2025, time.March, 15)))
	assert.False(t, OccursOn(m, ledger.Date(2025, time.April, 15)), "cap is 3 occurrences")
}

func TestOccursOn_NonRecurringOnlyOnOperationDate(t *testing.T) {
	o := &ledger.Obligation{ID: "p1", OperationDate: ledger.Date(2025, time.March, 8)}

	assert.True(t, OccursOn(o, ledger.Date(2025, time.March, 8)))
	assert.False(t, OccursOn(o, ledger.Date(2025, time.March, 9)))
}

// Enumerate must yield exactly the dates OccursOn accepts inside the
// window, for every rule code.
func TestEnumerate_AgreesWithOccursOn(t *testing.T) {
	anchor := ledger.Date(2025, time.January, 31)
	from := ledger.Date(2025, time.January, 1)
	to := ledger.Date(2025, time.June, 30)

	for _, rule := range []ledger.RuleCode{
		ledger.RuleDaily, ledger.RuleWeekly, ledger.RuleBiweekly,
		ledger.RuleMonthly, ledger.RuleQuarterly, ledger.RuleSemiannual, ledger.RuleYearly,
	} {
		m := master(rule, anchor)
		m.AddException(ledger.Date(2025, time.February, 28))
		m.RuleEnd = ledger.Date(2025, time.June, 1)

		got := Enumerate(m, from, to)

		var want []time.Time
		for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
			if OccursOn(m, d) {
				want = append(want, d)
			}
		}
		assert.Equal(t, want, got, "rule %s", rule)
	}
}

func TestEnumerate_WindowBoundsInclusive(t *testing.T) {
	m := master(ledger.RuleWeekly, ledger.Date(2025, time.March, 3))

	got := Enumerate(m, ledger.Date(2025, time.March, 3), ledger.Date(2025, time.March, 17))
	require.Len(t, got, 3)
	assert.Equal(t, ledger.Date(2025, time.March, 3), got[0])
	assert.Equal(t, ledger.Date(2025, time.March, 17), got[2])
}

func TestEnumerate_EmptyAndInvertedWindows(t *testing.T) {
	m := master(ledger.RuleDaily, ledger.Date(2025, time.March, 1))

	assert.Nil(t, Enumerate(m, ledger.Date(2025, time.February, 1), ledger.Date(2025, time.February, 28)))
	assert.Nil(t, Enumerate(m, ledger.Date(2025, time.March, 10), ledger.Date(2025, time.March, 9)))
}

func TestEnumerate_Restartable(t *testing.T) {
	m := master(ledger.RuleBiweekly, ledger.Date(2025, time.January, 6))

	whole := Enumerate(m, ledger.Date(2025, time.January, 1), ledger.Date(2025, time.March, 31))
	first := Enumerate(m, ledger.Date(2025, time.January, 1), ledger.Date(2025, time.February, 15))
	second := Enumerate(m, ledger.Date(2025, time.February, 16), ledger.Date(2025, time.March, 31))

	assert.Equal(t, whole, append(first, second...), "split windows concatenate to the whole")
}

func TestEnumerate_NonRecurring(t *testing.T) {
	o := &ledger.Obligation{ID: "p1", OperationDate: ledger.Date(2025, time.March, 8)}

	got := Enumerate(o, ledger.Date(2025, time.March, 1), ledger.Date(2025, time.March, 31))
	assert.Equal(t, []time.Time{ledger.Date(2025, time.March, 8)}, got)

	assert.Nil(t, Enumerate(o, ledger.Date(2025, time.April, 1), ledger.Date(2025, time.April, 30)))
}
