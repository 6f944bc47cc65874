package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDateOf_TruncatesToMidnightUTC(t *testing.T) {
	loc := time.FixedZone("X", -3*3600)
	ts := time.Date(2025, time.March, 8, 23, 45, 12, 999, loc)

	d := DateOf(ts)

	// 23:45 at UTC-3 is already March 9 in UTC.
	assert.Equal(t, Date(2025, time.March, 9), d)
	assert.Equal(t, time.UTC, d.Location())
}

func TestDaysIn(t *testing.T) {
	assert.Equal(t, 31, DaysIn(2025, time.January))
	assert.Equal(t, 28, DaysIn(2025, time.February))
	assert.Equal(t, 29, DaysIn(2024, time.February))
	assert.Equal(t, 30, DaysIn(2025, time.April))
}

func TestClampDay_ShortMonth(t *testing.T) {
	assert.Equal(t, 30, ClampDay(2025, time.April, 31))
	assert.Equal(t, 28, ClampDay(2025, time.February, 31))
	assert.Equal(t, 29, ClampDay(2024, time.February, 31))
	assert.Equal(t, 15, ClampDay(2025, time.April, 15))
}

func TestAddMonthsClamped_NoRollover(t *testing.T) {
	jan31 := Date(2025, time.January, 31)

	// time.AddDate would roll Jan 31 + 1 month into March; clamping must not.
	assert.Equal(t, Date(2025, time.February, 28), AddMonthsClamped(jan31, 1))
	assert.Equal(t, Date(2025, time.March, 31), AddMonthsClamped(jan31, 2))
	assert.Equal(t, Date(2025, time.April, 30), AddMonthsClamped(jan31, 3))
	assert.Equal(t, Date(2026, time.January, 31), AddMonthsClamped(jan31, 12))
}

func TestAddMonthsClamped_YearBoundary(t *testing.T) {
	nov30 := Date(2025, time.November, 30)
	assert.Equal(t, Date(2026, time.February, 28), AddMonthsClamped(nov30, 3))
}

func TestDaysBetween(t *testing.T) {
	a := Date(2025, time.March, 1)
	b := Date(2025, time.March, 15)
	assert.Equal(t, 14, DaysBetween(a, b))
	assert.Equal(t, -14, DaysBetween(b, a))
	assert.Equal(t, 0, DaysBetween(a, a))
}

func TestMonthsBetween_IgnoresDay(t *testing.T) {
	assert.Equal(t, 1, MonthsBetween(Date(2025, time.January, 31), Date(2025, time.February, 1)))
	assert.Equal(t, 13, MonthsBetween(Date(2025, time.January, 15), Date(2026, time.February, 15)))
	assert.Equal(t, -2, MonthsBetween(Date(2025, time.March, 1), Date(2025, time.January, 31)))
}
