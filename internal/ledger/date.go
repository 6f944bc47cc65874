package ledger

import "time"

// Dates in the ledger are civil dates represented as time.Time at UTC
// midnight. All date math goes through these helpers so that day-of-month
// clamping behaves identically everywhere it matters (recurrence
// projection and billing-cycle resolution must agree exactly).

// Date constructs a civil date at UTC midnight. Out-of-range values
// normalize the way time.Date does.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DateOf truncates t to its civil date at UTC midnight.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDate reports whether a and b fall on the same civil date.
func SameDate(a, b time.Time) bool {
	return DateOf(a).Equal(DateOf(b))
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this month.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ClampDay clamps day to the length of the given month.
// An anchor on day 31 projects onto April 30, February 28/29, and so on.
func ClampDay(year int, month time.Month, day int) int {
	if max := DaysIn(year, month); day > max {
		return max
	}
	return day
}

// AddMonthsClamped advances d by the given number of months, clamping the
// day-of-month to the target month's length instead of letting time.AddDate
// roll over (Jan 31 + 1 month is Feb 28/29 here, never Mar 2/3).
func AddMonthsClamped(d time.Time, months int) time.Time {
	y, m, day := d.UTC().Date()
	// Normalize the target month before clamping the day.
	target := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, time.UTC)
	ty, tm, _ := target.Date()
	return time.Date(ty, tm, ClampDay(ty, tm, day), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole days from a to b (negative when
// b precedes a). Both arguments are truncated to civil dates first.
func DaysBetween(a, b time.Time) int {
	return int(DateOf(b).Sub(DateOf(a)) / (24 * time.Hour))
}

// MonthsBetween returns the number of calendar months from a's month to
// b's month, ignoring the day-of-month.
func MonthsBetween(a, b time.Time) int {
	ay, am, _ := a.UTC().Date()
	by, bm, _ := b.UTC().Date()
	return (by-ay)*12 + int(bm-am)
}
