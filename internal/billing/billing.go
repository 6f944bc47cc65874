// Package billing resolves the settlement date of an obligation: the
// date a card operation actually hits its billing cycle, as opposed to
// the operation date it was incurred on.
package billing

import (
	"time"

	"github.com/roach88/dueline/internal/ledger"
)

// ResolveSettlementDate maps an operation date and instrument to the
// settlement date.
//
// Cash settles on the operation date. For a card instrument, an
// operation on or before the cycle's closing day settles on the same
// month's due day; a later operation rolls to the next month's due day.
// The due day is clamped to the target month's length with the same
// rule the recurrence evaluator uses.
//
// Pure, deterministic, and idempotent: repeated identical calls return
// the same date. An unknown instrument name yields a NotFoundError.
func ResolveSettlementDate(operationDate time.Time, instrumentName string, instruments []ledger.Instrument) (time.Time, error) {
	opDate := ledger.DateOf(operationDate)

	if instrumentName == ledger.CashInstrument || instrumentName == "" {
		return opDate, nil
	}

	in, ok := ledger.FindInstrument(instruments, instrumentName)
	if !ok {
		return time.Time{}, &ledger.NotFoundError{ID: instrumentName}
	}

	y, m, d := opDate.Date()
	if d > in.ClosingDay {
		m++ // rolls into the next cycle
	}
	// Normalize a December rollover before clamping the due day.
	first := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	ty, tm, _ := first.Date()
	return ledger.Date(ty, tm, ledger.ClampDay(ty, tm, in.DueDay)), nil
}
