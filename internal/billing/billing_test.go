package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dueline/internal/ledger"
)

var cards = []ledger.Instrument{
	{Name: "visa", ClosingDay: 10, DueDay: 20},
	{Name: "amex", ClosingDay: 25, DueDay: 31},
}

func TestResolveSettlementDate_Cash(t *testing.T) {
	op := ledger.Date(2025, time.March, 15)

	got, err := ResolveSettlementDate(op, ledger.CashInstrument, cards)
	require.NoError(t, err)
	assert.Equal(t, op, got, "cash settles on the operation date")
}

func TestResolveSettlementDate_SameCycle(t *testing.T) {
	// Spec example: closing 10, due 20 -> 2025-03-08 settles 2025-03-20.
	got, err := ResolveSettlementDate(ledger.Date(2025, time.March, 8), "visa", cards)
	require.NoError(t, err)
	assert.Equal(t, ledger.Date(2025, time.March, 20), got)
}

func TestResolveSettlementDate_ClosingDayBoundary(t *testing.T) {
	// Day 10 is inside the cycle; day 11 is the first of the next one.
	got, err := ResolveSettlementDate(ledger.Date(2025, time.March, 10), "visa", cards)
	require.NoError(t, err)
	assert.Equal(t, ledger.Date(2025, time.March, 20), got)

	got, err = ResolveSettlementDate(ledger.Date(2025, time.March, 11), "visa", cards)
	require.NoError(t, err)
	assert.Equal(t, ledger.Date(2025, time.April, 20), got)
}

func TestResolveSettlementDate_NextCycle(t *testing.T) {
	// Spec example: 2025-03-15 settles 2025-04-20.
	got, err := ResolveSettlementDate(ledger.Date(2025, time.March, 15), "visa", cards)
	require.NoError(t, err)
	assert.Equal(t, ledger.Date(2025, time.April, 20), got)
}

func TestResolveSettlementDate_DueDayClampedToShortMonth(t *testing.T) {
	// Due day 31 in April clamps to April 30.
	got, err := ResolveSettlementDate(ledger.Date(2025, time.April, 12), "amex", cards)
	require.NoError(t, err)
	assert.Equal(t, ledger.Date(2025, time.April, 30), got)
}

func TestResolveSettlementDate_DecemberRollsToJanuary(t *testing.T) {
	got, err := ResolveSettlementDate(ledger.Date(2025, time.December, 28), "visa", cards)
	require.NoError(t, err)
	assert.Equal(t, ledger.Date(2026, time.January, 20), got)
}

func TestResolveSettlementDate_UnknownInstrument(t *testing.T) {
	_, err := ResolveSettlementDate(ledger.Date(2025, time.March, 8), "nope", cards)
	assert.True(t, ledger.IsNotFound(err))
}

func TestResolveSettlementDate_Idempotent(t *testing.T) {
	op := ledger.Date(2025, time.March, 15)

	first, err := ResolveSettlementDate(op, "visa", cards)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		again, err := ResolveSettlementDate(op, "visa", cards)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
