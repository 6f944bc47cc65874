package sync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dueline/internal/ledger"
)

func rec(id string, modified time.Time, desc string) *ledger.Obligation {
	return &ledger.Obligation{ID: id, Description: desc, ModifiedAt: modified}
}

func TestMergeRecords_LaterModificationWins(t *testing.T) {
	t1 := time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	local := []*ledger.Obligation{rec("a", t2, "local-newer"), rec("b", t1, "local-older")}
	rem := []*ledger.Obligation{rec("a", t1, "remote-older"), rec("b", t2, "remote-newer")}

	out := mergeRecords(local, rem, nil)
	require.Len(t, out, 2)
	assert.Equal(t, "local-newer", out[0].Description)
	assert.Equal(t, "remote-newer", out[1].Description)
}

func TestMergeRecords_TieFavorsRemote(t *testing.T) {
	t1 := time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC)

	out := mergeRecords(
		[]*ledger.Obligation{rec("a", t1, "local")},
		[]*ledger.Obligation{rec("a", t1, "remote")},
		nil,
	)
	require.Len(t, out, 1)
	assert.Equal(t, "remote", out[0].Description)
}

func TestMergeRecords_LocalOnlyKept(t *testing.T) {
	t1 := time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC)

	out := mergeRecords(
		[]*ledger.Obligation{rec("local-only", t1, "mine")},
		nil,
		nil,
	)
	require.Len(t, out, 1)
	assert.Equal(t, "local-only", out[0].ID)
}

func TestMergeRecords_RemoteOnlyAdopted(t *testing.T) {
	t1 := time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC)

	out := mergeRecords(
		[]*ledger.Obligation{rec("a", t1, "a")},
		[]*ledger.Obligation{rec("a", t1, "a"), rec("new", t1, "theirs")},
		nil,
	)
	require.Len(t, out, 2)
	assert.Equal(t, "new", out[1].ID)
}

func TestMergeRecords_TombstoneSuppressesResurrection(t *testing.T) {
	t1 := time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC)

	out := mergeRecords(
		nil,
		[]*ledger.Obligation{rec("deleted-here", t1, "stale")},
		map[string]bool{"deleted-here": true},
	)
	assert.Empty(t, out)
}

func TestMergeRecords_PreservesLocalOrder(t *testing.T) {
	t1 := time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC)

	local := []*ledger.Obligation{rec("c", t1, "c"), rec("a", t1, "a"), rec("b", t1, "b")}
	out := mergeRecords(local, nil, nil)
	require.Len(t, out, 3)
	assert.Equal(t, "c", out[0].ID)
	assert.Equal(t, "a", out[1].ID)
	assert.Equal(t, "b", out[2].ID)
}

func TestMergeBudgets(t *testing.T) {
	t1 := time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	local := []ledger.Budget{
		{ID: "b1", Tag: "food", Amount: 100, ModifiedAt: t2},
		{ID: "b2", Tag: "fun", Amount: 50, ModifiedAt: t1},
	}
	rem := []ledger.Budget{
		{ID: "b1", Tag: "food", Amount: 999, ModifiedAt: t1},
		{ID: "b3", Tag: "rent", Amount: 700, ModifiedAt: t1},
		{ID: "b4", Tag: "gone", Amount: 1, ModifiedAt: t1},
	}

	out := mergeBudgets(local, rem, map[string]bool{"b4": true})
	require.Len(t, out, 3)
	assert.Equal(t, int64(100), out[0].Amount, "newer local wins")
	assert.Equal(t, "b2", out[1].ID)
	assert.Equal(t, "b3", out[2].ID, "remote-only adopted")
}
