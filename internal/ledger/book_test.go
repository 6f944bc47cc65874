package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBook_GetAndLen(t *testing.T) {
	b := NewBook(
		&Obligation{ID: "a"},
		&Obligation{ID: "b"},
	)

	assert.Equal(t, 2, b.Len())

	got, ok := b.Get("a")
	require.True(t, ok)
	assert.Equal(t, "a", got.ID)

	_, ok = b.Get("missing")
	assert.False(t, ok)
}

func TestBook_Replace_SwapsSnapshot(t *testing.T) {
	b := NewBook(&Obligation{ID: "a"})
	old := b.List()

	b.Replace([]*Obligation{{ID: "x"}, {ID: "y"}})

	assert.Len(t, old, 1, "previous snapshot is untouched")
	assert.Equal(t, 2, b.Len())
	_, ok := b.Get("a")
	assert.False(t, ok, "index follows the new list")
}

func TestBook_Append_DoesNotMutatePriorSnapshot(t *testing.T) {
	b := NewBook(&Obligation{ID: "a"})
	old := b.List()

	b.Append(&Obligation{ID: "b"})

	assert.Len(t, old, 1)
	assert.Equal(t, 2, b.Len())
	_, ok := b.Get("b")
	assert.True(t, ok)
}

func TestBook_FindMaster_SingleHop(t *testing.T) {
	master := &Obligation{ID: "m1", Rule: RuleMonthly}
	override := &Obligation{ID: "o1", ParentID: "m1"}
	b := NewBook(master, override)

	got, ok := b.FindMaster(override)
	require.True(t, ok)
	assert.Same(t, master, got)

	got, ok = b.FindMaster(master)
	require.True(t, ok)
	assert.Same(t, master, got, "a master is its own master")
}

func TestBook_FindMaster_DanglingParent(t *testing.T) {
	orphan := &Obligation{ID: "o1", ParentID: "gone"}
	b := NewBook(orphan)

	_, ok := b.FindMaster(orphan)
	assert.False(t, ok)
}

func TestBook_Overrides(t *testing.T) {
	b := NewBook(
		&Obligation{ID: "m1", Rule: RuleMonthly},
		&Obligation{ID: "o1", ParentID: "m1"},
		&Obligation{ID: "o2", ParentID: "m1"},
		&Obligation{ID: "other"},
	)

	ovs := b.Overrides("m1")
	require.Len(t, ovs, 2)
	assert.Equal(t, "o1", ovs[0].ID)
	assert.Equal(t, "o2", ovs[1].ID)
}

func TestBook_UpdateInPlace(t *testing.T) {
	b := NewBook(&Obligation{ID: "m1", Description: "old"})

	ok := b.UpdateInPlace("m1", func(o *Obligation) {
		o.Description = "new"
	})
	require.True(t, ok)

	got, _ := b.Get("m1")
	assert.Equal(t, "new", got.Description)

	assert.False(t, b.UpdateInPlace("missing", func(o *Obligation) {}))
}
