package ecs

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRow struct {
	owner Entity
	value int
}

func checkTable(t *testing.T, tbl *Table[testRow], disabled map[Entity]bool) {
	t.Helper()
	require.Equal(t, len(disabled), tbl.Len())
	for i := 0; i < tbl.Len(); i++ {
		e := tbl.EntityAt(i)
		require.Equal(t, i, tbl.IndexOf(e), "entity->row map out of sync at row %d", i)
		require.Equal(t, e, tbl.At(i).owner, "row %d carries data of another entity", i)
		isDisabled, ok := disabled[e]
		require.True(t, ok, "unexpected entity %v", e)
		if isDisabled {
			require.GreaterOrEqual(t, i, tbl.DisabledStart(), "disabled %v in enabled partition", e)
		} else {
			require.Less(t, i, tbl.DisabledStart(), "enabled %v in disabled partition", e)
		}
	}
}

func TestTable_AddRemove(t *testing.T) {
	m := NewEntityManager()
	tbl := NewTable[testRow]("test", 4)

	a, b, c := m.Create(), m.Create(), m.Create()
	tbl.Add(a, false, testRow{owner: a, value: 1})
	tbl.Add(b, true, testRow{owner: b, value: 2})
	tbl.Add(c, false, testRow{owner: c, value: 3})

	assert.Equal(t, 3, tbl.Len())
	assert.Equal(t, 2, tbl.DisabledStart())
	assert.True(t, tbl.IsDisabled(b))
	assert.Equal(t, 3, tbl.Get(c).value)

	tbl.Remove(a)
	checkTable(t, tbl, map[Entity]bool{b: true, c: false})
	assert.False(t, tbl.Has(a))
	assert.Equal(t, []testRow{{owner: c, value: 3}}, tbl.Enabled())
}

func TestTable_SetDisabled(t *testing.T) {
	m := NewEntityManager()
	tbl := NewTable[testRow]("test", 4)
	state := map[Entity]bool{}
	for i := 0; i < 5; i++ {
		e := m.Create()
		tbl.Add(e, false, testRow{owner: e, value: i})
		state[e] = false
	}

	e := tbl.EntityAt(1)
	tbl.SetDisabled(e, true)
	state[e] = true
	checkTable(t, tbl, state)

	// toggling to the current state is a no-op
	tbl.SetDisabled(e, true)
	checkTable(t, tbl, state)

	tbl.SetDisabled(e, false)
	state[e] = false
	checkTable(t, tbl, state)
}

func TestTable_MissingRowPanics(t *testing.T) {
	tbl := NewTable[testRow]("colliders", 0)
	e := NewEntity(3, 0)

	require.PanicsWithValue(t, "ecs: colliders has no row for Entity(3:0)", func() { tbl.Get(e) })
	require.Panics(t, func() { tbl.Remove(e) })
	require.Panics(t, func() { tbl.SetDisabled(e, true) })

	_, ok := tbl.Lookup(e)
	assert.False(t, ok)
}

func TestTable_DuplicateAddPanics(t *testing.T) {
	tbl := NewTable[testRow]("test", 0)
	e := NewEntity(1, 0)
	tbl.Add(e, false, testRow{owner: e})
	require.Panics(t, func() { tbl.Add(e, true, testRow{owner: e}) })
}

func TestTable_RandomOperationsKeepPartitions(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	m := NewEntityManager()
	tbl := NewTable[testRow]("random", 0)
	state := map[Entity]bool{}
	live := []Entity{}

	for step := 0; step < 2000; step++ {
		switch op := rng.Intn(4); {
		case op == 0 || len(live) == 0:
			e := m.Create()
			dis := rng.Intn(3) == 0
			tbl.Add(e, dis, testRow{owner: e, value: step})
			state[e] = dis
			live = append(live, e)
		case op == 1:
			i := rng.Intn(len(live))
			e := live[i]
			tbl.Remove(e)
			delete(state, e)
			live[i] = live[len(live)-1]
			live = live[:len(live)-1]
			m.Destroy(e)
		default:
			e := live[rng.Intn(len(live))]
			dis := rng.Intn(2) == 0
			tbl.SetDisabled(e, dis)
			state[e] = dis
		}
		checkTable(t, tbl, state)
	}
}
