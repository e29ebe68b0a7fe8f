package collide

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPairID(t *testing.T) {
	assert.Equal(t, PairID(3, 7), PairID(7, 3))
	assert.Equal(t, uint64(2), PairID(0, 1))
	assert.Equal(t, uint64(14), PairID(2, 3))

	seen := make(map[uint64][2]int)
	for a := 0; a < 50; a++ {
		for b := 0; b < a; b++ {
			id := PairID(a, b)
			prev, dup := seen[id]
			require.False(t, dup, "(%d,%d) collides with %v", a, b, prev)
			seen[id] = [2]int{a, b}
		}
	}
}

func TestOverlappingPairs_AddRemove(t *testing.T) {
	p := NewOverlappingPairs()
	for _, ids := range [][2]int{{0, 1}, {0, 2}, {1, 2}} {
		p.Add(OverlappingPair{ID: PairID(ids[0], ids[1]), BroadPhaseID1: ids[0], BroadPhaseID2: ids[1]})
	}
	require.Equal(t, 3, p.Len())
	assert.Panics(t, func() { p.Add(OverlappingPair{ID: PairID(1, 0)}) })

	removed := p.Remove(PairID(0, 1))
	assert.Equal(t, 0, removed.BroadPhaseID1)
	assert.Equal(t, 2, p.Len())
	assert.False(t, p.Has(PairID(0, 1)))

	last, ok := p.Get(PairID(1, 2))
	require.True(t, ok)
	assert.Same(t, p.At(0), last, "the last pair fills the removed slot")

	_, ok = p.Get(PairID(5, 6))
	assert.False(t, ok)
	assert.Panics(t, func() { p.Remove(PairID(5, 6)) })
}
