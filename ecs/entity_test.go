package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntity_PackUnpack(t *testing.T) {
	tests := []struct {
		name       string
		index      uint32
		generation uint8
	}{
		{"zero", 0, 0},
		{"small", 42, 3},
		{"max index", EntityIndexMask, 0},
		{"max generation", 7, 255},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEntity(tt.index, tt.generation)
			assert.Equal(t, tt.index, e.Index())
			assert.Equal(t, tt.generation, e.Generation())
		})
	}
}

func TestEntity_IndexOverflowPanics(t *testing.T) {
	require.Panics(t, func() { NewEntity(EntityIndexMask+1, 0) })
}

func TestEntityManager_CreateDestroy(t *testing.T) {
	m := NewEntityManager()
	a := m.Create()
	b := m.Create()

	assert.NotEqual(t, a, b)
	assert.True(t, m.IsValid(a))
	assert.True(t, m.IsValid(b))
	assert.Equal(t, 2, m.Count())

	m.Destroy(a)
	assert.False(t, m.IsValid(a), "destroyed handle must become stale")
	assert.True(t, m.IsValid(b))
	assert.Equal(t, 1, m.Count())

	require.Panics(t, func() { m.Destroy(a) })
}

func TestEntityManager_RecyclesOnlyAfterMinimumFree(t *testing.T) {
	m := NewEntityManager()

	created := make([]Entity, 0, MinimumFreeIndices)
	for i := 0; i < MinimumFreeIndices; i++ {
		created = append(created, m.Create())
	}
	first := created[0]
	for _, e := range created {
		m.Destroy(e)
	}
	require.Equal(t, MinimumFreeIndices, m.PendingFree())

	// Exactly MinimumFreeIndices pending: the oldest index comes back
	// with a bumped generation.
	e := m.Create()
	assert.Equal(t, first.Index(), e.Index())
	assert.Equal(t, first.Generation()+1, e.Generation())
	assert.False(t, m.IsValid(first))
	assert.True(t, m.IsValid(e))

	// One short of the threshold, so the next one is fresh.
	require.Equal(t, MinimumFreeIndices-1, m.PendingFree())
	fresh := m.Create()
	assert.Equal(t, uint32(MinimumFreeIndices), fresh.Index())
	assert.Equal(t, uint8(0), fresh.Generation())
}

func TestEntityManager_NoRecycleBelowThreshold(t *testing.T) {
	m := NewEntityManager()
	e := m.Create()
	m.Destroy(e)

	next := m.Create()
	assert.NotEqual(t, e.Index(), next.Index())
}
