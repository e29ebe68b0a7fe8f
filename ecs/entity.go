package ecs

import "fmt"

const (
	EntityIndexBits      = 24
	EntityIndexMask      = 1<<EntityIndexBits - 1
	EntityGenerationBits = 8
	EntityGenerationMask = 1<<EntityGenerationBits - 1

	// MinimumFreeIndices is how many destroyed indices must be pending before
	// the manager starts recycling them. Delaying reuse keeps generations from
	// wrapping quickly on a hot index.
	MinimumFreeIndices = 1024
)

// Entity packs a 24-bit index and an 8-bit generation.
type Entity uint32

func NewEntity(index uint32, generation uint8) Entity {
	if index > EntityIndexMask {
		panic(fmt.Sprintf("entity index %d does not fit in %d bits", index, EntityIndexBits))
	}
	return Entity(uint32(generation)<<EntityIndexBits | index)
}

func (e Entity) Index() uint32 {
	return uint32(e) & EntityIndexMask
}

func (e Entity) Generation() uint8 {
	return uint8((uint32(e) >> EntityIndexBits) & EntityGenerationMask)
}

func (e Entity) String() string {
	return fmt.Sprintf("Entity(%d:%d)", e.Index(), e.Generation())
}

// EntityManager hands out entities and recycles indices through a FIFO queue.
type EntityManager struct {
	generations []uint8
	freeIndices []uint32
	alive       int
}

func NewEntityManager() *EntityManager {
	return &EntityManager{
		generations: make([]uint8, 0, 64),
		freeIndices: make([]uint32, 0, MinimumFreeIndices),
	}
}

func (m *EntityManager) Create() Entity {
	var index uint32
	if len(m.freeIndices) >= MinimumFreeIndices {
		index = m.freeIndices[0]
		m.freeIndices = m.freeIndices[1:]
	} else {
		if len(m.generations) > EntityIndexMask {
			panic("ecs: entity index space exhausted")
		}
		m.generations = append(m.generations, 0)
		index = uint32(len(m.generations) - 1)
	}
	m.alive++
	return NewEntity(index, m.generations[index])
}

func (m *EntityManager) IsValid(e Entity) bool {
	idx := e.Index()
	return int(idx) < len(m.generations) && m.generations[idx] == e.Generation()
}

// Destroy invalidates e; destroying a stale entity is a programming error.
func (m *EntityManager) Destroy(e Entity) {
	if !m.IsValid(e) {
		panic(fmt.Sprintf("ecs: destroy of invalid %v", e))
	}
	idx := e.Index()
	m.generations[idx]++
	m.freeIndices = append(m.freeIndices, idx)
	m.alive--
}

// Count returns the number of live entities.
func (m *EntityManager) Count() int {
	return m.alive
}

func (m *EntityManager) PendingFree() int {
	return len(m.freeIndices)
}
