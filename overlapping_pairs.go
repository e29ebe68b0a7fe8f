package collide

import "fmt"

// PairID combines two broad-phase ids into a key that does not depend on
// their order (Szudzik pairing of max and min).
func PairID(broadPhaseID1, broadPhaseID2 int) uint64 {
	a, b := uint64(broadPhaseID1), uint64(broadPhaseID2)
	if a < b {
		a, b = b, a
	}
	return a*a + a + b
}

// OverlappingPairs stores the pairs densely with an id to index map.
// Removing a pair moves the last one into its slot.
type OverlappingPairs struct {
	pairs []OverlappingPair
	index map[uint64]int
}

func NewOverlappingPairs() *OverlappingPairs {
	return &OverlappingPairs{index: make(map[uint64]int)}
}

func (p *OverlappingPairs) Len() int { return len(p.pairs) }

func (p *OverlappingPairs) Has(id uint64) bool {
	_, ok := p.index[id]
	return ok
}

// At returns the pair stored at index i. The pointer is invalidated by Add
// and Remove.
func (p *OverlappingPairs) At(i int) *OverlappingPair { return &p.pairs[i] }

func (p *OverlappingPairs) Get(id uint64) (*OverlappingPair, bool) {
	i, ok := p.index[id]
	if !ok {
		return nil, false
	}
	return &p.pairs[i], true
}

func (p *OverlappingPairs) Add(pair OverlappingPair) {
	if p.Has(pair.ID) {
		panic(fmt.Sprintf("collide: pair %d already exists", pair.ID))
	}
	p.index[pair.ID] = len(p.pairs)
	p.pairs = append(p.pairs, pair)
}

func (p *OverlappingPairs) Remove(id uint64) OverlappingPair {
	i, ok := p.index[id]
	if !ok {
		panic(fmt.Sprintf("collide: unknown pair %d", id))
	}
	removed := p.pairs[i]
	last := len(p.pairs) - 1
	if i != last {
		p.pairs[i] = p.pairs[last]
		p.index[p.pairs[i].ID] = i
	}
	p.pairs[last] = OverlappingPair{}
	p.pairs = p.pairs[:last]
	delete(p.index, id)
	return removed
}
