package narrowphase

import (
	"github.com/gekko3d/collide/ecs"
	"github.com/gekko3d/collide/geom"
	"github.com/gekko3d/collide/shape"
)

// Input collects the frame's pending tests, one batch per algorithm.
type Input struct {
	batches [NbAlgorithms]InfoBatch
}

func NewInput(maxContactPoints int) *Input {
	in := &Input{}
	for i := range in.batches {
		in.batches[i].setMaxContactPoints(maxContactPoints)
	}
	return in
}

func (in *Input) AddNarrowPhaseTest(pairID uint64, collider1, collider2 ecs.Entity, shape1, shape2 shape.Shape,
	transform1, transform2 geom.Transform, algo Algorithm, reportContacts bool, lastFrame *LastFrameCollisionInfo) {

	in.batches[algo].AddNarrowPhaseInfo(pairID, collider1, collider2, shape1, shape2, transform1, transform2, lastFrame, reportContacts)
}

func (in *Input) Batch(algo Algorithm) *InfoBatch {
	return &in.batches[algo]
}

// Len is the total number of pending tests.
func (in *Input) Len() int {
	n := 0
	for i := range in.batches {
		n += in.batches[i].Len()
	}
	return n
}

// ReserveMemory sizes every batch for the number of pairs of the frame.
func (in *Input) ReserveMemory(counts [NbAlgorithms]int) {
	for i := range in.batches {
		in.batches[i].ReserveMemory(counts[i])
	}
}

func (in *Input) Clear() {
	for i := range in.batches {
		in.batches[i].Clear()
	}
}
