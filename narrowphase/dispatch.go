package narrowphase

import (
	"fmt"

	"github.com/gekko3d/collide/shape"
)

// Algorithm identifies the narrow-phase routine for a pair of shape types.
type Algorithm int

const (
	NoCollision Algorithm = iota
	SphereVsSphere
	SphereVsCapsule
	CapsuleVsCapsule
	SphereVsConvexPolyhedron
	CapsuleVsConvexPolyhedron
	ConvexPolyhedronVsConvexPolyhedron

	NbAlgorithms = 7
)

func (a Algorithm) String() string {
	switch a {
	case NoCollision:
		return "none"
	case SphereVsSphere:
		return "sphere-sphere"
	case SphereVsCapsule:
		return "sphere-capsule"
	case CapsuleVsCapsule:
		return "capsule-capsule"
	case SphereVsConvexPolyhedron:
		return "sphere-polyhedron"
	case CapsuleVsConvexPolyhedron:
		return "capsule-polyhedron"
	case ConvexPolyhedronVsConvexPolyhedron:
		return "polyhedron-polyhedron"
	}
	return fmt.Sprintf("Algorithm(%d)", int(a))
}

// Dispatch maps shape-type pairs to algorithms and owns the algorithm
// instances. Only the upper triangle of the matrix is filled; lookups swap
// the indices when needed.
type Dispatch struct {
	matrix [shape.NbTypes][shape.NbTypes]Algorithm

	sphereVsSphere         SphereVsSphereAlgorithm
	sphereVsCapsule        SphereVsCapsuleAlgorithm
	capsuleVsCapsule       CapsuleVsCapsuleAlgorithm
	sphereVsPolyhedron     SphereVsConvexPolyhedronAlgorithm
	capsuleVsPolyhedron    CapsuleVsConvexPolyhedronAlgorithm
	polyhedronVsPolyhedron ConvexPolyhedronVsConvexPolyhedronAlgorithm
}

func NewDispatch(cfg Config) *Dispatch {
	gjk := NewGJK(cfg)
	sat := NewSAT(cfg)
	d := &Dispatch{
		sphereVsPolyhedron:     SphereVsConvexPolyhedronAlgorithm{gjk: gjk, sat: sat},
		capsuleVsPolyhedron:    CapsuleVsConvexPolyhedronAlgorithm{gjk: gjk, sat: sat},
		polyhedronVsPolyhedron: ConvexPolyhedronVsConvexPolyhedronAlgorithm{sat: sat},
	}
	d.fillMatrix()
	return d
}

func (d *Dispatch) fillMatrix() {
	for i := 0; i < shape.NbTypes; i++ {
		for j := i; j < shape.NbTypes; j++ {
			d.matrix[i][j] = defaultAlgorithm(shape.Type(i), shape.Type(j))
		}
	}
}

func defaultAlgorithm(t1, t2 shape.Type) Algorithm {
	switch {
	case t1 == shape.TypeConcave || t2 == shape.TypeConcave:
		return NoCollision
	case t1 == shape.TypeSphere && t2 == shape.TypeSphere:
		return SphereVsSphere
	case t1 == shape.TypeSphere && t2 == shape.TypeCapsule:
		return SphereVsCapsule
	case t1 == shape.TypeCapsule && t2 == shape.TypeCapsule:
		return CapsuleVsCapsule
	case t1 == shape.TypeSphere && t2 == shape.TypeConvexPolyhedron:
		return SphereVsConvexPolyhedron
	case t1 == shape.TypeCapsule && t2 == shape.TypeConvexPolyhedron:
		return CapsuleVsConvexPolyhedron
	case t1 == shape.TypeConvexPolyhedron && t2 == shape.TypeConvexPolyhedron:
		return ConvexPolyhedronVsConvexPolyhedron
	}
	return NoCollision
}

func (d *Dispatch) SelectAlgorithm(t1, t2 shape.Type) Algorithm {
	if t1 > t2 {
		t1, t2 = t2, t1
	}
	return d.matrix[t1][t2]
}

// Run executes every batch of the input. Each entry ends with IsColliding
// set, contact points filled when it reports contacts, and its
// LastFrameCollisionInfo updated.
func (d *Dispatch) Run(in *Input) {
	for algo := SphereVsSphere; algo < NbAlgorithms; algo++ {
		batch := in.Batch(algo)
		if batch.Len() == 0 {
			continue
		}
		d.RunBatch(algo, batch)
	}
	in.Batch(NoCollision).markSeparated()
}

// RunBatch executes one algorithm over a whole batch.
func (d *Dispatch) RunBatch(algo Algorithm, batch *InfoBatch) {
	n := batch.Len()
	switch algo {
	case SphereVsSphere:
		d.sphereVsSphere.TestCollision(batch, 0, n)
	case SphereVsCapsule:
		d.sphereVsCapsule.TestCollision(batch, 0, n)
	case CapsuleVsCapsule:
		d.capsuleVsCapsule.TestCollision(batch, 0, n)
	case SphereVsConvexPolyhedron:
		d.sphereVsPolyhedron.TestCollision(batch, 0, n)
	case CapsuleVsConvexPolyhedron:
		d.capsuleVsPolyhedron.TestCollision(batch, 0, n)
	case ConvexPolyhedronVsConvexPolyhedron:
		d.polyhedronVsPolyhedron.TestCollision(batch, 0, n)
	default:
		batch.markSeparated()
	}
	for i := range batch.Infos {
		if lf := batch.Infos[i].LastFrame; lf != nil {
			lf.IsValid = true
			lf.WasColliding = batch.Infos[i].IsColliding
		}
	}
}

func (b *InfoBatch) markSeparated() {
	for i := range b.Infos {
		b.Infos[i].IsColliding = false
		b.Infos[i].ContactPoints = b.Infos[i].ContactPoints[:0]
	}
}
