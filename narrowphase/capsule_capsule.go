package narrowphase

import (
	"math"

	"github.com/gekko3d/collide/geom"
	"github.com/gekko3d/collide/shape"
	"github.com/go-gl/mathgl/mgl64"
)

// CapsuleVsCapsuleAlgorithm tests the inner segments of two capsules. Parallel
// overlapping capsules get two contacts so they can rest on each other.
type CapsuleVsCapsuleAlgorithm struct{}

func (a *CapsuleVsCapsuleAlgorithm) TestCollision(batch *InfoBatch, start, count int) {
	for i := start; i < start+count; i++ {
		v := viewOf(batch, i, shape.TypeCapsule)
		v.info().IsColliding = a.testPair(v)
	}
}

func (a *CapsuleVsCapsuleAlgorithm) testPair(v pairView) bool {
	c1 := v.shape1.(*shape.Capsule)
	c2 := v.shape2.(*shape.Capsule)
	r1, r2 := c1.Radius(), c2.Radius()
	sumR := r1 + r2

	// capsule 1 space
	twoToOne := v.tr1.Inverse().Mul(v.tr2)
	a1, b1 := c1.Segment()
	a2, b2 := c2.Segment()
	a2, b2 = twoToOne.Apply(a2), twoToOne.Apply(b2)
	dir1, dir2 := b1.Sub(a1), b2.Sub(a2)

	if dir1.Cross(dir2).LenSqr() < geom.MachineEpsilon {
		perp := geom.PointToLineDistance(a1, b1, a2)
		if perp > geom.MachineEpsilon && perp < sumR {
			if a.parallelContacts(v, twoToOne, a1, dir1, a2, b2, r1, r2, perp) {
				return true
			}
		}
	}

	p1, p2 := geom.ClosestPointsBetweenSegments(a1, b1, a2, b2)
	between := p2.Sub(p1)
	distSq := between.LenSqr()
	if distSq >= sumR*sumR {
		return false
	}
	if !v.reportContacts() {
		return true
	}

	dist := math.Sqrt(distSq)
	var normal mgl64.Vec3
	switch {
	case dist > geom.MachineEpsilon:
		normal = between.Mul(1 / dist)
	case dir1.Cross(dir2).LenSqr() > geom.MachineEpsilon:
		normal = dir1.Cross(dir2).Normalize()
	default:
		normal = geom.OrthogonalVector(dir1)
	}
	oneToTwo := twoToOne.Inverse()
	local1 := p1.Add(normal.Mul(r1))
	local2 := oneToTwo.Apply(p2.Sub(normal.Mul(r2)))
	v.addContact(v.tr1.ApplyVector(normal), sumR-dist, local1, local2)
	return true
}

// parallelContacts emits one contact at each end of the overlap of two
// parallel segments. It reports false when their projections do not overlap.
func (a *CapsuleVsCapsuleAlgorithm) parallelContacts(v pairView, twoToOne geom.Transform,
	a1, dir1, a2, b2 mgl64.Vec3, r1, r2, perp float64) bool {

	lenSq := dir1.LenSqr()
	t1 := a2.Sub(a1).Dot(dir1) / lenSq
	t2 := b2.Sub(a1).Dot(dir1) / lenSq
	lo := geom.Clamp(math.Min(t1, t2), 0, 1)
	hi := geom.Clamp(math.Max(t1, t2), 0, 1)
	if lo >= hi {
		return false
	}
	if !v.reportContacts() {
		return true
	}

	oneToTwo := twoToOne.Inverse()
	depth := r1 + r2 - perp
	for _, t := range [2]float64{lo, hi} {
		p1 := a1.Add(dir1.Mul(t))
		p2 := geom.ClosestPointOnSegment(a2, b2, p1)
		normal := geom.Unit(p2.Sub(p1))
		v.addContact(v.tr1.ApplyVector(normal), depth, p1.Add(normal.Mul(r1)), oneToTwo.Apply(p2.Sub(normal.Mul(r2))))
	}
	return true
}
