package narrowphase

import (
	"math"

	"github.com/gekko3d/collide/geom"
	"github.com/gekko3d/collide/shape"
)

// SphereVsCapsuleAlgorithm tests a sphere against the inner segment of a
// capsule.
type SphereVsCapsuleAlgorithm struct{}

func (a *SphereVsCapsuleAlgorithm) TestCollision(batch *InfoBatch, start, count int) {
	for i := start; i < start+count; i++ {
		v := viewOf(batch, i, shape.TypeSphere)
		sphere := v.shape1.(*shape.Sphere)
		capsule := v.shape2.(*shape.Capsule)

		// everything below is in capsule space
		centre := v.tr2.Inverse().Apply(v.tr1.Position)
		segA, segB := capsule.Segment()
		onSegment := geom.ClosestPointOnSegment(segA, segB, centre)

		toSegment := onSegment.Sub(centre)
		distSq := toSegment.LenSqr()
		sumR := sphere.Radius() + capsule.Radius()
		if distSq >= sumR*sumR {
			v.info().IsColliding = false
			continue
		}
		v.info().IsColliding = true
		if !v.reportContacts() {
			continue
		}

		dist := math.Sqrt(distSq)
		normal := geom.OrthogonalVector(segB.Sub(segA))
		if dist > geom.MachineEpsilon {
			normal = toSegment.Mul(1 / dist)
		}
		normalWorld := v.tr2.ApplyVector(normal)
		sphereLocal := v.tr1.InverseApplyVector(normalWorld.Mul(sphere.Radius()))
		capsuleLocal := onSegment.Sub(normal.Mul(capsule.Radius()))
		v.addContact(normalWorld, sumR-dist, sphereLocal, capsuleLocal)
	}
}
