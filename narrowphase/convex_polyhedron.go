package narrowphase

import (
	"github.com/gekko3d/collide/shape"
)

// SphereVsConvexPolyhedronAlgorithm runs GJK first and falls back to SAT
// when the sphere centre is inside the polyhedron.
type SphereVsConvexPolyhedronAlgorithm struct {
	gjk     *GJK
	sat     *SAT
	results []GJKResult
}

func (a *SphereVsConvexPolyhedronAlgorithm) TestCollision(batch *InfoBatch, start, count int) {
	batch.ensureLastFrame(start, count)
	a.results = a.gjk.TestCollision(batch, start, count, a.results[:0])
	for k, result := range a.results {
		i := start + k
		info := &batch.Infos[i]
		lf := info.LastFrame
		switch result {
		case GJKCollideInMargin, GJKSeparated:
			lf.WasUsingGJK, lf.WasUsingSAT = true, false
			info.IsColliding = result == GJKCollideInMargin
		case GJKInterpenetrate:
			lf.WasUsingGJK, lf.WasUsingSAT = false, true
			info.IsColliding = a.sat.testSphereVsPolyhedron(viewOf(batch, i, shape.TypeSphere))
		}
	}
}

// CapsuleVsConvexPolyhedronAlgorithm runs GJK first and falls back to SAT
// when the capsule segment intersects the polyhedron. A capsule lying on a
// face within its margin gets its single GJK contact replaced by two.
type CapsuleVsConvexPolyhedronAlgorithm struct {
	gjk     *GJK
	sat     *SAT
	results []GJKResult
}

func (a *CapsuleVsConvexPolyhedronAlgorithm) TestCollision(batch *InfoBatch, start, count int) {
	batch.ensureLastFrame(start, count)
	a.results = a.gjk.TestCollision(batch, start, count, a.results[:0])
	for k, result := range a.results {
		i := start + k
		info := &batch.Infos[i]
		lf := info.LastFrame
		switch result {
		case GJKCollideInMargin:
			lf.WasUsingGJK, lf.WasUsingSAT = true, false
			info.IsColliding = true
			if info.ReportContacts && len(info.ContactPoints) == 1 {
				a.sat.refineCapsuleContactInMargin(viewOf(batch, i, shape.TypeCapsule), info.ContactPoints[0])
			}
		case GJKSeparated:
			lf.WasUsingGJK, lf.WasUsingSAT = true, false
			info.IsColliding = false
		case GJKInterpenetrate:
			lf.WasUsingGJK, lf.WasUsingSAT = false, true
			info.IsColliding = a.sat.testCapsuleVsPolyhedron(viewOf(batch, i, shape.TypeCapsule))
		}
	}
}

// ConvexPolyhedronVsConvexPolyhedronAlgorithm always uses SAT, which also
// covers triangles.
type ConvexPolyhedronVsConvexPolyhedronAlgorithm struct {
	sat *SAT
}

func (a *ConvexPolyhedronVsConvexPolyhedronAlgorithm) TestCollision(batch *InfoBatch, start, count int) {
	batch.ensureLastFrame(start, count)
	for i := start; i < start+count; i++ {
		v := viewOf(batch, i, shape.TypeConvexPolyhedron)
		colliding := a.sat.testPolyhedronVsPolyhedron(v)
		lf := v.lastFrame()
		lf.WasUsingGJK, lf.WasUsingSAT = false, true
		batch.Infos[i].IsColliding = colliding
	}
}
