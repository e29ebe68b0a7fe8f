package narrowphase

import (
	"math"

	"github.com/gekko3d/collide/geom"
	"github.com/gekko3d/collide/shape"
	"github.com/go-gl/mathgl/mgl64"
)

type GJKResult int

const (
	// GJKSeparated means the shapes (margins included) do not touch.
	GJKSeparated GJKResult = iota
	// GJKCollideInMargin means only the margins overlap. A single contact was
	// computed.
	GJKCollideInMargin
	// GJKInterpenetrate means the cores overlap and GJK cannot tell how
	// deep; the caller falls back to SAT.
	GJKInterpenetrate
)

func (r GJKResult) String() string {
	switch r {
	case GJKSeparated:
		return "separated"
	case GJKCollideInMargin:
		return "collide in margin"
	case GJKInterpenetrate:
		return "interpenetrate"
	}
	return "unknown"
}

// GJK computes the distance between the cores of two convex shapes and
// reports contacts when only their margins overlap.
type GJK struct {
	relErrorSq float64
}

func NewGJK(cfg Config) *GJK {
	relErr := cfg.GJKRelativeError
	if relErr <= 0 {
		relErr = DefaultGJKRelativeError
	}
	return &GJK{relErrorSq: relErr * relErr}
}

// TestCollision runs GJK on entries [start, start+count) of the batch and
// appends one result per entry to results.
func (g *GJK) TestCollision(batch *InfoBatch, start, count int, results []GJKResult) []GJKResult {
	for i := start; i < start+count; i++ {
		results = append(results, g.testPair(batch, i))
	}
	return results
}

func (g *GJK) testPair(batch *InfoBatch, i int) GJKResult {
	info := &batch.Infos[i]
	s1 := info.Shape1.(shape.ConvexShape)
	s2 := info.Shape2.(shape.ConvexShape)
	tr1, tr2 := info.Transform1, info.Transform2
	lf := info.LastFrame

	body2ToBody1 := tr1.Inverse().Mul(tr2)
	rotateToBody2 := tr2.Orientation.Inverse().Mul(tr1.Orientation)
	margin := s1.Margin() + s2.Margin()
	marginSq := margin * margin

	v := mgl64.Vec3{0, 1, 0}
	if lf != nil && lf.IsValid && lf.WasUsingGJK && lf.GJKSeparatingAxis.LenSqr() > geom.MachineEpsilon {
		v = lf.GJKSeparatingAxis
	}

	var simplex VoronoiSimplex
	distSq := math.MaxFloat64
	for {
		suppA := s1.LocalSupportPointWithoutMargin(v.Mul(-1))
		suppB := body2ToBody1.Apply(s2.LocalSupportPointWithoutMargin(rotateToBody2.Rotate(v)))
		w := suppA.Sub(suppB)

		vDotw := v.Dot(w)
		if vDotw > 0 && vDotw*vDotw > distSq*marginSq {
			if lf != nil {
				lf.GJKSeparatingAxis = v
			}
			return GJKSeparated
		}

		// converged: no more progress along v
		if simplex.IsPointInSimplex(w) || distSq-vDotw <= distSq*g.relErrorSq {
			break
		}

		// every other exit means the cores overlap or the simplex degenerated
		// around the origin; SAT gives the penetration then
		simplex.AddPoint(w, suppA, suppB)
		if simplex.IsAffinelyDependent() {
			return GJKInterpenetrate
		}
		closest, ok := simplex.ComputeClosestPoint()
		if !ok {
			return GJKInterpenetrate
		}
		v = closest

		prevDistSq := distSq
		distSq = v.LenSqr()
		if prevDistSq-distSq <= geom.MachineEpsilon*prevDistSq {
			break
		}
		if simplex.IsFull() || distSq <= geom.MachineEpsilon*simplex.MaxLengthSquareOfAPoint() {
			return GJKInterpenetrate
		}
	}

	dist := math.Sqrt(distSq)
	if dist <= geom.MachineEpsilon {
		return GJKInterpenetrate
	}
	if lf != nil {
		lf.GJKSeparatingAxis = v
	}
	penetration := margin - dist
	if penetration <= 0 {
		return GJKSeparated
	}

	if info.ReportContacts {
		pA, pB := simplex.ClosestPointsOfAandB()
		unit := v.Mul(1 / dist)
		pA = pA.Sub(unit.Mul(s1.Margin()))
		pB = body2ToBody1.Inverse().Apply(pB.Add(unit.Mul(s2.Margin())))
		normal := tr1.ApplyVector(unit.Mul(-1))
		view := pairView{batch: batch, index: i, shape1: info.Shape1, shape2: info.Shape2, tr1: tr1, tr2: tr2}
		view.addContact(normal, penetration, pA, pB)
	}
	return GJKCollideInMargin
}
