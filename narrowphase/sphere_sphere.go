package narrowphase

import (
	"math"

	"github.com/gekko3d/collide/geom"
	"github.com/gekko3d/collide/shape"
	"github.com/go-gl/mathgl/mgl64"
)

// SphereVsSphereAlgorithm is the closed-form sphere test.
type SphereVsSphereAlgorithm struct{}

func (a *SphereVsSphereAlgorithm) TestCollision(batch *InfoBatch, start, count int) {
	for i := start; i < start+count; i++ {
		info := &batch.Infos[i]
		s1 := info.Shape1.(*shape.Sphere)
		s2 := info.Shape2.(*shape.Sphere)
		tr1, tr2 := info.Transform1, info.Transform2

		between := tr2.Position.Sub(tr1.Position)
		distSq := between.LenSqr()
		sumR := s1.Radius() + s2.Radius()
		if distSq >= sumR*sumR {
			info.IsColliding = false
			continue
		}
		info.IsColliding = true
		if !info.ReportContacts {
			continue
		}

		dist := math.Sqrt(distSq)
		normal := mgl64.Vec3{0, 1, 0}
		if dist > geom.MachineEpsilon {
			normal = between.Mul(1 / dist)
		}
		local1 := tr1.InverseApplyVector(normal.Mul(s1.Radius()))
		local2 := tr2.InverseApplyVector(normal.Mul(-s2.Radius()))
		batch.AddContactPoint(i, normal, sumR-dist, local1, local2)
	}
}
