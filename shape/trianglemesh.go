package shape

import (
	"github.com/gekko3d/collide/geom"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/rotisserie/eris"
)

// TriangleMesh is a concave shape. Only its bounds are available; collision
// against it reports no contact and every other query panics.
type TriangleMesh struct {
	vertices []mgl64.Vec3
	indices  [][3]int
	min, max mgl64.Vec3
}

func NewTriangleMesh(vertices []mgl64.Vec3, indices [][3]int) (*TriangleMesh, error) {
	if len(vertices) < 3 || len(indices) == 0 {
		return nil, eris.Wrap(ErrInvalidShape, "triangle mesh needs at least one triangle")
	}
	for i, tri := range indices {
		for _, v := range tri {
			if v < 0 || v >= len(vertices) {
				return nil, eris.Wrapf(ErrInvalidShape, "triangle %d references vertex %d", i, v)
			}
		}
	}
	b := geom.AABBFromPoints(vertices...)
	return &TriangleMesh{vertices: vertices, indices: indices, min: b.Min, max: b.Max}, nil
}

func (m *TriangleMesh) NbTriangles() int { return len(m.indices) }

func (m *TriangleMesh) Type() Type { return TypeConcave }

func (m *TriangleMesh) Name() Name { return NameTriangleMesh }

func (m *TriangleMesh) LocalBounds() (min, max mgl64.Vec3) { return m.min, m.max }

func (m *TriangleMesh) ComputeAABB(tr geom.Transform) geom.AABB {
	return computeAABB(m, tr)
}

func (m *TriangleMesh) Raycast(geom.Ray) (RaycastHit, bool) {
	panic(eris.Wrap(ErrNotImplemented, "triangle mesh raycast"))
}

func (m *TriangleMesh) TestPointInside(mgl64.Vec3) bool {
	panic(eris.Wrap(ErrNotImplemented, "triangle mesh point test"))
}

func (m *TriangleMesh) Volume() float64 {
	panic(eris.Wrap(ErrNotImplemented, "triangle mesh volume"))
}

func (m *TriangleMesh) LocalInertiaTensor(float64) mgl64.Vec3 {
	panic(eris.Wrap(ErrNotImplemented, "triangle mesh inertia"))
}
