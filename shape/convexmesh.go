package shape

import (
	"github.com/gekko3d/collide/geom"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/rotisserie/eris"
)

// ConvexMesh is an arbitrary convex polyhedron given by its vertices and
// polygonal faces. Faces may be wound either way; they are reoriented to
// face outward.
type ConvexMesh struct {
	polyhedron
	scale mgl64.Vec3
}

func NewConvexMesh(vertices []mgl64.Vec3, faces [][]int, scale mgl64.Vec3) (*ConvexMesh, error) {
	if len(vertices) < 4 {
		return nil, eris.Wrapf(ErrInvalidShape, "convex mesh needs at least 4 vertices, got %d", len(vertices))
	}
	if len(faces) < 4 {
		return nil, eris.Wrapf(ErrInvalidShape, "convex mesh needs at least 4 faces, got %d", len(faces))
	}
	if scale == (mgl64.Vec3{}) {
		scale = mgl64.Vec3{1, 1, 1}
	}
	points := make([]mgl64.Vec3, len(vertices))
	for i, v := range vertices {
		points[i] = mgl64.Vec3{v[0] * scale[0], v[1] * scale[1], v[2] * scale[2]}
	}

	m := &ConvexMesh{scale: scale}
	if err := m.build(points, faces, true); err != nil {
		return nil, eris.Wrap(err, "build convex mesh topology")
	}
	if err := m.checkConvex(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *ConvexMesh) Scale() mgl64.Vec3 { return m.scale }

func (m *ConvexMesh) Name() Name { return NameConvexMesh }

func (m *ConvexMesh) ComputeAABB(tr geom.Transform) geom.AABB {
	return computeAABB(m, tr)
}

func (m *ConvexMesh) Raycast(ray geom.Ray) (RaycastHit, bool) {
	return m.raycast(ray)
}

func (m *ConvexMesh) Volume() float64 {
	return m.volume()
}

// LocalInertiaTensor approximates the mesh by its bounding box.
func (m *ConvexMesh) LocalInertiaTensor(mass float64) mgl64.Vec3 {
	return boxInertia(mass, m.max.Sub(m.min).Mul(0.5))
}
