package shape

import (
	"math"

	"github.com/gekko3d/collide/geom"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/rotisserie/eris"
)

// RaycastSide selects which faces of a triangle a ray may hit.
type RaycastSide int

const (
	RaycastFront RaycastSide = iota
	RaycastBack
	RaycastFrontAndBack
)

// Triangle is a two-sided convex polyhedron with a front face {0,1,2} and a
// back face {0,2,1}. It usually stands for one triangle of a mesh, in which
// case per-vertex normals smooth the contact normal across the mesh.
type Triangle struct {
	polyhedron
	side          RaycastSide
	vertexNormals [3]mgl64.Vec3
	hasNormals    bool
}

func NewTriangle(a, b, c mgl64.Vec3) (*Triangle, error) {
	if b.Sub(a).Cross(c.Sub(a)).LenSqr() < geom.MachineEpsilon {
		return nil, eris.Wrap(ErrInvalidShape, "triangle is degenerate")
	}
	t := &Triangle{side: RaycastFront}
	if err := t.build([]mgl64.Vec3{a, b, c}, [][]int{{0, 1, 2}, {0, 2, 1}}, false); err != nil {
		return nil, eris.Wrap(err, "build triangle topology")
	}
	return t, nil
}

func (t *Triangle) Name() Name { return NameTriangle }

func (t *Triangle) Normal() mgl64.Vec3 { return t.normals[0] }

func (t *Triangle) RaycastSide() RaycastSide { return t.side }

func (t *Triangle) SetRaycastSide(side RaycastSide) { t.side = side }

// SetVertexNormals enables contact normal smoothing.
func (t *Triangle) SetVertexNormals(normals [3]mgl64.Vec3) {
	for i := range normals {
		t.vertexNormals[i] = geom.Unit(normals[i])
	}
	t.hasNormals = true
}

func (t *Triangle) HasVertexNormals() bool { return t.hasNormals }

func (t *Triangle) ComputeAABB(tr geom.Transform) geom.AABB {
	return geom.AABBFromPoints(tr.Apply(t.points[0]), tr.Apply(t.points[1]), tr.Apply(t.points[2]))
}

func (t *Triangle) TestPointInside(mgl64.Vec3) bool { return false }

func (t *Triangle) Volume() float64 { return 0 }

func (t *Triangle) LocalInertiaTensor(float64) mgl64.Vec3 { return mgl64.Vec3{} }

func (t *Triangle) Raycast(ray geom.Ray) (RaycastHit, bool) {
	dir := ray.Direction()
	n := t.normals[0]
	denom := n.Dot(dir)
	if math.Abs(denom) < geom.MachineEpsilon {
		return RaycastHit{}, false
	}
	switch {
	case t.side == RaycastFront && denom > 0:
		return RaycastHit{}, false
	case t.side == RaycastBack && denom < 0:
		return RaycastHit{}, false
	}
	f := t.points[0].Sub(ray.Point1).Dot(n) / denom
	if f < 0 || f > ray.MaxFraction {
		return RaycastHit{}, false
	}
	p := ray.PointAt(f)
	u, v, w := geom.BarycentricCoordinates(t.points[0], t.points[1], t.points[2], p)
	if u < 0 || v < 0 || w < 0 {
		return RaycastHit{}, false
	}
	hitNormal := n
	if denom > 0 {
		hitNormal = n.Mul(-1)
	}
	return RaycastHit{Point: p, Normal: hitNormal, Fraction: f}, true
}

// SmoothLocalNormal interpolates the vertex normals at a point of the
// triangle, falling back to the face normal.
func (t *Triangle) SmoothLocalNormal(localPoint mgl64.Vec3) mgl64.Vec3 {
	if !t.hasNormals {
		return t.normals[0]
	}
	u, v, w := geom.BarycentricCoordinates(t.points[0], t.points[1], t.points[2], localPoint)
	n := t.vertexNormals[0].Mul(u).Add(t.vertexNormals[1].Mul(v)).Add(t.vertexNormals[2].Mul(w))
	if n.LenSqr() < geom.MachineEpsilon {
		return t.normals[0]
	}
	return n.Normalize()
}

// ComputeSmoothMeshContact replaces a contact against this triangle by one
// using the interpolated vertex normal. triangleToWorld and worldToOther are
// the frames of the triangle and of the other shape. It returns the new
// world contact normal, oriented from shape 1 to shape 2, and the contact
// point re-expressed in the other shape's local space.
func (t *Triangle) ComputeSmoothMeshContact(localTrianglePoint mgl64.Vec3, triangleToWorld, worldToOther geom.Transform,
	penetration float64, triangleIsShape1 bool) (worldNormal, otherLocalPoint mgl64.Vec3) {

	localNormal := t.SmoothLocalNormal(localTrianglePoint)
	smooth := triangleToWorld.ApplyVector(localNormal)
	worldNormal = smooth
	if !triangleIsShape1 {
		worldNormal = smooth.Mul(-1)
	}
	otherInTriangle := localTrianglePoint.Sub(localNormal.Mul(penetration))
	otherLocalPoint = worldToOther.Apply(triangleToWorld.Apply(otherInTriangle))
	return worldNormal, otherLocalPoint
}
