package shape

import (
	"github.com/gekko3d/collide/geom"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/rotisserie/eris"
)

// Type is the coarse category used to pick a narrow-phase algorithm.
type Type int

const (
	TypeSphere Type = iota
	TypeCapsule
	TypeConvexPolyhedron
	TypeConcave

	NbTypes = 4
)

func (t Type) String() string {
	switch t {
	case TypeSphere:
		return "sphere"
	case TypeCapsule:
		return "capsule"
	case TypeConvexPolyhedron:
		return "convex polyhedron"
	case TypeConcave:
		return "concave"
	}
	return "unknown"
}

// Name identifies the concrete shape.
type Name int

const (
	NameSphere Name = iota
	NameCapsule
	NameBox
	NameConvexMesh
	NameTriangle
	NameTriangleMesh
)

func (n Name) String() string {
	switch n {
	case NameSphere:
		return "sphere"
	case NameCapsule:
		return "capsule"
	case NameBox:
		return "box"
	case NameConvexMesh:
		return "convex_mesh"
	case NameTriangle:
		return "triangle"
	case NameTriangleMesh:
		return "triangle_mesh"
	}
	return "unknown"
}

var (
	ErrNotImplemented = eris.New("not implemented")
	ErrInvalidShape   = eris.New("invalid shape")
)

// RaycastHit is expressed in the local space of the shape.
type RaycastHit struct {
	Point    mgl64.Vec3
	Normal   mgl64.Vec3
	Fraction float64
}

// Shape is the capability set shared by every collision shape.
type Shape interface {
	Type() Type
	Name() Name
	LocalBounds() (min, max mgl64.Vec3)
	ComputeAABB(tr geom.Transform) geom.AABB
	Raycast(ray geom.Ray) (RaycastHit, bool)
	TestPointInside(localPoint mgl64.Vec3) bool
	Volume() float64
	// LocalInertiaTensor returns the diagonal of the inertia tensor for a
	// body of the given mass.
	LocalInertiaTensor(mass float64) mgl64.Vec3
}

// ConvexShape adds the support mapping used by GJK and SAT. The shape is the
// core returned by LocalSupportPointWithoutMargin grown by Margin.
type ConvexShape interface {
	Shape
	Margin() float64
	LocalSupportPointWithoutMargin(direction mgl64.Vec3) mgl64.Vec3
}

// ConvexPolyhedron exposes the half-edge topology of a convex polyhedron.
type ConvexPolyhedron interface {
	ConvexShape
	NbFaces() int
	Face(i int) HalfEdgeFace
	FaceNormal(i int) mgl64.Vec3
	NbVertices() int
	Vertex(i int) HalfEdgeVertex
	VertexPosition(i int) mgl64.Vec3
	NbHalfEdges() int
	HalfEdge(i int) HalfEdge
	Centroid() mgl64.Vec3
	FindMostAntiParallelFace(direction mgl64.Vec3) int
}

func IsConvex(s Shape) bool {
	return s.Type() != TypeConcave
}

func IsPolyhedron(s Shape) bool {
	return s.Type() == TypeConvexPolyhedron
}

// LocalSupportPointWithMargin is the support point of the full shape,
// margin included.
func LocalSupportPointWithMargin(s ConvexShape, direction mgl64.Vec3) mgl64.Vec3 {
	p := s.LocalSupportPointWithoutMargin(direction)
	m := s.Margin()
	if m == 0 {
		return p
	}
	unit := mgl64.Vec3{0, -1, 0}
	if direction.LenSqr() > geom.MachineEpsilon*geom.MachineEpsilon {
		unit = direction.Normalize()
	}
	return p.Add(unit.Mul(m))
}

func computeAABB(s Shape, tr geom.Transform) geom.AABB {
	min, max := s.LocalBounds()
	return geom.TransformBounds(min, max, tr)
}

// boxInertia is the inertia of a solid box with the given half extents.
func boxInertia(mass float64, half mgl64.Vec3) mgl64.Vec3 {
	factor := mass / 3
	x, y, z := half[0]*half[0], half[1]*half[1], half[2]*half[2]
	return mgl64.Vec3{factor * (y + z), factor * (x + z), factor * (x + y)}
}
