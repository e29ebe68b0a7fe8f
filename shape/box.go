package shape

import (
	"github.com/gekko3d/collide/geom"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/rotisserie/eris"
)

var boxFaces = [][]int{
	{0, 1, 2, 3}, // +z
	{1, 5, 6, 2}, // +x
	{4, 7, 6, 5}, // -z
	{4, 0, 3, 7}, // -x
	{4, 5, 1, 0}, // -y
	{2, 6, 7, 3}, // +y
}

// Box is centred on its local origin.
type Box struct {
	polyhedron
	halfExtents mgl64.Vec3
}

func NewBox(halfExtents mgl64.Vec3) (*Box, error) {
	for i, e := range halfExtents {
		if e <= 0 {
			return nil, eris.Wrapf(ErrInvalidShape, "box half extent %d must be positive, got %g", i, e)
		}
	}
	x, y, z := halfExtents[0], halfExtents[1], halfExtents[2]
	points := []mgl64.Vec3{
		{-x, -y, z}, {x, -y, z}, {x, y, z}, {-x, y, z},
		{-x, -y, -z}, {x, -y, -z}, {x, y, -z}, {-x, y, -z},
	}
	b := &Box{halfExtents: halfExtents}
	if err := b.build(points, boxFaces, false); err != nil {
		return nil, eris.Wrap(err, "build box topology")
	}
	return b, nil
}

func (b *Box) HalfExtents() mgl64.Vec3 { return b.halfExtents }

func (b *Box) Name() Name { return NameBox }

func (b *Box) LocalSupportPointWithoutMargin(direction mgl64.Vec3) mgl64.Vec3 {
	var p mgl64.Vec3
	for i := 0; i < 3; i++ {
		if direction[i] < 0 {
			p[i] = -b.halfExtents[i]
		} else {
			p[i] = b.halfExtents[i]
		}
	}
	return p
}

func (b *Box) ComputeAABB(tr geom.Transform) geom.AABB {
	return computeAABB(b, tr)
}

func (b *Box) TestPointInside(p mgl64.Vec3) bool {
	e := b.halfExtents
	return p[0] < e[0] && p[0] > -e[0] &&
		p[1] < e[1] && p[1] > -e[1] &&
		p[2] < e[2] && p[2] > -e[2]
}

func (b *Box) Raycast(ray geom.Ray) (RaycastHit, bool) {
	return b.raycast(ray)
}

func (b *Box) Volume() float64 {
	e := b.halfExtents
	return 8 * e[0] * e[1] * e[2]
}

func (b *Box) LocalInertiaTensor(mass float64) mgl64.Vec3 {
	return boxInertia(mass, b.halfExtents)
}
