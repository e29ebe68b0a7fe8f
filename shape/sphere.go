package shape

import (
	"math"

	"github.com/gekko3d/collide/geom"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/rotisserie/eris"
)

// Sphere is centred on the origin of its local frame. Its core is a single
// point and the radius is carried entirely by the margin.
type Sphere struct {
	radius float64
}

func NewSphere(radius float64) (*Sphere, error) {
	if radius <= 0 {
		return nil, eris.Wrapf(ErrInvalidShape, "sphere radius must be positive, got %g", radius)
	}
	return &Sphere{radius: radius}, nil
}

func (s *Sphere) Radius() float64 { return s.radius }

func (s *Sphere) Type() Type { return TypeSphere }

func (s *Sphere) Name() Name { return NameSphere }

func (s *Sphere) Margin() float64 { return s.radius }

func (s *Sphere) LocalSupportPointWithoutMargin(mgl64.Vec3) mgl64.Vec3 { return mgl64.Vec3{} }

func (s *Sphere) LocalBounds() (min, max mgl64.Vec3) {
	r := s.radius
	return mgl64.Vec3{-r, -r, -r}, mgl64.Vec3{r, r, r}
}

func (s *Sphere) ComputeAABB(tr geom.Transform) geom.AABB {
	r := mgl64.Vec3{s.radius, s.radius, s.radius}
	return geom.NewAABB(tr.Position.Sub(r), tr.Position.Add(r))
}

func (s *Sphere) TestPointInside(p mgl64.Vec3) bool {
	return p.LenSqr() < s.radius*s.radius
}

func (s *Sphere) Volume() float64 {
	return 4.0 / 3.0 * math.Pi * s.radius * s.radius * s.radius
}

func (s *Sphere) LocalInertiaTensor(mass float64) mgl64.Vec3 {
	d := 0.4 * mass * s.radius * s.radius
	return mgl64.Vec3{d, d, d}
}

func (s *Sphere) Raycast(ray geom.Ray) (RaycastHit, bool) {
	t, ok := raySphere(ray, mgl64.Vec3{}, s.radius)
	if !ok {
		return RaycastHit{}, false
	}
	p := ray.PointAt(t)
	return RaycastHit{Point: p, Normal: geom.Unit(p), Fraction: t}, true
}

// raySphere returns the entry fraction of the ray into the sphere, ignoring
// rays that start inside it.
func raySphere(ray geom.Ray, centre mgl64.Vec3, radius float64) (float64, bool) {
	m := ray.Point1.Sub(centre)
	c := m.LenSqr() - radius*radius
	if c < 0 {
		return 0, false
	}
	dir := ray.Direction()
	b := m.Dot(dir)
	if b > 0 {
		return 0, false
	}
	lenSq := dir.LenSqr()
	disc := b*b - lenSq*c
	if disc < 0 || lenSq < geom.MachineEpsilon {
		return 0, false
	}
	t := -b - math.Sqrt(disc)
	if t < 0 || t > ray.MaxFraction*lenSq {
		return 0, false
	}
	return t / lenSq, true
}
