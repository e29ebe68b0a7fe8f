package shape

import (
	"math"

	"github.com/gekko3d/collide/geom"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/rotisserie/eris"
)

// Capsule is aligned with the local Y axis. Its core is the segment between
// the two cap centres, height apart, and the radius is the margin.
type Capsule struct {
	radius     float64
	halfHeight float64
}

func NewCapsule(radius, height float64) (*Capsule, error) {
	if radius <= 0 {
		return nil, eris.Wrapf(ErrInvalidShape, "capsule radius must be positive, got %g", radius)
	}
	if height <= 0 {
		return nil, eris.Wrapf(ErrInvalidShape, "capsule height must be positive, got %g", height)
	}
	return &Capsule{radius: radius, halfHeight: height / 2}, nil
}

func (c *Capsule) Radius() float64 { return c.radius }

func (c *Capsule) Height() float64 { return 2 * c.halfHeight }

// Segment returns the two cap centres in local space.
func (c *Capsule) Segment() (a, b mgl64.Vec3) {
	return mgl64.Vec3{0, -c.halfHeight, 0}, mgl64.Vec3{0, c.halfHeight, 0}
}

func (c *Capsule) Type() Type { return TypeCapsule }

func (c *Capsule) Name() Name { return NameCapsule }

func (c *Capsule) Margin() float64 { return c.radius }

func (c *Capsule) LocalSupportPointWithoutMargin(direction mgl64.Vec3) mgl64.Vec3 {
	if direction[1] > 0 {
		return mgl64.Vec3{0, c.halfHeight, 0}
	}
	return mgl64.Vec3{0, -c.halfHeight, 0}
}

func (c *Capsule) LocalBounds() (min, max mgl64.Vec3) {
	r, h := c.radius, c.halfHeight+c.radius
	return mgl64.Vec3{-r, -h, -r}, mgl64.Vec3{r, h, r}
}

func (c *Capsule) ComputeAABB(tr geom.Transform) geom.AABB {
	return computeAABB(c, tr)
}

func (c *Capsule) TestPointInside(p mgl64.Vec3) bool {
	a, b := c.Segment()
	return geom.ClosestPointOnSegment(a, b, p).Sub(p).LenSqr() < c.radius*c.radius
}

func (c *Capsule) Volume() float64 {
	r := c.radius
	return math.Pi*r*r*c.Height() + 4.0/3.0*math.Pi*r*r*r
}

func (c *Capsule) LocalInertiaTensor(mass float64) mgl64.Vec3 {
	r2 := c.radius * c.radius
	h := c.Height()
	volSpheres := 4.0 / 3.0 * math.Pi * r2 * c.radius
	volCylinder := math.Pi * r2 * h
	sphereMass := mass * volSpheres / (volSpheres + volCylinder)
	cylinderMass := mass * volCylinder / (volSpheres + volCylinder)

	axis := cylinderMass*r2/2 + sphereMass*0.4*r2
	perp := cylinderMass*(r2/4+h*h/12) + sphereMass*(0.4*r2+h*h/4+3*h*c.radius/8)
	return mgl64.Vec3{perp, axis, perp}
}

func (c *Capsule) Raycast(ray geom.Ray) (RaycastHit, bool) {
	if c.TestPointInside(ray.Point1) {
		return RaycastHit{}, false
	}
	dir := ray.Direction()
	best := math.Inf(1)
	var normal mgl64.Vec3

	// cylinder body, projected onto the XZ plane
	dx, dz := dir[0], dir[2]
	mx, mz := ray.Point1[0], ray.Point1[2]
	a := dx*dx + dz*dz
	if a > geom.MachineEpsilon {
		b := mx*dx + mz*dz
		cc := mx*mx + mz*mz - c.radius*c.radius
		if disc := b*b - a*cc; disc >= 0 {
			t := (-b - math.Sqrt(disc)) / a
			if t >= 0 && t <= ray.MaxFraction {
				p := ray.PointAt(t)
				if math.Abs(p[1]) <= c.halfHeight {
					best = t
					normal = geom.Unit(mgl64.Vec3{p[0], 0, p[2]})
				}
			}
		}
	}

	for _, sign := range [2]float64{-1, 1} {
		centre := mgl64.Vec3{0, sign * c.halfHeight, 0}
		t, ok := raySphere(ray, centre, c.radius)
		if !ok || t >= best {
			continue
		}
		p := ray.PointAt(t)
		if sign*p[1] < c.halfHeight {
			continue
		}
		best = t
		normal = geom.Unit(p.Sub(centre))
	}

	if math.IsInf(best, 1) {
		return RaycastHit{}, false
	}
	return RaycastHit{Point: ray.PointAt(best), Normal: normal, Fraction: best}, true
}
