package geom

import "github.com/go-gl/mathgl/mgl64"

// Ray is the segment Point1 -> Point2, limited to the fraction MaxFraction
// of its length. A hit at fraction f lies at Point1 + f*(Point2-Point1).
type Ray struct {
	Point1      mgl64.Vec3
	Point2      mgl64.Vec3
	MaxFraction float64
}

func NewRay(p1, p2 mgl64.Vec3) Ray {
	return Ray{Point1: p1, Point2: p2, MaxFraction: 1}
}

func (r Ray) Direction() mgl64.Vec3 {
	return r.Point2.Sub(r.Point1)
}

func (r Ray) PointAt(fraction float64) mgl64.Vec3 {
	return r.Point1.Add(r.Direction().Mul(fraction))
}

// Transformed maps both end points through tr, keeping the fraction.
func (r Ray) Transformed(tr Transform) Ray {
	return Ray{Point1: tr.Apply(r.Point1), Point2: tr.Apply(r.Point2), MaxFraction: r.MaxFraction}
}

func (r Ray) WithMaxFraction(f float64) Ray {
	r.MaxFraction = f
	return r
}
