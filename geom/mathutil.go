package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// MachineEpsilon is the float64 unit round-off.
const MachineEpsilon = 2.220446049250313e-16

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func ApproxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

// AreParallelVectors reports whether the cross product of the two vectors is negligible.
func AreParallelVectors(a, b mgl64.Vec3) bool {
	return a.Cross(b).LenSqr() < 0.00001
}

func AreOrthogonalVectors(a, b mgl64.Vec3) bool {
	return math.Abs(a.Dot(b)) < 0.001
}

// Unit normalizes v, returning the zero vector when v has no length.
func Unit(v mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l < MachineEpsilon {
		return mgl64.Vec3{}
	}
	return v.Mul(1 / l)
}

// OrthogonalVector returns some unit vector perpendicular to v.
func OrthogonalVector(v mgl64.Vec3) mgl64.Vec3 {
	u := Unit(v)
	if u.LenSqr() == 0 {
		return mgl64.Vec3{1, 0, 0}
	}
	// cross with the world axis least aligned with v
	axis := mgl64.Vec3{1, 0, 0}
	if math.Abs(u[0]) > math.Abs(u[1]) {
		axis = mgl64.Vec3{0, 1, 0}
	}
	return Unit(u.Cross(axis))
}

// ClosestPointOnSegment returns the point of [a, b] closest to p.
func ClosestPointOnSegment(a, b, p mgl64.Vec3) mgl64.Vec3 {
	ab := b.Sub(a)
	lenSq := ab.LenSqr()
	if lenSq < MachineEpsilon {
		return a
	}
	t := Clamp(p.Sub(a).Dot(ab)/lenSq, 0, 1)
	return a.Add(ab.Mul(t))
}

// ClosestPointsBetweenSegments returns the closest pair of points of the
// segments [p1, q1] and [p2, q2] (Ericson, Real-Time Collision Detection 5.1.9).
func ClosestPointsBetweenSegments(p1, q1, p2, q2 mgl64.Vec3) (c1, c2 mgl64.Vec3) {
	d1 := q1.Sub(p1)
	d2 := q2.Sub(p2)
	r := p1.Sub(p2)
	a := d1.LenSqr()
	e := d2.LenSqr()
	f := d2.Dot(r)

	var s, t float64
	switch {
	case a <= MachineEpsilon && e <= MachineEpsilon:
		return p1, p2
	case a <= MachineEpsilon:
		s = 0
		t = Clamp(f/e, 0, 1)
	default:
		c := d1.Dot(r)
		if e <= MachineEpsilon {
			t = 0
			s = Clamp(-c/a, 0, 1)
		} else {
			b := d1.Dot(d2)
			denom := a*e - b*b
			if denom != 0 {
				s = Clamp((b*f-c*e)/denom, 0, 1)
			}
			t = (b*s + f) / e
			if t < 0 {
				t = 0
				s = Clamp(-c/a, 0, 1)
			} else if t > 1 {
				t = 1
				s = Clamp((b-c)/a, 0, 1)
			}
		}
	}
	return p1.Add(d1.Mul(s)), p2.Add(d2.Mul(t))
}

// BarycentricCoordinates returns (u, v, w) with p = u*a + v*b + w*c for p in the
// plane of the triangle.
func BarycentricCoordinates(a, b, c, p mgl64.Vec3) (u, v, w float64) {
	v0 := b.Sub(a)
	v1 := c.Sub(a)
	v2 := p.Sub(a)
	d00 := v0.Dot(v0)
	d01 := v0.Dot(v1)
	d11 := v1.Dot(v1)
	d20 := v2.Dot(v0)
	d21 := v2.Dot(v1)
	denom := d00*d11 - d01*d01
	if math.Abs(denom) < MachineEpsilon {
		return 1, 0, 0
	}
	v = (d11*d20 - d01*d21) / denom
	w = (d00*d21 - d01*d20) / denom
	u = 1 - v - w
	return u, v, w
}

// PlaneSegmentIntersection returns t such that a + t*(b-a) lies on the plane
// {x : n.x = d}, or -1 when the segment is parallel to the plane.
func PlaneSegmentIntersection(a, b mgl64.Vec3, d float64, n mgl64.Vec3) float64 {
	const parallelEpsilon = 0.0001
	nDotAB := n.Dot(b.Sub(a))
	if math.Abs(nDotAB) <= parallelEpsilon {
		return -1
	}
	return (d - n.Dot(a)) / nDotAB
}

// PointToLineDistance is the distance from p to the infinite line through a and b.
func PointToLineDistance(a, b, p mgl64.Vec3) float64 {
	ab := b.Sub(a)
	l := ab.Len()
	if l < MachineEpsilon {
		return p.Sub(a).Len()
	}
	return p.Sub(a).Cross(ab).Len() / l
}

// ProjectPointOntoPlane projects p on the plane through planePoint with a unit normal.
func ProjectPointOntoPlane(p, unitNormal, planePoint mgl64.Vec3) mgl64.Vec3 {
	return p.Sub(unitNormal.Mul(p.Sub(planePoint).Dot(unitNormal)))
}

// ClipSegmentWithPlanes keeps the part of [a, b] on the positive side of every
// plane (point, normal). The result has zero or two points.
func ClipSegmentWithPlanes(a, b mgl64.Vec3, planePoints, planeNormals []mgl64.Vec3) []mgl64.Vec3 {
	in := []mgl64.Vec3{a, b}
	out := make([]mgl64.Vec3, 0, 2)
	for p := range planePoints {
		if len(in) == 0 {
			break
		}
		out = out[:0]
		v1, v2 := in[0], in[1]
		d1 := v1.Sub(planePoints[p]).Dot(planeNormals[p])
		d2 := v2.Sub(planePoints[p]).Dot(planeNormals[p])
		planeD := planeNormals[p].Dot(planePoints[p])

		if d2 >= 0 {
			if d1 < 0 {
				t := PlaneSegmentIntersection(v1, v2, planeD, planeNormals[p])
				if t >= 0 && t <= 1 {
					out = append(out, v1.Add(v2.Sub(v1).Mul(t)))
				} else {
					out = append(out, v2)
				}
			} else {
				out = append(out, v1)
			}
			out = append(out, v2)
		} else if d1 >= 0 {
			out = append(out, v1)
			t := PlaneSegmentIntersection(v1, v2, planeD, planeNormals[p])
			if t >= 0 && t <= 1 {
				out = append(out, v1.Add(v2.Sub(v1).Mul(t)))
			} else {
				out = append(out, v1)
			}
		}
		in, out = out, in
	}
	return in
}

// ClipPolygonWithPlanes clips a convex polygon with a set of planes
// (Sutherland-Hodgman), keeping what lies on the positive side of every plane.
func ClipPolygonWithPlanes(polygon []mgl64.Vec3, planePoints, planeNormals []mgl64.Vec3) []mgl64.Vec3 {
	in := append(make([]mgl64.Vec3, 0, len(polygon)+len(planePoints)), polygon...)
	out := make([]mgl64.Vec3, 0, cap(in))
	for p := range planePoints {
		out = out[:0]
		n := len(in)
		if n == 0 {
			break
		}
		planeD := planeNormals[p].Dot(planePoints[p])
		start := n - 1
		for end := 0; end < n; end++ {
			v1, v2 := in[start], in[end]
			d1 := v1.Sub(planePoints[p]).Dot(planeNormals[p])
			d2 := v2.Sub(planePoints[p]).Dot(planeNormals[p])
			if d2 >= 0 {
				if d1 < 0 {
					t := PlaneSegmentIntersection(v1, v2, planeD, planeNormals[p])
					if t >= 0 && t <= 1 {
						out = append(out, v1.Add(v2.Sub(v1).Mul(t)))
					} else {
						out = append(out, v2)
					}
				}
				out = append(out, v2)
			} else if d1 >= 0 {
				t := PlaneSegmentIntersection(v1, v2, planeD, planeNormals[p])
				if t >= 0 && t <= 1 {
					out = append(out, v1.Add(v2.Sub(v1).Mul(t)))
				} else {
					out = append(out, v1)
				}
			}
			start = end
		}
		in, out = out, in
	}
	return in
}
