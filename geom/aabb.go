package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

func NewAABB(min, max mgl64.Vec3) AABB {
	return AABB{Min: min, Max: max}
}

// AABBFromPoints returns the smallest box containing all the points.
func AABBFromPoints(points ...mgl64.Vec3) AABB {
	if len(points) == 0 {
		return AABB{}
	}
	box := AABB{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		box.Min = minVec(box.Min, p)
		box.Max = maxVec(box.Max, p)
	}
	return box
}

func (a AABB) Center() mgl64.Vec3 {
	return a.Min.Add(a.Max).Mul(0.5)
}

// Extent is the full size of the box along each axis.
func (a AABB) Extent() mgl64.Vec3 {
	return a.Max.Sub(a.Min)
}

func (a AABB) Volume() float64 {
	d := a.Extent()
	return d[0] * d[1] * d[2]
}

func (a AABB) Merge(b AABB) AABB {
	return AABB{Min: minVec(a.Min, b.Min), Max: maxVec(a.Max, b.Max)}
}

// Contains reports whether b lies entirely inside a.
func (a AABB) Contains(b AABB) bool {
	for i := 0; i < 3; i++ {
		if b.Min[i] < a.Min[i] || b.Max[i] > a.Max[i] {
			return false
		}
	}
	return true
}

func (a AABB) ContainsPoint(p mgl64.Vec3) bool {
	for i := 0; i < 3; i++ {
		if p[i] < a.Min[i] || p[i] > a.Max[i] {
			return false
		}
	}
	return true
}

// Overlaps reports whether the two boxes intersect. Touching boxes overlap.
func (a AABB) Overlaps(b AABB) bool {
	for i := 0; i < 3; i++ {
		if a.Max[i] < b.Min[i] || b.Max[i] < a.Min[i] {
			return false
		}
	}
	return true
}

// Inflate grows the box by gap on every side.
func (a AABB) Inflate(gap mgl64.Vec3) AABB {
	return AABB{Min: a.Min.Sub(gap), Max: a.Max.Add(gap)}
}

// TestRayIntersect runs the slab test against the segment
// origin + t*direction for t in [0, maxFraction].
func (a AABB) TestRayIntersect(origin, direction mgl64.Vec3, maxFraction float64) bool {
	tMin := 0.0
	tMax := maxFraction
	for i := 0; i < 3; i++ {
		if math.Abs(direction[i]) < MachineEpsilon {
			if origin[i] < a.Min[i] || origin[i] > a.Max[i] {
				return false
			}
			continue
		}
		inv := 1.0 / direction[i]
		t1 := (a.Min[i] - origin[i]) * inv
		t2 := (a.Max[i] - origin[i]) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return false
		}
	}
	return true
}

// TransformBounds returns the world box of local bounds [min, max] moved by tr.
func TransformBounds(min, max mgl64.Vec3, tr Transform) AABB {
	m := tr.RotationMatrix()
	out := AABB{Min: tr.Position, Max: tr.Position}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			e := m.At(i, j) * min[j]
			f := m.At(i, j) * max[j]
			if e < f {
				out.Min[i] += e
				out.Max[i] += f
			} else {
				out.Min[i] += f
				out.Max[i] += e
			}
		}
	}
	return out
}

func minVec(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{math.Min(a[0], b[0]), math.Min(a[1], b[1]), math.Min(a[2], b[2])}
}

func maxVec(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{math.Max(a[0], b[0]), math.Max(a[1], b[1]), math.Max(a[2], b[2])}
}
