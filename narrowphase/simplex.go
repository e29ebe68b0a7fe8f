package narrowphase

import (
	"math"

	"github.com/gekko3d/collide/geom"
	"github.com/go-gl/mathgl/mgl64"
)

// VoronoiSimplex is the GJK simplex of up to four points of the Minkowski
// difference A-B. After each closest-point computation it keeps only the
// points supporting the closest feature.
type VoronoiSimplex struct {
	points [4]mgl64.Vec3
	suppA  [4]mgl64.Vec3
	suppB  [4]mgl64.Vec3
	n      int

	lastW    mgl64.Vec3
	hasLastW bool

	closest  mgl64.Vec3
	closestA mgl64.Vec3
	closestB mgl64.Vec3
}

// subSimplex is the closest feature of a simplex case: a bit mask of the
// vertices used and their barycentric weights.
type subSimplex struct {
	closest mgl64.Vec3
	used    uint8
	bary    [4]float64
}

func (s *VoronoiSimplex) Reset() {
	*s = VoronoiSimplex{}
}

func (s *VoronoiSimplex) NbPoints() int { return s.n }

func (s *VoronoiSimplex) IsFull() bool { return s.n == 4 }

func (s *VoronoiSimplex) IsEmpty() bool { return s.n == 0 }

func (s *VoronoiSimplex) AddPoint(w, suppA, suppB mgl64.Vec3) {
	s.points[s.n] = w
	s.suppA[s.n] = suppA
	s.suppB[s.n] = suppB
	s.n++
	s.lastW = w
	s.hasLastW = true
}

func (s *VoronoiSimplex) IsPointInSimplex(w mgl64.Vec3) bool {
	for i := 0; i < s.n; i++ {
		if s.points[i] == w {
			return true
		}
	}
	return s.hasLastW && s.lastW == w
}

// IsAffinelyDependent reports whether the points no longer span a simplex of
// their own dimension.
func (s *VoronoiSimplex) IsAffinelyDependent() bool {
	const eps = geom.MachineEpsilon
	p := s.points
	switch s.n {
	case 2:
		return p[1].Sub(p[0]).LenSqr() <= eps
	case 3:
		return p[1].Sub(p[0]).Cross(p[2].Sub(p[0])).LenSqr() <= eps
	case 4:
		return math.Abs(p[1].Sub(p[0]).Dot(p[2].Sub(p[0]).Cross(p[3].Sub(p[0])))) <= eps
	}
	return false
}

func (s *VoronoiSimplex) MaxLengthSquareOfAPoint() float64 {
	max := 0.0
	for i := 0; i < s.n; i++ {
		if l := s.points[i].LenSqr(); l > max {
			max = l
		}
	}
	return max
}

// ComputeClosestPoint returns the point of the simplex closest to the
// origin and reduces the simplex to its supporting points. It fails on a
// degenerate simplex, in which case nothing changes.
func (s *VoronoiSimplex) ComputeClosestPoint() (mgl64.Vec3, bool) {
	var sub subSimplex
	switch s.n {
	case 0:
		return mgl64.Vec3{}, false
	case 1:
		sub = subSimplex{closest: s.points[0], used: 0b0001, bary: [4]float64{1}}
	case 2:
		sub = closestOnSegment(s.points[0], s.points[1])
	case 3:
		sub = closestOnTriangle(s.points[0], s.points[1], s.points[2])
	case 4:
		var ok bool
		sub, ok = closestOnTetrahedron(s.points[0], s.points[1], s.points[2], s.points[3])
		if !ok {
			return mgl64.Vec3{}, false
		}
	}

	var pa, pb mgl64.Vec3
	for i := 0; i < s.n; i++ {
		if sub.used&(1<<i) != 0 {
			pa = pa.Add(s.suppA[i].Mul(sub.bary[i]))
			pb = pb.Add(s.suppB[i].Mul(sub.bary[i]))
		}
	}
	s.closest = sub.closest
	s.closestA = pa
	s.closestB = pb
	s.reduce(sub.used)
	return s.closest, true
}

// ClosestPointsOfAandB returns the closest points on A and B (in the frame of
// A) matching the last successful closest-point computation.
func (s *VoronoiSimplex) ClosestPointsOfAandB() (pA, pB mgl64.Vec3) {
	return s.closestA, s.closestB
}

func (s *VoronoiSimplex) reduce(used uint8) {
	k := 0
	for i := 0; i < s.n; i++ {
		if used&(1<<i) == 0 {
			continue
		}
		s.points[k] = s.points[i]
		s.suppA[k] = s.suppA[i]
		s.suppB[k] = s.suppB[i]
		k++
	}
	s.n = k
}

func closestOnSegment(a, b mgl64.Vec3) subSimplex {
	ab := b.Sub(a)
	lenSq := ab.LenSqr()
	t := 0.0
	if lenSq > geom.MachineEpsilon {
		t = -a.Dot(ab) / lenSq
	}
	switch {
	case t <= 0:
		return subSimplex{closest: a, used: 0b01, bary: [4]float64{1, 0}}
	case t >= 1:
		return subSimplex{closest: b, used: 0b10, bary: [4]float64{0, 1}}
	}
	return subSimplex{closest: a.Add(ab.Mul(t)), used: 0b11, bary: [4]float64{1 - t, t}}
}

// closestOnTriangle locates the origin in the Voronoi regions of the
// triangle (Ericson, Real-Time Collision Detection 5.1.5).
func closestOnTriangle(a, b, c mgl64.Vec3) subSimplex {
	ab := b.Sub(a)
	ac := c.Sub(a)
	ap := a.Mul(-1)
	d1 := ab.Dot(ap)
	d2 := ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return subSimplex{closest: a, used: 0b001, bary: [4]float64{1, 0, 0}}
	}

	bp := b.Mul(-1)
	d3 := ab.Dot(bp)
	d4 := ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return subSimplex{closest: b, used: 0b010, bary: [4]float64{0, 1, 0}}
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		v := d1 / (d1 - d3)
		return subSimplex{closest: a.Add(ab.Mul(v)), used: 0b011, bary: [4]float64{1 - v, v, 0}}
	}

	cp := c.Mul(-1)
	d5 := ab.Dot(cp)
	d6 := ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return subSimplex{closest: c, used: 0b100, bary: [4]float64{0, 0, 1}}
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		w := d2 / (d2 - d6)
		return subSimplex{closest: a.Add(ac.Mul(w)), used: 0b101, bary: [4]float64{1 - w, 0, w}}
	}

	va := d3*d6 - d5*d4
	if va <= 0 && d4-d3 >= 0 && d5-d6 >= 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return subSimplex{closest: b.Add(c.Sub(b).Mul(w)), used: 0b110, bary: [4]float64{0, 1 - w, w}}
	}

	denom := 1 / (va + vb + vc)
	v := vb * denom
	w := vc * denom
	return subSimplex{closest: a.Add(ab.Mul(v)).Add(ac.Mul(w)), used: 0b111, bary: [4]float64{1 - v - w, v, w}}
}

// originOutsideOfPlane returns 1 when the origin and d lie on opposite sides
// of the plane (a, b, c), 0 when on the same side and -1 when d is on the
// plane.
func originOutsideOfPlane(a, b, c, d mgl64.Vec3) int {
	n := b.Sub(a).Cross(c.Sub(a))
	signP := a.Mul(-1).Dot(n)
	signD := d.Sub(a).Dot(n)
	if signD*signD < geom.MachineEpsilon*geom.MachineEpsilon {
		return -1
	}
	if signP*signD < 0 {
		return 1
	}
	return 0
}

func closestOnTetrahedron(a, b, c, d mgl64.Vec3) (subSimplex, bool) {
	pts := [4]mgl64.Vec3{a, b, c, d}
	faces := [4][4]int{
		{0, 1, 2, 3},
		{0, 2, 3, 1},
		{0, 3, 1, 2},
		{1, 3, 2, 0},
	}

	var outside [4]int
	for f, face := range faces {
		outside[f] = originOutsideOfPlane(pts[face[0]], pts[face[1]], pts[face[2]], pts[face[3]])
		if outside[f] < 0 {
			return subSimplex{}, false
		}
	}
	if outside == [4]int{} {
		// origin inside the tetrahedron
		return subSimplex{used: 0b1111}, true
	}

	best := subSimplex{}
	bestDist := math.Inf(1)
	for f, face := range faces {
		if outside[f] == 0 {
			continue
		}
		tri := closestOnTriangle(pts[face[0]], pts[face[1]], pts[face[2]])
		dist := tri.closest.LenSqr()
		if dist >= bestDist {
			continue
		}
		bestDist = dist
		best = subSimplex{closest: tri.closest}
		for k := 0; k < 3; k++ {
			if tri.used&(1<<k) != 0 {
				best.used |= 1 << face[k]
				best.bary[face[k]] = tri.bary[k]
			}
		}
	}
	return best, true
}
