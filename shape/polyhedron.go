package shape

import (
	"math"

	"github.com/gekko3d/collide/geom"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/rotisserie/eris"
)

// planarTolerance bounds how far a face vertex may sit from the face plane
// and how far a vertex may sit in front of any face.
const planarTolerance = 1e-6

// polyhedron holds the data shared by boxes, convex meshes and triangles.
type polyhedron struct {
	points   []mgl64.Vec3
	normals  []mgl64.Vec3
	topology HalfEdgeStructure
	centroid mgl64.Vec3
	min, max mgl64.Vec3
}

// build computes topology and face normals. Faces wound clockwise seen from
// outside are reversed when orient is set.
func (p *polyhedron) build(points []mgl64.Vec3, faces [][]int, orient bool) error {
	p.points = points
	p.topology = HalfEdgeStructure{}
	p.normals = p.normals[:0]

	var sum mgl64.Vec3
	for i, pt := range points {
		p.topology.AddVertex(i)
		sum = sum.Add(pt)
	}
	p.centroid = sum.Mul(1 / float64(len(points)))
	bounds := geom.AABBFromPoints(points...)
	p.min, p.max = bounds.Min, bounds.Max

	for f, face := range faces {
		for _, v := range face {
			if v < 0 || v >= len(points) {
				return eris.Wrapf(ErrInvalidShape, "face %d references vertex %d", f, v)
			}
		}
		n := newellNormal(points, face)
		if n.LenSqr() < geom.MachineEpsilon {
			return eris.Wrapf(ErrInvalidShape, "face %d is degenerate", f)
		}
		if orient && n.Dot(points[face[0]].Sub(p.centroid)) < 0 {
			reversed := make([]int, len(face))
			for i, v := range face {
				reversed[len(face)-1-i] = v
			}
			face = reversed
			n = n.Mul(-1)
		}
		p.topology.AddFace(face)
		p.normals = append(p.normals, n)
	}
	return p.topology.Init()
}

// checkConvex verifies that every vertex lies behind or on every face plane.
func (p *polyhedron) checkConvex() error {
	scale := p.max.Sub(p.min).Len()
	tol := planarTolerance * math.Max(1, scale)
	for f, face := range p.topology.Faces {
		n := p.normals[f]
		origin := p.points[face.Vertices[0]]
		for _, v := range face.Vertices {
			if math.Abs(p.points[v].Sub(origin).Dot(n)) > tol {
				return eris.Wrapf(ErrInvalidShape, "face %d is not planar", f)
			}
		}
		for i, pt := range p.points {
			if pt.Sub(origin).Dot(n) > tol {
				return eris.Wrapf(ErrInvalidShape, "vertex %d lies in front of face %d, mesh is not convex", i, f)
			}
		}
	}
	return nil
}

func newellNormal(points []mgl64.Vec3, face []int) mgl64.Vec3 {
	var n mgl64.Vec3
	for i, v := range face {
		a := points[v]
		b := points[face[(i+1)%len(face)]]
		n[0] += (a[1] - b[1]) * (a[2] + b[2])
		n[1] += (a[2] - b[2]) * (a[0] + b[0])
		n[2] += (a[0] - b[0]) * (a[1] + b[1])
	}
	return geom.Unit(n)
}

func (p *polyhedron) Type() Type { return TypeConvexPolyhedron }

func (p *polyhedron) Margin() float64 { return 0 }

func (p *polyhedron) LocalBounds() (min, max mgl64.Vec3) { return p.min, p.max }

func (p *polyhedron) NbFaces() int { return len(p.topology.Faces) }

func (p *polyhedron) Face(i int) HalfEdgeFace { return p.topology.Faces[i] }

func (p *polyhedron) FaceNormal(i int) mgl64.Vec3 { return p.normals[i] }

func (p *polyhedron) NbVertices() int { return len(p.topology.Vertices) }

func (p *polyhedron) Vertex(i int) HalfEdgeVertex { return p.topology.Vertices[i] }

func (p *polyhedron) VertexPosition(i int) mgl64.Vec3 {
	return p.points[p.topology.Vertices[i].PointIndex]
}

func (p *polyhedron) NbHalfEdges() int { return len(p.topology.Edges) }

func (p *polyhedron) HalfEdge(i int) HalfEdge { return p.topology.Edges[i] }

func (p *polyhedron) Centroid() mgl64.Vec3 { return p.centroid }

func (p *polyhedron) FindMostAntiParallelFace(direction mgl64.Vec3) int {
	best := -1
	minDot := math.Inf(1)
	for i, n := range p.normals {
		if d := n.Dot(direction); d < minDot {
			minDot = d
			best = i
		}
	}
	return best
}

func (p *polyhedron) LocalSupportPointWithoutMargin(direction mgl64.Vec3) mgl64.Vec3 {
	best := 0
	maxDot := math.Inf(-1)
	for i, pt := range p.points {
		if d := pt.Dot(direction); d > maxDot {
			maxDot = d
			best = i
		}
	}
	return p.points[best]
}

func (p *polyhedron) TestPointInside(localPoint mgl64.Vec3) bool {
	for f, face := range p.topology.Faces {
		if localPoint.Sub(p.points[face.Vertices[0]]).Dot(p.normals[f]) > 0 {
			return false
		}
	}
	return true
}

// raycast clips the ray against every face plane. Rays starting inside the
// polyhedron report no hit.
func (p *polyhedron) raycast(ray geom.Ray) (RaycastHit, bool) {
	dir := ray.Direction()
	tEnter, tExit := math.Inf(-1), ray.MaxFraction
	enterFace := -1
	for f, face := range p.topology.Faces {
		n := p.normals[f]
		dist := p.points[face.Vertices[0]].Sub(ray.Point1).Dot(n)
		denom := n.Dot(dir)
		if math.Abs(denom) < geom.MachineEpsilon {
			if dist < 0 {
				return RaycastHit{}, false
			}
			continue
		}
		t := dist / denom
		if denom < 0 {
			if t > tEnter {
				tEnter = t
				enterFace = f
			}
		} else if t < tExit {
			tExit = t
		}
		if tEnter > tExit {
			return RaycastHit{}, false
		}
	}
	if enterFace < 0 || tEnter < 0 || tEnter > ray.MaxFraction {
		return RaycastHit{}, false
	}
	return RaycastHit{
		Point:    ray.PointAt(tEnter),
		Normal:   p.normals[enterFace],
		Fraction: tEnter,
	}, true
}

// volume sums the signed tetrahedra spanned by the centroid and each face fan.
func (p *polyhedron) volume() float64 {
	var v float64
	for _, face := range p.topology.Faces {
		a := p.points[face.Vertices[0]].Sub(p.centroid)
		for i := 1; i+1 < len(face.Vertices); i++ {
			b := p.points[face.Vertices[i]].Sub(p.centroid)
			c := p.points[face.Vertices[i+1]].Sub(p.centroid)
			v += a.Dot(b.Cross(c)) / 6
		}
	}
	return math.Abs(v)
}
