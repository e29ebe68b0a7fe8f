package collide

import (
	"math"

	"github.com/gekko3d/collide/geom"
	"github.com/gekko3d/collide/narrowphase"
	"github.com/go-gl/mathgl/mgl64"
)

// maxManifoldsPerPair bounds the number of normal groups kept for one pair.
const maxManifoldsPerPair = 3

// ContactEventType is the phase of a contact pair within a frame.
type ContactEventType int

const (
	ContactStart ContactEventType = iota
	ContactStay
	ContactExit
)

// String returns the lowercase event name.
func (t ContactEventType) String() string {
	switch t {
	case ContactStart:
		return "start"
	case ContactStay:
		return "stay"
	case ContactExit:
		return "exit"
	}
	return "unknown"
}

// OverlapEventType is the trigger counterpart of ContactEventType.
type OverlapEventType int

const (
	OverlapStart OverlapEventType = iota
	OverlapStay
	OverlapExit
)

// String returns the lowercase event name.
func (t OverlapEventType) String() string {
	switch t {
	case OverlapStart:
		return "start"
	case OverlapStay:
		return "stay"
	case OverlapExit:
		return "exit"
	}
	return "unknown"
}

// ContactPoint is a reduced contact. WorldNormal points from collider 1 to
// collider 2; each local point is in its collider's frame.
type ContactPoint struct {
	WorldNormal      mgl64.Vec3
	PenetrationDepth float64
	LocalPoint1      mgl64.Vec3
	LocalPoint2      mgl64.Vec3
}

// ContactManifold groups the points of a pair that share a normal.
type ContactManifold struct {
	Normal mgl64.Vec3
	Points []ContactPoint
}

// ContactPair is what the world reports for two touching colliders. Exit
// pairs carry no manifolds; their body or collider may already have been
// destroyed.
type ContactPair struct {
	Body1, Body2         *Body
	Collider1, Collider2 *Collider
	EventType            ContactEventType
	Manifolds            []ContactManifold
}

func (p *ContactPair) NbContactPoints() int {
	n := 0
	for _, m := range p.Manifolds {
		n += len(m.Points)
	}
	return n
}

// OverlapPair reports a trigger overlap. Triggers never produce contact
// points.
type OverlapPair struct {
	Body1, Body2         *Body
	Collider1, Collider2 *Collider
	EventType            OverlapEventType
}

// buildManifolds groups raw contact points by normal similarity and reduces
// each group to at most maxPoints. shape1ToWorld is used to reduce in the
// frame of collider 1.
func buildManifolds(points []narrowphase.ContactPointInfo, cosAngleSimilar float64, maxPoints int,
	shape1ToWorld geom.Transform) []ContactManifold {

	var manifolds []ContactManifold
	for _, p := range points {
		cp := ContactPoint{
			WorldNormal:      p.Normal,
			PenetrationDepth: p.Depth,
			LocalPoint1:      p.LocalPoint1,
			LocalPoint2:      p.LocalPoint2,
		}
		placed := false
		for m := range manifolds {
			if manifolds[m].Normal.Dot(p.Normal) >= cosAngleSimilar {
				manifolds[m].Points = append(manifolds[m].Points, cp)
				placed = true
				break
			}
		}
		if placed {
			continue
		}
		if len(manifolds) == maxManifoldsPerPair {
			// add to the closest group rather than drop the point
			best, bestDot := 0, math.Inf(-1)
			for m := range manifolds {
				if d := manifolds[m].Normal.Dot(p.Normal); d > bestDot {
					best, bestDot = m, d
				}
			}
			manifolds[best].Points = append(manifolds[best].Points, cp)
			continue
		}
		manifolds = append(manifolds, ContactManifold{Normal: p.Normal, Points: []ContactPoint{cp}})
	}

	for m := range manifolds {
		if len(manifolds[m].Points) > maxPoints {
			localNormal := shape1ToWorld.InverseApplyVector(manifolds[m].Normal)
			manifolds[m].Points = reduceContactPoints(manifolds[m].Points, localNormal, maxPoints)
		}
	}
	return manifolds
}

// reduceContactPoints keeps the deepest point, the point farthest from it,
// the point making the largest triangle with those two and the point adding
// the largest area outside that triangle. Areas are measured in the frame of
// collider 1 around the manifold normal.
func reduceContactPoints(points []ContactPoint, localNormal mgl64.Vec3, maxPoints int) []ContactPoint {
	chosen := make([]int, 0, 4)
	used := make([]bool, len(points))
	pick := func(i int) {
		chosen = append(chosen, i)
		used[i] = true
	}

	deepest := 0
	for i, p := range points {
		if p.PenetrationDepth > points[deepest].PenetrationDepth {
			deepest = i
		}
	}
	pick(deepest)
	if maxPoints == 1 {
		return collect(points, chosen)
	}

	p0 := points[deepest].LocalPoint1
	farthest, maxDist := -1, -1.0
	for i, p := range points {
		if used[i] {
			continue
		}
		if d := p.LocalPoint1.Sub(p0).LenSqr(); d > maxDist {
			farthest, maxDist = i, d
		}
	}
	pick(farthest)
	if maxPoints == 2 {
		return collect(points, chosen)
	}

	p1 := points[farthest].LocalPoint1
	positive, negative := -1, -1
	maxPositive, maxNegative := 0.0, 0.0
	for i, p := range points {
		if used[i] {
			continue
		}
		area := p1.Sub(p0).Cross(p.LocalPoint1.Sub(p0)).Dot(localNormal)
		if area > maxPositive {
			positive, maxPositive = i, area
		} else if area < maxNegative {
			negative, maxNegative = i, area
		}
	}
	third := positive
	orientation := 1.0
	if maxPositive < -maxNegative || positive < 0 {
		third = negative
		orientation = -1
	}
	if third < 0 {
		return collect(points, chosen)
	}
	pick(third)
	if maxPoints == 3 {
		return collect(points, chosen)
	}

	// the fourth point must lie outside one edge of the triangle; the signed
	// area of that edge with the point is opposite to the triangle's
	tri := [3]mgl64.Vec3{p0, p1, points[third].LocalPoint1}
	fourth, largest := -1, 0.0
	for i, p := range points {
		if used[i] {
			continue
		}
		for e := 0; e < 3; e++ {
			a, b := tri[e], tri[(e+1)%3]
			area := -orientation * a.Sub(p.LocalPoint1).Cross(b.Sub(p.LocalPoint1)).Dot(localNormal)
			if area > largest {
				fourth, largest = i, area
			}
		}
	}
	if fourth >= 0 {
		pick(fourth)
	}
	return collect(points, chosen)
}

func collect(points []ContactPoint, indices []int) []ContactPoint {
	out := make([]ContactPoint, len(indices))
	for k, i := range indices {
		out[k] = points[i]
	}
	return out
}
