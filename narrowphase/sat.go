package narrowphase

import (
	"math"

	"github.com/gekko3d/collide/geom"
	"github.com/gekko3d/collide/shape"
	"github.com/go-gl/mathgl/mgl64"
)

// minEdgeAxisLengthSq rejects capsule/edge cross products too short to give
// a reliable axis.
const minEdgeAxisLengthSq = 1e-6

// SAT runs the separating axis tests for pairs involving a polyhedron.
type SAT struct {
	cfg Config
}

func NewSAT(cfg Config) *SAT {
	if cfg.SeparatingAxisRelativeTolerance == 0 {
		cfg.SeparatingAxisRelativeTolerance = DefaultSeparatingAxisRelativeTolerance
	}
	return &SAT{cfg: cfg}
}

// facePoint is a vertex of face f, used as the plane origin.
func facePoint(p shape.ConvexPolyhedron, f int) mgl64.Vec3 {
	return p.VertexPosition(p.Face(f).Vertices[0])
}

// sidePlanes returns the planes through the edges of face f, perpendicular
// to the face, with normals pointing toward the face interior.
func sidePlanes(p shape.ConvexPolyhedron, f int) (points, normals []mgl64.Vec3) {
	face := p.Face(f)
	n := p.FaceNormal(f)
	var centre mgl64.Vec3
	for _, vi := range face.Vertices {
		centre = centre.Add(p.VertexPosition(vi))
	}
	centre = centre.Mul(1 / float64(len(face.Vertices)))

	points = make([]mgl64.Vec3, 0, len(face.Vertices))
	normals = make([]mgl64.Vec3, 0, len(face.Vertices))
	first := face.EdgeIndex
	e := first
	for k := 0; k < p.NbHalfEdges(); k++ {
		edge := p.HalfEdge(e)
		v1 := p.VertexPosition(edge.VertexIndex)
		v2 := p.VertexPosition(p.HalfEdge(edge.TwinEdgeIndex).VertexIndex)
		pn := geom.Unit(n.Cross(v2.Sub(v1)))
		if pn.Dot(centre.Sub(v1)) < 0 {
			pn = pn.Mul(-1)
		}
		points = append(points, v1)
		normals = append(normals, pn)
		e = edge.NextEdgeIndex
		if e == first {
			break
		}
	}
	return points, normals
}

func faceVsSpherePenetration(p shape.ConvexPolyhedron, f int, centre mgl64.Vec3, radius float64) float64 {
	n := p.FaceNormal(f)
	support := centre.Sub(n.Mul(radius))
	return facePoint(p, f).Sub(support).Dot(n)
}

// testSphereVsPolyhedron expects the sphere as view shape 1.
func (s *SAT) testSphereVsPolyhedron(v pairView) bool {
	sphere := v.shape1.(shape.ConvexShape)
	poly := v.shape2.(shape.ConvexPolyhedron)
	radius := sphere.Margin()
	centre := v.tr2.Inverse().Apply(v.tr1.Position)

	minPen := math.MaxFloat64
	minFace := 0
	for f := 0; f < poly.NbFaces(); f++ {
		pen := faceVsSpherePenetration(poly, f, centre, radius)
		if pen <= 0 {
			return false
		}
		if pen < minPen {
			minPen = pen
			minFace = f
		}
	}

	if v.reportContacts() {
		n := poly.FaceNormal(minFace)
		nWorld := v.tr2.ApplyVector(n)
		sphereLocal := v.tr1.InverseApplyVector(nWorld.Mul(-radius))
		polyLocal := centre.Add(n.Mul(minPen - radius))
		v.addContact(nWorld.Mul(-1), minPen, sphereLocal, polyLocal)
	}
	v.lastFrame().SATMinAxisFaceIndex = minFace
	return true
}

func capsuleSupport(segA, segB, direction mgl64.Vec3, radius float64) mgl64.Vec3 {
	p := segA
	if segB.Dot(direction) > segA.Dot(direction) {
		p = segB
	}
	return p.Add(geom.Unit(direction).Mul(radius))
}

func faceVsCapsulePenetration(p shape.ConvexPolyhedron, f int, segA, segB mgl64.Vec3, radius float64) float64 {
	n := p.FaceNormal(f)
	support := capsuleSupport(segA, segB, n.Mul(-1), radius)
	return facePoint(p, f).Sub(support).Dot(n)
}

// isMinkowskiFaceCapsuleVsEdge tests whether the Gauss map arc of an edge
// crosses the great circle of the capsule segment.
func isMinkowskiFaceCapsuleVsEdge(segment, faceNormal1, faceNormal2 mgl64.Vec3) bool {
	return segment.Dot(faceNormal1)*segment.Dot(faceNormal2) <= 0
}

// edgeVsCapsulePenetration returns the penetration along segAxis x edgeDir,
// oriented out of the polyhedron.
func edgeVsCapsulePenetration(p shape.ConvexPolyhedron, segA, segB, segAxis, edgeV1, edgeDir mgl64.Vec3, radius float64) (float64, mgl64.Vec3, bool) {
	axis := segAxis.Cross(edgeDir)
	if axis.LenSqr() <= minEdgeAxisLengthSq {
		return 0, mgl64.Vec3{}, false
	}
	if axis.Dot(edgeV1.Sub(p.Centroid())) < 0 {
		axis = axis.Mul(-1)
	}
	axis = axis.Normalize()
	support := capsuleSupport(segA, segB, axis.Mul(-1), radius)
	return edgeV1.Sub(support).Dot(axis), axis, true
}

// testCapsuleVsPolyhedron expects the capsule as view shape 1.
func (s *SAT) testCapsuleVsPolyhedron(v pairView) bool {
	capsule := v.shape1.(*shape.Capsule)
	poly := v.shape2.(shape.ConvexPolyhedron)
	radius := capsule.Radius()

	polyToCapsule := v.tr1.Inverse().Mul(v.tr2)
	capsuleToPoly := polyToCapsule.Inverse()
	a, b := capsule.Segment()
	segA, segB := capsuleToPoly.Apply(a), capsuleToPoly.Apply(b)
	segAxis := segB.Sub(segA)

	minPen := math.MaxFloat64
	minFace := 0
	isFace := false
	var edgeAxis, edgeV1, edgeV2 mgl64.Vec3

	for f := 0; f < poly.NbFaces(); f++ {
		pen := faceVsCapsulePenetration(poly, f, segA, segB, radius)
		if pen <= 0 {
			return false
		}
		if pen < minPen {
			minPen = pen
			minFace = f
			isFace = true
		}
	}

	for i := 0; i < poly.NbHalfEdges(); i += 2 {
		edge := poly.HalfEdge(i)
		twin := poly.HalfEdge(edge.TwinEdgeIndex)
		if !isMinkowskiFaceCapsuleVsEdge(segAxis, poly.FaceNormal(edge.FaceIndex), poly.FaceNormal(twin.FaceIndex)) {
			continue
		}
		v1 := poly.VertexPosition(edge.VertexIndex)
		v2 := poly.VertexPosition(twin.VertexIndex)
		pen, axis, ok := edgeVsCapsulePenetration(poly, segA, segB, segAxis, v1, v2.Sub(v1), radius)
		if !ok {
			continue
		}
		if pen <= 0 {
			return false
		}
		if !s.cfg.notSignificantlySmaller(pen, minPen) {
			minPen = pen
			isFace = false
			edgeAxis = axis
			edgeV1, edgeV2 = v1, v2
		}
	}

	if isFace {
		v.lastFrame().SATMinAxisFaceIndex = minFace
		if !v.reportContacts() {
			return true
		}
		return s.capsuleFaceContacts(v, poly, minFace, segA, segB, radius)
	}

	if v.reportContacts() {
		onSegment, onEdge := geom.ClosestPointsBetweenSegments(segA, segB, edgeV1, edgeV2)
		normalWorld := v.tr2.ApplyVector(edgeAxis.Mul(-1))
		capsuleLocal := polyToCapsule.Apply(onSegment.Sub(edgeAxis.Mul(radius)))
		v.addContact(normalWorld, minPen, capsuleLocal, onEdge)
	}
	return true
}

// capsuleFaceContacts clips the capsule segment, given in polyhedron space,
// against the side planes of a face and emits a contact for every clipped
// end point that penetrates the face.
func (s *SAT) capsuleFaceContacts(v pairView, poly shape.ConvexPolyhedron, f int, segA, segB mgl64.Vec3, radius float64) bool {
	n := poly.FaceNormal(f)
	points, normals := sidePlanes(poly, f)
	clipped := geom.ClipSegmentWithPlanes(segA, segB, points, normals)
	origin := facePoint(poly, f)
	polyToCapsule := v.tr1.Inverse().Mul(v.tr2)
	normalWorld := v.tr2.ApplyVector(n).Mul(-1)

	found := false
	for _, c := range clipped {
		height := c.Sub(origin).Dot(n)
		depth := radius - height
		if depth <= 0 {
			continue
		}
		found = true
		capsuleLocal := polyToCapsule.Apply(c.Sub(n.Mul(radius)))
		polyLocal := c.Sub(n.Mul(height))
		v.addContact(normalWorld, depth, capsuleLocal, polyLocal)
	}
	return found
}

// refineCapsuleContactInMargin replaces the single GJK contact of a capsule
// lying flat on a face by the two end points clipped to that face.
func (s *SAT) refineCapsuleContactInMargin(v pairView, contact ContactPointInfo) {
	capsule := v.shape1.(*shape.Capsule)
	poly := v.shape2.(shape.ConvexPolyhedron)
	normal := contact.Normal
	if v.swapped {
		normal = normal.Mul(-1)
	}
	a, b := capsule.Segment()
	segWorld := geom.Unit(v.tr1.ApplyVector(b.Sub(a)))

	for f := 0; f < poly.NbFaces(); f++ {
		faceNormal := v.tr2.ApplyVector(poly.FaceNormal(f))
		if faceNormal.Dot(normal) >= 0 {
			continue
		}
		if !geom.AreParallelVectors(faceNormal, normal) || !geom.AreOrthogonalVectors(faceNormal, segWorld) {
			continue
		}
		capsuleToPoly := v.tr2.Inverse().Mul(v.tr1)
		v.resetContacts()
		if !s.capsuleFaceContacts(v, poly, f, capsuleToPoly.Apply(a), capsuleToPoly.Apply(b), capsule.Radius()) {
			v.batch.Infos[v.index].ContactPoints = append(v.batch.Infos[v.index].ContactPoints, contact)
		}
		return
	}
}

// faceDirectionPenetration is the penetration of p2 below face f of p1.
// oneToTwo maps the frame of p1 into the frame of p2.
func faceDirectionPenetration(p1, p2 shape.ConvexPolyhedron, oneToTwo geom.Transform, f int) float64 {
	n := oneToTwo.ApplyVector(p1.FaceNormal(f))
	support := p2.LocalSupportPointWithoutMargin(n.Mul(-1))
	return oneToTwo.Apply(facePoint(p1, f)).Sub(support).Dot(n)
}

// facesDirectionPenetration returns the minimum penetration over the faces
// of p1, stopping at the first separating face.
func facesDirectionPenetration(p1, p2 shape.ConvexPolyhedron, oneToTwo geom.Transform) (float64, int) {
	minPen := math.MaxFloat64
	minFace := 0
	for f := 0; f < p1.NbFaces(); f++ {
		pen := faceDirectionPenetration(p1, p2, oneToTwo, f)
		if pen <= 0 {
			return pen, f
		}
		if pen < minPen {
			minPen = pen
			minFace = f
		}
	}
	return minPen, minFace
}

// gaussMapArcsIntersect tests whether arc (a, b) and arc (c, d) of the unit
// sphere cross.
func gaussMapArcsIntersect(a, b, c, d, bCrossA, dCrossC mgl64.Vec3) bool {
	cba := c.Dot(bCrossA)
	dba := d.Dot(bCrossA)
	adc := a.Dot(dCrossC)
	bdc := b.Dot(dCrossC)
	return cba*dba < 0 && adc*bdc < 0 && cba*bdc > 0
}

// edgesBuildMinkowskiFace reports whether the cross product of the two edges
// is a candidate separating axis. The normals of p2 are negated because the
// arcs live on the Gauss map of the Minkowski difference.
func edgesBuildMinkowskiFace(p1 shape.ConvexPolyhedron, e1 shape.HalfEdge, p2 shape.ConvexPolyhedron, e2 shape.HalfEdge, oneToTwo geom.Transform) bool {
	twin1 := p1.HalfEdge(e1.TwinEdgeIndex)
	twin2 := p2.HalfEdge(e2.TwinEdgeIndex)
	a := oneToTwo.ApplyVector(p1.FaceNormal(e1.FaceIndex))
	b := oneToTwo.ApplyVector(p1.FaceNormal(twin1.FaceIndex))
	c := p2.FaceNormal(e2.FaceIndex)
	d := p2.FaceNormal(twin2.FaceIndex)

	// b x a and d x c are parallel to the edges
	bCrossA := oneToTwo.ApplyVector(p1.VertexPosition(e1.VertexIndex).Sub(p1.VertexPosition(twin1.VertexIndex)))
	dCrossC := p2.VertexPosition(e2.VertexIndex).Sub(p2.VertexPosition(twin2.VertexIndex))
	return gaussMapArcsIntersect(a, b, c.Mul(-1), d.Mul(-1), bCrossA, dCrossC)
}

// edgeDistance returns the penetration along the cross product of two edges,
// in the frame of polyhedron 2, with the axis pointing from polyhedron 1 to
// polyhedron 2. Parallel edges give no usable axis.
func edgeDistance(e1A, e2A, centroid1, centroid2, dir1, dir2 mgl64.Vec3, shape1IsTriangle bool) (float64, mgl64.Vec3) {
	if geom.AreParallelVectors(dir1, dir2) {
		return math.MaxFloat64, mgl64.Vec3{}
	}
	axis := dir1.Cross(dir2).Normalize()
	if shape1IsTriangle {
		// a triangle centroid lies in the plane of its edges
		if axis.Dot(e2A.Sub(centroid2)) > 0 {
			axis = axis.Mul(-1)
		}
	} else if axis.Dot(e1A.Sub(centroid1)) < 0 {
		axis = axis.Mul(-1)
	}
	return e1A.Sub(e2A).Dot(axis), axis
}

type edgeCandidate struct {
	index1, index2 int
	a1, b1, a2, b2 mgl64.Vec3
	axis           mgl64.Vec3
}

func polyhedronEdge(p shape.ConvexPolyhedron, index int, tr geom.Transform) (shape.HalfEdge, mgl64.Vec3, mgl64.Vec3) {
	e := p.HalfEdge(index)
	a := tr.Apply(p.VertexPosition(e.VertexIndex))
	b := tr.Apply(p.VertexPosition(p.HalfEdge(e.NextEdgeIndex).VertexIndex))
	return e, a, b
}

// testPolyhedronVsPolyhedron runs the full SAT between two convex polyhedra,
// starting from the previous frame's axis when there is one.
func (s *SAT) testPolyhedronVsPolyhedron(v pairView) bool {
	p1 := v.shape1.(shape.ConvexPolyhedron)
	p2 := v.shape2.(shape.ConvexPolyhedron)
	_, shape1IsTriangle := v.shape1.(*shape.Triangle)
	oneToTwo := v.tr2.Inverse().Mul(v.tr1)
	twoToOne := oneToTwo.Inverse()
	lf := v.lastFrame()

	if lf.IsValid && lf.WasUsingSAT {
		if handled, colliding := s.reuseLastFrameAxis(v, p1, p2, oneToTwo, twoToOne, shape1IsTriangle); handled {
			return colliding
		}
	}

	pen1, face1 := facesDirectionPenetration(p1, p2, oneToTwo)
	if pen1 <= 0 {
		lf.SATIsAxisFacePolyhedron1 = true
		lf.SATIsAxisFacePolyhedron2 = false
		lf.SATMinAxisFaceIndex = face1
		return false
	}
	pen2, face2 := facesDirectionPenetration(p2, p1, twoToOne)
	if pen2 <= 0 {
		lf.SATIsAxisFacePolyhedron1 = false
		lf.SATIsAxisFacePolyhedron2 = true
		lf.SATMinAxisFaceIndex = face2
		return false
	}

	// near ties go to polyhedron 1 so the reference face does not flip
	minPen, minFace, faceOfP1 := pen1, face1, true
	if !s.cfg.notSignificantlySmaller(pen2, pen1) {
		minPen, minFace, faceOfP1 = pen2, face2, false
	}

	isFace := true
	var best edgeCandidate
	centroid1 := oneToTwo.Apply(p1.Centroid())
	centroid2 := p2.Centroid()
	identity := geom.Identity()
	for i := 0; i < p1.NbHalfEdges(); i += 2 {
		e1, a1, b1 := polyhedronEdge(p1, i, oneToTwo)
		for j := 0; j < p2.NbHalfEdges(); j += 2 {
			e2 := p2.HalfEdge(j)
			if !edgesBuildMinkowskiFace(p1, e1, p2, e2, oneToTwo) {
				continue
			}
			_, a2, b2 := polyhedronEdge(p2, j, identity)
			pen, axis := edgeDistance(a1, a2, centroid1, centroid2, b1.Sub(a1), b2.Sub(a2), shape1IsTriangle)
			if pen <= 0 {
				lf.SATIsAxisFacePolyhedron1 = false
				lf.SATIsAxisFacePolyhedron2 = false
				lf.SATMinEdge1Index = i
				lf.SATMinEdge2Index = j
				return false
			}
			if !s.cfg.notSignificantlySmaller(pen, minPen) {
				minPen = pen
				isFace = false
				best = edgeCandidate{index1: i, index2: j, a1: a1, b1: b1, a2: a2, b2: b2, axis: axis}
			}
		}
	}

	if isFace {
		lf.SATIsAxisFacePolyhedron1 = faceOfP1
		lf.SATIsAxisFacePolyhedron2 = !faceOfP1
		lf.SATMinAxisFaceIndex = minFace
		return s.polyhedronFaceContacts(v, faceOfP1, p1, p2, oneToTwo, twoToOne, minFace)
	}

	if v.reportContacts() {
		c1, c2 := geom.ClosestPointsBetweenSegments(best.a1, best.b1, best.a2, best.b2)
		v.addContact(v.tr2.ApplyVector(best.axis), minPen, twoToOne.Apply(c1), c2)
	}
	lf.SATIsAxisFacePolyhedron1 = false
	lf.SATIsAxisFacePolyhedron2 = false
	lf.SATMinEdge1Index = best.index1
	lf.SATMinEdge2Index = best.index2
	return true
}

// reuseLastFrameAxis re-tests only the previous frame's axis. It reports
// handled when that single test settles the result.
func (s *SAT) reuseLastFrameAxis(v pairView, p1, p2 shape.ConvexPolyhedron, oneToTwo, twoToOne geom.Transform,
	shape1IsTriangle bool) (handled, colliding bool) {

	lf := v.lastFrame()
	if lf.SATIsAxisFacePolyhedron1 || lf.SATIsAxisFacePolyhedron2 {
		faceOfP1 := lf.SATIsAxisFacePolyhedron1
		face := lf.SATMinAxisFaceIndex
		var pen float64
		if faceOfP1 {
			if face >= p1.NbFaces() {
				return false, false
			}
			pen = faceDirectionPenetration(p1, p2, oneToTwo, face)
		} else {
			if face >= p2.NbFaces() {
				return false, false
			}
			pen = faceDirectionPenetration(p2, p1, twoToOne, face)
		}

		if !lf.WasColliding && pen <= 0 {
			return true, false
		}
		if lf.WasColliding && pen > 0 && s.polyhedronFaceContacts(v, faceOfP1, p1, p2, oneToTwo, twoToOne, face) {
			return true, true
		}
		return false, false
	}

	if lf.SATMinEdge1Index >= p1.NbHalfEdges() || lf.SATMinEdge2Index >= p2.NbHalfEdges() {
		return false, false
	}
	e1, a1, b1 := polyhedronEdge(p1, lf.SATMinEdge1Index, oneToTwo)
	e2, a2, b2 := polyhedronEdge(p2, lf.SATMinEdge2Index, geom.Identity())
	if !edgesBuildMinkowskiFace(p1, e1, p2, e2, oneToTwo) {
		return false, false
	}
	dir1, dir2 := b1.Sub(a1), b2.Sub(a2)
	pen, axis := edgeDistance(a1, a2, oneToTwo.Apply(p1.Centroid()), p2.Centroid(), dir1, dir2, shape1IsTriangle)
	if pen == math.MaxFloat64 {
		return false, false
	}
	if !lf.WasColliding && pen <= 0 {
		return true, false
	}
	if !lf.WasColliding || pen <= 0 {
		return false, false
	}

	// the closest points must project inside the opposite edge, otherwise
	// the edges no longer touch and the full test runs again
	c1, c2 := geom.ClosestPointsBetweenSegments(a1, b1, a2, b2)
	t1 := c1.Sub(a2).Dot(dir2) / dir2.LenSqr()
	t2 := c2.Sub(a1).Dot(dir1) / dir1.LenSqr()
	if t1 < 0 || t1 > 1 || t2 < 0 || t2 > 1 {
		return false, false
	}
	if v.reportContacts() {
		v.addContact(v.tr2.ApplyVector(axis), pen, twoToOne.Apply(c1), c2)
	}
	return true, true
}

// polyhedronFaceContacts clips the incident face against the side planes of
// the reference face and keeps the points below the reference face. It
// reports whether any point was found; contacts are only emitted when the
// entry reports contacts.
func (s *SAT) polyhedronFaceContacts(v pairView, refIsP1 bool, p1, p2 shape.ConvexPolyhedron,
	oneToTwo, twoToOne geom.Transform, refFace int) bool {

	ref, inc := p1, p2
	refToInc := oneToTwo
	normalWorld := v.tr1.ApplyVector(p1.FaceNormal(refFace))
	if !refIsP1 {
		ref, inc = p2, p1
		refToInc = twoToOne
		normalWorld = v.tr2.ApplyVector(p2.FaceNormal(refFace)).Mul(-1)
	}
	incToRef := refToInc.Inverse()

	axis := ref.FaceNormal(refFace)
	incFace := inc.Face(inc.FindMostAntiParallelFace(refToInc.ApplyVector(axis)))
	polygon := make([]mgl64.Vec3, len(incFace.Vertices))
	for k, vi := range incFace.Vertices {
		polygon[k] = incToRef.Apply(inc.VertexPosition(vi))
	}

	points, normals := sidePlanes(ref, refFace)
	clipped := geom.ClipPolygonWithPlanes(polygon, points, normals)
	origin := facePoint(ref, refFace)
	report := v.reportContacts()

	found := false
	for _, c := range clipped {
		depth := origin.Sub(c).Dot(axis)
		if depth <= 0 {
			continue
		}
		found = true
		if !report {
			break
		}
		incLocal := refToInc.Apply(c)
		refLocal := geom.ProjectPointOntoPlane(c, axis, origin)
		if refIsP1 {
			v.addContact(normalWorld, depth, refLocal, incLocal)
		} else {
			v.addContact(normalWorld, depth, incLocal, refLocal)
		}
	}
	return found
}
