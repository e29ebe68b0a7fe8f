package narrowphase

import (
	"github.com/gekko3d/collide/ecs"
	"github.com/gekko3d/collide/geom"
	"github.com/gekko3d/collide/shape"
	"github.com/go-gl/mathgl/mgl64"
)

// LastFrameCollisionInfo caches what the previous frame learned about a pair
// so GJK and SAT can start from the last separating axis.
type LastFrameCollisionInfo struct {
	IsValid      bool
	WasColliding bool
	WasUsingGJK  bool
	WasUsingSAT  bool

	GJKSeparatingAxis mgl64.Vec3

	SATIsAxisFacePolyhedron1 bool
	SATIsAxisFacePolyhedron2 bool
	SATMinAxisFaceIndex      int
	SATMinEdge1Index         int
	SATMinEdge2Index         int
}

// ContactPointInfo is one raw contact. Normal is in world space and points
// from shape 1 toward shape 2; the local points are in each shape's frame.
type ContactPointInfo struct {
	Normal      mgl64.Vec3
	Depth       float64
	LocalPoint1 mgl64.Vec3
	LocalPoint2 mgl64.Vec3
}

// Info is a single narrow-phase test.
type Info struct {
	PairID         uint64
	Collider1      ecs.Entity
	Collider2      ecs.Entity
	Shape1         shape.Shape
	Shape2         shape.Shape
	Transform1     geom.Transform
	Transform2     geom.Transform
	LastFrame      *LastFrameCollisionInfo
	ReportContacts bool
	IsColliding    bool
	ContactPoints  []ContactPointInfo
}

// InfoBatch is the homogeneous array of tests run by one algorithm.
type InfoBatch struct {
	Infos     []Info
	maxPoints int
}

func NewInfoBatch(maxContactPoints int) *InfoBatch {
	b := &InfoBatch{}
	b.setMaxContactPoints(maxContactPoints)
	return b
}

func (b *InfoBatch) setMaxContactPoints(n int) {
	if n <= 0 || n > MaxContactPointsPerInfo {
		n = MaxContactPointsPerInfo
	}
	b.maxPoints = n
}

func (b *InfoBatch) Len() int { return len(b.Infos) }

func (b *InfoBatch) AddNarrowPhaseInfo(pairID uint64, collider1, collider2 ecs.Entity, shape1, shape2 shape.Shape,
	transform1, transform2 geom.Transform, lastFrame *LastFrameCollisionInfo, reportContacts bool) int {

	if b.maxPoints == 0 {
		b.maxPoints = MaxContactPointsPerInfo
	}
	i := len(b.Infos)
	if i < cap(b.Infos) {
		// reuse the contact storage of a previous frame
		b.Infos = b.Infos[:i+1]
		points := b.Infos[i].ContactPoints[:0]
		b.Infos[i] = Info{ContactPoints: points}
	} else {
		b.Infos = append(b.Infos, Info{ContactPoints: make([]ContactPointInfo, 0, b.maxPoints)})
	}
	info := &b.Infos[i]
	info.PairID = pairID
	info.Collider1 = collider1
	info.Collider2 = collider2
	info.Shape1 = shape1
	info.Shape2 = shape2
	info.Transform1 = transform1
	info.Transform2 = transform2
	info.LastFrame = lastFrame
	info.ReportContacts = reportContacts
	return i
}

// AddContactPoint appends a contact to entry i. Points beyond the cap and
// points with no penetration are dropped.
func (b *InfoBatch) AddContactPoint(i int, normal mgl64.Vec3, depth float64, localPoint1, localPoint2 mgl64.Vec3) bool {
	info := &b.Infos[i]
	if depth <= 0 || len(info.ContactPoints) >= b.maxPoints {
		return false
	}
	info.ContactPoints = append(info.ContactPoints, ContactPointInfo{
		Normal:      normal,
		Depth:       depth,
		LocalPoint1: localPoint1,
		LocalPoint2: localPoint2,
	})
	return true
}

func (b *InfoBatch) ResetContactPoints(i int) {
	b.Infos[i].ContactPoints = b.Infos[i].ContactPoints[:0]
}

// ReserveMemory makes room for n entries without reallocating during the frame.
func (b *InfoBatch) ReserveMemory(n int) {
	if cap(b.Infos) >= n {
		return
	}
	grown := make([]Info, len(b.Infos), n)
	copy(grown, b.Infos)
	b.Infos = grown
}

// Clear empties the batch, keeping the allocated storage.
func (b *InfoBatch) Clear() {
	for i := range b.Infos {
		b.Infos[i].Shape1 = nil
		b.Infos[i].Shape2 = nil
		b.Infos[i].LastFrame = nil
	}
	b.Infos = b.Infos[:0]
}

// ensureLastFrame gives every entry in [start, start+count) a last-frame
// record so that the algorithms can store what they learn.
func (b *InfoBatch) ensureLastFrame(start, count int) {
	for i := start; i < start+count; i++ {
		if b.Infos[i].LastFrame == nil {
			b.Infos[i].LastFrame = &LastFrameCollisionInfo{}
		}
	}
}
