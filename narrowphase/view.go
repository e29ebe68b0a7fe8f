package narrowphase

import (
	"github.com/gekko3d/collide/geom"
	"github.com/gekko3d/collide/shape"
	"github.com/go-gl/mathgl/mgl64"
)

// pairView presents a batch entry with its shapes in the order an algorithm
// expects. Contacts written through it are translated back to the entry's
// own order.
type pairView struct {
	batch   *InfoBatch
	index   int
	swapped bool

	shape1, shape2 shape.Shape
	tr1, tr2       geom.Transform
}

// viewOf orders the entry so that shape 1 has the given type.
func viewOf(batch *InfoBatch, i int, first shape.Type) pairView {
	info := &batch.Infos[i]
	v := pairView{
		batch:  batch,
		index:  i,
		shape1: info.Shape1,
		shape2: info.Shape2,
		tr1:    info.Transform1,
		tr2:    info.Transform2,
	}
	if info.Shape1.Type() != first {
		v.swapped = true
		v.shape1, v.shape2 = v.shape2, v.shape1
		v.tr1, v.tr2 = v.tr2, v.tr1
	}
	return v
}

func (v pairView) info() *Info { return &v.batch.Infos[v.index] }

func (v pairView) reportContacts() bool { return v.info().ReportContacts }

func (v pairView) lastFrame() *LastFrameCollisionInfo {
	info := v.info()
	if info.LastFrame == nil {
		info.LastFrame = &LastFrameCollisionInfo{}
	}
	return info.LastFrame
}

// addContact takes a normal pointing from view shape 1 to view shape 2.
// Contacts against a triangle with vertex normals are smoothed first.
func (v pairView) addContact(normal mgl64.Vec3, depth float64, local1, local2 mgl64.Vec3) {
	if tri, ok := v.shape1.(*shape.Triangle); ok && tri.HasVertexNormals() {
		normal, local2 = tri.ComputeSmoothMeshContact(local1, v.tr1, v.tr2.Inverse(), depth, true)
	} else if tri, ok := v.shape2.(*shape.Triangle); ok && tri.HasVertexNormals() {
		normal, local1 = tri.ComputeSmoothMeshContact(local2, v.tr2, v.tr1.Inverse(), depth, false)
	}
	if v.swapped {
		v.batch.AddContactPoint(v.index, normal.Mul(-1), depth, local2, local1)
		return
	}
	v.batch.AddContactPoint(v.index, normal, depth, local1, local2)
}

func (v pairView) resetContacts() {
	v.batch.ResetContactPoints(v.index)
}
