package shape

import "github.com/rotisserie/eris"

// HalfEdgeVertex references a point of the owning shape and one outgoing
// half-edge.
type HalfEdgeVertex struct {
	PointIndex int
	EdgeIndex  int
}

// HalfEdgeFace lists its vertices counter-clockwise seen from outside.
type HalfEdgeFace struct {
	EdgeIndex int
	Vertices  []int
}

// HalfEdge starts at VertexIndex and ends at the start of NextEdgeIndex.
// The two halves of an edge always have consecutive indices, the even
// one first.
type HalfEdge struct {
	VertexIndex   int
	TwinEdgeIndex int
	FaceIndex     int
	NextEdgeIndex int
}

type HalfEdgeStructure struct {
	Faces    []HalfEdgeFace
	Vertices []HalfEdgeVertex
	Edges    []HalfEdge
}

func (h *HalfEdgeStructure) AddVertex(pointIndex int) int {
	h.Vertices = append(h.Vertices, HalfEdgeVertex{PointIndex: pointIndex, EdgeIndex: -1})
	return len(h.Vertices) - 1
}

func (h *HalfEdgeStructure) AddFace(vertices []int) {
	h.Faces = append(h.Faces, HalfEdgeFace{EdgeIndex: -1, Vertices: append([]int(nil), vertices...)})
}

type vertexPair struct{ from, to int }

// Init links the half-edges of the faces added so far. Every directed edge
// must appear exactly once and have a twin, so the faces have to describe a
// closed, consistently wound surface.
func (h *HalfEdgeStructure) Init() error {
	h.Edges = h.Edges[:0]
	edgeIndex := make(map[vertexPair]int)

	// first pass: assign indices in face order, twins side by side
	for f, face := range h.Faces {
		if len(face.Vertices) < 3 {
			return eris.Wrapf(ErrInvalidShape, "face %d has %d vertices", f, len(face.Vertices))
		}
		for i, v1 := range face.Vertices {
			v2 := face.Vertices[(i+1)%len(face.Vertices)]
			if v1 < 0 || v1 >= len(h.Vertices) {
				return eris.Wrapf(ErrInvalidShape, "face %d references vertex %d", f, v1)
			}
			key := vertexPair{v1, v2}
			if idx, ok := edgeIndex[key]; ok {
				if h.Edges[idx].FaceIndex >= 0 {
					return eris.Wrapf(ErrInvalidShape, "edge %d->%d used by two faces", v1, v2)
				}
				h.Edges[idx].FaceIndex = f
				continue
			}
			base := len(h.Edges)
			h.Edges = append(h.Edges,
				HalfEdge{VertexIndex: v1, FaceIndex: f, TwinEdgeIndex: base + 1},
				HalfEdge{VertexIndex: v2, FaceIndex: -1, TwinEdgeIndex: base},
			)
			edgeIndex[key] = base
			edgeIndex[vertexPair{v2, v1}] = base + 1
		}
	}

	// second pass: next pointers, face and vertex entry edges
	for f := range h.Faces {
		face := &h.Faces[f]
		n := len(face.Vertices)
		for i, v1 := range face.Vertices {
			v2 := face.Vertices[(i+1)%n]
			v3 := face.Vertices[(i+2)%n]
			cur := edgeIndex[vertexPair{v1, v2}]
			h.Edges[cur].NextEdgeIndex = edgeIndex[vertexPair{v2, v3}]
			if i == 0 {
				face.EdgeIndex = cur
			}
			if h.Vertices[v1].EdgeIndex < 0 {
				h.Vertices[v1].EdgeIndex = cur
			}
		}
	}

	for i, e := range h.Edges {
		if e.FaceIndex < 0 {
			return eris.Wrapf(ErrInvalidShape, "half-edge %d->%d has no face, surface is not closed",
				e.VertexIndex, h.Edges[e.TwinEdgeIndex].VertexIndex)
		}
		if h.Edges[e.TwinEdgeIndex].TwinEdgeIndex != i {
			return eris.Wrapf(ErrInvalidShape, "half-edge %d has a broken twin", i)
		}
	}
	return nil
}
