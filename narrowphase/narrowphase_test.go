package narrowphase

import (
	"fmt"
	"math"
	"testing"

	"github.com/gekko3d/collide/ecs"
	"github.com/gekko3d/collide/geom"
	"github.com/gekko3d/collide/shape"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertVecInDelta(t *testing.T, expected, actual mgl64.Vec3, delta float64, msgAndArgs ...interface{}) {
	t.Helper()
	for i := 0; i < 3; i++ {
		assert.InDelta(t, expected[i], actual[i], delta, msgAndArgs...)
	}
}

func mustSphere(t *testing.T, r float64) *shape.Sphere {
	t.Helper()
	s, err := shape.NewSphere(r)
	require.NoError(t, err)
	return s
}

func mustCapsule(t *testing.T, r, h float64) *shape.Capsule {
	t.Helper()
	c, err := shape.NewCapsule(r, h)
	require.NoError(t, err)
	return c
}

func mustBox(t *testing.T, x, y, z float64) *shape.Box {
	t.Helper()
	b, err := shape.NewBox(mgl64.Vec3{x, y, z})
	require.NoError(t, err)
	return b
}

// runPair dispatches a single test and returns the resulting entry.
func runPair(t *testing.T, s1, s2 shape.Shape, tr1, tr2 geom.Transform, lf *LastFrameCollisionInfo) Info {
	t.Helper()
	d := NewDispatch(DefaultConfig())
	in := NewInput(MaxContactPointsPerInfo)
	algo := d.SelectAlgorithm(s1.Type(), s2.Type())
	in.AddNarrowPhaseTest(7, ecs.NewEntity(1, 0), ecs.NewEntity(2, 0), s1, s2, tr1, tr2, algo, true, lf)
	d.Run(in)
	batch := in.Batch(algo)
	require.Equal(t, 1, batch.Len())
	return batch.Infos[0]
}

func TestDispatch_Matrix(t *testing.T) {
	d := NewDispatch(DefaultConfig())
	types := []shape.Type{shape.TypeSphere, shape.TypeCapsule, shape.TypeConvexPolyhedron, shape.TypeConcave}
	for _, a := range types {
		for _, b := range types {
			assert.Equal(t, d.SelectAlgorithm(a, b), d.SelectAlgorithm(b, a), "%v/%v", a, b)
		}
		assert.Equal(t, NoCollision, d.SelectAlgorithm(a, shape.TypeConcave))
	}

	tests := []struct {
		t1, t2 shape.Type
		want   Algorithm
	}{
		{shape.TypeSphere, shape.TypeSphere, SphereVsSphere},
		{shape.TypeCapsule, shape.TypeSphere, SphereVsCapsule},
		{shape.TypeCapsule, shape.TypeCapsule, CapsuleVsCapsule},
		{shape.TypeConvexPolyhedron, shape.TypeSphere, SphereVsConvexPolyhedron},
		{shape.TypeCapsule, shape.TypeConvexPolyhedron, CapsuleVsConvexPolyhedron},
		{shape.TypeConvexPolyhedron, shape.TypeConvexPolyhedron, ConvexPolyhedronVsConvexPolyhedron},
	}
	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, d.SelectAlgorithm(tt.t1, tt.t2))
		})
	}
}

func TestInfoBatch_ContactCap(t *testing.T) {
	b := NewInfoBatch(MaxContactPointsPerInfo)
	i := b.AddNarrowPhaseInfo(1, ecs.NewEntity(1, 0), ecs.NewEntity(2, 0), nil, nil, geom.Identity(), geom.Identity(), nil, true)

	assert.False(t, b.AddContactPoint(i, mgl64.Vec3{0, 1, 0}, 0, mgl64.Vec3{}, mgl64.Vec3{}), "zero depth is rejected")
	added := 0
	for k := 0; k < 20; k++ {
		if b.AddContactPoint(i, mgl64.Vec3{0, 1, 0}, 0.1, mgl64.Vec3{}, mgl64.Vec3{}) {
			added++
		}
	}
	assert.Equal(t, MaxContactPointsPerInfo, added)
	assert.Len(t, b.Infos[i].ContactPoints, MaxContactPointsPerInfo)

	b.Clear()
	assert.Equal(t, 0, b.Len())
	j := b.AddNarrowPhaseInfo(2, ecs.NewEntity(1, 0), ecs.NewEntity(2, 0), nil, nil, geom.Identity(), geom.Identity(), nil, false)
	assert.Empty(t, b.Infos[j].ContactPoints, "reused storage starts empty")
}

func TestSphereVsSphere(t *testing.T) {
	s1, s2 := mustSphere(t, 1), mustSphere(t, 1)

	info := runPair(t, s1, s2, geom.Identity(), geom.Translation(1.5, 0, 0), nil)
	require.True(t, info.IsColliding)
	require.Len(t, info.ContactPoints, 1)
	c := info.ContactPoints[0]
	assert.InDelta(t, 0.5, c.Depth, 1e-12)
	assertVecInDelta(t, mgl64.Vec3{1, 0, 0}, c.Normal, 1e-12)
	assertVecInDelta(t, mgl64.Vec3{1, 0, 0}, c.LocalPoint1, 1e-12)
	assertVecInDelta(t, mgl64.Vec3{-1, 0, 0}, c.LocalPoint2, 1e-12)

	info = runPair(t, s1, s2, geom.Identity(), geom.Translation(2, 0, 0), nil)
	assert.False(t, info.IsColliding, "touching spheres do not collide")
	assert.Empty(t, info.ContactPoints)
}

func TestSphereVsCapsule_Swapped(t *testing.T) {
	capsule := mustCapsule(t, 0.5, 2)
	sphere := mustSphere(t, 0.5)

	info := runPair(t, capsule, sphere, geom.Identity(), geom.Translation(0.9, 0.5, 0), nil)
	require.True(t, info.IsColliding)
	require.Len(t, info.ContactPoints, 1)
	c := info.ContactPoints[0]
	assert.InDelta(t, 0.1, c.Depth, 1e-9)
	assertVecInDelta(t, mgl64.Vec3{1, 0, 0}, c.Normal, 1e-9, "normal points from shape 1 to shape 2")
	assertVecInDelta(t, mgl64.Vec3{0.5, 0.5, 0}, c.LocalPoint1, 1e-9)
	assertVecInDelta(t, mgl64.Vec3{-0.5, 0, 0}, c.LocalPoint2, 1e-9)
}

func TestCapsuleVsCapsule(t *testing.T) {
	c1, c2 := mustCapsule(t, 0.5, 2), mustCapsule(t, 0.5, 2)

	t.Run("parallel", func(t *testing.T) {
		info := runPair(t, c1, c2, geom.Identity(), geom.Translation(0.8, 0.5, 0), nil)
		require.True(t, info.IsColliding)
		require.Len(t, info.ContactPoints, 2)
		for _, c := range info.ContactPoints {
			assert.InDelta(t, 0.2, c.Depth, 1e-9)
			assertVecInDelta(t, mgl64.Vec3{1, 0, 0}, c.Normal, 1e-9)
		}
		assert.InDelta(t, -0.5, info.ContactPoints[0].LocalPoint1.Y(), 1e-9)
		assert.InDelta(t, 1, info.ContactPoints[1].LocalPoint1.Y(), 1e-9)
	})

	t.Run("crossed", func(t *testing.T) {
		rot := geom.NewTransform(mgl64.Vec3{0, 0, 0.9}, mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 0, 1}))
		info := runPair(t, c1, c2, geom.Identity(), rot, nil)
		require.True(t, info.IsColliding)
		require.Len(t, info.ContactPoints, 1)
		assert.InDelta(t, 0.1, info.ContactPoints[0].Depth, 1e-9)
		assertVecInDelta(t, mgl64.Vec3{0, 0, 1}, info.ContactPoints[0].Normal, 1e-9)
	})

	t.Run("apart", func(t *testing.T) {
		info := runPair(t, c1, c2, geom.Identity(), geom.Translation(1.2, 0, 0), nil)
		assert.False(t, info.IsColliding)
	})
}

func TestGJK_AgreesWithSphereFormula(t *testing.T) {
	gjk := NewGJK(DefaultConfig())
	tests := []struct {
		name     string
		distance float64
		want     GJKResult
	}{
		{"overlap", 1.5, GJKCollideInMargin},
		{"touching", 2, GJKSeparated},
		{"apart", 2.5, GJKSeparated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewInfoBatch(MaxContactPointsPerInfo)
			b.AddNarrowPhaseInfo(1, ecs.NewEntity(1, 0), ecs.NewEntity(2, 0), mustSphere(t, 1), mustSphere(t, 1),
				geom.Identity(), geom.Translation(tt.distance, 0, 0), &LastFrameCollisionInfo{}, true)
			results := gjk.TestCollision(b, 0, 1, nil)
			require.Len(t, results, 1)
			assert.Equal(t, tt.want, results[0])
			if tt.want != GJKCollideInMargin {
				assert.Empty(t, b.Infos[0].ContactPoints)
				return
			}
			require.Len(t, b.Infos[0].ContactPoints, 1)
			c := b.Infos[0].ContactPoints[0]
			assert.InDelta(t, 2-tt.distance, c.Depth, 1e-9)
			assertVecInDelta(t, mgl64.Vec3{1, 0, 0}, c.Normal, 1e-9)
			assertVecInDelta(t, mgl64.Vec3{1, 0, 0}, c.LocalPoint1, 1e-9)
			assertVecInDelta(t, mgl64.Vec3{-1, 0, 0}, c.LocalPoint2, 1e-9)
		})
	}
}

func TestSphereVsBox(t *testing.T) {
	box := mustBox(t, 1, 1, 1)
	sphere := mustSphere(t, 0.5)

	t.Run("margin only uses GJK", func(t *testing.T) {
		lf := &LastFrameCollisionInfo{}
		info := runPair(t, sphere, box, geom.Translation(0, 1.4, 0), geom.Identity(), lf)
		require.True(t, info.IsColliding)
		require.Len(t, info.ContactPoints, 1)
		assert.InDelta(t, 0.1, info.ContactPoints[0].Depth, 1e-6)
		assertVecInDelta(t, mgl64.Vec3{0, -1, 0}, info.ContactPoints[0].Normal, 1e-6)
		assert.True(t, lf.WasUsingGJK)
		assert.False(t, lf.WasUsingSAT)
		assert.True(t, lf.IsValid)
		assert.True(t, lf.WasColliding)
	})

	t.Run("centre inside falls back to SAT", func(t *testing.T) {
		lf := &LastFrameCollisionInfo{}
		info := runPair(t, sphere, box, geom.Translation(0, 0.7, 0), geom.Identity(), lf)
		require.True(t, info.IsColliding)
		require.Len(t, info.ContactPoints, 1)
		c := info.ContactPoints[0]
		assert.InDelta(t, 0.8, c.Depth, 1e-9)
		assertVecInDelta(t, mgl64.Vec3{0, -1, 0}, c.Normal, 1e-9)
		assertVecInDelta(t, mgl64.Vec3{0, -0.5, 0}, c.LocalPoint1, 1e-9)
		assertVecInDelta(t, mgl64.Vec3{0, 1, 0}, c.LocalPoint2, 1e-9)
		assert.True(t, lf.WasUsingSAT)
		assert.Equal(t, 5, lf.SATMinAxisFaceIndex)
	})

	t.Run("box first", func(t *testing.T) {
		info := runPair(t, box, sphere, geom.Identity(), geom.Translation(0, 0.7, 0), nil)
		require.True(t, info.IsColliding)
		require.Len(t, info.ContactPoints, 1)
		assertVecInDelta(t, mgl64.Vec3{0, 1, 0}, info.ContactPoints[0].Normal, 1e-9)
		assertVecInDelta(t, mgl64.Vec3{0, 1, 0}, info.ContactPoints[0].LocalPoint1, 1e-9)
	})

	t.Run("apart", func(t *testing.T) {
		info := runPair(t, sphere, box, geom.Translation(3, 0, 0), geom.Identity(), nil)
		assert.False(t, info.IsColliding)
	})
}

func TestCapsuleVsBox(t *testing.T) {
	box := mustBox(t, 1, 1, 1)
	capsule := mustCapsule(t, 0.5, 1)
	lying := geom.NewTransform(mgl64.Vec3{0, 1.4, 0}, mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 0, 1}))

	t.Run("lying on a face in margin", func(t *testing.T) {
		info := runPair(t, box, capsule, geom.Identity(), lying, nil)
		require.True(t, info.IsColliding)
		require.Len(t, info.ContactPoints, 2)
		for _, c := range info.ContactPoints {
			assert.InDelta(t, 0.1, c.Depth, 1e-6)
			assertVecInDelta(t, mgl64.Vec3{0, 1, 0}, c.Normal, 1e-6)
			assert.InDelta(t, 1, c.LocalPoint1.Y(), 1e-6)
		}
	})

	for _, tt := range []struct {
		y, depth float64
	}{
		{0.8, 0.7},
		{0.6, 0.9},
		{0.3, 1.2},
	} {
		t.Run(fmt.Sprintf("segment inside at %.1f uses SAT", tt.y), func(t *testing.T) {
			deep := lying
			deep.Position = mgl64.Vec3{0, tt.y, 0}
			lf := &LastFrameCollisionInfo{}
			info := runPair(t, capsule, box, deep, geom.Identity(), lf)
			require.True(t, info.IsColliding)
			require.Len(t, info.ContactPoints, 2)
			for _, c := range info.ContactPoints {
				assert.InDelta(t, tt.depth, c.Depth, 1e-6)
				assertVecInDelta(t, mgl64.Vec3{0, -1, 0}, c.Normal, 1e-6)
			}
			assert.True(t, lf.WasUsingSAT)
			assert.False(t, lf.WasUsingGJK)
			assert.Equal(t, 5, lf.SATMinAxisFaceIndex)
		})
	}

	t.Run("shallow after deep keeps two contacts", func(t *testing.T) {
		lf := &LastFrameCollisionInfo{}
		deep := lying
		deep.Position = mgl64.Vec3{0, 0.8, 0}
		runPair(t, capsule, box, deep, geom.Identity(), lf)
		require.True(t, lf.WasUsingSAT)

		info := runPair(t, box, capsule, geom.Identity(), lying, lf)
		require.True(t, info.IsColliding)
		require.Len(t, info.ContactPoints, 2)
		for _, c := range info.ContactPoints {
			assert.InDelta(t, 0.1, c.Depth, 1e-6)
		}
	})
}

func TestEdgeVsCapsulePenetration_NearParallel(t *testing.T) {
	box := mustBox(t, 1, 1, 1)
	edgeV1, edgeDir := mgl64.Vec3{1, 1, -1}, mgl64.Vec3{0, 0, 2}
	segA := mgl64.Vec3{1, 1.2, -1}

	// a segment a few milliradians off the edge still gives an axis
	segAxis := mgl64.Vec3{0.004, 0, 1}
	pen, axis, ok := edgeVsCapsulePenetration(box, segA, segA.Add(segAxis), segAxis, edgeV1, edgeDir, 0.3)
	require.True(t, ok)
	assertVecInDelta(t, mgl64.Vec3{0, 1, 0}, axis, 1e-9)
	assert.InDelta(t, 0.1, pen, 1e-9)

	segAxis = mgl64.Vec3{0, 0, 1}
	_, _, ok = edgeVsCapsulePenetration(box, segA, segA.Add(segAxis), segAxis, edgeV1, edgeDir, 0.3)
	assert.False(t, ok)
}

func TestBoxVsBox(t *testing.T) {
	b1, b2 := mustBox(t, 1, 1, 1), mustBox(t, 1, 1, 1)

	t.Run("separated", func(t *testing.T) {
		lf := &LastFrameCollisionInfo{}
		info := runPair(t, b1, b2, geom.Identity(), geom.Translation(2.5, 0, 0), lf)
		assert.False(t, info.IsColliding)
		assert.True(t, lf.SATIsAxisFacePolyhedron1)
		assert.False(t, lf.SATIsAxisFacePolyhedron2)
		assert.Equal(t, 1, lf.SATMinAxisFaceIndex)
		assert.True(t, lf.IsValid)
		assert.False(t, lf.WasColliding)
	})

	t.Run("resting", func(t *testing.T) {
		lf := &LastFrameCollisionInfo{}
		info := runPair(t, b1, b2, geom.Identity(), geom.Translation(0, 1.9, 0), lf)
		require.True(t, info.IsColliding)
		require.Len(t, info.ContactPoints, 4)
		for _, c := range info.ContactPoints {
			assert.InDelta(t, 0.1, c.Depth, 1e-9)
			assertVecInDelta(t, mgl64.Vec3{0, 1, 0}, c.Normal, 1e-9)
			assert.InDelta(t, 1, c.LocalPoint1.Y(), 1e-9)
			assert.InDelta(t, -1, c.LocalPoint2.Y(), 1e-9)
		}
		assert.True(t, lf.SATIsAxisFacePolyhedron1)
		assert.Equal(t, 5, lf.SATMinAxisFaceIndex)

		// a small rotation keeps the same reference face
		tilted := geom.NewTransform(mgl64.Vec3{0, 1.9, 0}, mgl64.QuatRotate(0.01, mgl64.Vec3{0, 1, 0}))
		info = runPair(t, b1, b2, geom.Identity(), tilted, lf)
		require.True(t, info.IsColliding)
		// the clipped incident face is an octagon once rotated
		assert.GreaterOrEqual(t, len(info.ContactPoints), 4)
		for _, c := range info.ContactPoints {
			assertVecInDelta(t, mgl64.Vec3{0, 1, 0}, c.Normal, 1e-9)
		}
		assert.True(t, lf.SATIsAxisFacePolyhedron1)
		assert.Equal(t, 5, lf.SATMinAxisFaceIndex)
	})

	t.Run("previous face axis is reused", func(t *testing.T) {
		side := geom.Translation(1.5, 1.9, 0)
		fresh := &LastFrameCollisionInfo{}
		info := runPair(t, b1, b2, geom.Identity(), side, fresh)
		require.True(t, info.IsColliding)
		require.NotEmpty(t, info.ContactPoints)
		assertVecInDelta(t, mgl64.Vec3{0, 1, 0}, info.ContactPoints[0].Normal, 1e-9)
		assert.InDelta(t, 0.1, info.ContactPoints[0].Depth, 1e-9)
		assert.Equal(t, 5, fresh.SATMinAxisFaceIndex)

		// last frame separated the boxes along +x of the first one; that face
		// still penetrates so its contacts are kept without a new search
		lf := &LastFrameCollisionInfo{IsValid: true, WasUsingSAT: true, WasColliding: true,
			SATIsAxisFacePolyhedron1: true, SATMinAxisFaceIndex: 1}
		info = runPair(t, b1, b2, geom.Identity(), side, lf)
		require.True(t, info.IsColliding)
		require.NotEmpty(t, info.ContactPoints)
		for _, c := range info.ContactPoints {
			assertVecInDelta(t, mgl64.Vec3{1, 0, 0}, c.Normal, 1e-9)
			assert.InDelta(t, 0.5, c.Depth, 1e-9)
		}
		assert.True(t, lf.SATIsAxisFacePolyhedron1)
		assert.Equal(t, 1, lf.SATMinAxisFaceIndex)
	})

	t.Run("no contacts requested", func(t *testing.T) {
		d := NewDispatch(DefaultConfig())
		in := NewInput(MaxContactPointsPerInfo)
		in.AddNarrowPhaseTest(1, ecs.NewEntity(1, 0), ecs.NewEntity(2, 0), b1, b2,
			geom.Identity(), geom.Translation(0, 1.9, 0), ConvexPolyhedronVsConvexPolyhedron, false, nil)
		d.Run(in)
		info := in.Batch(ConvexPolyhedronVsConvexPolyhedron).Infos[0]
		assert.True(t, info.IsColliding)
		assert.Empty(t, info.ContactPoints)
	})
}

func TestBoxVsBox_EdgeContact(t *testing.T) {
	b1, b2 := mustBox(t, 1, 1, 1), mustBox(t, 1, 1, 1)
	// the top edge of the first box runs along x at height sqrt(2), the
	// bottom edge of the second along z, 0.1 below it
	tr1 := geom.NewTransform(mgl64.Vec3{}, mgl64.QuatRotate(math.Pi/4, mgl64.Vec3{1, 0, 0}))
	tr2 := geom.NewTransform(mgl64.Vec3{0, 2*math.Sqrt2 - 0.1, 0}, mgl64.QuatRotate(math.Pi/4, mgl64.Vec3{0, 0, 1}))
	lf := &LastFrameCollisionInfo{}

	info := runPair(t, b1, b2, tr1, tr2, lf)
	require.True(t, info.IsColliding)
	require.Len(t, info.ContactPoints, 1)
	c := info.ContactPoints[0]
	assert.InDelta(t, 0.1, c.Depth, 1e-6)
	assertVecInDelta(t, mgl64.Vec3{0, 1, 0}, c.Normal, 1e-6)
	assertVecInDelta(t, mgl64.Vec3{0, math.Sqrt2, 0}, tr1.Apply(c.LocalPoint1), 1e-6)
	assertVecInDelta(t, mgl64.Vec3{0, math.Sqrt2 - 0.1, 0}, tr2.Apply(c.LocalPoint2), 1e-6)
	assert.False(t, lf.SATIsAxisFacePolyhedron1)
	assert.False(t, lf.SATIsAxisFacePolyhedron2)
	assert.True(t, lf.WasUsingSAT)
}

func TestTriangleVsBox(t *testing.T) {
	newTriangle := func(t *testing.T) *shape.Triangle {
		tri, err := shape.NewTriangle(mgl64.Vec3{-2, 0, 2}, mgl64.Vec3{2, 0, 2}, mgl64.Vec3{0, 0, -2})
		require.NoError(t, err)
		return tri
	}
	box := mustBox(t, 0.5, 0.5, 0.5)
	above := geom.Translation(0, 0.4, 0)

	t.Run("face contact", func(t *testing.T) {
		info := runPair(t, newTriangle(t), box, geom.Identity(), above, &LastFrameCollisionInfo{})
		require.True(t, info.IsColliding)
		require.Len(t, info.ContactPoints, 4)
		for _, c := range info.ContactPoints {
			assert.InDelta(t, 0.1, c.Depth, 1e-9)
			assertVecInDelta(t, mgl64.Vec3{0, 1, 0}, c.Normal, 1e-9)
			assert.InDelta(t, 0, c.LocalPoint1.Y(), 1e-9)
			assert.InDelta(t, -0.5, c.LocalPoint2.Y(), 1e-9)
		}
	})

	t.Run("vertex normals smooth the contact normal", func(t *testing.T) {
		tri := newTriangle(t)
		tilted := mgl64.Vec3{0.6, 0.8, 0}
		tri.SetVertexNormals([3]mgl64.Vec3{tilted, tilted, tilted})
		info := runPair(t, tri, box, geom.Identity(), above, &LastFrameCollisionInfo{})
		require.True(t, info.IsColliding)
		require.Len(t, info.ContactPoints, 4)
		for _, c := range info.ContactPoints {
			assert.InDelta(t, 0.1, c.Depth, 1e-9)
			assertVecInDelta(t, tilted, c.Normal, 1e-9)
		}
	})

	t.Run("box first flips the normal", func(t *testing.T) {
		info := runPair(t, box, newTriangle(t), above, geom.Identity(), &LastFrameCollisionInfo{})
		require.True(t, info.IsColliding)
		require.NotEmpty(t, info.ContactPoints)
		for _, c := range info.ContactPoints {
			assert.InDelta(t, 0.1, c.Depth, 1e-9)
			assertVecInDelta(t, mgl64.Vec3{0, -1, 0}, c.Normal, 1e-9)
		}
	})
}

func TestConcavePairsNeverCollide(t *testing.T) {
	mesh, err := shape.NewTriangleMesh([]mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 0, 1}}, [][3]int{{0, 2, 1}})
	require.NoError(t, err)
	info := runPair(t, mustSphere(t, 1), mesh, geom.Identity(), geom.Identity(), nil)
	assert.False(t, info.IsColliding)
	assert.Empty(t, info.ContactPoints)
}

func TestVoronoiSimplex(t *testing.T) {
	t.Run("segment", func(t *testing.T) {
		var s VoronoiSimplex
		s.AddPoint(mgl64.Vec3{-1, 1, 0}, mgl64.Vec3{-1, 1, 0}, mgl64.Vec3{})
		s.AddPoint(mgl64.Vec3{1, 1, 0}, mgl64.Vec3{1, 1, 0}, mgl64.Vec3{})
		v, ok := s.ComputeClosestPoint()
		require.True(t, ok)
		assertVecInDelta(t, mgl64.Vec3{0, 1, 0}, v, 1e-12)
		assert.Equal(t, 2, s.NbPoints())
		pA, _ := s.ClosestPointsOfAandB()
		assertVecInDelta(t, mgl64.Vec3{0, 1, 0}, pA, 1e-12)
	})

	t.Run("reduces to a vertex", func(t *testing.T) {
		var s VoronoiSimplex
		s.AddPoint(mgl64.Vec3{1, 1, 0}, mgl64.Vec3{}, mgl64.Vec3{})
		s.AddPoint(mgl64.Vec3{3, 1, 0}, mgl64.Vec3{}, mgl64.Vec3{})
		v, ok := s.ComputeClosestPoint()
		require.True(t, ok)
		assert.Equal(t, mgl64.Vec3{1, 1, 0}, v)
		assert.Equal(t, 1, s.NbPoints())
		assert.True(t, s.IsPointInSimplex(mgl64.Vec3{3, 1, 0}), "last added point is remembered")
	})

	t.Run("triangle", func(t *testing.T) {
		var s VoronoiSimplex
		s.AddPoint(mgl64.Vec3{-1, -1, 2}, mgl64.Vec3{}, mgl64.Vec3{})
		s.AddPoint(mgl64.Vec3{1, -1, 2}, mgl64.Vec3{}, mgl64.Vec3{})
		s.AddPoint(mgl64.Vec3{0, 1, 2}, mgl64.Vec3{}, mgl64.Vec3{})
		v, ok := s.ComputeClosestPoint()
		require.True(t, ok)
		assertVecInDelta(t, mgl64.Vec3{0, 0, 2}, v, 1e-12)
		assert.Equal(t, 3, s.NbPoints())
	})

	t.Run("tetrahedron containing origin", func(t *testing.T) {
		var s VoronoiSimplex
		s.AddPoint(mgl64.Vec3{1, 0, -1}, mgl64.Vec3{}, mgl64.Vec3{})
		s.AddPoint(mgl64.Vec3{-1, 0, -1}, mgl64.Vec3{}, mgl64.Vec3{})
		s.AddPoint(mgl64.Vec3{0, 1, 1}, mgl64.Vec3{}, mgl64.Vec3{})
		s.AddPoint(mgl64.Vec3{0, -1, 1}, mgl64.Vec3{}, mgl64.Vec3{})
		assert.True(t, s.IsFull())
		assert.False(t, s.IsAffinelyDependent())
		v, ok := s.ComputeClosestPoint()
		require.True(t, ok)
		assert.Equal(t, mgl64.Vec3{}, v)
		assert.Equal(t, 4, s.NbPoints())
	})

	t.Run("affinely dependent", func(t *testing.T) {
		var s VoronoiSimplex
		s.AddPoint(mgl64.Vec3{0, 0, 1}, mgl64.Vec3{}, mgl64.Vec3{})
		s.AddPoint(mgl64.Vec3{1, 0, 1}, mgl64.Vec3{}, mgl64.Vec3{})
		s.AddPoint(mgl64.Vec3{2, 0, 1}, mgl64.Vec3{}, mgl64.Vec3{})
		assert.True(t, s.IsAffinelyDependent())
	})
}
