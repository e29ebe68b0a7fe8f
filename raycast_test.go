package collide

import (
	"testing"

	"github.com/gekko3d/collide/geom"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rowOfSpheres(t *testing.T, w *World) []*Collider {
	var out []*Collider
	for _, x := range []float64{3, 6, 9} {
		_, c := addSphereBody(t, w, at(x, 0, 0), BodyStatic, 1)
		out = append(out, c)
	}
	return out
}

func TestWorld_RaycastClosestHit(t *testing.T) {
	w, _ := newTestWorld(t)
	colliders := rowOfSpheres(t, w)

	var hit ClosestHit
	w.Raycast(geom.NewRay(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{20, 0, 0}), &hit, 0xFFFF)

	require.True(t, hit.Found)
	assert.Same(t, colliders[0], hit.Hit.Collider)
	assert.Same(t, colliders[0].Body(), hit.Hit.Body)
	assert.InDelta(t, 0.1, hit.Hit.HitFraction, 1e-9)
	assert.InDeltaSlice(t, []float64{2, 0, 0}, hit.Hit.WorldPoint[:], 1e-9)
	assert.InDeltaSlice(t, []float64{-1, 0, 0}, hit.Hit.WorldNormal[:], 1e-9)
}

func TestWorld_RaycastCategoryMask(t *testing.T) {
	w, _ := newTestWorld(t)
	colliders := rowOfSpheres(t, w)
	colliders[0].SetCollisionCategoryBits(0x0002)

	var hit ClosestHit
	w.Raycast(geom.NewRay(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{20, 0, 0}), &hit, 0x0001)

	require.True(t, hit.Found)
	assert.Same(t, colliders[1], hit.Hit.Collider)
	assert.InDeltaSlice(t, []float64{5, 0, 0}, hit.Hit.WorldPoint[:], 1e-9)
}

func TestWorld_RaycastCallbackControl(t *testing.T) {
	w, _ := newTestWorld(t)
	rowOfSpheres(t, w)
	ray := geom.NewRay(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{20, 0, 0})

	calls := 0
	w.Raycast(ray, RaycastFunc(func(RaycastInfo) float64 {
		calls++
		return 0
	}), 0xFFFF)
	assert.Equal(t, 1, calls, "returning 0 stops the query")

	calls = 0
	w.Raycast(ray, RaycastFunc(func(RaycastInfo) float64 {
		calls++
		return 1
	}), 0xFFFF)
	assert.Equal(t, 3, calls, "returning 1 reports every hit")

	calls = 0
	w.Raycast(ray.WithMaxFraction(0.2), RaycastFunc(func(RaycastInfo) float64 {
		calls++
		return 1
	}), 0xFFFF)
	assert.Equal(t, 1, calls, "max fraction limits the ray")
}

func TestWorld_RaycastMiss(t *testing.T) {
	w, _ := newTestWorld(t)
	rowOfSpheres(t, w)

	var hit ClosestHit
	w.Raycast(geom.NewRay(mgl64.Vec3{0, 5, 0}, mgl64.Vec3{20, 5, 0}), &hit, 0xFFFF)
	assert.False(t, hit.Found)
}

func TestCollider_RaycastRotatedBox(t *testing.T) {
	w, _ := newTestWorld(t)
	b := w.CreateBody(geom.NewTransform(mgl64.Vec3{0, 0, 5}, mgl64.QuatRotate(mgl64.DegToRad(90), mgl64.Vec3{0, 1, 0})), BodyStatic)
	c := b.AddCollider(mustBox(t, 1, 1, 2), geom.Identity())

	info, ok := c.Raycast(geom.NewRay(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 0, 10}))
	require.True(t, ok)
	// the long axis now lies along x, so the ray enters the unit half extent
	assert.InDelta(t, 0.4, info.HitFraction, 1e-9)
	assert.InDeltaSlice(t, []float64{0, 0, -1}, info.WorldNormal[:], 1e-9)
}
