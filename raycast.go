package collide

import (
	"github.com/gekko3d/collide/ecs"
	"github.com/gekko3d/collide/geom"
	"github.com/gekko3d/collide/shape"
	"github.com/go-gl/mathgl/mgl64"
)

// RaycastInfo describes one ray hit in world space.
type RaycastInfo struct {
	WorldPoint  mgl64.Vec3
	WorldNormal mgl64.Vec3
	HitFraction float64
	Body        *Body
	Collider    *Collider
}

// RaycastCallback receives the hits of World.Raycast in no particular order.
// Returning 0 stops the query, a negative value ignores the hit and a
// fraction in (0, 1] clips the ray to that fraction; returning 1 keeps
// looking for every hit.
type RaycastCallback interface {
	NotifyRaycastHit(info RaycastInfo) float64
}

// RaycastFunc adapts a plain function to RaycastCallback.
type RaycastFunc func(info RaycastInfo) float64

func (f RaycastFunc) NotifyRaycastHit(info RaycastInfo) float64 { return f(info) }

// ClosestHit is a RaycastCallback that keeps the nearest hit.
type ClosestHit struct {
	Hit   RaycastInfo
	Found bool
}

func (h *ClosestHit) NotifyRaycastHit(info RaycastInfo) float64 {
	if !h.Found || info.HitFraction < h.Hit.HitFraction {
		h.Hit = info
		h.Found = true
	}
	return info.HitFraction
}

// Raycast reports every collider whose category matches categoryMask and
// whose shape the ray hits. Concave colliders are skipped.
func (w *World) Raycast(ray geom.Ray, cb RaycastCallback, categoryMask uint16) {
	w.broadPhase.Raycast(ray, func(nodeID int, r geom.Ray) float64 {
		cc := w.colliders.Get(w.broadPhase.ColliderEntity(nodeID))
		if cc.category&categoryMask == 0 {
			return -1
		}
		info, ok := w.raycastCollider(cc, r)
		if !ok {
			return -1
		}
		return cb.NotifyRaycastHit(info)
	})
}

func (w *World) raycastCollider(cc *colliderComponent, ray geom.Ray) (RaycastInfo, bool) {
	if cc.shape.Type() == shape.TypeConcave {
		return RaycastInfo{}, false
	}
	hit, ok := cc.shape.Raycast(ray.Transformed(cc.localToWorld.Inverse()))
	if !ok {
		return RaycastInfo{}, false
	}
	return RaycastInfo{
		WorldPoint:  cc.localToWorld.Apply(hit.Point),
		WorldNormal: cc.localToWorld.ApplyVector(hit.Normal),
		HitFraction: hit.Fraction,
		Body:        w.bodyOf(cc.body),
		Collider:    cc.collider,
	}, true
}

func (w *World) bodyOf(e ecs.Entity) *Body {
	return w.bodies.Get(e).body
}
