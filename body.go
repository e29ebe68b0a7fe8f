package collide

import (
	"github.com/gekko3d/collide/ecs"
	"github.com/gekko3d/collide/geom"
	"github.com/gekko3d/collide/shape"
	"github.com/go-gl/mathgl/mgl64"
)

// Body is a handle on a rigid body of a World. Every method panics once the
// body has been destroyed.
type Body struct {
	world    *World
	entity   ecs.Entity
	userData any
}

func (b *Body) Entity() ecs.Entity { return b.entity }

func (b *Body) World() *World { return b.world }

func (b *Body) UserData() any { return b.userData }

func (b *Body) SetUserData(v any) { b.userData = v }

func (b *Body) component() *bodyComponent {
	if b.world == nil {
		panic("collide: body " + b.entity.String() + " has been destroyed")
	}
	return b.world.bodies.Get(b.entity)
}

func (b *Body) Type() BodyType { return b.component().bodyType }

// SetType changes the body type. Pairs of the body are re-tested on the next
// frame since the static filter may now accept or reject them.
func (b *Body) SetType(t BodyType) {
	b.component().bodyType = t
	b.askForBroadPhaseCheck()
}

func (b *Body) Transform() geom.Transform {
	b.component()
	return b.world.transforms.Get(b.entity).transform
}

// SetTransform teleports the body, wakes it up and refits its colliders in
// the broad phase.
func (b *Body) SetTransform(tr geom.Transform) {
	b.component()
	b.world.transforms.Get(b.entity).transform = tr
	b.SetIsSleeping(false)
	for _, ce := range b.component().colliders {
		b.world.broadPhase.UpdateCollider(ce, false)
	}
}

func (b *Body) IsSleeping() bool { return b.component().sleeping }

func (b *Body) SetIsSleeping(sleeping bool) {
	bc := b.component()
	if bc.sleeping == sleeping {
		return
	}
	bc.sleeping = sleeping
	b.world.setBodyDisabled(b.entity, bc.disabled())
	if !sleeping {
		b.askForBroadPhaseCheck()
	}
	b.world.logger.Debugf("world %s: body %v sleeping=%t", b.world.name, b.entity, sleeping)
}

func (b *Body) IsActive() bool { return b.component().active }

// SetIsActive removes an inactive body's colliders from the broad phase and
// puts them back when it is activated again.
func (b *Body) SetIsActive(active bool) {
	bc := b.component()
	if bc.active == active {
		return
	}
	bc.active = active
	colliders := append([]ecs.Entity(nil), bc.colliders...)
	disabled := bc.disabled()
	for _, ce := range colliders {
		if active {
			b.world.broadPhase.UpdateCollider(ce, false)
			b.world.broadPhase.AddCollider(ce)
		} else {
			b.world.collision.removeCollider(ce)
			b.world.broadPhase.RemoveCollider(ce)
		}
	}
	b.world.setBodyDisabled(b.entity, disabled)
	b.world.logger.Debugf("world %s: body %v active=%t", b.world.name, b.entity, active)
}

// AddCollider attaches a shape to the body at the given body-space transform.
func (b *Body) AddCollider(s shape.Shape, local geom.Transform) *Collider {
	b.component()
	c := &Collider{body: b}
	b.world.addCollider(b.entity, c, s, local)
	return c
}

func (b *Body) RemoveCollider(c *Collider) {
	b.component()
	if c.body != b {
		panic("collide: collider " + c.entity.String() + " does not belong to body " + b.entity.String())
	}
	b.world.removeCollider(c.entity)
	c.body = nil
}

func (b *Body) Colliders() []*Collider {
	bc := b.component()
	out := make([]*Collider, len(bc.colliders))
	for i, ce := range bc.colliders {
		out[i] = b.world.colliders.Get(ce).collider
	}
	return out
}

// WorldAABB is the union of the tight world boxes of the colliders.
func (b *Body) WorldAABB() geom.AABB {
	var box geom.AABB
	for i, c := range b.Colliders() {
		if i == 0 {
			box = c.WorldAABB()
			continue
		}
		box = box.Merge(c.WorldAABB())
	}
	return box
}

// TestPointInside reports whether any collider of the body contains the
// world point.
func (b *Body) TestPointInside(worldPoint mgl64.Vec3) bool {
	for _, c := range b.Colliders() {
		if c.TestPointInside(worldPoint) {
			return true
		}
	}
	return false
}

func (b *Body) askForBroadPhaseCheck() {
	for _, ce := range b.component().colliders {
		if id := b.world.colliders.Get(ce).broadPhaseID; id >= 0 {
			b.world.broadPhase.AddMovedCollider(id)
		}
	}
}
