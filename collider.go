package collide

import (
	"github.com/gekko3d/collide/ecs"
	"github.com/gekko3d/collide/geom"
	"github.com/gekko3d/collide/shape"
	"github.com/go-gl/mathgl/mgl64"
)

// Collider attaches a shape to a body.
type Collider struct {
	body     *Body
	entity   ecs.Entity
	userData any
}

func (c *Collider) Entity() ecs.Entity { return c.entity }

func (c *Collider) Body() *Body { return c.body }

func (c *Collider) UserData() any { return c.userData }

func (c *Collider) SetUserData(v any) { c.userData = v }

func (c *Collider) component() *colliderComponent {
	if c.body == nil || c.body.world == nil {
		panic("collide: collider " + c.entity.String() + " has been removed")
	}
	return c.body.world.colliders.Get(c.entity)
}

func (c *Collider) Shape() shape.Shape { return c.component().shape }

func (c *Collider) LocalToBodyTransform() geom.Transform { return c.component().localToBody }

func (c *Collider) SetLocalToBodyTransform(tr geom.Transform) {
	c.component().localToBody = tr
	c.body.world.broadPhase.UpdateCollider(c.entity, true)
}

func (c *Collider) LocalToWorldTransform() geom.Transform { return c.component().localToWorld }

// WorldAABB is the tight world box of the shape.
func (c *Collider) WorldAABB() geom.AABB {
	cc := c.component()
	return cc.shape.ComputeAABB(cc.localToWorld)
}

func (c *Collider) CollisionCategoryBits() uint16 { return c.component().category }

// SetCollisionCategoryBits changes the category; existing pairs are filtered
// again on the next frame.
func (c *Collider) SetCollisionCategoryBits(bits uint16) {
	c.component().category = bits
	c.askForBroadPhaseCheck()
}

func (c *Collider) CollideWithMaskBits() uint16 { return c.component().mask }

func (c *Collider) SetCollideWithMaskBits(bits uint16) {
	c.component().mask = bits
	c.askForBroadPhaseCheck()
}

func (c *Collider) IsTrigger() bool { return c.component().isTrigger }

// SetIsTrigger turns the collider into a trigger: its overlaps are reported
// through OnTrigger and never produce contact points.
func (c *Collider) SetIsTrigger(trigger bool) {
	c.component().isTrigger = trigger
	c.askForBroadPhaseCheck()
}

func (c *Collider) TestPointInside(worldPoint mgl64.Vec3) bool {
	cc := c.component()
	if cc.shape.Type() == shape.TypeConcave {
		return false
	}
	return cc.shape.TestPointInside(cc.localToWorld.Inverse().Apply(worldPoint))
}

// Raycast casts a world ray against this collider only.
func (c *Collider) Raycast(ray geom.Ray) (RaycastInfo, bool) {
	return c.body.world.raycastCollider(c.component(), ray)
}

func (c *Collider) askForBroadPhaseCheck() {
	if id := c.component().broadPhaseID; id >= 0 {
		c.body.world.broadPhase.AddMovedCollider(id)
	}
}
