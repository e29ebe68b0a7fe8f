package collide

import (
	"fmt"

	"github.com/gekko3d/collide/ecs"
	"github.com/gekko3d/collide/geom"
	"github.com/gekko3d/collide/narrowphase"
	"github.com/gekko3d/collide/shape"
)

type BodyType int

const (
	BodyStatic BodyType = iota
	BodyKinematic
	BodyDynamic
)

func (t BodyType) String() string {
	switch t {
	case BodyStatic:
		return "static"
	case BodyKinematic:
		return "kinematic"
	case BodyDynamic:
		return "dynamic"
	}
	return fmt.Sprintf("BodyType(%d)", int(t))
}

const (
	DefaultCollisionCategoryBits uint16 = 0x0001
	DefaultCollideWithMaskBits   uint16 = 0xFFFF
)

// bodyComponent is the row of a body. A body is disabled (its rows live in
// the disabled partition of every table) while sleeping or inactive.
type bodyComponent struct {
	body      *Body
	bodyType  BodyType
	colliders []ecs.Entity
	sleeping  bool
	active    bool
}

func (c *bodyComponent) disabled() bool { return c.sleeping || !c.active }

type transformComponent struct {
	transform geom.Transform
}

type colliderComponent struct {
	body     ecs.Entity
	collider *Collider
	shape    shape.Shape

	localToBody  geom.Transform
	localToWorld geom.Transform

	// broadPhaseID is broadphase.NullNode while the collider is not in the tree
	broadPhaseID int

	category  uint16
	mask      uint16
	isTrigger bool

	// ids of the overlapping pairs the collider takes part in
	pairs []uint64
}

func (c *colliderComponent) removePair(id uint64) {
	for i, p := range c.pairs {
		if p == id {
			last := len(c.pairs) - 1
			c.pairs[i] = c.pairs[last]
			c.pairs = c.pairs[:last]
			return
		}
	}
}

// canCollideWith applies the category and mask filters in both directions.
func (c *colliderComponent) canCollideWith(o *colliderComponent) bool {
	return c.category&o.mask != 0 && o.category&c.mask != 0
}

// OverlappingPair is a pair of colliders whose fat AABBs overlap. Collider1
// is the one with the smaller broad-phase id.
type OverlappingPair struct {
	ID            uint64
	Collider1     ecs.Entity
	Collider2     ecs.Entity
	BroadPhaseID1 int
	BroadPhaseID2 int
	Algorithm     narrowphase.Algorithm

	// NeedToTestOverlap is set when one of the colliders moved in the tree
	// and the fat AABBs must be tested again.
	NeedToTestOverlap bool
	IsTrigger         bool

	// Colliding is the narrow-phase result of the last frame the pair was
	// tested; WasColliding the one before.
	Colliding    bool
	WasColliding bool

	LastFrame *narrowphase.LastFrameCollisionInfo
}
