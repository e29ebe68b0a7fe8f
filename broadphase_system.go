package collide

import (
	"github.com/gekko3d/collide/broadphase"
	"github.com/gekko3d/collide/ecs"
	"github.com/gekko3d/collide/geom"
)

// BroadPhaseSystem keeps a fat AABB per collider in a dynamic tree and finds
// the candidate pairs of the colliders that moved.
type BroadPhaseSystem struct {
	tree       *broadphase.DynamicAABBTree
	colliders  *ecs.Table[colliderComponent]
	transforms *ecs.Table[transformComponent]

	moved    []int
	movedSet map[int]struct{}
	overlaps []broadphase.NodePair
}

func NewBroadPhaseSystem(inflate float64, colliders *ecs.Table[colliderComponent], transforms *ecs.Table[transformComponent]) *BroadPhaseSystem {
	return &BroadPhaseSystem{
		tree:       broadphase.NewDynamicAABBTree(inflate),
		colliders:  colliders,
		transforms: transforms,
		movedSet:   make(map[int]struct{}),
	}
}

func (b *BroadPhaseSystem) Tree() *broadphase.DynamicAABBTree { return b.tree }

// AddCollider inserts the collider's current world box into the tree.
func (b *BroadPhaseSystem) AddCollider(e ecs.Entity) {
	c := b.colliders.Get(e)
	id := b.tree.AddObject(c.shape.ComputeAABB(c.localToWorld), uint64(e))
	c.broadPhaseID = id
	b.AddMovedCollider(id)
}

func (b *BroadPhaseSystem) RemoveCollider(e ecs.Entity) {
	c := b.colliders.Get(e)
	if c.broadPhaseID == broadphase.NullNode {
		return
	}
	b.RemoveMovedCollider(c.broadPhaseID)
	b.tree.RemoveObject(c.broadPhaseID)
	c.broadPhaseID = broadphase.NullNode
}

// AddMovedCollider asks for the overlaps of a leaf to be recomputed on the
// next frame.
func (b *BroadPhaseSystem) AddMovedCollider(id int) {
	if _, ok := b.movedSet[id]; ok {
		return
	}
	b.movedSet[id] = struct{}{}
	b.moved = append(b.moved, id)
}

func (b *BroadPhaseSystem) RemoveMovedCollider(id int) {
	if _, ok := b.movedSet[id]; !ok {
		return
	}
	delete(b.movedSet, id)
	for i, m := range b.moved {
		if m == id {
			b.moved = append(b.moved[:i], b.moved[i+1:]...)
			return
		}
	}
}

// UpdateCollider refreshes the world transform and tree leaf of one collider.
func (b *BroadPhaseSystem) UpdateCollider(e ecs.Entity, forceReinsert bool) {
	b.updateCollider(b.colliders.Get(e), forceReinsert)
}

func (b *BroadPhaseSystem) updateCollider(c *colliderComponent, forceReinsert bool) {
	c.localToWorld = b.transforms.Get(c.body).transform.Mul(c.localToBody)
	if c.broadPhaseID == broadphase.NullNode {
		return
	}
	if b.tree.UpdateObject(c.broadPhaseID, c.shape.ComputeAABB(c.localToWorld), forceReinsert) {
		b.AddMovedCollider(c.broadPhaseID)
	}
}

// UpdateColliders refreshes every enabled collider. Disabled colliders keep
// their leaf untouched.
func (b *BroadPhaseSystem) UpdateColliders() {
	for i := 0; i < b.colliders.DisabledStart(); i++ {
		b.updateCollider(b.colliders.At(i), false)
	}
}

// MovedColliders returns the leaves that moved since the last pair
// computation.
func (b *BroadPhaseSystem) MovedColliders() []int { return b.moved }

// ComputeOverlappingPairs reports every leaf overlapping a moved leaf and
// clears the moved set. A pair of two moved leaves shows up twice.
func (b *BroadPhaseSystem) ComputeOverlappingPairs() []broadphase.NodePair {
	b.overlaps = b.tree.ReportAllShapesOverlappingWithShapes(b.moved, b.overlaps[:0])
	for _, id := range b.moved {
		delete(b.movedSet, id)
	}
	b.moved = b.moved[:0]
	return b.overlaps
}

// TestOverlappingShapes reports whether the fat AABBs of two leaves overlap.
func (b *BroadPhaseSystem) TestOverlappingShapes(id1, id2 int) bool {
	return b.tree.FatAABB(id1).Overlaps(b.tree.FatAABB(id2))
}

func (b *BroadPhaseSystem) ColliderEntity(id int) ecs.Entity {
	return ecs.Entity(b.tree.Data(id))
}

func (b *BroadPhaseSystem) Raycast(ray geom.Ray, fn broadphase.RaycastCallback) {
	b.tree.Raycast(ray, fn)
}
