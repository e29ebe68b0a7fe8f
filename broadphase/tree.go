package broadphase

import (
	"fmt"

	"github.com/gekko3d/collide/geom"
	"github.com/rotisserie/eris"
)

// NullNode marks the absence of a node (empty root, no parent, end of free list).
const NullNode = -1

const initialNodeCapacity = 8

// DefaultFatAABBInflatePercentage grows a tight box by 8% of its extent.
const DefaultFatAABBInflatePercentage = 0.08

type treeNode struct {
	// parent for nodes in use, next free node otherwise
	parentOrNext int
	children     [2]int
	// -1 for a free node, 0 for a leaf
	height int
	aabb   geom.AABB
	data   uint64
}

func (n *treeNode) isLeaf() bool { return n.height == 0 }

// NodePair is a pair of leaves whose fat AABBs overlap.
type NodePair struct {
	A, B int
}

// RaycastCallback is called for every leaf whose fat AABB the ray crosses.
// Returning 0 stops the traversal, a negative value ignores the leaf and a
// positive value becomes the new max fraction of the ray.
type RaycastCallback func(nodeID int, ray geom.Ray) float64

// DynamicAABBTree is a balanced binary tree of fat AABBs. Nodes live in a
// single array and reference each other by index; free slots form a linked
// list threaded through parentOrNext.
type DynamicAABBTree struct {
	nodes       []treeNode
	root        int
	freeNode    int
	nbAllocated int
	inflate     float64
	stack       []int
}

func NewDynamicAABBTree(fatAABBInflatePercentage float64) *DynamicAABBTree {
	t := &DynamicAABBTree{inflate: fatAABBInflatePercentage}
	t.init()
	return t
}

func (t *DynamicAABBTree) init() {
	t.root = NullNode
	t.nbAllocated = 0
	t.nodes = make([]treeNode, initialNodeCapacity)
	t.linkFreeNodes(0)
	t.freeNode = 0
}

// Reset drops every node.
func (t *DynamicAABBTree) Reset() {
	t.init()
}

func (t *DynamicAABBTree) linkFreeNodes(from int) {
	for i := from; i < len(t.nodes)-1; i++ {
		t.nodes[i] = treeNode{parentOrNext: i + 1, height: -1}
	}
	t.nodes[len(t.nodes)-1] = treeNode{parentOrNext: NullNode, height: -1}
}

func (t *DynamicAABBTree) allocateNode() int {
	if t.freeNode == NullNode {
		old := len(t.nodes)
		grown := make([]treeNode, old*2)
		copy(grown, t.nodes)
		t.nodes = grown
		t.linkFreeNodes(old)
		t.freeNode = old
	}
	id := t.freeNode
	t.freeNode = t.nodes[id].parentOrNext
	t.nodes[id] = treeNode{
		parentOrNext: NullNode,
		children:     [2]int{NullNode, NullNode},
		height:       0,
	}
	t.nbAllocated++
	return id
}

func (t *DynamicAABBTree) releaseNode(id int) {
	t.nodes[id] = treeNode{parentOrNext: t.freeNode, height: -1}
	t.freeNode = id
	t.nbAllocated--
}

func (t *DynamicAABBTree) fatten(aabb geom.AABB) geom.AABB {
	gap := aabb.Extent().Mul(t.inflate * 0.5)
	return aabb.Inflate(gap)
}

// AddObject inserts a leaf for the tight box aabb and returns its node id.
func (t *DynamicAABBTree) AddObject(aabb geom.AABB, data uint64) int {
	id := t.allocateNode()
	t.nodes[id].aabb = t.fatten(aabb)
	t.nodes[id].data = data
	t.insertLeafNode(id)
	return id
}

func (t *DynamicAABBTree) RemoveObject(nodeID int) {
	t.mustLeaf(nodeID)
	t.removeLeafNode(nodeID)
	t.releaseNode(nodeID)
}

// UpdateObject refits a leaf. Nothing happens while the fat AABB still holds
// the new tight box, unless forceReinsert is set. It reports whether the leaf
// was reinserted.
func (t *DynamicAABBTree) UpdateObject(nodeID int, aabb geom.AABB, forceReinsert bool) bool {
	t.mustLeaf(nodeID)
	if !forceReinsert && t.nodes[nodeID].aabb.Contains(aabb) {
		return false
	}
	t.removeLeafNode(nodeID)
	t.nodes[nodeID].aabb = t.fatten(aabb)
	t.insertLeafNode(nodeID)
	return true
}

func (t *DynamicAABBTree) FatAABB(nodeID int) geom.AABB {
	t.mustNode(nodeID)
	return t.nodes[nodeID].aabb
}

func (t *DynamicAABBTree) Data(nodeID int) uint64 {
	t.mustLeaf(nodeID)
	return t.nodes[nodeID].data
}

func (t *DynamicAABBTree) Root() int { return t.root }

// Height of the root, or -1 for an empty tree.
func (t *DynamicAABBTree) Height() int {
	if t.root == NullNode {
		return -1
	}
	return t.nodes[t.root].height
}

// NbAllocatedNodes counts leaves and internal nodes in use.
func (t *DynamicAABBTree) NbAllocatedNodes() int { return t.nbAllocated }

func (t *DynamicAABBTree) Capacity() int { return len(t.nodes) }

func (t *DynamicAABBTree) insertLeafNode(leaf int) {
	if t.root == NullNode {
		t.root = leaf
		t.nodes[leaf].parentOrNext = NullNode
		return
	}

	leafAABB := t.nodes[leaf].aabb
	current := t.root
	for !t.nodes[current].isLeaf() {
		left := t.nodes[current].children[0]
		right := t.nodes[current].children[1]

		volume := t.nodes[current].aabb.Volume()
		mergedVolume := t.nodes[current].aabb.Merge(leafAABB).Volume()

		// cost of a new parent for (current, leaf)
		costS := 2 * mergedVolume
		// minimum cost of pushing the leaf further down
		costI := 2 * (mergedVolume - volume)

		costLeft := t.descendCost(left, leafAABB) + costI
		costRight := t.descendCost(right, leafAABB) + costI

		if costS < costLeft && costS < costRight {
			break
		}
		if costLeft < costRight {
			current = left
		} else {
			current = right
		}
	}

	sibling := current
	oldParent := t.nodes[sibling].parentOrNext
	newParent := t.allocateNode()
	t.nodes[newParent].parentOrNext = oldParent
	t.nodes[newParent].aabb = t.nodes[sibling].aabb.Merge(leafAABB)
	t.nodes[newParent].height = t.nodes[sibling].height + 1
	t.nodes[newParent].children = [2]int{sibling, leaf}
	t.nodes[sibling].parentOrNext = newParent
	t.nodes[leaf].parentOrNext = newParent

	if oldParent == NullNode {
		t.root = newParent
	} else {
		t.replaceChild(oldParent, sibling, newParent)
	}

	t.refitFrom(newParent)
}

func (t *DynamicAABBTree) descendCost(child int, leafAABB geom.AABB) float64 {
	merged := t.nodes[child].aabb.Merge(leafAABB).Volume()
	if t.nodes[child].isLeaf() {
		return merged
	}
	return merged - t.nodes[child].aabb.Volume()
}

func (t *DynamicAABBTree) removeLeafNode(leaf int) {
	if leaf == t.root {
		t.root = NullNode
		return
	}

	parent := t.nodes[leaf].parentOrNext
	grandParent := t.nodes[parent].parentOrNext
	sibling := t.nodes[parent].children[0]
	if sibling == leaf {
		sibling = t.nodes[parent].children[1]
	}

	if grandParent == NullNode {
		t.root = sibling
		t.nodes[sibling].parentOrNext = NullNode
		t.releaseNode(parent)
		return
	}

	t.replaceChild(grandParent, parent, sibling)
	t.nodes[sibling].parentOrNext = grandParent
	t.releaseNode(parent)
	t.refitFrom(grandParent)
}

// refitFrom walks to the root rebalancing and recomputing boxes and heights.
func (t *DynamicAABBTree) refitFrom(id int) {
	for id != NullNode {
		id = t.balance(id)
		t.recompute(id)
		id = t.nodes[id].parentOrNext
	}
}

func (t *DynamicAABBTree) recompute(id int) {
	n := &t.nodes[id]
	a, b := &t.nodes[n.children[0]], &t.nodes[n.children[1]]
	n.height = 1 + max(a.height, b.height)
	n.aabb = a.aabb.Merge(b.aabb)
}

// balance restores the AVL condition at id and returns the root of the
// subtree that now sits where id was.
func (t *DynamicAABBTree) balance(id int) int {
	n := &t.nodes[id]
	if n.isLeaf() {
		return id
	}
	left, right := n.children[0], n.children[1]
	diff := t.nodes[right].height - t.nodes[left].height
	switch {
	case diff > 1:
		return t.rotate(id, 1)
	case diff < -1:
		return t.rotate(id, 0)
	}
	return id
}

// rotate promotes the child of a on the given side. The taller grandchild
// stays under the promoted node, the shorter one moves down to a.
func (t *DynamicAABBTree) rotate(ia, side int) int {
	ic := t.nodes[ia].children[side]
	a := &t.nodes[ia]
	c := &t.nodes[ic]

	c.parentOrNext = a.parentOrNext
	a.parentOrNext = ic
	if c.parentOrNext == NullNode {
		t.root = ic
	} else {
		t.replaceChild(c.parentOrNext, ia, ic)
	}

	keep, moved := c.children[0], c.children[1]
	if t.nodes[moved].height > t.nodes[keep].height {
		keep, moved = moved, keep
	}
	a.children[side] = moved
	t.nodes[moved].parentOrNext = ia
	c.children = [2]int{ia, keep}

	t.recompute(ia)
	// Attaching a leaf next to a tall node leaves a unbalanced after one
	// rotation; fix it before deriving c.
	fixed := t.balance(ia)
	if fixed != ia {
		t.recompute(fixed)
	}
	t.recompute(ic)
	return t.balance(ic)
}

func (t *DynamicAABBTree) replaceChild(parent, oldChild, newChild int) {
	p := &t.nodes[parent]
	if p.children[0] == oldChild {
		p.children[0] = newChild
	} else {
		p.children[1] = newChild
	}
}

// ReportAllShapesOverlappingWithAABB calls fn for every leaf whose fat AABB
// overlaps aabb.
func (t *DynamicAABBTree) ReportAllShapesOverlappingWithAABB(aabb geom.AABB, fn func(nodeID int)) {
	stack := append(t.stack[:0], t.root)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == NullNode {
			continue
		}
		n := &t.nodes[id]
		if !n.aabb.Overlaps(aabb) {
			continue
		}
		if n.isLeaf() {
			fn(id)
		} else {
			stack = append(stack, n.children[0], n.children[1])
		}
	}
	t.stack = stack
}

// ReportAllShapesOverlappingWithShapes appends to out one pair for every other
// leaf overlapping each of the leaves in nodesToTest.
func (t *DynamicAABBTree) ReportAllShapesOverlappingWithShapes(nodesToTest []int, out []NodePair) []NodePair {
	for _, test := range nodesToTest {
		box := t.nodes[test].aabb
		t.ReportAllShapesOverlappingWithAABB(box, func(id int) {
			if id != test {
				out = append(out, NodePair{A: test, B: id})
			}
		})
	}
	return out
}

// Raycast walks every leaf whose fat AABB the ray crosses, shrinking the
// ray as the callback reports closer hits.
func (t *DynamicAABBTree) Raycast(ray geom.Ray, fn RaycastCallback) {
	maxFraction := ray.MaxFraction
	dir := ray.Direction()

	stack := []int{t.root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == NullNode {
			continue
		}
		n := &t.nodes[id]
		if !n.aabb.TestRayIntersect(ray.Point1, dir, maxFraction) {
			continue
		}
		if !n.isLeaf() {
			stack = append(stack, n.children[0], n.children[1])
			continue
		}

		hit := fn(id, ray.WithMaxFraction(maxFraction))
		if hit == 0 {
			return
		}
		if hit > 0 && hit < maxFraction {
			maxFraction = hit
		}
	}
}

// Validate checks the structural invariants of the tree.
func (t *DynamicAABBTree) Validate() error {
	if t.root == NullNode {
		if t.nbAllocated != 0 {
			return eris.Errorf("empty tree with %d allocated nodes", t.nbAllocated)
		}
		return nil
	}
	if p := t.nodes[t.root].parentOrNext; p != NullNode {
		return eris.Errorf("root %d has parent %d", t.root, p)
	}
	count, err := t.validateNode(t.root)
	if err != nil {
		return err
	}
	if count != t.nbAllocated {
		return eris.Errorf("reached %d nodes, %d allocated", count, t.nbAllocated)
	}
	free := 0
	for id := t.freeNode; id != NullNode; id = t.nodes[id].parentOrNext {
		free++
	}
	if free+t.nbAllocated != len(t.nodes) {
		return eris.Errorf("free list has %d nodes, expected %d", free, len(t.nodes)-t.nbAllocated)
	}
	return nil
}

func (t *DynamicAABBTree) validateNode(id int) (int, error) {
	n := &t.nodes[id]
	if n.height < 0 {
		return 0, eris.Errorf("node %d is free but reachable", id)
	}
	if n.isLeaf() {
		return 1, nil
	}
	l, r := n.children[0], n.children[1]
	for _, c := range []int{l, r} {
		if c == NullNode {
			return 0, eris.Errorf("internal node %d misses a child", id)
		}
		if t.nodes[c].parentOrNext != id {
			return 0, eris.Errorf("child %d of %d points to parent %d", c, id, t.nodes[c].parentOrNext)
		}
	}
	hl, hr := t.nodes[l].height, t.nodes[r].height
	if n.height != 1+max(hl, hr) {
		return 0, eris.Errorf("node %d height %d, children %d/%d", id, n.height, hl, hr)
	}
	if hl-hr > 1 || hr-hl > 1 {
		return 0, eris.Errorf("node %d unbalanced: %d/%d", id, hl, hr)
	}
	if n.aabb != t.nodes[l].aabb.Merge(t.nodes[r].aabb) {
		return 0, eris.Errorf("node %d box is not the union of its children", id)
	}
	cl, err := t.validateNode(l)
	if err != nil {
		return 0, err
	}
	cr, err := t.validateNode(r)
	if err != nil {
		return 0, err
	}
	return 1 + cl + cr, nil
}

func (t *DynamicAABBTree) mustNode(id int) {
	if id < 0 || id >= len(t.nodes) || t.nodes[id].height < 0 {
		panic(fmt.Sprintf("broadphase: invalid node id %d", id))
	}
}

func (t *DynamicAABBTree) mustLeaf(id int) {
	t.mustNode(id)
	if !t.nodes[id].isLeaf() {
		panic(fmt.Sprintf("broadphase: node %d is not a leaf", id))
	}
}
