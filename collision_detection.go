package collide

import (
	"github.com/gekko3d/collide/ecs"
	"github.com/gekko3d/collide/narrowphase"
)

// lostPair records a pair removed while colliding, to be reported as an
// exit on the next frame.
type lostPair struct {
	body1, body2         *Body
	collider1, collider2 *Collider
	trigger              bool
}

// CollisionDetectionSystem runs the broad, middle and narrow phases of a
// frame and turns the narrow-phase results into contact and trigger events.
type CollisionDetectionSystem struct {
	world    *World
	pairs    *OverlappingPairs
	dispatch *narrowphase.Dispatch
	input    *narrowphase.Input

	contactPairs []ContactPair
	overlapPairs []OverlapPair
	lost         []lostPair
}

func newCollisionDetectionSystem(w *World) *CollisionDetectionSystem {
	cfg := w.settings.narrowPhaseConfig()
	return &CollisionDetectionSystem{
		world:    w,
		pairs:    NewOverlappingPairs(),
		dispatch: narrowphase.NewDispatch(cfg),
		input:    narrowphase.NewInput(cfg.MaxContactPoints),
	}
}

func (c *CollisionDetectionSystem) Pairs() *OverlappingPairs { return c.pairs }

func (c *CollisionDetectionSystem) update() {
	c.contactPairs = nil
	c.overlapPairs = nil

	c.computeBroadPhase()
	c.computeMiddlePhase()
	c.computeNarrowPhase()
	c.reportLostPairs()
	c.notify()
}

func (c *CollisionDetectionSystem) computeBroadPhase() {
	bp := c.world.broadPhase
	bp.UpdateColliders()

	for _, id := range bp.MovedColliders() {
		cc := c.world.colliders.Get(bp.ColliderEntity(id))
		for _, pid := range cc.pairs {
			if p, ok := c.pairs.Get(pid); ok {
				p.NeedToTestOverlap = true
			}
		}
	}
	overlaps := bp.ComputeOverlappingPairs()
	c.removeNonOverlappingPairs()

	for _, np := range overlaps {
		id1, id2 := np.A, np.B
		if id1 > id2 {
			id1, id2 = id2, id1
		}
		pid := PairID(id1, id2)
		if c.pairs.Has(pid) {
			continue
		}
		c.createPair(pid, id1, id2)
	}
}

// removeNonOverlappingPairs drops the pairs whose fat AABBs separated and the
// ones the filters no longer accept.
func (c *CollisionDetectionSystem) removeNonOverlappingPairs() {
	for i := c.pairs.Len() - 1; i >= 0; i-- {
		p := c.pairs.At(i)
		keep := true
		c1 := c.world.colliders.Get(p.Collider1)
		c2 := c.world.colliders.Get(p.Collider2)
		if !c.acceptsPair(c1, c2) {
			keep = false
		} else if p.NeedToTestOverlap {
			keep = c.world.broadPhase.TestOverlappingShapes(p.BroadPhaseID1, p.BroadPhaseID2)
			p.NeedToTestOverlap = false
		}
		if !keep {
			c.removePair(p.ID)
		}
	}
}

// acceptsPair applies the static filters: different bodies, matching
// category bits and at least one non-static body.
func (c *CollisionDetectionSystem) acceptsPair(c1, c2 *colliderComponent) bool {
	if c1.body == c2.body || !c1.canCollideWith(c2) {
		return false
	}
	b1 := c.world.bodies.Get(c1.body)
	b2 := c.world.bodies.Get(c2.body)
	return b1.bodyType != BodyStatic || b2.bodyType != BodyStatic
}

// isPairActive reports whether at least one body is enabled and not static.
func (c *CollisionDetectionSystem) isPairActive(c1, c2 *colliderComponent) bool {
	b1 := c.world.bodies.Get(c1.body)
	b2 := c.world.bodies.Get(c2.body)
	return (!b1.disabled() && b1.bodyType != BodyStatic) || (!b2.disabled() && b2.bodyType != BodyStatic)
}

func (c *CollisionDetectionSystem) createPair(pid uint64, id1, id2 int) {
	bp := c.world.broadPhase
	e1, e2 := bp.ColliderEntity(id1), bp.ColliderEntity(id2)
	c1 := c.world.colliders.Get(e1)
	c2 := c.world.colliders.Get(e2)
	if !c.acceptsPair(c1, c2) || !c.isPairActive(c1, c2) {
		return
	}
	c.pairs.Add(OverlappingPair{
		ID:            pid,
		Collider1:     e1,
		Collider2:     e2,
		BroadPhaseID1: id1,
		BroadPhaseID2: id2,
		Algorithm:     c.dispatch.SelectAlgorithm(c1.shape.Type(), c2.shape.Type()),
		IsTrigger:     c1.isTrigger || c2.isTrigger,
		LastFrame:     &narrowphase.LastFrameCollisionInfo{},
	})
	c1.pairs = append(c1.pairs, pid)
	c2.pairs = append(c2.pairs, pid)
	c.world.logger.Debugf("world %s: pair %d created (%v, %v)", c.world.name, pid, e1, e2)
}

func (c *CollisionDetectionSystem) removePair(pid uint64) {
	p := c.pairs.Remove(pid)
	c1 := c.world.colliders.Get(p.Collider1)
	c2 := c.world.colliders.Get(p.Collider2)
	c1.removePair(pid)
	c2.removePair(pid)
	if p.Colliding {
		c.lost = append(c.lost, lostPair{
			body1:     c.world.bodyOf(c1.body),
			body2:     c.world.bodyOf(c2.body),
			collider1: c1.collider,
			collider2: c2.collider,
			trigger:   p.IsTrigger,
		})
	}
	c.world.logger.Debugf("world %s: pair %d removed", c.world.name, pid)
}

// removeCollider drops every pair of a collider about to leave the broad
// phase.
func (c *CollisionDetectionSystem) removeCollider(e ecs.Entity) {
	pairs := append([]uint64(nil), c.world.colliders.Get(e).pairs...)
	for _, pid := range pairs {
		c.removePair(pid)
	}
}

// computeMiddlePhase queues one narrow-phase test per active pair. Pairs of
// disabled or static bodies are skipped and keep their colliding state.
func (c *CollisionDetectionSystem) computeMiddlePhase() {
	c.input.Clear()
	var counts [narrowphase.NbAlgorithms]int
	for i := 0; i < c.pairs.Len(); i++ {
		counts[c.pairs.At(i).Algorithm]++
	}
	c.input.ReserveMemory(counts)

	for i := 0; i < c.pairs.Len(); i++ {
		p := c.pairs.At(i)
		c1 := c.world.colliders.Get(p.Collider1)
		c2 := c.world.colliders.Get(p.Collider2)
		if !c.isPairActive(c1, c2) {
			continue
		}
		p.WasColliding = p.Colliding
		p.Colliding = false
		p.IsTrigger = c1.isTrigger || c2.isTrigger
		if p.Algorithm == narrowphase.NoCollision {
			continue
		}
		c.input.AddNarrowPhaseTest(p.ID, p.Collider1, p.Collider2, c1.shape, c2.shape,
			c1.localToWorld, c2.localToWorld, p.Algorithm, !p.IsTrigger, p.LastFrame)
	}
}

func (c *CollisionDetectionSystem) computeNarrowPhase() {
	c.dispatch.Run(c.input)
	contacts := c.world.settings.Contacts

	for algo := narrowphase.NoCollision; algo < narrowphase.NbAlgorithms; algo++ {
		batch := c.input.Batch(algo)
		for i := range batch.Infos {
			info := &batch.Infos[i]
			p, ok := c.pairs.Get(info.PairID)
			if !ok {
				continue
			}
			p.Colliding = info.IsColliding
			if !p.Colliding && !p.WasColliding {
				continue
			}
			c1 := c.world.colliders.Get(p.Collider1)
			c2 := c.world.colliders.Get(p.Collider2)
			body1, body2 := c.world.bodyOf(c1.body), c.world.bodyOf(c2.body)

			if p.IsTrigger {
				ev := OverlapStay
				switch {
				case !p.Colliding:
					ev = OverlapExit
				case !p.WasColliding:
					ev = OverlapStart
				}
				c.overlapPairs = append(c.overlapPairs, OverlapPair{
					Body1: body1, Body2: body2, Collider1: c1.collider, Collider2: c2.collider, EventType: ev,
				})
				continue
			}

			pair := ContactPair{Body1: body1, Body2: body2, Collider1: c1.collider, Collider2: c2.collider, EventType: ContactStay}
			switch {
			case !p.Colliding:
				pair.EventType = ContactExit
			case !p.WasColliding:
				pair.EventType = ContactStart
			}
			if p.Colliding {
				pair.Manifolds = buildManifolds(info.ContactPoints, contacts.CosAngleSimilarManifold,
					contacts.MaxPointsPerManifold, c1.localToWorld)
			}
			c.contactPairs = append(c.contactPairs, pair)
		}
	}
}

func (c *CollisionDetectionSystem) reportLostPairs() {
	for _, l := range c.lost {
		if l.trigger {
			c.overlapPairs = append(c.overlapPairs, OverlapPair{
				Body1: l.body1, Body2: l.body2, Collider1: l.collider1, Collider2: l.collider2, EventType: OverlapExit,
			})
			continue
		}
		c.contactPairs = append(c.contactPairs, ContactPair{
			Body1: l.body1, Body2: l.body2, Collider1: l.collider1, Collider2: l.collider2, EventType: ContactExit,
		})
	}
	c.lost = c.lost[:0]
}

func (c *CollisionDetectionSystem) notify() {
	if c.world.logger.DebugEnabled() {
		manifolds := 0
		for i := range c.contactPairs {
			manifolds += len(c.contactPairs[i].Manifolds)
		}
		c.world.logger.Debugf("world %s: %d pairs, %d contact pairs, %d manifolds, %d trigger pairs",
			c.world.name, c.pairs.Len(), len(c.contactPairs), manifolds, len(c.overlapPairs))
	}
	l := c.world.listener
	if l == nil {
		return
	}
	if len(c.contactPairs) > 0 {
		l.OnContact(&ContactCallbackData{Pairs: c.contactPairs})
	}
	if len(c.overlapPairs) > 0 {
		l.OnTrigger(&OverlapCallbackData{Pairs: c.overlapPairs})
	}
}

// testBodies runs the narrow phase on every accepted collider pair of two
// bodies outside of the frame pipeline. It leaves the frame state alone.
func (c *CollisionDetectionSystem) testBodies(b1, b2 *Body, reportContacts bool) []ContactPair {
	in := narrowphase.NewInput(c.world.settings.NarrowPhase.MaxContactPoints)
	for _, e1 := range b1.component().colliders {
		for _, e2 := range b2.component().colliders {
			c1 := c.world.colliders.Get(e1)
			c2 := c.world.colliders.Get(e2)
			if !c1.canCollideWith(c2) {
				continue
			}
			algo := c.dispatch.SelectAlgorithm(c1.shape.Type(), c2.shape.Type())
			if algo == narrowphase.NoCollision {
				continue
			}
			in.AddNarrowPhaseTest(0, e1, e2, c1.shape, c2.shape, c1.localToWorld, c2.localToWorld,
				algo, reportContacts, &narrowphase.LastFrameCollisionInfo{})
		}
	}
	c.dispatch.Run(in)

	contacts := c.world.settings.Contacts
	var out []ContactPair
	for algo := narrowphase.SphereVsSphere; algo < narrowphase.NbAlgorithms; algo++ {
		for _, info := range in.Batch(algo).Infos {
			if !info.IsColliding {
				continue
			}
			c1 := c.world.colliders.Get(info.Collider1)
			c2 := c.world.colliders.Get(info.Collider2)
			out = append(out, ContactPair{
				Body1:     c.world.bodyOf(c1.body),
				Body2:     c.world.bodyOf(c2.body),
				Collider1: c1.collider,
				Collider2: c2.collider,
				EventType: ContactStart,
				Manifolds: buildManifolds(info.ContactPoints, contacts.CosAngleSimilarManifold,
					contacts.MaxPointsPerManifold, c1.localToWorld),
			})
		}
	}
	return out
}

// TestOverlap reports whether any collider of b1 touches a collider of b2.
func (w *World) TestOverlap(b1, b2 *Body) bool {
	w.mustOwn(b1)
	w.mustOwn(b2)
	return len(w.collision.testBodies(b1, b2, false)) > 0
}

// TestCollision computes the contacts between two bodies right away and
// hands them to listener in a single call. It reports whether any contact
// was found.
func (w *World) TestCollision(b1, b2 *Body, listener ContactListener) bool {
	w.mustOwn(b1)
	w.mustOwn(b2)
	pairs := w.collision.testBodies(b1, b2, true)
	if len(pairs) == 0 {
		return false
	}
	if listener != nil {
		listener.OnContact(&ContactCallbackData{Pairs: pairs})
	}
	return true
}
