package collide

import (
	"fmt"

	"github.com/gekko3d/collide/broadphase"
	"github.com/gekko3d/collide/ecs"
	"github.com/gekko3d/collide/geom"
	"github.com/gekko3d/collide/shape"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
)

const initialTableCapacity = 64

// World owns every body, collider and the collision pipeline. All state
// lives on the World; two worlds never share anything.
type World struct {
	id       uuid.UUID
	name     string
	settings Settings
	logger   Logger
	listener EventListener

	entities   *ecs.EntityManager
	bodies     *ecs.Table[bodyComponent]
	transforms *ecs.Table[transformComponent]
	colliders  *ecs.Table[colliderComponent]

	broadPhase *BroadPhaseSystem
	collision  *CollisionDetectionSystem
}

type Option func(*World)

func WithLogger(l Logger) Option {
	return func(w *World) { w.logger = l }
}

func WithEventListener(l EventListener) Option {
	return func(w *World) { w.listener = l }
}

// NewWorld validates the settings and builds an empty world. Without
// WithLogger the world logs through zap as configured by settings.Logging.
func NewWorld(settings Settings, opts ...Option) (*World, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	w := &World{
		id:         uuid.New(),
		settings:   settings,
		entities:   ecs.NewEntityManager(),
		bodies:     ecs.NewTable[bodyComponent]("bodies", initialTableCapacity),
		transforms: ecs.NewTable[transformComponent]("transforms", initialTableCapacity),
		colliders:  ecs.NewTable[colliderComponent]("colliders", initialTableCapacity),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		l, err := NewLogger(settings.Logging)
		if err != nil {
			return nil, eris.Wrap(err, "build logger")
		}
		w.logger = l
	}
	w.name = settings.WorldName
	if w.name == "" {
		w.name = "world-" + w.id.String()[:8]
	}

	w.broadPhase = NewBroadPhaseSystem(settings.BroadPhase.FatAABBInflatePercentage, w.colliders, w.transforms)
	w.collision = newCollisionDetectionSystem(w)
	w.logger.Infof("world %s (%s) created", w.name, w.id)
	return w, nil
}

func (w *World) ID() uuid.UUID { return w.id }

func (w *World) Name() string { return w.name }

func (w *World) Settings() Settings { return w.settings }

func (w *World) Logger() Logger { return w.logger }

func (w *World) SetEventListener(l EventListener) { w.listener = l }

func (w *World) BroadPhase() *BroadPhaseSystem { return w.broadPhase }

func (w *World) NbBodies() int { return w.bodies.Len() }

func (w *World) NbColliders() int { return w.colliders.Len() }

// NbOverlappingPairs is the number of broad-phase pairs currently tracked.
func (w *World) NbOverlappingPairs() int { return w.collision.pairs.Len() }

// Bodies returns the live bodies, enabled ones first.
func (w *World) Bodies() []*Body {
	out := make([]*Body, 0, w.bodies.Len())
	for i := 0; i < w.bodies.Len(); i++ {
		out = append(out, w.bodies.At(i).body)
	}
	return out
}

// Update runs one collision detection frame and delivers its events.
func (w *World) Update() {
	w.collision.update()
}

// ContactPairs returns the contact pairs of the last Update.
func (w *World) ContactPairs() []ContactPair { return w.collision.contactPairs }

// OverlapPairs returns the trigger pairs of the last Update.
func (w *World) OverlapPairs() []OverlapPair { return w.collision.overlapPairs }

func (w *World) CreateBody(transform geom.Transform, bodyType BodyType) *Body {
	e := w.entities.Create()
	b := &Body{world: w, entity: e}
	w.bodies.Add(e, false, bodyComponent{body: b, bodyType: bodyType, active: true})
	w.transforms.Add(e, false, transformComponent{transform: transform})
	w.logger.Debugf("world %s: body %v created (%s)", w.name, e, bodyType)
	return b
}

// DestroyBody removes the body together with its colliders. Contacts the
// body had are reported as exits on the next Update.
func (w *World) DestroyBody(b *Body) {
	w.mustOwn(b)
	bc := w.bodies.Get(b.entity)
	for len(bc.colliders) > 0 {
		w.removeCollider(bc.colliders[len(bc.colliders)-1])
		bc = w.bodies.Get(b.entity)
	}
	w.bodies.Remove(b.entity)
	w.transforms.Remove(b.entity)
	w.entities.Destroy(b.entity)
	w.logger.Debugf("world %s: body %v destroyed", w.name, b.entity)
	b.world = nil
}

// Close logs the end of the world. The world must not be used afterwards.
func (w *World) Close() {
	w.logger.Infof("world %s (%s) destroyed with %d bodies", w.name, w.id, w.bodies.Len())
	if zl, ok := w.logger.(*ZapLogger); ok {
		_ = zl.Sync()
	}
}

func (w *World) mustOwn(b *Body) {
	if b == nil || b.world != w {
		panic(fmt.Sprintf("collide: body does not belong to world %s", w.name))
	}
}

func (w *World) addCollider(body ecs.Entity, c *Collider, s shape.Shape, local geom.Transform) ecs.Entity {
	e := w.entities.Create()
	c.entity = e
	bc := w.bodies.Get(body)
	tr := w.transforms.Get(body).transform
	w.colliders.Add(e, bc.disabled(), colliderComponent{
		body:         body,
		collider:     c,
		shape:        s,
		localToBody:  local,
		localToWorld: tr.Mul(local),
		broadPhaseID: broadphase.NullNode,
		category:     DefaultCollisionCategoryBits,
		mask:         DefaultCollideWithMaskBits,
	})
	bc.colliders = append(bc.colliders, e)
	if bc.active {
		w.broadPhase.AddCollider(e)
	}
	w.logger.Debugf("world %s: collider %v (%s) added to body %v", w.name, e, s.Name(), body)
	return e
}

func (w *World) removeCollider(e ecs.Entity) {
	c := w.colliders.Get(e)
	body := c.body
	w.collision.removeCollider(e)
	w.broadPhase.RemoveCollider(e)

	bc := w.bodies.Get(body)
	for i, ce := range bc.colliders {
		if ce == e {
			bc.colliders = append(bc.colliders[:i], bc.colliders[i+1:]...)
			break
		}
	}
	w.colliders.Remove(e)
	w.entities.Destroy(e)
	w.logger.Debugf("world %s: collider %v removed from body %v", w.name, e, body)
}

// setBodyDisabled moves the rows of a body and its colliders across the
// partition boundary.
func (w *World) setBodyDisabled(body ecs.Entity, disabled bool) {
	w.bodies.SetDisabled(body, disabled)
	w.transforms.SetDisabled(body, disabled)
	for _, ce := range w.bodies.Get(body).colliders {
		w.colliders.SetDisabled(ce, disabled)
	}
}
