package collide

import (
	"testing"

	"github.com/gekko3d/collide/geom"
	"github.com/gekko3d/collide/shape"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/require"
)

func newTestWorld(t *testing.T, tweak ...func(*Settings)) (*World, *eventRecorder) {
	t.Helper()
	s := DefaultSettings()
	for _, f := range tweak {
		f(&s)
	}
	rec := &eventRecorder{}
	w, err := NewWorld(s, WithLogger(NewNopLogger()), WithEventListener(rec))
	require.NoError(t, err)
	t.Cleanup(w.Close)
	return w, rec
}

// eventRecorder keeps the callback payloads of the last Update.
type eventRecorder struct {
	contactCalls int
	triggerCalls int
	contacts     []ContactPair
	triggers     []OverlapPair
}

func (r *eventRecorder) reset() {
	*r = eventRecorder{}
}

func (r *eventRecorder) OnContact(data *ContactCallbackData) {
	r.contactCalls++
	r.contacts = append(r.contacts, data.Pairs...)
}

func (r *eventRecorder) OnTrigger(data *OverlapCallbackData) {
	r.triggerCalls++
	r.triggers = append(r.triggers, data.Pairs...)
}

func (r *eventRecorder) contactEvents() []ContactEventType {
	var out []ContactEventType
	for _, p := range r.contacts {
		out = append(out, p.EventType)
	}
	return out
}

func at(x, y, z float64) geom.Transform { return geom.Translation(x, y, z) }

func mustSphere(t *testing.T, r float64) *shape.Sphere {
	t.Helper()
	s, err := shape.NewSphere(r)
	require.NoError(t, err)
	return s
}

func mustBox(t *testing.T, x, y, z float64) *shape.Box {
	t.Helper()
	b, err := shape.NewBox(mgl64.Vec3{x, y, z})
	require.NoError(t, err)
	return b
}

func addSphereBody(t *testing.T, w *World, tr geom.Transform, bt BodyType, r float64) (*Body, *Collider) {
	t.Helper()
	b := w.CreateBody(tr, bt)
	return b, b.AddCollider(mustSphere(t, r), geom.Identity())
}
