package collide

// ContactCallbackData holds every contact pair of a frame, or of a single
// TestCollision call.
type ContactCallbackData struct {
	Pairs []ContactPair
}

func (d *ContactCallbackData) NbContactPairs() int { return len(d.Pairs) }

type OverlapCallbackData struct {
	Pairs []OverlapPair
}

func (d *OverlapCallbackData) NbOverlapPairs() int { return len(d.Pairs) }

type ContactListener interface {
	OnContact(data *ContactCallbackData)
}

// EventListener receives the events of World.Update: at most one OnContact
// and one OnTrigger call per frame, only when there is something to report.
type EventListener interface {
	ContactListener
	OnTrigger(data *OverlapCallbackData)
}

// ContactListenerFunc adapts a function to ContactListener.
type ContactListenerFunc func(data *ContactCallbackData)

func (f ContactListenerFunc) OnContact(data *ContactCallbackData) { f(data) }

// EventListenerFuncs adapts a pair of optional functions to EventListener.
type EventListenerFuncs struct {
	Contact func(data *ContactCallbackData)
	Trigger func(data *OverlapCallbackData)
}

func (f EventListenerFuncs) OnContact(data *ContactCallbackData) {
	if f.Contact != nil {
		f.Contact(data)
	}
}

func (f EventListenerFuncs) OnTrigger(data *OverlapCallbackData) {
	if f.Trigger != nil {
		f.Trigger(data)
	}
}
