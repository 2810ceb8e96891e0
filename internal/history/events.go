package history

// EventType identifies what changed in a History.
type EventType string

const (
	EventRecorded EventType = "recorded"
	EventUndone   EventType = "undone"
	EventRedone   EventType = "redone"
	EventCleared  EventType = "cleared"
)

// ChangeEvent is delivered to subscribers after a successful mutation.
// Action is the recorded, undone, or redone action; it is zero for
// EventCleared.
type ChangeEvent struct {
	Type    EventType
	Action  Action
	Cursor  int
	Len     int
	Evicted int
}

type subscriber struct {
	id int
	fn func(ChangeEvent)
}

// Subscribe registers fn to be called after every successful Record, Undo,
// Redo, and Clear. Subscribers run synchronously in registration order.
// The returned function unregisters fn; calling it more than once is safe.
func (h *History) Subscribe(fn func(ChangeEvent)) (unsubscribe func()) {
	h.nextSubID++
	id := h.nextSubID
	h.subscribers = append(h.subscribers, subscriber{id: id, fn: fn})

	return func() {
		for i, s := range h.subscribers {
			if s.id == id {
				h.subscribers = append(h.subscribers[:i:i], h.subscribers[i+1:]...)
				return
			}
		}
	}
}

// publish notifies subscribers of ev.
func (h *History) publish(ev ChangeEvent) {
	ev.Cursor = h.cursor
	ev.Len = len(h.records)

	// Snapshot so a subscriber can unsubscribe itself during delivery
	subs := make([]subscriber, len(h.subscribers))
	copy(subs, h.subscribers)
	for _, s := range subs {
		s.fn(ev)
	}
}
