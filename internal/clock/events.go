package clock

import "sort"

// EventKind names a lifecycle transition of the clock.
type EventKind uint8

const (
	EventStopped EventKind = iota
	EventResetting
	EventReset
	EventRewinding
	EventRewound
	EventFastForwarding
	EventFastForwarded
	EventResumed
	EventTimeScaleChanged
)

var eventNames = [...]string{
	EventStopped:          "stopped",
	EventResetting:        "resetting",
	EventReset:            "reset",
	EventRewinding:        "rewinding",
	EventRewound:          "rewound",
	EventFastForwarding:   "fast_forwarding",
	EventFastForwarded:    "fast_forwarded",
	EventResumed:          "resumed",
	EventTimeScaleChanged: "time_scale_changed",
}

func (k EventKind) String() string {
	if int(k) < len(eventNames) {
		return eventNames[k]
	}
	return "unknown"
}

// Event is a lifecycle notification. Time is the elapsed simulation time at
// which the transition happened; Value carries the new base scale for
// EventTimeScaleChanged.
type Event struct {
	Kind  EventKind `json:"kind"`
	Time  float64   `json:"time"`
	Value float64   `json:"value,omitempty"`
}

// Handler receives lifecycle events.
type Handler func(Event)

// Subscription identifies a handler registered on a Bus.
type Subscription uint64

// Bus fans lifecycle events out to subscribers. It is drained by the engine
// once per tick so subscribers never observe a half-applied transition.
type Bus struct {
	next     Subscription
	handlers map[EventKind]map[Subscription]Handler
	all      map[Subscription]Handler
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventKind]map[Subscription]Handler),
		all:      make(map[Subscription]Handler),
	}
}

// Subscribe registers fn for one event kind.
func (b *Bus) Subscribe(kind EventKind, fn Handler) Subscription {
	b.next++
	if b.handlers[kind] == nil {
		b.handlers[kind] = make(map[Subscription]Handler)
	}
	b.handlers[kind][b.next] = fn
	return b.next
}

// SubscribeAll registers fn for every event kind.
func (b *Bus) SubscribeAll(fn Handler) Subscription {
	b.next++
	b.all[b.next] = fn
	return b.next
}

// Unsubscribe removes a handler. Unknown subscriptions are ignored.
func (b *Bus) Unsubscribe(id Subscription) {
	delete(b.all, id)
	for _, hs := range b.handlers {
		delete(hs, id)
	}
}

// Publish delivers events in order. Within one event, handlers run in
// subscription order; subscribers must not depend on that order.
func (b *Bus) Publish(events ...Event) {
	if b == nil {
		return
	}
	for _, ev := range events {
		for _, id := range sortedIDs(b.handlers[ev.Kind]) {
			b.handlers[ev.Kind][id](ev)
		}
		for _, id := range sortedIDs(b.all) {
			b.all[id](ev)
		}
	}
}

func sortedIDs(m map[Subscription]Handler) []Subscription {
	ids := make([]Subscription, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
