package clock

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

func TestBusFansOutByKind(t *testing.T) {
	bus := NewBus()
	var rewound, all []EventKind
	bus.Subscribe(EventRewound, func(e Event) { rewound = append(rewound, e.Kind) })
	id := bus.SubscribeAll(func(e Event) { all = append(all, e.Kind) })

	bus.Publish(Event{Kind: EventRewinding}, Event{Kind: EventRewound})
	assert.Equal(t, []EventKind{EventRewound}, rewound)
	assert.Equal(t, []EventKind{EventRewinding, EventRewound}, all)

	bus.Unsubscribe(id)
	bus.Publish(Event{Kind: EventResumed})
	assert.Len(t, all, 2)
}

func TestEventKindString(t *testing.T) {
	assert.Equal(t, "fast_forwarded", EventFastForwarded.String())
	assert.Equal(t, "unknown", EventKind(200).String())
}

func TestTimersFireOnceAfterDelay(t *testing.T) {
	fake := clockwork.NewFakeClock()
	timers := NewTimers(fake)
	fired := 0
	task := timers.After("test", 2*time.Second, func() { fired++ })

	timers.Process()
	assert.Equal(t, 0, fired)
	assert.True(t, task.Pending())

	fake.Advance(2 * time.Second)
	timers.Process()
	timers.Process()
	assert.Equal(t, 1, fired)
	assert.True(t, task.Fired())
	assert.Equal(t, 0, timers.Len())
}

func TestTimersCancel(t *testing.T) {
	fake := clockwork.NewFakeClock()
	timers := NewTimers(fake)
	fired := false
	task := timers.After("test", time.Second, func() { fired = true })
	task.Cancel()
	fake.Advance(time.Hour)
	timers.Process()
	assert.False(t, fired)
	assert.False(t, task.Pending())
}

func TestTimersCallbackMayReschedule(t *testing.T) {
	fake := clockwork.NewFakeClock()
	timers := NewTimers(fake)
	var order []string
	timers.After("first", time.Second, func() {
		order = append(order, "first")
		timers.After("second", time.Second, func() { order = append(order, "second") })
	})
	fake.Advance(time.Second)
	timers.Process()
	assert.Equal(t, []string{"first"}, order)
	fake.Advance(time.Second)
	timers.Process()
	assert.Equal(t, []string{"first", "second"}, order)
}
