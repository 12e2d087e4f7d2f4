package clock

import (
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
)

// Task is a fixed-delay deferred action. It fires exactly once, the first
// time Timers.Process runs after its delay has elapsed in real time.
type Task struct {
	name      string
	started   time.Time
	delay     time.Duration
	fn        func()
	fired     bool
	cancelled bool
}

// Name returns the label given at scheduling time.
func (t *Task) Name() string { return t.name }

// Fired reports whether the completion callback has run.
func (t *Task) Fired() bool { return t.fired }

// Pending reports whether the task is still waiting to fire.
func (t *Task) Pending() bool { return !t.fired && !t.cancelled }

// Cancel prevents a pending task from firing. The clock never cancels its
// own reset and stop endings; this exists for callers that want it.
func (t *Task) Cancel() {
	if t != nil && !t.fired {
		t.cancelled = true
	}
}

// Timers holds deferred tasks measured against a real-time source.
type Timers struct {
	real  clockwork.Clock
	tasks []*Task
	due   []*Task
}

// NewTimers creates a timer set. A nil source uses the wall clock.
func NewTimers(real clockwork.Clock) *Timers {
	if real == nil {
		real = clockwork.NewRealClock()
	}
	return &Timers{real: real}
}

// After schedules fn to run once d of real time from now.
func (ts *Timers) After(name string, d time.Duration, fn func()) *Task {
	t := &Task{name: name, started: ts.real.Now(), delay: d, fn: fn}
	ts.tasks = append(ts.tasks, t)
	slog.Debug("deferred task scheduled", "task", name, "delay", d)
	return t
}

// Len returns the number of pending tasks.
func (ts *Timers) Len() int {
	n := 0
	for _, t := range ts.tasks {
		if t.Pending() {
			n++
		}
	}
	return n
}

// Process fires every task whose delay has elapsed. Callbacks run in one
// batch after the due set is collected, so a callback may schedule new tasks;
// those wait for the next Process call.
func (ts *Timers) Process() {
	if ts == nil {
		return
	}
	ts.due = ts.due[:0]
	kept := ts.tasks[:0]
	for _, t := range ts.tasks {
		switch {
		case t.cancelled:
		case ts.real.Since(t.started) >= t.delay:
			t.fired = true
			ts.due = append(ts.due, t)
		default:
			kept = append(kept, t)
		}
	}
	for i := len(kept); i < len(ts.tasks); i++ {
		ts.tasks[i] = nil
	}
	ts.tasks = kept
	for _, t := range ts.due {
		slog.Debug("deferred task fired", "task", t.name)
		t.fn()
	}
}
