// Package engine provides the tick-based simulation loop. Each tick runs,
// in order: queued commands, deferred timers, the clock, lifecycle event
// delivery and the level's systems. Other goroutines talk to the loop only
// through the command queue and the published frame.
package engine

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/talgya/timeloop/internal/clock"
	"github.com/talgya/timeloop/internal/level"
)

// QueueSize bounds the command queue. Submissions beyond it are dropped.
const QueueSize = 64

// Engine drives the simulation forward.
type Engine struct {
	Clock    *clock.Clock
	Bus      *clock.Bus
	Level    *level.Level
	Interval time.Duration // real time between ticks

	// OnTick runs after every step on the loop goroutine.
	OnTick func(tick uint64)

	real     clockwork.Clock
	tick     atomic.Uint64
	frame    atomic.Pointer[level.Frame]
	commands chan Command
	running  atomic.Bool
	done     chan struct{}
}

// New creates an engine for l. A nil real clock uses wall time.
func New(l *level.Level, bus *clock.Bus, real clockwork.Clock, interval time.Duration) *Engine {
	if real == nil {
		real = clockwork.NewRealClock()
	}
	if interval <= 0 {
		interval = time.Second / 60
	}
	e := &Engine{
		Clock:    l.Clock,
		Bus:      bus,
		Level:    l,
		Interval: interval,
		real:     real,
		commands: make(chan Command, QueueSize),
		done:     make(chan struct{}),
	}
	if bus != nil {
		l.Subscribe(bus)
	}
	e.publish()
	return e
}

// Run steps the simulation every Interval until ctx is done or Stop is
// called. It blocks.
func (e *Engine) Run(ctx context.Context) {
	e.running.Store(true)
	defer e.running.Store(false)
	slog.Info("simulation engine started", "tick", e.CurrentTick(), "interval", e.Interval)

	last := e.real.Now()
	ticker := e.real.NewTicker(e.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			slog.Info("simulation engine stopped", "tick", e.CurrentTick(), "reason", ctx.Err())
			return
		case <-e.done:
			slog.Info("simulation engine stopped", "tick", e.CurrentTick())
			return
		case now := <-ticker.Chan():
			dt := now.Sub(last)
			last = now
			// Stalls are clamped to four intervals.
			e.Step(min(dt, 4*e.Interval).Seconds())
		}
	}
}

// Stop halts a running loop. It is safe to call more than once.
func (e *Engine) Stop() {
	select {
	case <-e.done:
	default:
		close(e.done)
	}
}

// Running reports whether Run is active.
func (e *Engine) Running() bool { return e.running.Load() }

// CurrentTick returns the number of completed steps.
func (e *Engine) CurrentTick() uint64 { return e.tick.Load() }

// Frame returns the most recently published frame.
func (e *Engine) Frame() *level.Frame { return e.frame.Load() }

// Step advances the simulation by dt real seconds. Only the loop goroutine,
// or a test driving the engine by hand, may call it.
func (e *Engine) Step(dt float64) {
	e.drainCommands()
	e.Clock.Timers().Process()
	e.Clock.Tick(dt)
	e.Bus.Publish(e.Clock.DrainEvents()...)
	e.Level.Update()

	tick := e.tick.Add(1)
	e.publish()
	if e.OnTick != nil {
		e.OnTick(tick)
	}
}

func (e *Engine) publish() {
	f := e.Level.Frame(e.tick.Load())
	e.frame.Store(&f)
}

func (e *Engine) drainCommands() {
	for {
		select {
		case cmd := <-e.commands:
			slog.Debug("command applied", "command", cmd.Name, "time", e.Clock.CurrentTime())
			cmd.Apply(e.Level)
		default:
			return
		}
	}
}
