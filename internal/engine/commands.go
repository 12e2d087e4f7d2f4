package engine

import (
	"fmt"
	"log/slog"

	"github.com/talgya/timeloop/internal/controls"
	"github.com/talgya/timeloop/internal/level"
)

// Command is a request from outside the loop, applied at the start of the
// next step.
type Command struct {
	Name  string
	Apply func(l *level.Level)
}

// Submit queues cmd without blocking. It reports false when the queue is
// full and the command was dropped.
func (e *Engine) Submit(cmd Command) bool {
	select {
	case e.commands <- cmd:
		return true
	default:
		slog.Warn("command queue full, dropping", "command", cmd.Name)
		return false
	}
}

// Seek moves the clock toward t.
func Seek(t float64) Command {
	return Command{
		Name:  fmt.Sprintf("seek %.2f", t),
		Apply: func(l *level.Level) { l.Clock.SeekTo(t) },
	}
}

// SetSpeed sets the clock's base time scale.
func SetSpeed(v float64) Command {
	return Command{
		Name:  fmt.Sprintf("speed %.2f", v),
		Apply: func(l *level.Level) { l.Clock.SetBaseTimeScale(v) },
	}
}

// Rewind sends the loop back to its start.
func Rewind() Command {
	return Command{
		Name:  "rewind",
		Apply: func(l *level.Level) { l.Clock.EmergencyRewindToStart() },
	}
}

// Press taps the named button. Unknown names and other control kinds are
// logged and ignored.
func Press(name string) Command {
	return Command{
		Name: "press " + name,
		Apply: func(l *level.Level) {
			b, ok := l.Control(name).(*controls.Button)
			if !ok {
				slog.Warn("press: no such button", "control", name)
				return
			}
			b.Tap()
		},
	}
}
