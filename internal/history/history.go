// Package history reconstructs an entity's tracked properties at any clock
// time. A History is an event log of changes, not a stream of samples: it
// holds an epoch snapshot for time 0 plus one snapshot per meaningful change,
// and a Policy decides whether reads step (Discrete) or blend (Continuous).
//
// Reconciling pops snapshots that describe an un-happened future, whatever
// the clock mode; recording a new value drops anything newer than it too.
package history

import (
	"log/slog"
	"sort"

	"github.com/talgya/timeloop/internal/clock"
)

// Snapshot is a value in effect from Time onward.
type Snapshot[T any] struct {
	Time  float64 `json:"time"`
	Value T       `json:"value"`
}

// History is a per-property change log. Owned by exactly one entity.
type History[T any] struct {
	policy    Policy[T]
	snapshots []Snapshot[T]
	lead      *Snapshot[T]
	current   T
}

// New creates a history seeded with the epoch value at time 0.
func New[T any](epoch T, policy Policy[T]) *History[T] {
	return &History[T]{
		policy:    policy,
		snapshots: []Snapshot[T]{{Time: 0, Value: epoch}},
		current:   epoch,
	}
}

// NewDiscrete creates a step-function history.
func NewDiscrete[T comparable](epoch T) *History[T] {
	return New[T](epoch, Discrete[T]{})
}

// Record notes that the property changed to v at time t.
func (h *History[T]) Record(t float64, v T) {
	h.truncate(t)
	top := h.snapshots[len(h.snapshots)-1]
	if t < top.Time {
		t = top.Time
	}
	switch h.policy.Accept(top, t, v) {
	case Skip:
		return
	case Coalesce:
		if len(h.snapshots) > 1 {
			h.snapshots[len(h.snapshots)-1].Value = v
			break
		}
		h.snapshots = append(h.snapshots, Snapshot[T]{Time: t, Value: v})
	case Append:
		h.snapshots = append(h.snapshots, Snapshot[T]{Time: t, Value: v})
	}
	h.current = v
	h.lead = nil
}

// Reconcile brings the history in line with the clock at time t. Snapshots
// newer than t are popped in every mode. While rewinding the last one popped
// is kept as the blend target; otherwise the value settles on the step.
// Use At for read-only queries at other times.
func (h *History[T]) Reconcile(t float64, mode clock.Mode) {
	if len(h.snapshots) == 0 {
		slog.Error("history has no epoch snapshot")
		return
	}
	for len(h.snapshots) > 1 && h.snapshots[len(h.snapshots)-1].Time > t {
		popped := h.snapshots[len(h.snapshots)-1]
		h.snapshots = h.snapshots[:len(h.snapshots)-1]
		h.lead = &popped
	}
	if mode != clock.Rewinding {
		h.lead = nil
	}
	settled := h.at(t)
	h.current = h.policy.Resolve(settled, h.lead, t)
}

// Value returns the value resolved by the last Reconcile or Record.
func (h *History[T]) Value() T { return h.current }

// At returns the value a fresh reconcile would settle on at t, without
// blending or mutating the history.
func (h *History[T]) At(t float64) T { return h.at(t).Value }

// Epoch returns the time-0 value.
func (h *History[T]) Epoch() T { return h.snapshots[0].Value }

// Top returns the newest snapshot.
func (h *History[T]) Top() Snapshot[T] { return h.snapshots[len(h.snapshots)-1] }

// Len returns the number of snapshots, epoch included.
func (h *History[T]) Len() int { return len(h.snapshots) }

// Snapshots returns a copy of the log, oldest first.
func (h *History[T]) Snapshots() []Snapshot[T] {
	out := make([]Snapshot[T], len(h.snapshots))
	copy(out, h.snapshots)
	return out
}

// Reset discards everything but the epoch.
func (h *History[T]) Reset() {
	h.snapshots = h.snapshots[:1]
	h.lead = nil
	h.current = h.snapshots[0].Value
}

// at finds the newest snapshot with Time <= t, falling back to the epoch.
func (h *History[T]) at(t float64) Snapshot[T] {
	i := sort.Search(len(h.snapshots), func(i int) bool { return h.snapshots[i].Time > t })
	if i == 0 {
		return h.snapshots[0]
	}
	return h.snapshots[i-1]
}

func (h *History[T]) truncate(t float64) {
	for len(h.snapshots) > 1 && h.snapshots[len(h.snapshots)-1].Time > t {
		h.snapshots = h.snapshots[:len(h.snapshots)-1]
	}
}
