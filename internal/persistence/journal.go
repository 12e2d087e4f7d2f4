package persistence

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/talgya/timeloop/internal/clock"
)

// LifecycleEvent is one journal row.
type LifecycleEvent struct {
	RunID   string  `db:"run_id" json:"run_id"`
	Tick    int64   `db:"tick" json:"tick"`
	SimTime float64 `db:"sim_time" json:"sim_time"`
	Kind    string  `db:"kind" json:"kind"`
	Value   float64 `db:"value" json:"value"`
	WallMS  int64   `db:"wall_ms" json:"wall_ms"`
}

// Journal buffers clock lifecycle events for batched writes. Handle runs on
// the simulation goroutine; Flush may run on any other.
type Journal struct {
	RunID string

	real clockwork.Clock
	tick func() uint64

	mu      sync.Mutex
	pending []LifecycleEvent
}

// NewJournal creates a journal for one process run. tick reports the current
// engine tick and may be nil.
func NewJournal(real clockwork.Clock, tick func() uint64) *Journal {
	if real == nil {
		real = clockwork.NewRealClock()
	}
	return &Journal{RunID: uuid.NewString(), real: real, tick: tick}
}

// Handle buffers ev. It matches clock.Handler.
func (j *Journal) Handle(ev clock.Event) {
	var tick int64
	if j.tick != nil {
		tick = int64(j.tick())
	}
	row := LifecycleEvent{
		RunID:   j.RunID,
		Tick:    tick,
		SimTime: ev.Time,
		Kind:    ev.Kind.String(),
		Value:   ev.Value,
		WallMS:  j.real.Now().UnixMilli(),
	}
	j.mu.Lock()
	j.pending = append(j.pending, row)
	j.mu.Unlock()
}

// Pending returns the number of buffered rows.
func (j *Journal) Pending() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.pending)
}

// Flush writes buffered rows. On failure the rows stay buffered for the next
// attempt.
func (j *Journal) Flush(db *DB) error {
	j.mu.Lock()
	rows := j.pending
	j.pending = nil
	j.mu.Unlock()

	if err := db.SaveEvents(rows); err != nil {
		j.mu.Lock()
		j.pending = append(rows, j.pending...)
		j.mu.Unlock()
		return err
	}
	if len(rows) > 0 {
		slog.Debug("journal flushed", "rows", len(rows), "run", j.RunID)
	}
	return nil
}
