package cargo

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/talgya/timeloop/internal/clock"
	"github.com/talgya/timeloop/internal/history"
)

// Slots is the hold's capacity.
const Slots = 8

type slotChange struct {
	Index int
	Prev  Type
	Next  Type
}

// Hold is the ship's cargo hold. Every slot write is kept in an undo log;
// moving the clock back past a write restores the slot's previous content.
type Hold struct {
	clock *clock.Clock
	slots [Slots]Type
	log   history.Log[slotChange]
}

// NewHold creates an empty hold.
func NewHold(c *clock.Clock) *Hold {
	return &Hold{clock: c}
}

// Update undoes writes newer than the current time. It runs in every mode;
// forward play never finds anything to undo.
func (h *Hold) Update() {
	h.rollback(h.clock.CurrentTime())
}

func (h *Hold) rollback(t float64) {
	h.log.Rollback(t, func(e history.Entry[slotChange]) {
		h.slots[e.Data.Index] = e.Data.Prev
	})
}

// SetAt writes ct into slot i. Out-of-range indexes are ignored.
func (h *Hold) SetAt(i int, ct Type) bool {
	if i < 0 || i >= Slots {
		slog.Warn("cargo slot out of range", "index", i)
		return false
	}
	now := h.clock.CurrentTime()
	h.rollback(now)
	prev := h.slots[i]
	if prev == ct {
		return true
	}
	h.slots[i] = ct
	h.log.Push(now, slotChange{Index: i, Prev: prev, Next: ct})
	return true
}

// RemoveAt empties slot i and returns what it held.
func (h *Hold) RemoveAt(i int) Type {
	if i < 0 || i >= Slots {
		return None
	}
	ct := h.slots[i]
	if ct != None {
		h.SetAt(i, None)
	}
	return ct
}

// Add stores ct in the first empty slot and returns its index, or -1 when
// the hold is full.
func (h *Hold) Add(ct Type) int {
	if ct == None {
		return -1
	}
	i := h.FirstEmpty()
	if i < 0 {
		return -1
	}
	h.SetAt(i, ct)
	return i
}

// At returns the content of slot i.
func (h *Hold) At(i int) Type {
	if i < 0 || i >= Slots {
		return None
	}
	return h.slots[i]
}

// Contents returns a copy of all slots.
func (h *Hold) Contents() [Slots]Type { return h.slots }

// FirstEmpty returns the first empty slot, or -1.
func (h *Hold) FirstEmpty() int {
	for i, ct := range h.slots {
		if ct == None {
			return i
		}
	}
	return -1
}

// Count returns the number of occupied slots.
func (h *Hold) Count() int {
	n := 0
	for _, ct := range h.slots {
		if ct != None {
			n++
		}
	}
	return n
}

// IsEmpty reports whether every slot is empty.
func (h *Hold) IsEmpty() bool { return h.Count() == 0 }

// IsFull reports whether no slot is empty.
func (h *Hold) IsFull() bool { return h.FirstEmpty() < 0 }

// HUDText renders the cargo panel. target is the collection target line.
func (h *Hold) HUDText(target string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Collection Target:\n%s\n\nCurrent Cargo:", target)
	if h.IsEmpty() {
		b.WriteString("\nEmpty")
		return b.String()
	}
	for i, ct := range h.slots {
		if ct != None {
			fmt.Fprintf(&b, "\n%d. %s", i+1, ct.DisplayName())
		}
	}
	return b.String()
}
