package history

// Entry is one timestamped element of a Log.
type Entry[E any] struct {
	Time float64 `json:"time"`
	Data E       `json:"data"`
}

// Log is an undo log for state that is not a scalar: containers record
// deltas, timelines record intervals. Rolling back pops entries newer than
// the query time, newest first, and hands each to an undo callback that
// applies its inverse.
type Log[E any] struct {
	entries []Entry[E]
}

// Push appends data at time t. Entries newer than t are discarded first, so
// the log stays ordered.
func (l *Log[E]) Push(t float64, data E) {
	for len(l.entries) > 0 && l.entries[len(l.entries)-1].Time > t {
		l.entries = l.entries[:len(l.entries)-1]
	}
	l.entries = append(l.entries, Entry[E]{Time: t, Data: data})
}

// Rollback pops every entry newer than t and calls undo for each, newest
// first. It returns the number of entries popped. undo may be nil.
func (l *Log[E]) Rollback(t float64, undo func(Entry[E])) int {
	return l.Unwind(func(e Entry[E]) bool { return e.Time > t }, undo)
}

// Unwind pops entries from the top while cond holds, calling undo for each.
func (l *Log[E]) Unwind(cond func(Entry[E]) bool, undo func(Entry[E])) int {
	n := 0
	for len(l.entries) > 0 && cond(l.entries[len(l.entries)-1]) {
		e := l.entries[len(l.entries)-1]
		l.entries = l.entries[:len(l.entries)-1]
		if undo != nil {
			undo(e)
		}
		n++
	}
	return n
}

// Top returns the newest entry.
func (l *Log[E]) Top() (Entry[E], bool) {
	if len(l.entries) == 0 {
		return Entry[E]{}, false
	}
	return l.entries[len(l.entries)-1], true
}

// ReplaceTop overwrites the newest entry's data, keeping its time. It
// reports false on an empty log.
func (l *Log[E]) ReplaceTop(data E) bool {
	if len(l.entries) == 0 {
		return false
	}
	l.entries[len(l.entries)-1].Data = data
	return true
}

// Len returns the number of entries.
func (l *Log[E]) Len() int { return len(l.entries) }

// Entries returns a copy, oldest first.
func (l *Log[E]) Entries() []Entry[E] {
	out := make([]Entry[E], len(l.entries))
	copy(out, l.entries)
	return out
}

// Clear drops every entry without undoing anything.
func (l *Log[E]) Clear() { l.entries = l.entries[:0] }
