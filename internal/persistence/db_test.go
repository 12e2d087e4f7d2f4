package persistence

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/timeloop/internal/clock"
	"github.com/talgya/timeloop/internal/config"
)

func openTemp(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "timeloop.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestPreferencesDefaultWhenEmpty(t *testing.T) {
	db := openTemp(t)
	p, err := db.LoadPreferences()
	require.NoError(t, err)
	assert.Equal(t, config.DefaultPreferences(), p)
}

func TestPreferencesRoundTrip(t *testing.T) {
	db := openTemp(t)
	p := config.DefaultPreferences()
	p.MusicVolume = 0.25
	p.CameraSensitivityY = 3.5
	require.NoError(t, db.SavePreferences(p))

	got, err := db.LoadPreferences()
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestMarkTimeStopEndingKeepsOtherPreferences(t *testing.T) {
	db := openTemp(t)
	p := config.DefaultPreferences()
	p.SFXVolume = 0.5
	require.NoError(t, db.SavePreferences(p))
	require.NoError(t, db.MarkTimeStopEnding())

	got, err := db.LoadPreferences()
	require.NoError(t, err)
	assert.True(t, got.DidTimeStopEnding)
	assert.Equal(t, 0.5, got.SFXVolume)
}

func TestMeta(t *testing.T) {
	db := openTemp(t)
	_, err := db.GetMeta("completions")
	assert.ErrorIs(t, err, ErrNotFound)

	n, err := db.IncrementMeta("completions")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = db.IncrementMeta("completions")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, db.SetMeta("last_run", "abc"))
	v, err := db.GetMeta("last_run")
	require.NoError(t, err)
	assert.Equal(t, "abc", v)

	_, err = db.IncrementMeta("last_run")
	assert.Error(t, err)
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "timeloop.db")
	db, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, db.MarkTimeStopEnding())
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()
	p, err := db.LoadPreferences()
	require.NoError(t, err)
	assert.True(t, p.DidTimeStopEnding)
}

func TestJournalFlushesNewestFirst(t *testing.T) {
	db := openTemp(t)
	fc := clockwork.NewFakeClockAt(time.Unix(1000, 0))
	var tick uint64 = 3
	j := NewJournal(fc, func() uint64 { return tick })
	require.NotEmpty(t, j.RunID)

	j.Handle(clock.Event{Kind: clock.EventStopped, Time: 12.5})
	tick = 4
	fc.Advance(time.Second)
	j.Handle(clock.Event{Kind: clock.EventTimeScaleChanged, Time: 12.5, Value: 2})
	assert.Equal(t, 2, j.Pending())

	require.NoError(t, j.Flush(db))
	assert.Zero(t, j.Pending())

	events, err := db.RecentEvents(10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "time_scale_changed", events[0].Kind)
	assert.Equal(t, int64(4), events[0].Tick)
	assert.Equal(t, 2.0, events[0].Value)
	assert.Equal(t, int64(1001000), events[0].WallMS)
	assert.Equal(t, "stopped", events[1].Kind)
	assert.Equal(t, 12.5, events[1].SimTime)
	assert.Equal(t, j.RunID, events[1].RunID)

	limited, err := db.RecentEvents(1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestJournalKeepsRowsWhenFlushFails(t *testing.T) {
	db := openTemp(t)
	j := NewJournal(nil, nil)
	j.Handle(clock.Event{Kind: clock.EventRewinding})
	require.NoError(t, db.Close())

	assert.Error(t, j.Flush(db))
	assert.Equal(t, 1, j.Pending())
}
