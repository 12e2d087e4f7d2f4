// Package persistence provides SQLite-based storage for what outlives a
// loop: player preferences, run metadata and the journal of clock
// lifecycle events. Simulation history is never written.
package persistence

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/timeloop/internal/config"
)

// ErrNotFound is returned for a missing metadata key.
var ErrNotFound = errors.New("not found")

// DB wraps a SQLite connection.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS preferences (
		key TEXT PRIMARY KEY,
		value REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS run_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS lifecycle_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		tick INTEGER NOT NULL,
		sim_time REAL NOT NULL,
		kind TEXT NOT NULL,
		value REAL NOT NULL,
		wall_ms INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_lifecycle_run ON lifecycle_events(run_id);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// Preference keys.
const (
	keyMasterVolume      = "master_volume"
	keyMusicVolume       = "music_volume"
	keySFXVolume         = "sfx_volume"
	keySensitivityX      = "camera_sensitivity_x"
	keySensitivityY      = "camera_sensitivity_y"
	keyDidTimeStopEnding = "did_time_stop_ending"
)

func preferenceFields(p *config.Preferences) map[string]*float64 {
	return map[string]*float64{
		keyMasterVolume: &p.MasterVolume,
		keyMusicVolume:  &p.MusicVolume,
		keySFXVolume:    &p.SFXVolume,
		keySensitivityX: &p.CameraSensitivityX,
		keySensitivityY: &p.CameraSensitivityY,
	}
}

// LoadPreferences returns the stored preferences. Keys never saved keep
// their defaults.
func (db *DB) LoadPreferences() (config.Preferences, error) {
	p := config.DefaultPreferences()

	var rows []struct {
		Key   string  `db:"key"`
		Value float64 `db:"value"`
	}
	if err := db.conn.Select(&rows, "SELECT key, value FROM preferences"); err != nil {
		return p, fmt.Errorf("load preferences: %w", err)
	}

	fields := preferenceFields(&p)
	for _, r := range rows {
		if f, ok := fields[r.Key]; ok {
			*f = r.Value
			continue
		}
		if r.Key == keyDidTimeStopEnding {
			p.DidTimeStopEnding = r.Value != 0
			continue
		}
		slog.Warn("unknown preference ignored", "key", r.Key)
	}
	return p, nil
}

// SavePreferences writes every preference.
func (db *DB) SavePreferences(p config.Preferences) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex("INSERT OR REPLACE INTO preferences (key, value) VALUES (?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for key, f := range preferenceFields(&p) {
		if _, err := stmt.Exec(key, *f); err != nil {
			return fmt.Errorf("save preference %s: %w", key, err)
		}
	}
	if _, err := stmt.Exec(keyDidTimeStopEnding, boolValue(p.DidTimeStopEnding)); err != nil {
		return fmt.Errorf("save preference %s: %w", keyDidTimeStopEnding, err)
	}

	return tx.Commit()
}

// MarkTimeStopEnding records that the player has seen the ending reached by
// stopping time.
func (db *DB) MarkTimeStopEnding() error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO preferences (key, value) VALUES (?, ?)",
		keyDidTimeStopEnding, 1.0,
	)
	if err != nil {
		return fmt.Errorf("mark time stop ending: %w", err)
	}
	return nil
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// SetMeta stores a key-value pair in run metadata.
func (db *DB) SetMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO run_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM run_meta WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return value, err
}

// IncrementMeta adds one to a numeric metadata value and returns the result.
func (db *DB) IncrementMeta(key string) (int, error) {
	v, err := db.GetMeta(key)
	n := 0
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		return 0, err
	default:
		if n, err = strconv.Atoi(v); err != nil {
			return 0, fmt.Errorf("meta %s is not a number: %w", key, err)
		}
	}
	n++
	return n, db.SetMeta(key, strconv.Itoa(n))
}

// SaveEvents appends journal rows.
func (db *DB) SaveEvents(events []LifecycleEvent) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range events {
		_, err := tx.NamedExec(`INSERT INTO lifecycle_events
			(run_id, tick, sim_time, kind, value, wall_ms)
			VALUES (:run_id, :tick, :sim_time, :kind, :value, :wall_ms)`, e)
		if err != nil {
			return fmt.Errorf("insert event %s: %w", e.Kind, err)
		}
	}

	return tx.Commit()
}

// RecentEvents returns the most recent limit journal rows, newest first.
func (db *DB) RecentEvents(limit int) ([]LifecycleEvent, error) {
	var events []LifecycleEvent
	err := db.conn.Select(&events,
		`SELECT run_id, tick, sim_time, kind, value, wall_ms
		 FROM lifecycle_events ORDER BY id DESC LIMIT ?`,
		limit,
	)
	return events, err
}
