// Command timeloop runs the time-loop scene headless behind an HTTP API.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jonboulle/clockwork"
	"github.com/mattn/go-isatty"

	"github.com/talgya/timeloop/internal/api"
	"github.com/talgya/timeloop/internal/clock"
	"github.com/talgya/timeloop/internal/config"
	"github.com/talgya/timeloop/internal/engine"
	"github.com/talgya/timeloop/internal/level"
	"github.com/talgya/timeloop/internal/persistence"
	"github.com/talgya/timeloop/internal/sound"
)

// flushEvery is how often, in real time, the journal is written out.
const flushEvery = 5 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(newLogger(cfg.LogLevel))

	wall := clockwork.NewRealClock()
	seed := cfg.Seed
	if seed == 0 {
		seed = wall.Now().UnixNano()
	}
	slog.Info("timeloop starting", "seed", seed, "loop", cfg.TotalDuration, "tick_rate", cfg.TickRate)

	// ── Database ──────────────────────────────────────────────────────
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		slog.Error("failed to create data directory", "error", err)
		os.Exit(1)
	}
	db, err := persistence.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	prefs, err := db.LoadPreferences()
	if err != nil {
		slog.Error("failed to load preferences", "error", err)
		os.Exit(1)
	}
	runs, err := db.IncrementMeta("runs")
	if err != nil {
		slog.Warn("failed to count run", "error", err)
	}
	slog.Info("database opened", "path", cfg.DBPath, "run", humanize.Ordinal(runs),
		"seen_time_stop_ending", prefs.DidTimeStopEnding)

	// ── Scene ─────────────────────────────────────────────────────────
	c := clock.New(cfg.Clock(), clock.NewTimers(wall))
	bus := clock.NewBus()
	l := level.New(level.DefaultConfig(seed, cfg.StarCount, cfg.TotalDuration), c, &prefs, sound.LogOutput{})
	eng := engine.New(l, bus, wall, cfg.TickInterval())

	journal := persistence.NewJournal(wall, eng.CurrentTick)
	bus.SubscribeAll(journal.Handle)
	bus.Subscribe(clock.EventReset, func(ev clock.Event) {
		slog.Info("loop reset", "clock", c.String())
	})

	// Headless there is no title screen to return to, so the stop ending
	// ends the run.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	runCtx, endRun := context.WithCancel(ctx)
	defer endRun()

	c.OnStopEnding = func() {
		prefs.DidTimeStopEnding = true
		if err := db.MarkTimeStopEnding(); err != nil {
			slog.Error("failed to record time stop ending", "error", err)
		}
		slog.Info("time stop ending reached", "time", c.CurrentTime())
		endRun()
	}
	l.OnComplete = func() {
		n, err := db.IncrementMeta("completions")
		if err != nil {
			slog.Error("failed to record completion", "error", err)
		}
		if err := db.SetMeta("last_completed_run", journal.RunID); err != nil {
			slog.Error("failed to record completion", "error", err)
		}
		slog.Info("loop broken", "time", c.CurrentTime(), "completions", n)
	}

	flushTicks := max(uint64(flushEvery/eng.Interval), 1)
	eng.OnTick = func(tick uint64) {
		if tick%flushTicks != 0 {
			return
		}
		if err := journal.Flush(db); err != nil {
			slog.Warn("journal flush failed", "error", err, "pending", journal.Pending())
		}
		slog.Debug("heartbeat", "tick", humanize.Comma(int64(tick)), "clock", c.String())
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	if cfg.AdminKey == "" {
		slog.Warn("TIMELOOP_ADMIN_KEY not set, admin POST endpoints will be disabled")
	}
	srv := &api.Server{
		Eng:         eng,
		DB:          db,
		Port:        cfg.APIPort,
		AdminKey:    cfg.AdminKey,
		CORSOrigins: cfg.CORSOrigins,
		AdminRate:   cfg.AdminRate,
		Clock:       wall,
	}
	srv.Start()

	// ── Run ───────────────────────────────────────────────────────────
	done := make(chan struct{})
	go func() {
		defer close(done)
		eng.Run(runCtx)
	}()
	<-runCtx.Done()
	slog.Info("shutting down", "signal", ctx.Err() != nil)
	<-done

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP shutdown failed", "error", err)
	}
	if err := journal.Flush(db); err != nil {
		slog.Error("final journal flush failed", "error", err, "lost", journal.Pending())
	}
	if err := db.SavePreferences(prefs); err != nil {
		slog.Error("failed to save preferences", "error", err)
	}
	slog.Info("timeloop stopped", "ticks", humanize.Comma(int64(eng.CurrentTick())), "clock", c.String())
}

// newLogger writes text to a terminal and JSON everywhere else.
func newLogger(lvl slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: lvl}
	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
