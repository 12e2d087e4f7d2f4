// Package level assembles the playable scene: the star map, the ship and
// its stations, the player and the control panels, all bound to one clock
// and updated in a fixed order each tick.
package level

import (
	"log/slog"
	"math/rand"

	"github.com/talgya/timeloop/internal/cargo"
	"github.com/talgya/timeloop/internal/clock"
	"github.com/talgya/timeloop/internal/config"
	"github.com/talgya/timeloop/internal/controls"
	"github.com/talgya/timeloop/internal/fade"
	"github.com/talgya/timeloop/internal/injector"
	"github.com/talgya/timeloop/internal/player"
	"github.com/talgya/timeloop/internal/ship"
	"github.com/talgya/timeloop/internal/sound"
	"github.com/talgya/timeloop/internal/starmap"
	"github.com/talgya/timeloop/internal/vec"
)

// Config tunes the scene.
type Config struct {
	Map    starmap.GenConfig
	Ship   ship.Config
	Player player.Config

	CombinationSize int
	ScanDuration    float64
	CollectDuration float64
	MinTravel       float64
	MaxTravel       float64
	MaxTimeScale    float64
	DeckRadius      float64 // walkable deck around the spawn point
}

// DefaultConfig returns the shipped scene for a loop of total seconds.
func DefaultConfig(seed int64, stars int, total float64) Config {
	m := starmap.DefaultGenConfig()
	m.Seed = seed
	m.TotalDuration = total
	if stars > 0 {
		m.Stars = stars
	}
	return Config{
		Map:             m,
		Ship:            ship.DefaultConfig(),
		Player:          player.DefaultConfig(),
		CombinationSize: 3,
		ScanDuration:    2,
		CollectDuration: 3,
		MinTravel:       0.25,
		MaxTravel:       2,
		MaxTimeScale:    3,
		DeckRadius:      6,
	}
}

// Sounds are the scene's cues.
type Sounds struct {
	Music     *sound.Cue
	Rumble    *sound.Cue
	Press     *sound.Cue
	Release   *sound.Cue
	Inject    *sound.Cue
	Correct   *sound.Cue
	Incorrect *sound.Cue
}

func (s Sounds) all() []*sound.Cue {
	return []*sound.Cue{s.Music, s.Rumble, s.Press, s.Release, s.Inject, s.Correct, s.Incorrect}
}

// updater is a control that reconciles with the clock once per tick.
type updater interface{ Update() }

// Level is one loaded scene.
type Level struct {
	Clock *clock.Clock
	Prefs *config.Preferences

	Stars     *starmap.Map
	Hold      *cargo.Hold
	Injector  *injector.Injector
	Ship      *ship.Ship
	Scanner   *ship.Scanner
	Collector *ship.Collector
	Player    *player.Player
	Fade      *fade.Overlay
	Sounds    Sounds

	Chronal       *ChronalPanel
	InjectorPanel *InjectorPanel
	CargoPanel    *CargoPanel
	ScannerPanel  *ScannerPanel
	TravelPanel   *TravelPanel

	// OnComplete runs once when the engine accepts the right combination.
	OnComplete func()

	completed bool
	input     player.Input
	controls  []updater
	byName    map[string]controls.Interactable
}

// New builds the scene. out may be nil to log sound cues.
func New(cfg Config, c *clock.Clock, prefs *config.Preferences, out sound.Output) *Level {
	stars := starmap.Generate(cfg.Map, c)
	l := &Level{
		Clock: c,
		Prefs: prefs,
		Stars: stars,
		Hold:  cargo.NewHold(c),
		Fade:  fade.New(c),
	}

	total := c.TotalDuration()
	l.Sounds = Sounds{
		Music:     sound.NewCue("music", total, c, prefs, out),
		Rumble:    sound.NewCue("engine-rumble", total, c, prefs, out),
		Press:     sound.NewCue("button-press", 0.2, c, prefs, out),
		Release:   sound.NewCue("button-release", 0.2, c, prefs, out),
		Inject:    sound.NewCue("inject", 1, c, prefs, out),
		Correct:   sound.NewCue("inject-correct", 3, c, prefs, out),
		Incorrect: sound.NewCue("inject-incorrect", 1, c, prefs, out),
	}
	l.Sounds.Music.IsMusic = true
	l.Sounds.Music.MuteOnRewind = true
	l.Sounds.Rumble.MuteOnFastForward = true

	combo := Combination(stars.CargoTypes(), cfg.CombinationSize, cfg.Map.Seed)
	l.Injector = injector.New(c, combo, injector.ModeShield)
	l.Injector.InjectSound = l.Sounds.Inject
	l.Injector.CorrectSound = l.Sounds.Correct
	l.Injector.IncorrectSound = l.Sounds.Incorrect
	l.Injector.Fader = l.Fade
	l.Injector.OnComplete = l.complete

	l.Ship = ship.New(cfg.Ship, c, stars, vec.Vec3{})
	l.Ship.Fader = l.Fade
	l.Ship.Shields = func() []cargo.Type { return []cargo.Type{l.Injector.Shield()} }
	l.Scanner = ship.NewScanner(c, l.Ship, stars, cfg.ScanDuration)
	l.Collector = ship.NewCollector(c, l.Ship, stars, l.Hold, cfg.CollectDuration)

	l.Player = player.New(cfg.Player, c, prefs, vec.Vec3{}, 0)
	deck := cfg.DeckRadius
	l.Player.Floor = func(p vec.Vec3) (float64, bool) {
		return 0, deck <= 0 || vec.Distance(vec.Vec3{X: p.X, Z: p.Z}, vec.Vec3{}) <= deck
	}

	l.Chronal = newChronalPanel(c, cfg.MaxTimeScale)
	l.InjectorPanel = newInjectorPanel(c, l.Injector)
	l.CargoPanel = newCargoPanel(c, l.Collector, l.Hold, l.Injector)
	l.ScannerPanel = &ScannerPanel{Scan: controls.NewButton("scanner-scan", c), scanner: l.Scanner}
	l.TravelPanel = newTravelPanel(c, l.Ship, cfg.MinTravel, cfg.MaxTravel)

	for _, group := range [][]updater{
		l.Chronal.controls(),
		l.InjectorPanel.controls(),
		l.CargoPanel.controls(),
		l.ScannerPanel.controls(),
		l.TravelPanel.controls(),
	} {
		l.controls = append(l.controls, group...)
	}
	l.byName = map[string]controls.Interactable{}
	for _, u := range l.controls {
		l.wire(u)
	}

	slog.Info("level loaded",
		"stars", len(stars.Stars),
		"beacons", len(stars.Beacons),
		"combination", combo,
	)
	return l
}

func (l *Level) wire(u updater) {
	switch ctl := u.(type) {
	case *controls.Button:
		ctl.PressSound, ctl.ReleaseSound = l.Sounds.Press, l.Sounds.Release
		l.byName[ctl.Name] = ctl
	case *controls.Slider:
		ctl.PressSound, ctl.ReleaseSound = l.Sounds.Press, l.Sounds.Release
		l.byName[ctl.Name] = ctl
	case *controls.Trackball:
		ctl.PressSound, ctl.ReleaseSound = l.Sounds.Press, l.Sounds.Release
		l.byName[ctl.Name] = ctl
	}
}

// Combination picks n distinct materials from available for the engine.
// The pick is deterministic in seed.
func Combination(available []cargo.Type, n int, seed int64) []cargo.Type {
	pool := append([]cargo.Type(nil), available...)
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	if n > len(pool) {
		n = len(pool)
	}
	return pool[:n]
}

// Control returns the named control, or nil.
func (l *Level) Control(name string) controls.Interactable { return l.byName[name] }

// SetInput queues the player input for the next Update.
func (l *Level) SetInput(in player.Input) { l.input = in }

// Completed reports whether the loop has been broken.
func (l *Level) Completed() bool { return l.completed }

func (l *Level) complete() {
	if l.completed {
		return
	}
	l.completed = true
	slog.Info("time loop broken", "time", l.Clock.CurrentTime())
	if l.OnComplete != nil {
		l.OnComplete()
	}
}

// Subscribe connects the scene to clock transitions published on bus.
func (l *Level) Subscribe(bus *clock.Bus) {
	l.Player.Subscribe(bus)
}

// Update runs every system once, in dependency order. The clock must have
// ticked first.
func (l *Level) Update() {
	l.Stars.Update()
	l.Hold.Update()
	l.Injector.Update()
	l.Ship.Update()
	l.Scanner.Update()
	l.Collector.Update()

	l.Player.Update(l.input)
	l.input = player.Input{}
	for _, u := range l.controls {
		u.Update()
	}

	l.Chronal.update()
	l.InjectorPanel.update()
	l.CargoPanel.update()
	l.ScannerPanel.update()
	l.TravelPanel.update()

	l.Fade.Update()
	if l.Clock.IsPlaying() {
		l.Sounds.Music.SetPlaying(true, 1)
		l.Sounds.Rumble.SetPlaying(l.Ship.IsTraveling(), 1)
	}
	for _, s := range l.Sounds.all() {
		s.Update()
	}
}
