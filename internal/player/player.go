// Package player moves the first-person body through the level and routes
// pointer input to one control at a time. The pose is tracked in histories,
// so scrubbing the clock walks the player back along their path.
package player

import (
	"log/slog"

	"github.com/talgya/timeloop/internal/clock"
	"github.com/talgya/timeloop/internal/config"
	"github.com/talgya/timeloop/internal/controls"
	"github.com/talgya/timeloop/internal/history"
	"github.com/talgya/timeloop/internal/vec"
)

const (
	// Debounce is the minimum time between appended pose snapshots.
	Debounce = 0.1
	// MaxPitch bounds looking up and down, in degrees.
	MaxPitch = 80
	// KillHeight is the depth below which the player has fallen out of the
	// world.
	KillHeight = -100
)

// Config tunes player movement.
type Config struct {
	MoveSpeed float64  // units per second at time scale 1
	LookSpeed vec.Vec2 // degrees per second per unit of look input
	Gravity   float64
}

// DefaultConfig returns the shipped tuning.
func DefaultConfig() Config {
	return Config{MoveSpeed: 3, LookSpeed: vec.Vec2{X: 90, Y: 90}, Gravity: 9.81}
}

// Input is one frame of player input. Hover is the control under the
// pointer, if any.
type Input struct {
	Move  vec.Vec2
	Look  vec.Vec2
	Hover controls.Interactable
	Along float64

	Pressed  bool
	Held     bool
	Released bool
}

// Floor reports the ground height under pos, or false over a void.
type Floor func(pos vec.Vec3) (float64, bool)

// Player is the first-person body.
type Player struct {
	cfg   Config
	clock *clock.Clock
	prefs *config.Preferences

	// Floor defaults to flat ground at height 0.
	Floor Floor

	position *history.History[vec.Vec3]
	yaw      *history.History[float64]
	pitch    *history.History[float64]

	pos       vec.Vec3
	yawDeg    float64
	pitchDeg  float64
	fallSpeed float64
	target    controls.Interactable
	lastPoint controls.Pointer
}

// New places the player at spawn facing yaw degrees.
func New(cfg Config, c *clock.Clock, prefs *config.Preferences, spawn vec.Vec3, yaw float64) *Player {
	return &Player{
		cfg:      cfg,
		clock:    c,
		prefs:    prefs,
		position: history.New(spawn, history.Vec3(Debounce)),
		yaw:      history.New(yaw, history.Angle(Debounce)),
		pitch:    history.New(0.0, history.Float(Debounce)),
		pos:      spawn,
		yawDeg:   yaw,
	}
}

// Update reconciles the pose with the clock and, while playing, applies
// input.
func (p *Player) Update(in Input) {
	if p.pos.Y < KillHeight {
		slog.Info("player fell out of the world", "time", p.clock.CurrentTime())
		p.clock.EmergencyRewindToStart()
	}
	if !p.clock.IsPlaying() {
		p.release()
	}

	now, mode := p.clock.CurrentTime(), p.clock.Mode()
	p.position.Reconcile(now, mode)
	p.yaw.Reconcile(now, mode)
	p.pitch.Reconcile(now, mode)
	p.pos, p.yawDeg, p.pitchDeg = p.position.Value(), p.yaw.Value(), p.pitch.Value()

	if mode != clock.Playing {
		p.fallSpeed = 0
		return
	}
	p.move(in)
	p.interact(in)
}

// Subscribe hooks the player to clock transitions on bus. A rewind pins the
// pose held when it began, so the walk back starts from where the player
// actually stood. Any transition out of Playing drops the operated control.
func (p *Player) Subscribe(bus *clock.Bus) {
	bus.Subscribe(clock.EventRewinding, func(ev clock.Event) {
		p.position.Record(ev.Time, p.pos)
		p.yaw.Record(ev.Time, p.yawDeg)
		p.pitch.Record(ev.Time, p.pitchDeg)
		p.release()
	})
	settle := func(clock.Event) {
		p.fallSpeed = 0
		p.release()
	}
	bus.Subscribe(clock.EventStopped, settle)
	bus.Subscribe(clock.EventReset, settle)
	bus.Subscribe(clock.EventFastForwarding, settle)
}

func (p *Player) move(in Input) {
	dt := max(p.clock.DeltaTime(), 0)
	now := p.clock.CurrentTime()

	look := p.cfg.LookSpeed
	if p.prefs != nil {
		look = look.Mul(vec.Vec2{X: p.prefs.CameraSensitivityX, Y: p.prefs.CameraSensitivityY})
	}
	if p.target != nil {
		look = look.Scale(p.target.CameraSpeedMultiplier())
	}
	if p.target == nil || !p.target.LocksCamera() {
		p.yawDeg += in.Look.X * dt * look.X
		p.pitchDeg = vec.Clamp(p.pitchDeg-in.Look.Y*dt*look.Y, -MaxPitch, MaxPitch)
	}

	forward := vec.Heading(p.yawDeg)
	right := vec.Vec3{X: forward.Z, Z: -forward.X}
	dir := in.Move.ClampLen(1)
	p.pos = p.pos.Add(right.Scale(dir.X * p.cfg.MoveSpeed * dt)).Add(forward.Scale(dir.Y * p.cfg.MoveSpeed * dt))

	floor := p.Floor
	if floor == nil {
		floor = flat
	}
	if h, ok := floor(p.pos); ok && p.pos.Y <= h {
		p.pos.Y, p.fallSpeed = h, 0
	} else {
		p.fallSpeed += p.cfg.Gravity * dt
		p.pos.Y -= p.fallSpeed * dt
	}

	p.position.Record(now, p.pos)
	p.yaw.Record(now, p.yawDeg)
	p.pitch.Record(now, p.pitchDeg)
}

func flat(vec.Vec3) (float64, bool) { return 0, true }

func (p *Player) interact(in Input) {
	ptr := controls.Pointer{Along: in.Along, Delta: in.Look}
	if p.target != nil && !p.target.AllowInteraction() {
		p.target.EndInteraction(ptr)
		p.target = nil
	}
	if in.Pressed && p.target == nil && in.Hover != nil && in.Hover.AllowInteraction() {
		p.target = in.Hover
		p.target.StartInteraction(ptr)
		p.lastPoint = ptr
	}
	if in.Held && p.target != nil {
		p.target.UpdateInteraction(ptr)
		p.lastPoint = ptr
	}
	if in.Released && p.target != nil {
		p.target.EndInteraction(ptr)
		p.target = nil
	}
}

func (p *Player) release() {
	if p.target == nil {
		return
	}
	p.target.EndInteraction(p.lastPoint)
	p.target = nil
}

// Position returns the player's position now.
func (p *Player) Position() vec.Vec3 { return p.pos }

// Yaw returns the body heading in degrees.
func (p *Player) Yaw() float64 { return p.yawDeg }

// Pitch returns the camera pitch in degrees.
func (p *Player) Pitch() float64 { return p.pitchDeg }

// Target returns the control being operated, or nil.
func (p *Player) Target() controls.Interactable { return p.target }

// Teleport moves the player and records the new position.
func (p *Player) Teleport(pos vec.Vec3) {
	p.pos = pos
	p.fallSpeed = 0
	p.position.Record(p.clock.CurrentTime(), pos)
}
