package level

import (
	"github.com/talgya/timeloop/internal/cargo"
	"github.com/talgya/timeloop/internal/clock"
	"github.com/talgya/timeloop/internal/controls"
	"github.com/talgya/timeloop/internal/injector"
	"github.com/talgya/timeloop/internal/ship"
	"github.com/talgya/timeloop/internal/vec"
)

// ChronalPanel is the time machine console: a timeline slider that seeks
// when released and a speed slider that sets the base time scale while
// dragged.
type ChronalPanel struct {
	Position *controls.Slider
	Speed    *controls.Slider

	clock    *clock.Clock
	dragging bool
}

func newChronalPanel(c *clock.Clock, maxSpeed float64) *ChronalPanel {
	return &ChronalPanel{
		Position: controls.NewSlider("timeline-position", c, 0, c.TotalDuration(), 0),
		Speed:    controls.NewSlider("timeline-speed", c, 0, maxSpeed, c.RawTimeScale()),
		clock:    c,
	}
}

func (p *ChronalPanel) update() {
	c := p.clock
	p.Position.SetMinMax(0, c.TotalDuration())
	p.Position.Locked = !c.IsPlaying()
	if p.Position.IsInteracting() {
		p.dragging = true
	} else {
		if p.dragging {
			p.dragging = false
			c.SeekTo(p.Position.Value())
		}
		p.Position.SetValue(c.CurrentTime())
	}

	p.Speed.Locked = !c.IsPlaying()
	switch {
	case p.Speed.IsInteracting():
		c.SetBaseTimeScale(p.Speed.Value())
	case c.IsPlaying():
		p.Speed.SetValue(c.RawTimeScale())
	default:
		p.Speed.SetValue(c.TimeScale())
	}
}

func (p *ChronalPanel) controls() []updater { return []updater{p.Position, p.Speed} }

// InjectorPanel selects the injector mode and fires it.
type InjectorPanel struct {
	Activate   *controls.Button
	ShieldMode *controls.Button
	EngineMode *controls.Button

	injector *injector.Injector
}

func newInjectorPanel(c *clock.Clock, in *injector.Injector) *InjectorPanel {
	return &InjectorPanel{
		Activate:   controls.NewButton("injector-activate", c),
		ShieldMode: controls.NewButton("injector-shield-mode", c),
		EngineMode: controls.NewButton("injector-engine-mode", c),
		injector:   in,
	}
}

func (p *InjectorPanel) update() {
	in := p.injector
	p.Activate.Locked = !in.CanInject()
	if p.Activate.JustPressed() {
		in.TryInject()
	}
	p.ShieldMode.Locked = in.Mode() == injector.ModeShield
	if p.ShieldMode.JustPressed() {
		in.SetMode(injector.ModeShield)
	}
	p.EngineMode.Locked = in.Mode() == injector.ModeEngine
	if p.EngineMode.JustPressed() {
		in.SetMode(injector.ModeEngine)
	}
}

func (p *InjectorPanel) controls() []updater {
	return []updater{p.Activate, p.ShieldMode, p.EngineMode}
}

// CargoPanel starts collection and moves cargo from the hold into the
// injector.
type CargoPanel struct {
	Collect *controls.Button
	Load    *controls.Button

	collector *ship.Collector
	hold      *cargo.Hold
	injector  *injector.Injector
}

func newCargoPanel(c *clock.Clock, co *ship.Collector, h *cargo.Hold, in *injector.Injector) *CargoPanel {
	return &CargoPanel{
		Collect:   controls.NewButton("cargo-collect", c),
		Load:      controls.NewButton("cargo-load", c),
		collector: co,
		hold:      h,
		injector:  in,
	}
}

func (p *CargoPanel) update() {
	p.Collect.Locked = !p.collector.CanCollect()
	if p.Collect.JustPressed() {
		p.collector.TryStartCollecting()
	}
	p.Load.Locked = p.hold.IsEmpty() || len(p.injector.Contents()) >= p.injector.Capacity()
	if p.Load.JustPressed() {
		p.load()
	}
}

// load moves the first occupied slot into the injector.
func (p *CargoPanel) load() bool {
	for i, ct := range p.hold.Contents() {
		if ct == cargo.None {
			continue
		}
		if !p.injector.AddCargo(ct) {
			return false
		}
		p.hold.RemoveAt(i)
		return true
	}
	return false
}

func (p *CargoPanel) controls() []updater { return []updater{p.Collect, p.Load} }

// ScannerPanel starts scans.
type ScannerPanel struct {
	Scan *controls.Button

	scanner *ship.Scanner
}

func (p *ScannerPanel) update() {
	p.Scan.Locked = !p.scanner.CanScan()
	if p.Scan.JustPressed() {
		p.scanner.TryStartScan()
	}
}

func (p *ScannerPanel) controls() []updater { return []updater{p.Scan} }

// TravelPanel plots and engages piloted travel: the trackball sets the
// heading, the slider the distance.
type TravelPanel struct {
	Distance *controls.Slider
	Heading  *controls.Trackball
	Engage   *controls.Button
	Brake    *controls.Button

	ship *ship.Ship
}

func newTravelPanel(c *clock.Clock, s *ship.Ship, minDist, maxDist float64) *TravelPanel {
	return &TravelPanel{
		Distance: controls.NewSlider("travel-distance", c, minDist, maxDist, (minDist+maxDist)/2),
		Heading:  controls.NewTrackball("travel-heading", c, vec.Vec2{}, vec.Vec2{X: 1, Y: 1}),
		Engage:   controls.NewButton("travel-engage", c),
		Brake:    controls.NewButton("travel-brake", c),
		ship:     s,
	}
}

// Course returns the yaw in degrees the engage button would fly.
func (p *TravelPanel) Course() float64 { return p.Heading.Rotation().X }

func (p *TravelPanel) update() {
	traveling := p.ship.IsTraveling()
	p.Engage.Locked = traveling
	p.Brake.Locked = !traveling
	if p.Engage.JustPressed() {
		p.ship.Pilot(vec.Heading(p.Course()), p.Distance.Value())
	}
	if p.Brake.JustPressed() {
		p.ship.Interrupt(false)
	}
}

func (p *TravelPanel) controls() []updater {
	return []updater{p.Distance, p.Heading, p.Engage, p.Brake}
}
