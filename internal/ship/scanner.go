package ship

import (
	"fmt"
	"math"

	"github.com/talgya/timeloop/internal/clock"
	"github.com/talgya/timeloop/internal/starmap"
	"github.com/talgya/timeloop/internal/vec"
)

// operation is a timed action measured in clock time. It is abandoned if
// time moves back before it started.
type operation struct {
	running  bool
	start    float64
	duration float64
}

func (o *operation) begin(now float64) {
	o.running = true
	o.start = now
}

func (o *operation) progress(now float64) float64 {
	if !o.running {
		return 0
	}
	if o.duration <= 0 {
		return 1
	}
	return vec.Clamp01((now - o.start) / o.duration)
}

// Scanner identifies the nearest scannable body in range.
type Scanner struct {
	clock *clock.Clock
	ship  *Ship
	stars *starmap.Map

	op      operation
	nearest starmap.Scannable
	target  starmap.Scannable
}

// NewScanner creates a scanner taking duration seconds per scan.
func NewScanner(c *clock.Clock, s *Ship, stars *starmap.Map, duration float64) *Scanner {
	return &Scanner{clock: c, ship: s, stars: stars, op: operation{duration: duration}}
}

// Update advances or abandons the scan in progress and picks the nearest
// target.
func (sc *Scanner) Update() {
	now := sc.clock.CurrentTime()
	if sc.op.running && now < sc.op.start {
		sc.op.running, sc.target = false, nil
	}
	if sc.op.running && sc.op.progress(now) >= 1 {
		sc.target.Scan()
		sc.op.running, sc.target = false, nil
	}
	sc.nearest = sc.stars.NearestScannable(sc.ship.Position())
}

// IsScanning reports whether a scan is underway.
func (sc *Scanner) IsScanning() bool { return sc.op.running }

// Progress returns scan completion in [0, 1].
func (sc *Scanner) Progress() float64 { return sc.op.progress(sc.clock.CurrentTime()) }

// Nearest returns the body the scanner is pointed at, or nil.
func (sc *Scanner) Nearest() starmap.Scannable { return sc.nearest }

// CanScan reports whether TryStartScan would succeed.
func (sc *Scanner) CanScan() bool {
	return sc.nearest != nil && sc.nearest.CanScan() && !sc.op.running
}

// TryStartScan begins scanning the nearest body.
func (sc *Scanner) TryStartScan() bool {
	if !sc.CanScan() {
		return false
	}
	sc.target = sc.nearest
	sc.op.begin(sc.clock.CurrentTime())
	return true
}

// HUDText renders the scanner panel.
func (sc *Scanner) HUDText() string {
	name, msg := "No Target", ""
	if sc.nearest != nil {
		name = "Unidentified"
		if sc.nearest.Scanned() {
			name, msg = sc.nearest.DisplayName(), sc.nearest.Message()
		}
	}
	text := fmt.Sprintf("Scan Target:\n%s\n%s", name, msg)
	if sc.op.running {
		text += fmt.Sprintf("\n\nScan Progress:\n%d%%", int(math.Round(sc.Progress()*100)))
	}
	return text
}
