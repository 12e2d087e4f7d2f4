package ship

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/talgya/timeloop/internal/cargo"
	"github.com/talgya/timeloop/internal/clock"
	"github.com/talgya/timeloop/internal/starmap"
)

// Collector harvests cargo from the nearest ready body into the hold.
// Collecting is abandoned if the ship moves.
type Collector struct {
	clock *clock.Clock
	ship  *Ship
	stars *starmap.Map
	hold  *cargo.Hold

	op      operation
	nearest starmap.Harvestable
	target  starmap.Harvestable
}

// NewCollector creates a collector taking duration seconds per harvest.
func NewCollector(c *clock.Clock, s *Ship, stars *starmap.Map, hold *cargo.Hold, duration float64) *Collector {
	return &Collector{clock: c, ship: s, stars: stars, hold: hold, op: operation{duration: duration}}
}

// Update advances or abandons the harvest in progress and picks the nearest
// target. The hold must have reconciled first.
func (co *Collector) Update() {
	now := co.clock.CurrentTime()
	if co.op.running && (now < co.op.start || co.ship.IsTraveling()) {
		co.op.running, co.target = false, nil
	}
	if co.op.running && co.op.progress(now) >= 1 {
		ct := co.target.Harvest()
		if i := co.hold.Add(ct); i < 0 {
			slog.Warn("hold full, cargo lost", "cargo", ct)
		}
		co.op.running, co.target = false, nil
	}
	co.nearest = co.stars.NearestHarvestable(co.ship.Position())
}

// IsCollecting reports whether a harvest is underway.
func (co *Collector) IsCollecting() bool { return co.op.running }

// Progress returns harvest completion in [0, 1].
func (co *Collector) Progress() float64 { return co.op.progress(co.clock.CurrentTime()) }

// Nearest returns the body in collection range, or nil.
func (co *Collector) Nearest() starmap.Harvestable { return co.nearest }

// CanCollect reports whether TryStartCollecting would succeed.
func (co *Collector) CanCollect() bool {
	return co.nearest != nil &&
		co.nearest.HarvestStatus() == starmap.Ready &&
		!co.op.running &&
		!co.ship.IsTraveling() &&
		!co.hold.IsFull()
}

// TryStartCollecting begins harvesting the nearest body.
func (co *Collector) TryStartCollecting() bool {
	if !co.CanCollect() {
		return false
	}
	co.target = co.nearest
	co.op.begin(co.clock.CurrentTime())
	return true
}

// TargetText is the collection target line of the cargo panel.
func (co *Collector) TargetText() string {
	switch {
	case co.ship.IsTraveling():
		return "Cannot Collect While In Motion"
	case co.op.running:
		return fmt.Sprintf("%s (%d%%)", co.target.CargoType().DisplayName(), int(math.Round(co.Progress()*100)))
	case co.nearest == nil:
		return "Not Found"
	}
	switch co.nearest.HarvestStatus() {
	case starmap.NotScanned:
		return "Not Scanned"
	case starmap.Ready:
		return co.nearest.CargoType().DisplayName()
	case starmap.Depleted:
		return "Depleted"
	default:
		return "Not Found"
	}
}

// HUDText renders the cargo panel.
func (co *Collector) HUDText() string { return co.hold.HUDText(co.TargetText()) }
