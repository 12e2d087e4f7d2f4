package starmap

import (
	"github.com/talgya/timeloop/internal/cargo"
	"github.com/talgya/timeloop/internal/clock"
	"github.com/talgya/timeloop/internal/history"
	"github.com/talgya/timeloop/internal/vec"
)

// Beacon is a derelict scan beacon. It can be scanned once and harvested
// once; both flags are step histories.
type Beacon struct {
	Body
	ID       int      `json:"id"`
	Position vec.Vec3 `json:"position"`

	clock     *clock.Clock
	scanned   *history.History[bool]
	harvested *history.History[bool]
}

// NewBeacon creates an unscanned beacon.
func NewBeacon(c *clock.Clock, id int, body Body, pos vec.Vec3) *Beacon {
	return &Beacon{
		Body:      body,
		ID:        id,
		Position:  pos,
		clock:     c,
		scanned:   history.NewDiscrete(false),
		harvested: history.NewDiscrete(false),
	}
}

// Update resolves both flags at the current time.
func (b *Beacon) Update() {
	now, mode := b.clock.CurrentTime(), b.clock.Mode()
	b.scanned.Reconcile(now, mode)
	b.harvested.Reconcile(now, mode)
}

// Harvested reports whether the beacon's cargo has been taken.
func (b *Beacon) Harvested() bool { return b.harvested.Value() }

func (b *Beacon) Pos() vec.Vec3         { return b.Position }
func (b *Beacon) Scanned() bool         { return b.scanned.Value() }
func (b *Beacon) CanScan() bool         { return !b.Scanned() }
func (b *Beacon) ScanRange() float64    { return b.ScanRadius }
func (b *Beacon) DisplayName() string   { return b.ScanName }
func (b *Beacon) Message() string       { return b.ScanMessage }
func (b *Beacon) HarvestRange() float64 { return b.ScanRadius }
func (b *Beacon) CargoType() cargo.Type { return b.Cargo }
func (b *Beacon) Scan()                 { b.scanned.Record(b.clock.CurrentTime(), true) }

// Harvest takes the beacon's cargo.
func (b *Beacon) Harvest() cargo.Type {
	b.harvested.Record(b.clock.CurrentTime(), true)
	return b.Cargo
}

func (b *Beacon) HarvestStatus() HarvestStatus {
	switch {
	case !b.Scanned():
		return NotScanned
	case b.Harvested():
		return Depleted
	default:
		return Ready
	}
}
