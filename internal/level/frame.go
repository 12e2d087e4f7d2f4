package level

import (
	"github.com/talgya/timeloop/internal/cargo"
	"github.com/talgya/timeloop/internal/fade"
	"github.com/talgya/timeloop/internal/vec"
)

// Frame is a read-only copy of the scene published to observers.
type Frame struct {
	Tick         uint64  `json:"tick"`
	Time         float64 `json:"time"`
	Total        float64 `json:"total"`
	Progress     float64 `json:"progress"`
	Mode         string  `json:"mode"`
	TimeScale    float64 `json:"time_scale"`
	RawTimeScale float64 `json:"raw_time_scale"`
	Completed    bool    `json:"completed"`

	Ship     ShipFrame     `json:"ship"`
	Player   PlayerFrame   `json:"player"`
	Injector InjectorFrame `json:"injector"`
	Hold     []cargo.Type  `json:"hold"`
	Fade     fade.State    `json:"fade"`
	Stars    []StarFrame   `json:"stars"`
	HUD      HUD           `json:"hud"`
}

// ShipFrame is the ship's part of a Frame.
type ShipFrame struct {
	Position   vec.Vec3 `json:"position"`
	Heading    vec.Vec3 `json:"heading"`
	Traveling  bool     `json:"traveling"`
	Course     float64  `json:"course"`
	Scanning   float64  `json:"scanning"`
	Collecting float64  `json:"collecting"`
}

// PlayerFrame is the player's part of a Frame.
type PlayerFrame struct {
	Position vec.Vec3 `json:"position"`
	Yaw      float64  `json:"yaw"`
	Pitch    float64  `json:"pitch"`
}

// InjectorFrame is the injector's part of a Frame.
type InjectorFrame struct {
	Mode      string       `json:"mode"`
	Shield    cargo.Type   `json:"shield"`
	Contents  []cargo.Type `json:"contents"`
	Capacity  int          `json:"capacity"`
	Injecting bool         `json:"injecting"`
}

// StarFrame is one star's part of a Frame.
type StarFrame struct {
	ID            int      `json:"id"`
	Name          string   `json:"name"`
	Position      vec.Vec3 `json:"position"`
	Phase         string   `json:"phase"`
	Radius        float64  `json:"radius"`
	Brightness    float64  `json:"brightness"`
	Scanned       bool     `json:"scanned"`
	Remnant       string   `json:"remnant,omitempty"`
	RemnantRadius float64  `json:"remnant_radius,omitempty"`
}

// HUD holds the text of each panel screen.
type HUD struct {
	Clock    string `json:"clock"`
	Cargo    string `json:"cargo"`
	Scanner  string `json:"scanner"`
	Injector string `json:"injector"`
}

// Frame captures the scene at the current time.
func (l *Level) Frame(tick uint64) Frame {
	c := l.Clock
	now := c.CurrentTime()
	hold := l.Hold.Contents()

	f := Frame{
		Tick:         tick,
		Time:         now,
		Total:        c.TotalDuration(),
		Progress:     c.Progress(),
		Mode:         c.Mode().String(),
		TimeScale:    c.TimeScale(),
		RawTimeScale: c.RawTimeScale(),
		Completed:    l.completed,
		Ship: ShipFrame{
			Position:   l.Ship.Position(),
			Heading:    l.Ship.Heading(),
			Traveling:  l.Ship.IsTraveling(),
			Course:     l.TravelPanel.Course(),
			Scanning:   l.Scanner.Progress(),
			Collecting: l.Collector.Progress(),
		},
		Player: PlayerFrame{
			Position: l.Player.Position(),
			Yaw:      l.Player.Yaw(),
			Pitch:    l.Player.Pitch(),
		},
		Injector: InjectorFrame{
			Mode:      l.Injector.Mode().String(),
			Shield:    l.Injector.Shield(),
			Contents:  l.Injector.Contents(),
			Capacity:  l.Injector.Capacity(),
			Injecting: l.Injector.IsInjecting(),
		},
		Hold: hold[:],
		Fade: l.Fade.State(),
		HUD: HUD{
			Clock:    c.String(),
			Cargo:    l.Collector.HUDText(),
			Scanner:  l.Scanner.HUDText(),
			Injector: l.Injector.HUDText(),
		},
	}

	f.Stars = make([]StarFrame, 0, len(l.Stars.Stars))
	for _, s := range l.Stars.Stars {
		sf := StarFrame{
			ID:         s.ID,
			Name:       s.ScanName,
			Position:   s.Position,
			Phase:      s.Phase().String(),
			Radius:     s.CurrentRadius(),
			Brightness: s.Brightness(now),
			Scanned:    s.Scanned(),
		}
		if r := s.Remnant; r != nil && r.IsActive() {
			sf.Remnant = r.Kind.String()
			sf.RemnantRadius = r.CurrentRadius()
		}
		f.Stars = append(f.Stars, sf)
	}
	return f
}
