// Star field generation using layered simplex noise.
// Noise sets where stars cluster; a seeded source sets each star's size,
// lifecycle, remnant and cargo.
package starmap

import (
	"fmt"
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/timeloop/internal/cargo"
	"github.com/talgya/timeloop/internal/clock"
	"github.com/talgya/timeloop/internal/vec"
)

// GenConfig holds star field generation parameters.
type GenConfig struct {
	Radius        float64 // Field radius around the ship's start
	Stars         int     // Target star count
	Beacons       int     // Scan beacons to place
	Seed          int64   // Random seed (0 = random)
	Density       float64 // Noise threshold a position must clear (0.0–1.0)
	MinSpacing    float64 // Minimum distance between stars
	ClearRadius   float64 // No stars this close to the origin
	TotalDuration float64 // Loop length the lifecycles are laid out in
}

// DefaultGenConfig returns the shipped field layout.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Radius:        8,
		Stars:         24,
		Beacons:       3,
		Seed:          0,
		Density:       0.45,
		MinSpacing:    1.2,
		ClearRadius:   1.5,
		TotalDuration: 120,
	}
}

// SmallTestConfig returns a tiny field for rapid iteration.
func SmallTestConfig() GenConfig {
	return GenConfig{
		Radius:        5,
		Stars:         6,
		Beacons:       1,
		Seed:          42,
		Density:       0.3,
		MinSpacing:    1,
		ClearRadius:   1,
		TotalDuration: 120,
	}
}

var namePrefixes = []string{"Alpha", "Beta", "Gamma", "Delta", "Epsilon", "Zeta", "Eta", "Theta"}

// Generate creates a complete star field bound to c.
func Generate(cfg GenConfig, c *clock.Clock) *Map {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}
	rng := rand.New(rand.NewSource(seed))

	// Independent layers for clustering and flicker.
	densityNoise := opensimplex.NewNormalized(seed)
	flickerNoise := opensimplex.NewNormalized(seed + 1)

	m := NewMap(cfg.Radius)
	materials := cargo.All()
	total := cfg.TotalDuration
	if total <= 0 {
		total = DefaultGenConfig().TotalDuration
	}

	for attempts := 0; len(m.Stars) < cfg.Stars && attempts < cfg.Stars*200; attempts++ {
		// Uniform point in the disk.
		r := cfg.Radius * math.Sqrt(rng.Float64())
		theta := rng.Float64() * 2 * math.Pi
		pos := vec.Vec3{X: r * math.Cos(theta), Z: r * math.Sin(theta)}

		if pos.Len() < cfg.ClearRadius {
			continue
		}
		if octaveNoise(densityNoise, pos.X, pos.Z, 3, 0.2, 0.5) < cfg.Density {
			continue
		}
		if tooClose(m, pos, cfg.MinSpacing) {
			continue
		}

		id := len(m.Stars) + 1
		radius := 0.15 + 0.1*rng.Float64()
		decayStart := total * (0.25 + 0.5*rng.Float64())
		life := Lifecycle{
			DecayStart:      decayStart,
			Death:           decayStart + total*(0.05+0.1*rng.Float64()),
			RemnantDuration: total,
		}
		name := fmt.Sprintf("%s-%03d", namePrefixes[rng.Intn(len(namePrefixes))], id)
		body := Body{
			ScanRadius:  radius*4 + 0.5,
			ScanName:    name,
			ScanMessage: starMessage(life, total),
			Cargo:       materials[rng.Intn(len(materials))],
		}
		s := NewStar(c, id, body, pos, radius, life, flickerNoise)
		attachRemnant(s, rng, materials)
		m.AddStar(s)
	}

	placeBeacons(m, cfg, rng, c)
	return m
}

// attachRemnant rolls the star's remnant. Dangerous remnants demand a
// matching shield.
func attachRemnant(s *Star, rng *rand.Rand, materials []cargo.Type) {
	roll := rng.Float64()
	var (
		kind  RemnantKind
		scale float64
	)
	switch {
	case roll < 0.40:
		kind, scale = Nebula, 6
	case roll < 0.65:
		kind, scale = BlackHole, 3
	case roll < 0.85:
		kind, scale = Supernova, 8
	default:
		return
	}

	var shields []cargo.Type
	if kind.Dangerous() {
		n := 1 + rng.Intn(2)
		for _, i := range rng.Perm(len(materials))[:n] {
			shields = append(shields, materials[i])
		}
	}
	body := Body{
		ScanRadius:  s.Radius*scale + 0.5,
		ScanName:    fmt.Sprintf("%s %s", s.ScanName, remnantLabel(kind)),
		ScanMessage: remnantMessage(kind, shields),
		Cargo:       materials[rng.Intn(len(materials))],
	}
	s.AttachRemnant(kind, body, s.Radius*scale, shields)
}

func placeBeacons(m *Map, cfg GenConfig, rng *rand.Rand, c *clock.Clock) {
	for i := 0; i < cfg.Beacons; i++ {
		r := cfg.ClearRadius + (cfg.Radius-cfg.ClearRadius)*rng.Float64()
		theta := rng.Float64() * 2 * math.Pi
		pos := vec.Vec3{X: r * math.Cos(theta), Z: r * math.Sin(theta)}
		body := Body{
			ScanRadius:  0.75,
			ScanName:    fmt.Sprintf("Beacon %d", i+1),
			ScanMessage: "A derelict probe. Its hold is intact.",
			Cargo:       cargo.TachyonResonantGammaRays,
		}
		m.AddBeacon(NewBeacon(c, i+1, body, pos))
	}
}

func tooClose(m *Map, pos vec.Vec3, spacing float64) bool {
	for _, s := range m.Stars {
		if vec.Distance(s.Position, pos) < spacing {
			return true
		}
	}
	return false
}

func remnantLabel(k RemnantKind) string {
	switch k {
	case Nebula:
		return "Nebula"
	case BlackHole:
		return "Singularity"
	case Supernova:
		return "Supernova"
	default:
		return "Remnant"
	}
}

func starMessage(l Lifecycle, total float64) string {
	return fmt.Sprintf("Main sequence. Collapse predicted at %.0f%% of the loop.", 100*l.DecayStart/total)
}

func remnantMessage(k RemnantKind, shields []cargo.Type) string {
	if len(shields) == 0 {
		return "Diffuse and stable."
	}
	msg := fmt.Sprintf("Lethal %s. Shielding:", remnantLabel(k))
	for _, s := range shields {
		msg += " " + s.DisplayName() + ";"
	}
	return msg
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}
