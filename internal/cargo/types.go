// Package cargo defines the harvestable materials and the ship's cargo hold.
package cargo

import (
	"fmt"
	"strings"
)

// Type is a harvestable material. None marks an empty slot.
type Type uint8

const (
	None Type = iota
	IonizedHydrogenPlasma
	Helium3
	RadioactiveIsotopes
	HeavyMetals
	HydrogenGas
	NeutroniumDust
	RareEarthMetals
	SuperconductingAlloys
	TachyonResonantGammaRays
)

var displayNames = [...]string{
	None:                     "None",
	IonizedHydrogenPlasma:    "Ionized Hydrogen Plasma",
	Helium3:                  "Helium-3",
	RadioactiveIsotopes:      "Radioactive Isotopes",
	HeavyMetals:              "Heavy Metals",
	HydrogenGas:              "Hydrogen Gas",
	NeutroniumDust:           "Neutronium Dust",
	RareEarthMetals:          "Rare Earth Metals",
	SuperconductingAlloys:    "Superconducting Alloys",
	TachyonResonantGammaRays: "Tachyon Resonant Gamma Rays",
}

// All lists every real material, None excluded.
func All() []Type {
	out := make([]Type, 0, len(displayNames)-1)
	for t := IonizedHydrogenPlasma; int(t) < len(displayNames); t++ {
		out = append(out, t)
	}
	return out
}

// DisplayName returns the HUD label.
func (t Type) DisplayName() string {
	if int(t) < len(displayNames) {
		return displayNames[t]
	}
	return fmt.Sprintf("Type(%d)", t)
}

func (t Type) String() string { return t.DisplayName() }

func (t Type) MarshalText() ([]byte, error) { return []byte(t.DisplayName()), nil }

func (t *Type) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Parse accepts a display name, case-insensitively.
func Parse(name string) (Type, error) {
	for i, n := range displayNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return Type(i), nil
		}
	}
	return None, fmt.Errorf("unknown cargo type %q", name)
}
