// Package catalog holds the fixed rifle, scope and condition presets the service starts with.
package catalog

import (
	"strings"

	"github.com/padraicbc/thunderbolt/ballistics"
)

// Scope is an optic the profile can reference by name.
type Scope struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Adjustment float64 `json:"adjustment"` // MOA per click
}

var scopes = []Scope{
	{ID: "mark4hd-4.5-18", Name: "Mark 4HD 4.5-18x52", Adjustment: 0.25},
	{ID: "mark4hd-6-24", Name: "Mark 4HD 6-24x52", Adjustment: 0.25},
	{ID: "mark4hd-8-32", Name: "Mark 4HD 8-32x56", Adjustment: 0.25},
	{ID: "vx6hd-3-18", Name: "VX-6HD 3-18x50", Adjustment: 0.25},
	{ID: "vx6hd-4-24", Name: "VX-6HD 4-24x52", Adjustment: 0.25},
	{ID: "vx3hd-4.5-14", Name: "VX-3HD 4.5-14x40", Adjustment: 0.25},
	{ID: "vxfreedom-3-9", Name: "VX-Freedom 3-9x40", Adjustment: 0.25},
}

// Scopes returns a copy of the scope catalogue.
func Scopes() []Scope {
	out := make([]Scope, len(scopes))
	copy(out, scopes)
	return out
}

// ScopeByName looks a scope up by display name, case-insensitively.
func ScopeByName(name string) (Scope, bool) {
	name = strings.TrimSpace(name)
	for _, s := range scopes {
		if strings.EqualFold(s.Name, name) {
			return s, true
		}
	}
	return Scope{}, false
}

// DefaultProfileID is the profile that is active on startup.
const DefaultProfileID = "default-sc76"

// DefaultProfiles returns the profiles the session is seeded with.
func DefaultProfiles() []ballistics.RifleProfile {
	return []ballistics.RifleProfile{
		{
			ID:                   DefaultProfileID,
			Name:                 "Standard SC-76",
			Variant:              ballistics.VariantSC76,
			BarrelLength:         26,
			MuzzleVelocity:       2650,
			TwistRate:            10,
			SightHeight:          1.5,
			ZeroRange:            100,
			ScopeModel:           "Mark 4HD 6-24x52",
			ReticleType:          "TMR",
			BulletWeight:         168,
			BallisticCoefficient: 0.462,
			BCType:               ballistics.G1,
		},
	}
}

// StandardEnvironment is the starting condition set: standard atmosphere with a
// light full-value wind from the right.
func StandardEnvironment() ballistics.EnvironmentalData {
	return ballistics.EnvironmentalData{
		Temperature: 59,
		Pressure:    29.92,
		Humidity:    50,
		Altitude:    0,
		WindSpeed:   5,
		WindAngle:   90,
		Inclination: 0,
	}
}
