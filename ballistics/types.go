package ballistics

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidInput is returned by Solve for a range or muzzle velocity it cannot divide by.
	ErrInvalidInput = errors.New("invalid solver input")
	// ErrInvalidProfile wraps every RifleProfile validation failure.
	ErrInvalidProfile = errors.New("invalid rifle profile")
)

// Variant is one of the supported rifle models.
type Variant string

const (
	VariantSC76  Variant = "SC-76 Thunderbolt (7.62mm)"
	VariantSC86  Variant = "SC-86 (.338 Lapua)"
	VariantSC127 Variant = "SC-127 (.50 BMG)"
)

// Variants lists every known rifle model in display order.
func Variants() []Variant {
	return []Variant{VariantSC76, VariantSC86, VariantSC127}
}

// Valid reports whether v is one of Variants.
func (v Variant) Valid() bool {
	switch v {
	case VariantSC76, VariantSC86, VariantSC127:
		return true
	}
	return false
}

// DragModel is the reference drag curve a ballistic coefficient is quoted against.
type DragModel string

const (
	G1 DragModel = "G1"
	G7 DragModel = "G7"
)

// RifleProfile describes a rifle and ammunition combination.
type RifleProfile struct {
	ID                   string    `json:"id"`
	Name                 string    `json:"name"`
	Variant              Variant   `json:"variant"`
	BarrelLength         float64   `json:"barrelLength"`   // inches
	MuzzleVelocity       float64   `json:"muzzleVelocity"` // fps
	TwistRate            float64   `json:"twistRate"`      // 1:x
	SightHeight          float64   `json:"sightHeight"`    // inches
	ZeroRange            float64   `json:"zeroRange"`      // yards
	ScopeModel           string    `json:"scopeModel"`
	ReticleType          string    `json:"reticleType"`
	BulletWeight         float64   `json:"bulletWeight"` // grains
	BallisticCoefficient float64   `json:"ballisticCoefficient"`
	BCType               DragModel `json:"bcType"`
}

// Validate checks the profile invariants. The returned error wraps ErrInvalidProfile.
func (p RifleProfile) Validate() error {
	var problems []string
	if strings.TrimSpace(p.ID) == "" {
		problems = append(problems, "id is required")
	}
	if !p.Variant.Valid() {
		problems = append(problems, fmt.Sprintf("unknown variant %q", p.Variant))
	}
	positive := []struct {
		name string
		val  float64
	}{
		{"barrelLength", p.BarrelLength},
		{"muzzleVelocity", p.MuzzleVelocity},
		{"zeroRange", p.ZeroRange},
		{"bulletWeight", p.BulletWeight},
		{"ballisticCoefficient", p.BallisticCoefficient},
	}
	for _, f := range positive {
		if !(f.val > 0) {
			problems = append(problems, f.name+" must be positive")
		}
	}
	if p.BCType != G1 && p.BCType != G7 {
		problems = append(problems, fmt.Sprintf("bcType must be G1 or G7, got %q", p.BCType))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidProfile, strings.Join(problems, "; "))
	}
	return nil
}

// EnvironmentalData holds the shot conditions. Humidity, altitude and inclination
// are carried for display and the assistant prompt; the solver does not read them.
type EnvironmentalData struct {
	Temperature float64 `json:"temperature"` // Fahrenheit
	Pressure    float64 `json:"pressure"`    // inHg
	Humidity    float64 `json:"humidity"`    // %
	Altitude    float64 `json:"altitude"`    // feet
	WindSpeed   float64 `json:"windSpeed"`   // mph
	WindAngle   float64 `json:"windAngle"`   // degrees, clock bearing to the shot line
	Inclination float64 `json:"inclination"` // degrees
}

// Solution is the firing solution for a single range.
type Solution struct {
	Range           float64 `json:"range"`
	ElevationMOA    float64 `json:"elevationMOA"`
	ElevationClicks int     `json:"elevationClicks"`
	WindageMOA      float64 `json:"windageMOA"`
	WindageClicks   int     `json:"windageClicks"` // positive is right
	TimeOfFlight    float64 `json:"timeOfFlight"`
	Velocity        int     `json:"velocity"`
	Energy          int     `json:"energy"`
}
