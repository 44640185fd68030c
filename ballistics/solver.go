// Package ballistics implements a simplified point-mass firing solution.
//
// The model is closed form: average velocity is taken as 90% of muzzle velocity,
// drop is free fall over that time of flight and wind drift uses the lag between
// that time and the vacuum time of flight. There are no drag tables.
package ballistics

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

const (
	gravity        = 32.174 // ft/s^2
	stdAirDensity  = 0.0765 // lb/ft^3 at 59F, 29.92 inHg
	rankineOffset  = 459.67
	mphToFps       = 1.46667
	avgVelocity    = 0.9
	velocityFactor = 0.8

	// ClickValue is the MOA per scope click. It is fixed regardless of the scope
	// catalogue entry on the profile.
	ClickValue = 0.25

	// PlaceholderEnergy is reported for every solution; kinetic energy is not modelled.
	PlaceholderEnergy = 2500

	TableStart = 100
	TableEnd   = 1000
	TableStep  = 50

	// maxMagnitude bounds values that are rounded to int.
	maxMagnitude = 1 << 53
)

// AirData is the density correction derived from the environment.
type AirData struct {
	DensityFactor float64 `json:"densityFactor"`
	EffectiveBC   float64 `json:"effectiveBC"`
}

// Atmosphere returns the air density ratio against the standard atmosphere and the
// profile's ballistic coefficient scaled by it.
func Atmosphere(p RifleProfile, env EnvironmentalData) AirData {
	tempAbs := env.Temperature + rankineOffset
	rho := (env.Pressure * 0.491) / (0.37 * tempAbs)
	df := rho / stdAirDensity
	return AirData{
		DensityFactor: df,
		EffectiveBC:   p.BallisticCoefficient * df,
	}
}

// Finite reports whether both values are real numbers.
func (a AirData) Finite() bool {
	return isFinite(a.DensityFactor) && isFinite(a.EffectiveBC)
}

// Solve computes the firing solution at rangeYd yards.
// A non-positive or non-finite range, or a non-positive muzzle velocity, yields a
// zero Solution and an error wrapping ErrInvalidInput. So do inputs that are
// accepted individually but drive the air density or any output out of range,
// such as absolute zero or a vanishingly small muzzle velocity.
func Solve(rangeYd float64, p RifleProfile, env EnvironmentalData) (Solution, error) {
	if !(rangeYd > 0) || math.IsInf(rangeYd, 0) {
		return Solution{}, fmt.Errorf("%w: range must be positive, got %v", ErrInvalidInput, rangeYd)
	}
	v0 := p.MuzzleVelocity
	if !(v0 > 0) || math.IsInf(v0, 0) {
		return Solution{}, fmt.Errorf("%w: muzzle velocity must be positive, got %v", ErrInvalidInput, v0)
	}

	rangeFt := rangeYd * 3

	// Not used further until drag tables exist.
	if air := Atmosphere(p, env); !air.Finite() {
		return Solution{}, fmt.Errorf("%w: air density is undefined at %vF, %v inHg",
			ErrInvalidInput, env.Temperature, env.Pressure)
	}

	tof := rangeFt / (v0 * avgVelocity)
	dropInches := 0.5 * gravity * tof * tof * 12

	moaAtRange := rangeYd / 100
	elevationMOA := dropInches / moaAtRange

	windFps := env.WindSpeed * mphToFps
	crossWind := windFps * math.Sin(env.WindAngle*math.Pi/180)
	windageInches := crossWind * (tof - rangeFt/v0) * 12
	windageMOA := windageInches / moaAtRange
	velocity := v0 * velocityFactor

	for _, v := range []float64{tof, elevationMOA / ClickValue, windageMOA / ClickValue, velocity} {
		if !isFinite(v) || math.Abs(v) > maxMagnitude {
			return Solution{}, fmt.Errorf("%w: no usable solution at %v yd for %v fps",
				ErrInvalidInput, rangeYd, v0)
		}
	}

	return Solution{
		Range:           rangeYd,
		ElevationMOA:    roundTo(elevationMOA, 2),
		ElevationClicks: Clicks(elevationMOA),
		WindageMOA:      roundTo(windageMOA, 2),
		WindageClicks:   Clicks(windageMOA),
		TimeOfFlight:    roundTo(tof, 3),
		Velocity:        roundHalfUp(velocity),
		Energy:          PlaceholderEnergy,
	}, nil
}

// Sweep solves every table range from TableStart to TableEnd inclusive, ascending.
func Sweep(p RifleProfile, env EnvironmentalData) ([]Solution, error) {
	table := make([]Solution, 0, (TableEnd-TableStart)/TableStep+1)
	for r := TableStart; r <= TableEnd; r += TableStep {
		s, err := Solve(float64(r), p, env)
		if err != nil {
			return nil, err
		}
		table = append(table, s)
	}
	return table, nil
}

// NearestTableRange returns the table row closest to rangeYd.
// The result may fall outside the table for ranges beyond its ends.
func NearestTableRange(rangeYd float64) int {
	return roundHalfUp(rangeYd/TableStep) * TableStep
}

// Clicks converts an unrounded MOA correction to scope clicks.
func Clicks(moa float64) int {
	return roundHalfUp(moa / ClickValue)
}

// roundHalfUp rounds .5 toward positive infinity, so -4.5 becomes -4.
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

// roundTo rounds the exact binary value of x to places decimals, halves away from
// zero, and returns the nearest float64. 0.015 is 0.01499... in binary so it
// becomes 0.01, while 0.125 is exact and becomes 0.13.
func roundTo(x float64, places int) float64 {
	if x == 0 || !isFinite(x) {
		return x
	}
	const prec = 2200 // holds any float64 times 10^places plus one half exactly

	scale := new(big.Float).SetPrec(prec).SetInt(
		new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(places)), nil))
	v := new(big.Float).SetPrec(prec).SetFloat64(math.Abs(x))
	v.Mul(v, scale).Add(v, big.NewFloat(0.5))
	n, _ := v.Int(nil)

	digits := n.String()
	if len(digits) <= places {
		digits = strings.Repeat("0", places-len(digits)+1) + digits
	}
	if places > 0 {
		cut := len(digits) - places
		digits = digits[:cut] + "." + digits[cut:]
	}
	f, err := strconv.ParseFloat(digits, 64)
	if err != nil || f == 0 {
		return 0
	}
	return math.Copysign(f, x)
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
