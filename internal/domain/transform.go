package domain

import (
	"math"
	"strings"
)

// Conversion factors from SI units reported by state-vector providers.
const (
	knotsPerMetrePerSecond      = 1.94384
	feetPerMinutePerMetreSecond = 196.85
	feetPerMetre                = 3.28084
	kilometresPerNauticalMile   = 1.852
)

// RoundHalfUp rounds to the nearest integer with ties toward positive infinity, so -2.5 becomes -2.
func RoundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}

// MetresPerSecondToKnots converts a velocity to whole knots.
func MetresPerSecondToKnots(v float64) float64 {
	return RoundHalfUp(v * knotsPerMetrePerSecond)
}

// MetresPerSecondToFeetPerMinute converts a climb rate to whole feet per minute.
func MetresPerSecondToFeetPerMinute(v float64) float64 {
	return RoundHalfUp(v * feetPerMinutePerMetreSecond)
}

// MetresToFeet converts an altitude to whole feet.
func MetresToFeet(m float64) float64 {
	return RoundHalfUp(m * feetPerMetre)
}

// NauticalMilesToKilometres converts a radius to whole kilometres.
func NauticalMilesToKilometres(nm float64) float64 {
	return RoundHalfUp(nm * kilometresPerNauticalMile)
}

// ConvertPtr applies fn to a present value and keeps absence as nil.
func ConvertPtr(v *float64, fn func(float64) float64) *float64 {
	if v == nil {
		return nil
	}
	out := fn(*v)
	return &out
}

// ClampRadiusNM bounds a query radius to the [1, 250] nautical mile window the upstreams accept.
func ClampRadiusNM(r float64) float64 {
	if math.IsNaN(r) {
		return MaxRadiusNM
	}
	return math.Max(MinRadiusNM, math.Min(MaxRadiusNM, r))
}

// Radius limits shared by point queries.
const (
	MinRadiusNM = 1
	MaxRadiusNM = 250
)

// normalizeToken upper-cases and trims a value before list matching.
func normalizeToken(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
