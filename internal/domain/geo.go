package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const earthRadiusNauticalMiles = 3443.918

// BBox is a rectangular query area in degrees.
type BBox struct {
	West  float64
	South float64
	East  float64
	North float64
}

// WorldBBox covers the whole globe.
var WorldBBox = BBox{West: -180, South: -90, East: 180, North: 90}

// ParseBBox parses "west,south,east,north". Values must be finite, within range, and ordered
// south <= north; west may exceed east only for boxes that cross the antimeridian.
func ParseBBox(s string) (BBox, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return BBox{}, fmt.Errorf("%w: bbox needs 4 comma-separated values, got %d", ErrInvalidQuery, len(parts))
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return BBox{}, fmt.Errorf("%w: bbox value %q is not a number", ErrInvalidQuery, p)
		}
		v[i] = f
	}
	b := BBox{West: v[0], South: v[1], East: v[2], North: v[3]}
	if b.West < -180 || b.East > 180 || b.South < -90 || b.North > 90 || b.South > b.North {
		return BBox{}, fmt.Errorf("%w: bbox %s out of range", ErrInvalidQuery, s)
	}
	return b, nil
}

// String formats the box the way ParseBBox reads it.
func (b BBox) String() string {
	return fmt.Sprintf("%g,%g,%g,%g", b.West, b.South, b.East, b.North)
}

// Contains reports whether a point lies inside the box, edges included.
func (b BBox) Contains(lat, lon float64) bool {
	if lat < b.South || lat > b.North {
		return false
	}
	if b.West <= b.East {
		return lon >= b.West && lon <= b.East
	}
	return lon >= b.West || lon <= b.East
}

// Center returns the midpoint (lat, lon) of the box.
func (b BBox) Center() (float64, float64) {
	lat := (b.South + b.North) / 2
	if b.West <= b.East {
		return lat, (b.West + b.East) / 2
	}
	lon := (b.West + b.East + 360) / 2
	if lon > 180 {
		lon -= 360
	}
	return lat, lon
}

// CoveringRadiusNM is the distance from the center to the farthest corner.
func (b BBox) CoveringRadiusNM() float64 {
	lat, lon := b.Center()
	corners := [4][2]float64{
		{b.South, b.West}, {b.South, b.East}, {b.North, b.West}, {b.North, b.East},
	}
	var r float64
	for _, c := range corners {
		r = math.Max(r, DistanceNM(lat, lon, c[0], c[1]))
	}
	return r
}

// DistanceNM is the great-circle distance between two points in nautical miles.
func DistanceNM(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := lat1 * math.Pi / 180
	p2 := lat2 * math.Pi / 180
	dp := (lat2 - lat1) * math.Pi / 180
	dl := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dp/2)*math.Sin(dp/2) + math.Cos(p1)*math.Cos(p2)*math.Sin(dl/2)*math.Sin(dl/2)
	return earthRadiusNauticalMiles * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
