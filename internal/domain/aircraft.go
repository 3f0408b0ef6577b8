package domain

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Provider names carried on every normalized record.
const (
	SourceADSBExchange  = "ADS-B Exchange"
	SourceOpenSky       = "OpenSky Network"
	SourceAirplanesLive = "airplanes.live"
)

// groundLiteral is the upstream sentinel for an aircraft on the ground.
const groundLiteral = "ground"

// Aircraft is the normalized record shared by every provider.
type Aircraft struct {
	ID       string
	Hex      string
	Callsign string

	Registration string
	TypeCode     string
	Description  string
	Squawk       string
	Category     string

	Lat *float64
	Lon *float64

	Altitude     Altitude
	GroundSpeed  *float64 // knots
	Track        *float64 // degrees
	VerticalRate *float64 // feet per minute
	SeenSeconds  *float64

	IsMilitary bool
	Loitering  bool

	Source    string
	Timestamp time.Time
}

// HasPosition reports whether both coordinates are present.
func (a *Aircraft) HasPosition() bool {
	return a.Lat != nil && a.Lon != nil
}

// Altitude is a barometric altitude in feet, or the "on ground" sentinel.
type Altitude struct {
	Feet     float64
	OnGround bool
	Known    bool
}

// AltitudeFeet returns a known airborne altitude.
func AltitudeFeet(ft float64) Altitude {
	return Altitude{Feet: ft, Known: true}
}

// AltitudeGround returns the on-ground sentinel.
func AltitudeGround() Altitude {
	return Altitude{OnGround: true, Known: true}
}

// MarshalJSON writes a number, "ground", or null.
func (a Altitude) MarshalJSON() ([]byte, error) {
	switch {
	case !a.Known:
		return []byte("null"), nil
	case a.OnGround:
		return json.Marshal(groundLiteral)
	default:
		return json.Marshal(a.Feet)
	}
}

// UnmarshalJSON accepts a number, "ground", or null. Any other string is treated as unknown.
func (a *Altitude) UnmarshalJSON(data []byte) error {
	*a = ParseAltitude(json.RawMessage(data))
	return nil
}

// ParseAltitude decodes an upstream alt_baro value. Missing, null, and malformed values are unknown.
func ParseAltitude(raw json.RawMessage) Altitude {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return Altitude{}
	}
	var ft float64
	if err := json.Unmarshal(raw, &ft); err == nil {
		return AltitudeFeet(ft)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil && strings.EqualFold(strings.TrimSpace(s), groundLiteral) {
		return AltitudeGround()
	}
	return Altitude{}
}

// Feed is one airplanes.live snapshot after normalization.
type Feed struct {
	Status      int
	CapturedAt  time.Time
	UpstreamNow *int64 // upstream generation time in ms since epoch
	Total       *int
	Message     *string // upstream msg, or a diagnostic for soft failures
	RateLimited bool
	Aircraft    []Aircraft
}

// OK reports whether the upstream answered with a 2xx status.
func (f *Feed) OK() bool {
	return f.Status >= 200 && f.Status < 300
}

// NowMillis returns the upstream generation time, or the capture time when the upstream omitted it.
// Cached snapshots therefore report the same value on every read.
func (f *Feed) NowMillis() int64 {
	if f.UpstreamNow != nil {
		return *f.UpstreamNow
	}
	return f.CapturedAt.UnixMilli()
}

// MilitaryCount counts records flagged military.
func (f *Feed) MilitaryCount() int {
	n := 0
	for i := range f.Aircraft {
		if f.Aircraft[i].IsMilitary {
			n++
		}
	}
	return n
}

// TrimOrEmpty trims whitespace from an optional upstream string.
func TrimOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

// IdentityFor returns (id, hex) for a record, generating a random ID when the hex is missing.
func IdentityFor(hex string) (string, string) {
	hex = strings.TrimSpace(hex)
	if hex != "" {
		return hex, hex
	}
	id := uuid.NewString()
	return id, id
}

// WithPosition drops records missing either coordinate. The input slice is reused.
func WithPosition(in []Aircraft) []Aircraft {
	out := in[:0]
	for i := range in {
		if in[i].HasPosition() {
			out = append(out, in[i])
		}
	}
	return out
}
