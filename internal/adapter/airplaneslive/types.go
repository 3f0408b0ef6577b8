package airplaneslive

import (
	"encoding/json"
	"time"

	"github.com/couchcryptid/nato-watch-service/internal/domain"
)

// airplanes.live v2 response types.

type response struct {
	AC    []json.RawMessage `json:"ac"`
	Msg   *string           `json:"msg"`
	Now   *float64          `json:"now"`
	Total *int              `json:"total"`
}

type entry struct {
	Hex          *string         `json:"hex"`
	Flight       *string         `json:"flight"`
	Registration *string         `json:"r"`
	Type         *string         `json:"t"`
	Desc         *string         `json:"desc"`
	Lat          *float64        `json:"lat"`
	Lon          *float64        `json:"lon"`
	AltBaro      json.RawMessage `json:"alt_baro"`
	GS           *float64        `json:"gs"`
	Track        *float64        `json:"track"`
	Squawk       *string         `json:"squawk"`
	Category     *string         `json:"category"`
	Seen         *float64        `json:"seen"`
	LastPosition *lastPosition   `json:"lastPosition"`
}

type lastPosition struct {
	Lat     *float64 `json:"lat"`
	Lon     *float64 `json:"lon"`
	SeenPos *float64 `json:"seen_pos"`
}

// normalize maps an entry to the common record, falling back to lastPosition for the position
// and its age. Military is left for the caller to decide.
func (e *entry) normalize(now time.Time) domain.Aircraft {
	lat, lon, seen := e.Lat, e.Lon, e.Seen
	if lp := e.LastPosition; lp != nil {
		if lat == nil {
			lat = lp.Lat
		}
		if lon == nil {
			lon = lp.Lon
		}
		if seen == nil {
			seen = lp.SeenPos
		}
	}

	id, hex := domain.IdentityFor(domain.TrimOrEmpty(e.Hex))
	var category string
	if e.Category != nil {
		category = *e.Category
	}
	return domain.Aircraft{
		ID:           id,
		Hex:          hex,
		Callsign:     domain.TrimOrEmpty(e.Flight),
		Registration: domain.TrimOrEmpty(e.Registration),
		TypeCode:     domain.TrimOrEmpty(e.Type),
		Description:  domain.TrimOrEmpty(e.Desc),
		Squawk:       domain.TrimOrEmpty(e.Squawk),
		Category:     category,
		Lat:          lat,
		Lon:          lon,
		Altitude:     domain.ParseAltitude(e.AltBaro),
		GroundSpeed:  e.GS,
		Track:        e.Track,
		SeenSeconds:  seen,
		Source:       domain.SourceAirplanesLive,
		Timestamp:    now,
	}
}
