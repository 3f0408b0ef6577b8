// Package api defines the JSON documents served by the HTTP endpoints and read back by the poller.
package api

import (
	"time"

	"github.com/couchcryptid/nato-watch-service/internal/domain"
)

// Track is one aircraft in the regional /aircraft response.
type Track struct {
	ICAO         string          `json:"icao"`
	Callsign     *string         `json:"callsign,omitempty"`
	Latitude     float64         `json:"latitude"`
	Longitude    float64         `json:"longitude"`
	Altitude     domain.Altitude `json:"altitude"`
	GroundSpeed  *float64        `json:"ground_speed"`
	Track        *float64        `json:"track"`
	VerticalRate *float64        `json:"vertical_rate"`
	IsMilitary   bool            `json:"is_military"`
	Loitering    bool            `json:"loitering"`
	Source       string          `json:"source"`
	Timestamp    time.Time       `json:"timestamp"`
}

// Meta summarizes a regional response.
type Meta struct {
	Region    string    `json:"region"`
	Total     int       `json:"total"`
	Loitering int       `json:"loitering"`
	Timestamp time.Time `json:"timestamp"`
}

// AircraftResponse is the /aircraft document. Error is set only on failure.
type AircraftResponse struct {
	Error    string  `json:"error,omitempty"`
	Aircraft []Track `json:"aircraft"`
	Meta     Meta    `json:"meta"`
}

// NewTrack maps a positioned record to its regional wire form.
func NewTrack(a *domain.Aircraft) Track {
	t := Track{
		ICAO:         a.Hex,
		Altitude:     a.Altitude,
		GroundSpeed:  a.GroundSpeed,
		Track:        a.Track,
		VerticalRate: a.VerticalRate,
		IsMilitary:   a.IsMilitary,
		Loitering:    a.Loitering,
		Source:       a.Source,
		Timestamp:    a.Timestamp,
	}
	if a.Callsign != "" {
		cs := a.Callsign
		t.Callsign = &cs
	}
	if a.HasPosition() {
		t.Latitude, t.Longitude = *a.Lat, *a.Lon
	}
	return t
}

// NewAircraftResponse builds a successful /aircraft document.
func NewAircraftResponse(aircraft []domain.Aircraft, region string, loitering int, ts time.Time) AircraftResponse {
	tracks := make([]Track, 0, len(aircraft))
	for i := range aircraft {
		if aircraft[i].HasPosition() {
			tracks = append(tracks, NewTrack(&aircraft[i]))
		}
	}
	return AircraftResponse{
		Aircraft: tracks,
		Meta: Meta{
			Region:    region,
			Total:     len(tracks),
			Loitering: loitering,
			Timestamp: ts.UTC(),
		},
	}
}

// NewAircraftError builds a failed /aircraft document with an empty list and zero counts.
func NewAircraftError(msg, region string, ts time.Time) AircraftResponse {
	return AircraftResponse{
		Error:    msg,
		Aircraft: []Track{},
		Meta:     Meta{Region: region, Timestamp: ts.UTC()},
	}
}

// ErrorResponse is the body for failures outside the regional endpoint.
type ErrorResponse struct {
	OK     bool   `json:"ok"`
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}
