package api

import (
	"time"

	"github.com/couchcryptid/nato-watch-service/internal/domain"
)

// RateLimitNote is attached to point responses to explain short-lived caching.
const RateLimitNote = "Upstream is rate-limited; this endpoint caches briefly."

// AirspaceAircraft is one aircraft in the /airspace and /mil responses.
type AirspaceAircraft struct {
	ID         string          `json:"id"`
	Hex        string          `json:"hex"`
	Callsign   *string         `json:"callsign"`
	Reg        *string         `json:"reg"`
	Type       *string         `json:"type"`
	Desc       *string         `json:"desc"`
	Lat        *float64        `json:"lat"`
	Lon        *float64        `json:"lon"`
	AltBaro    domain.Altitude `json:"alt_baro"`
	GS         *float64        `json:"gs"`
	Track      *float64        `json:"track"`
	Squawk     *string         `json:"squawk"`
	Category   *string         `json:"category"`
	SeenS      *float64        `json:"seen_s"`
	IsMilitary bool            `json:"is_military"`
	Source     string          `json:"source"`
}

// AirspaceResponse is shared by /airspace (point mode) and /mil (military mode).
type AirspaceResponse struct {
	OK            bool               `json:"ok"`
	Source        string             `json:"source"`
	Endpoint      string             `json:"endpoint,omitempty"`
	RadiusNM      *float64           `json:"radius_nm,omitempty"`
	RadiusKM      *float64           `json:"radius_km,omitempty"`
	Now           int64              `json:"now"`
	Total         int                `json:"total"`
	Aircraft      []AirspaceAircraft `json:"aircraft"`
	MilitaryCount *int               `json:"military_count,omitempty"`
	UpstreamMsg   *string            `json:"upstream_msg"`
	RateLimited   bool               `json:"rate_limited"`
	RateLimitNote string             `json:"rate_limit_note,omitempty"`
}

// NowTime converts the millisecond timestamp.
func (r *AirspaceResponse) NowTime() time.Time {
	return time.UnixMilli(r.Now).UTC()
}

// ToDomain rebuilds normalized records from the wire form.
func (r *AirspaceResponse) ToDomain() []domain.Aircraft {
	out := make([]domain.Aircraft, 0, len(r.Aircraft))
	for i := range r.Aircraft {
		w := &r.Aircraft[i]
		out = append(out, domain.Aircraft{
			ID:           w.ID,
			Hex:          w.Hex,
			Callsign:     deref(w.Callsign),
			Registration: deref(w.Reg),
			TypeCode:     deref(w.Type),
			Description:  deref(w.Desc),
			Squawk:       deref(w.Squawk),
			Category:     deref(w.Category),
			Lat:          w.Lat,
			Lon:          w.Lon,
			Altitude:     w.AltBaro,
			GroundSpeed:  w.GS,
			Track:        w.Track,
			SeenSeconds:  w.SeenS,
			IsMilitary:   w.IsMilitary,
			Source:       w.Source,
			Timestamp:    r.NowTime(),
		})
	}
	return out
}

// NewAirspaceAircraft maps a record to its wire form. Empty strings become null.
func NewAirspaceAircraft(a *domain.Aircraft) AirspaceAircraft {
	return AirspaceAircraft{
		ID:         a.ID,
		Hex:        a.Hex,
		Callsign:   nullable(a.Callsign),
		Reg:        nullable(a.Registration),
		Type:       nullable(a.TypeCode),
		Desc:       nullable(a.Description),
		Lat:        a.Lat,
		Lon:        a.Lon,
		AltBaro:    a.Altitude,
		GS:         a.GroundSpeed,
		Track:      a.Track,
		Squawk:     nullable(a.Squawk),
		Category:   nullable(a.Category),
		SeenS:      a.SeenSeconds,
		IsMilitary: a.IsMilitary,
		Source:     a.Source,
	}
}

func airspaceAircraft(feed *domain.Feed) []AirspaceAircraft {
	out := make([]AirspaceAircraft, 0, len(feed.Aircraft))
	for i := range feed.Aircraft {
		if feed.Aircraft[i].HasPosition() {
			out = append(out, NewAirspaceAircraft(&feed.Aircraft[i]))
		}
	}
	return out
}

// NewPointResponse builds the /airspace document. total prefers the upstream's own count.
func NewPointResponse(feed *domain.Feed, radiusNM float64) AirspaceResponse {
	aircraft := airspaceAircraft(feed)
	total := len(aircraft)
	if feed.Total != nil {
		total = *feed.Total
	}
	mil := feed.MilitaryCount()
	km := domain.NauticalMilesToKilometres(radiusNM)
	return AirspaceResponse{
		OK:            feed.OK(),
		Source:        domain.SourceAirplanesLive,
		RadiusNM:      &radiusNM,
		RadiusKM:      &km,
		Now:           feed.NowMillis(),
		Total:         total,
		Aircraft:      aircraft,
		MilitaryCount: &mil,
		UpstreamMsg:   feed.Message,
		RateLimited:   feed.RateLimited,
		RateLimitNote: RateLimitNote,
	}
}

// NewMilitaryResponse builds the /mil document. ok is false when rate limited.
func NewMilitaryResponse(feed *domain.Feed) AirspaceResponse {
	aircraft := airspaceAircraft(feed)
	return AirspaceResponse{
		OK:          feed.OK() && !feed.RateLimited,
		Source:      domain.SourceAirplanesLive,
		Endpoint:    "/mil",
		Now:         feed.NowMillis(),
		Total:       len(aircraft),
		Aircraft:    aircraft,
		UpstreamMsg: feed.Message,
		RateLimited: feed.RateLimited,
	}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
