package api

import "github.com/couchcryptid/nato-watch-service/internal/domain"

// RegionView is a map view entry in the /regions document. BBox is [west, south, east, north].
type RegionView struct {
	Key    string     `json:"key"`
	Name   string     `json:"name"`
	Center [2]float64 `json:"center"` // [lat, lon]
	Zoom   int        `json:"zoom"`
	BBox   [4]float64 `json:"bbox"`
	Status string     `json:"status,omitempty"`
}

// RegionsResponse lists map views and hotspots.
type RegionsResponse struct {
	Regions  []RegionView `json:"regions"`
	Hotspots []RegionView `json:"hotspots"`
}

func newRegionView(r domain.Region) RegionView {
	return RegionView{
		Key:    r.Key,
		Name:   r.Name,
		Center: [2]float64{r.CenterLat, r.CenterLon},
		Zoom:   r.Zoom,
		BBox:   [4]float64{r.Bounds.West, r.Bounds.South, r.Bounds.East, r.Bounds.North},
	}
}

// NewRegionsResponse renders the static region and hotspot tables.
func NewRegionsResponse() RegionsResponse {
	regions := domain.Regions()
	hotspots := domain.Hotspots()
	resp := RegionsResponse{
		Regions:  make([]RegionView, 0, len(regions)),
		Hotspots: make([]RegionView, 0, len(hotspots)),
	}
	for _, r := range regions {
		resp.Regions = append(resp.Regions, newRegionView(r))
	}
	for _, h := range hotspots {
		v := newRegionView(h.Region)
		v.Status = string(h.Status)
		resp.Hotspots = append(resp.Hotspots, v)
	}
	return resp
}
