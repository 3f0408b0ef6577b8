package domain

import "strings"

// Region is a named map view the dashboard can focus.
type Region struct {
	Key       string
	Name      string
	CenterLat float64
	CenterLon float64
	Zoom      int
	Bounds    BBox
}

// HotspotStatus ranks how active a hotspot currently is.
type HotspotStatus string

const (
	StatusCritical HotspotStatus = "critical"
	StatusHigh     HotspotStatus = "high"
	StatusElevated HotspotStatus = "elevated"
)

// Hotspot is an area of interest highlighted on the dashboard.
type Hotspot struct {
	Region
	Status HotspotStatus
}

// DefaultRegionKey is used when a query names no region.
const DefaultRegionKey = "WORLD"

var regions = []Region{
	{Key: "WORLD", Name: "World Overview", CenterLat: 20, CenterLon: 0, Zoom: 2, Bounds: WorldBBox},
	{Key: "EE_RU_BORDER", Name: "EE/RU Border", CenterLat: 58, CenterLon: 27, Zoom: 6, Bounds: BBox{20, 55, 35, 61}},
	{Key: "AROUND_RU", Name: "Around Russia", CenterLat: 62.5, CenterLon: 100, Zoom: 3, Bounds: BBox{20, 45, 180, 80}},
	{Key: "BLACKSEA", Name: "Black Sea", CenterLat: 45, CenterLon: 32.5, Zoom: 6, Bounds: BBox{20, 40, 45, 50}},
	{Key: "BALTIC", Name: "Baltic Sea", CenterLat: 57.5, CenterLon: 22.5, Zoom: 5, Bounds: BBox{10, 50, 35, 65}},
}

// Bounds for areas that can be queried by key but have no map view of their own.
var namedBounds = map[string]BBox{
	"UKRAINE_RU":      {28, 44, 42, 53},
	"BLACK_SEA":       {27, 40, 42, 47},
	"IRAN_GULF":       {44, 22, 60, 32},
	"TAIWAN":          {115, 20, 125, 28},
	"SOUTH_CHINA_SEA": {105, 4, 122, 22},
	"GREENLAND":       {-75, 59, -10, 84},
	"ICELAND_GIUK":    {-35, 58, -5, 70},
	"VENEZUELA":       {-75, 2, -58, 14},
	"RED_SEA":         {35, 10, 50, 20},
	"NORTH_KOREA":     {123, 36, 131, 43},
	"SYRIA_IRAQ":      {34, 30, 48, 40},
}

var hotspots = []Hotspot{
	{Region: Region{Key: "ukraine", Name: "UKRAINE FRONT", CenterLat: 49, CenterLon: 32, Zoom: 6, Bounds: BBox{22, 44, 42, 53}}, Status: StatusCritical},
	{Region: Region{Key: "baltic", Name: "BALTIC OPS", CenterLat: 57, CenterLon: 24, Zoom: 5, Bounds: BBox{10, 53, 32, 62}}, Status: StatusHigh},
	{Region: Region{Key: "blacksea", Name: "BLACK SEA", CenterLat: 43, CenterLon: 35, Zoom: 6, Bounds: BBox{27, 40, 42, 47}}, Status: StatusHigh},
	{Region: Region{Key: "taiwan", Name: "TAIWAN STRAIT", CenterLat: 24, CenterLon: 121, Zoom: 6, Bounds: BBox{115, 20, 130, 28}}, Status: StatusElevated},
	{Region: Region{Key: "gulf", Name: "PERSIAN GULF", CenterLat: 27, CenterLon: 52, Zoom: 5, Bounds: BBox{44, 22, 62, 32}}, Status: StatusElevated},
	{Region: Region{Key: "redsea", Name: "RED SEA OPS", CenterLat: 18, CenterLon: 40, Zoom: 5, Bounds: BBox{32, 10, 50, 25}}, Status: StatusHigh},
}

// Regions returns a copy of the map view table.
func Regions() []Region {
	return append([]Region(nil), regions...)
}

// Hotspots returns a copy of the hotspot table.
func Hotspots() []Hotspot {
	return append([]Hotspot(nil), hotspots...)
}

// RegionBounds looks up a region or named area by key (case-insensitive).
func RegionBounds(key string) (BBox, bool) {
	k := strings.ToUpper(strings.TrimSpace(key))
	for _, r := range regions {
		if r.Key == k {
			return r.Bounds, true
		}
	}
	b, ok := namedBounds[k]
	return b, ok
}

// ResolveBBox picks the explicit box when given, then the region table, then the whole world.
func ResolveBBox(explicit *BBox, region string) BBox {
	if explicit != nil {
		return *explicit
	}
	if b, ok := RegionBounds(region); ok {
		return b
	}
	return WorldBBox
}

// HotspotCounts counts positioned aircraft inside each hotspot, keyed by hotspot key.
func HotspotCounts(aircraft []Aircraft) map[string]int {
	counts := make(map[string]int, len(hotspots))
	for _, h := range hotspots {
		counts[h.Key] = 0
	}
	for i := range aircraft {
		a := &aircraft[i]
		if !a.HasPosition() {
			continue
		}
		for _, h := range hotspots {
			if h.Bounds.Contains(*a.Lat, *a.Lon) {
				counts[h.Key]++
			}
		}
	}
	return counts
}
