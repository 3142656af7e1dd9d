package plan

import (
	"fmt"

	"github.com/passage-nav/console/geojson"
	"github.com/passage-nav/console/latlon"
)

const (
	AlgoGreatCircle = "great_circle"
	AlgoAStar       = "astar"
)

// RouteResult is the planned path. Points is ordered origin to destination
// and has at least two entries.
type RouteResult struct {
	Points     []latlon.LatLon `json:"points"`
	DistanceNm float64         `json:"distance_nm"`
	Algo       string          `json:"algo"`
}

// ParseResult extracts the route from a service response. The first feature
// must carry a line geometry of at least two positions and a distance_nm
// property; a missing algo property implies a great-circle route.
func ParseResult(fc *geojson.FeatureCollection) (*RouteResult, error) {
	if fc == nil || len(fc.Features) == 0 {
		return nil, fmt.Errorf("response has no features")
	}

	feature := fc.Features[0]
	coords, err := feature.Geometry.LineString()
	if err != nil {
		return nil, fmt.Errorf("response geometry: %v", err)
	}
	if len(coords) < 2 {
		return nil, fmt.Errorf("response geometry has %d points", len(coords))
	}

	distance, ok := feature.FloatProperty("distance_nm")
	if !ok {
		return nil, fmt.Errorf("response missing distance_nm")
	}

	algo, ok := feature.StringProperty("algo")
	if !ok || algo == "" {
		algo = AlgoGreatCircle
	}

	points := make([]latlon.LatLon, len(coords))
	for i, c := range coords {
		points[i] = latlon.LatLon{Lat: c[1], Lon: c[0]}
	}

	return &RouteResult{Points: points, DistanceNm: distance, Algo: algo}, nil
}
