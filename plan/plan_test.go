package plan

import (
	"errors"
	"math"
	"testing"

	"github.com/passage-nav/console/geojson"
	"github.com/passage-nav/console/latlon"
)

func TestValidate(t *testing.T) {
	ok := latlon.LatLon{Lat: 37.7749, Lon: -122.4194}

	if err := Validate(ok, latlon.LatLon{Lat: -90, Lon: 180}); err != nil {
		t.Errorf("Validate at range edges = %v; want nil", err)
	}

	cases := []struct {
		origin, destination latlon.LatLon
		point, axis         string
	}{
		{latlon.LatLon{Lat: 91, Lon: 0}, ok, "origin", "lat"},
		{latlon.LatLon{Lat: -90.5, Lon: 0}, ok, "origin", "lat"},
		{latlon.LatLon{Lat: 0, Lon: 181}, ok, "origin", "lon"},
		{ok, latlon.LatLon{Lat: 200, Lon: 0}, "destination", "lat"},
		{ok, latlon.LatLon{Lat: 0, Lon: -180.1}, "destination", "lon"},
		{latlon.LatLon{Lat: math.NaN(), Lon: 0}, ok, "origin", "lat"},
	}
	for _, c := range cases {
		err := Validate(c.origin, c.destination)
		var ice *InvalidCoordinateError
		if !errors.As(err, &ice) {
			t.Errorf("Validate(%v, %v) = %v; want InvalidCoordinateError", c.origin, c.destination, err)
			continue
		}
		if ice.Point != c.point || ice.Axis != c.axis {
			t.Errorf("Validate(%v, %v) flagged %s %s; want %s %s", c.origin, c.destination, ice.Point, ice.Axis, c.point, c.axis)
		}
	}
}

func TestBuildDirect(t *testing.T) {
	origin := latlon.LatLon{Lat: 37.7749, Lon: -122.4194}
	destination := latlon.LatLon{Lat: 34.0522, Lon: -118.2437}

	req := Build(origin, destination, Weights{}, false)
	if req.Endpoint() != EndpointPlan {
		t.Errorf("endpoint = %q; want %q", req.Endpoint(), EndpointPlan)
	}
	direct, ok := req.(Direct)
	if !ok {
		t.Fatalf("Build(avoidance=false) = %T; want Direct", req)
	}
	if direct.Origin != origin || direct.Destination != destination {
		t.Errorf("Direct = %+v; want origin %v destination %v", direct, origin, destination)
	}
}

func TestBuildAvoid(t *testing.T) {
	origin := latlon.LatLon{Lat: 37.7749, Lon: -122.4194}
	destination := latlon.LatLon{Lat: 34.0522, Lon: -118.2437}
	w := Weights{Piracy: 0.8, Storm: 0.2, DepthPenaltyNm: 15}

	req := Build(origin, destination, w, true)
	if req.Endpoint() != EndpointPlanAvoid {
		t.Errorf("endpoint = %q; want %q", req.Endpoint(), EndpointPlanAvoid)
	}
	avoid, ok := req.(Avoid)
	if !ok {
		t.Fatalf("Build(avoidance=true) = %T; want Avoid", req)
	}
	if len(avoid.Hazards) != 1 {
		t.Fatalf("len(Hazards) = %d; want 1", len(avoid.Hazards))
	}

	z := avoid.Hazards[0]
	if math.Abs(z.Lat-35.91355) > 1e-9 || math.Abs(z.Lon - -120.33155) > 1e-9 {
		t.Errorf("hazard center = (%f, %f); want (35.91355, -120.33155)", z.Lat, z.Lon)
	}
	if z.RadiusNm != 200 {
		t.Errorf("hazard radius = %f; want 200", z.RadiusNm)
	}
	if avoid.GridStepDeg != GridStepDeg || avoid.PenaltyNm != PenaltyNm || avoid.MaxNodes != MaxNodes {
		t.Errorf("grid config = (%f, %f, %d); want fixed constants", avoid.GridStepDeg, avoid.PenaltyNm, avoid.MaxNodes)
	}
	if avoid.PiracyWeight != 0.8 || avoid.StormWeight != 0.2 || avoid.DepthPenaltyNm != 15 {
		t.Errorf("weights = (%f, %f, %f); want (0.8, 0.2, 15)", avoid.PiracyWeight, avoid.StormWeight, avoid.DepthPenaltyNm)
	}
}

func TestParseResult(t *testing.T) {
	fc := &geojson.FeatureCollection{
		Type: "FeatureCollection",
		Features: []geojson.Feature{
			{
				Type:     "Feature",
				Geometry: geojson.NewLineString([][]float64{{-122.4194, 37.7749}, {-118.2437, 34.0522}}),
				Properties: map[string]interface{}{
					"distance_nm": 302.4,
					"algo":        "astar",
				},
			},
		},
	}

	res, err := ParseResult(fc)
	if err != nil {
		t.Fatalf("ParseResult() error = %v", err)
	}
	if res.Algo != AlgoAStar {
		t.Errorf("algo = %q; want %q", res.Algo, AlgoAStar)
	}
	if res.DistanceNm != 302.4 {
		t.Errorf("distance = %f; want 302.4", res.DistanceNm)
	}
	if len(res.Points) != 2 || res.Points[0].Lat != 37.7749 || res.Points[0].Lon != -122.4194 {
		t.Errorf("points = %v; want lat/lon from lon/lat positions", res.Points)
	}
}

func TestParseResultDefaultsAlgo(t *testing.T) {
	fc := &geojson.FeatureCollection{
		Features: []geojson.Feature{
			{
				Geometry:   geojson.NewLineString([][]float64{{0, 0}, {1, 1}}),
				Properties: map[string]interface{}{"distance_nm": 84.9},
			},
		},
	}
	res, err := ParseResult(fc)
	if err != nil {
		t.Fatalf("ParseResult() error = %v", err)
	}
	if res.Algo != AlgoGreatCircle {
		t.Errorf("algo = %q; want %q", res.Algo, AlgoGreatCircle)
	}
}

func TestParseResultRejectsMalformed(t *testing.T) {
	if _, err := ParseResult(&geojson.FeatureCollection{}); err == nil {
		t.Error("ParseResult(no features) = nil error")
	}

	short := &geojson.FeatureCollection{
		Features: []geojson.Feature{
			{
				Geometry:   geojson.NewLineString([][]float64{{0, 0}}),
				Properties: map[string]interface{}{"distance_nm": 1.0},
			},
		},
	}
	if _, err := ParseResult(short); err == nil {
		t.Error("ParseResult(single point) = nil error")
	}

	noDistance := &geojson.FeatureCollection{
		Features: []geojson.Feature{
			{Geometry: geojson.NewLineString([][]float64{{0, 0}, {1, 1}})},
		},
	}
	if _, err := ParseResult(noDistance); err == nil {
		t.Error("ParseResult(missing distance_nm) = nil error")
	}

	point := &geojson.FeatureCollection{
		Features: []geojson.Feature{
			{
				Geometry:   geojson.NewPoint(0, 0),
				Properties: map[string]interface{}{"distance_nm": 1.0},
			},
		},
	}
	if _, err := ParseResult(point); err == nil {
		t.Error("ParseResult(point geometry) = nil error")
	}
}
