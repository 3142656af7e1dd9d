// Package plan builds routing requests from validated session input and
// parses the routing service responses. It is pure: no network access, no
// stored state.
package plan

import (
	"fmt"

	"github.com/passage-nav/console/hazard"
	"github.com/passage-nav/console/latlon"
)

// Fixed grid-search configuration. Not user-editable.
const (
	HazardRadiusNm = 200.0
	GridStepDeg    = 0.5
	PenaltyNm      = 500.0
	MaxNodes       = 200000
)

// Endpoint names on the routing service.
const (
	EndpointPlan      = "plan"
	EndpointPlanAvoid = "plan_avoid"
)

type Weights struct {
	Piracy         float64 `json:"piracy_weight"`
	Storm          float64 `json:"storm_weight"`
	DepthPenaltyNm float64 `json:"depth_penalty_nm"`
}

// Request is one of the two request variants, Direct or Avoid. Exactly one
// variant is constructed per submission.
type Request interface {
	Endpoint() string
}

type Direct struct {
	Origin      latlon.LatLon `json:"origin"`
	Destination latlon.LatLon `json:"destination"`
}

func (Direct) Endpoint() string { return EndpointPlan }

type Avoid struct {
	Origin         latlon.LatLon `json:"origin"`
	Destination    latlon.LatLon `json:"destination"`
	Hazards        []hazard.Zone `json:"hazards"`
	GridStepDeg    float64       `json:"grid_step_deg"`
	PenaltyNm      float64       `json:"penalty_nm"`
	MaxNodes       int           `json:"max_nodes"`
	PiracyWeight   float64       `json:"piracy_weight"`
	StormWeight    float64       `json:"storm_weight"`
	DepthPenaltyNm float64       `json:"depth_penalty_nm"`
}

func (Avoid) Endpoint() string { return EndpointPlanAvoid }

// InvalidCoordinateError names which endpoint of the leg and which axis fell
// out of range.
type InvalidCoordinateError struct {
	Point string // "origin" or "destination"
	Axis  string // "lat" or "lon"
	Value float64
}

func (e *InvalidCoordinateError) Error() string {
	return fmt.Sprintf("invalid coordinate: %s %s %g out of range", e.Point, e.Axis, e.Value)
}

func checkPoint(name string, p latlon.LatLon) error {
	if !(p.Lat >= -90 && p.Lat <= 90) {
		return &InvalidCoordinateError{Point: name, Axis: "lat", Value: p.Lat}
	}
	if !(p.Lon >= -180 && p.Lon <= 180) {
		return &InvalidCoordinateError{Point: name, Axis: "lon", Value: p.Lon}
	}
	return nil
}

// Validate accepts only coordinates within lat [-90,90] and lon [-180,180],
// on both points independently. It performs no I/O.
func Validate(origin, destination latlon.LatLon) error {
	if err := checkPoint("origin", origin); err != nil {
		return err
	}
	return checkPoint("destination", destination)
}

// Midpoint is the arithmetic midpoint of the leg, the center of the single
// hazard zone attached in avoidance mode.
func Midpoint(origin, destination latlon.LatLon) latlon.LatLon {
	return latlon.LatLon{
		Lat: (origin.Lat + destination.Lat) / 2,
		Lon: (origin.Lon + destination.Lon) / 2,
	}
}

// Build returns the request variant for the submission. Coordinates must
// already have passed Validate.
func Build(origin, destination latlon.LatLon, w Weights, avoidance bool) Request {
	if !avoidance {
		return Direct{Origin: origin, Destination: destination}
	}

	return Avoid{
		Origin:      origin,
		Destination: destination,
		Hazards: []hazard.Zone{
			{LatLon: Midpoint(origin, destination), RadiusNm: HazardRadiusNm},
		},
		GridStepDeg:    GridStepDeg,
		PenaltyNm:      PenaltyNm,
		MaxNodes:       MaxNodes,
		PiracyWeight:   w.Piracy,
		StormWeight:    w.Storm,
		DepthPenaltyNm: w.DepthPenaltyNm,
	}
}
