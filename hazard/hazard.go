// Package hazard models circular hazard zones and their geodesic outlines.
package hazard

import (
	"github.com/passage-nav/console/latlon"
)

// DefaultSteps is the number of bearing increments used to trace a zone ring.
const DefaultSteps = 128

// Zone is a circular hazard area. It marshals flat, matching the routing
// service wire format: {"lat": ..., "lon": ..., "radius_nm": ...}.
type Zone struct {
	latlon.LatLon
	RadiusNm float64 `json:"radius_nm"`
}

// Ring traces the zone outline as a closed ring of steps+1 points, one every
// 360/steps degrees of bearing, first and last point identical. The ring is a
// visualization aid, not the routing service's own hazard approximation.
func (z Zone) Ring(steps int) []latlon.LatLon {
	if steps <= 0 {
		steps = DefaultSteps
	}

	ring := make([]latlon.LatLon, 0, steps+1)
	for i := 0; i < steps; i++ {
		bearing := float64(i) * 360.0 / float64(steps)
		ring = append(ring, latlon.Destination(z.LatLon, bearing, z.RadiusNm*latlon.MetersPerNm))
	}
	ring = append(ring, ring[0])

	return ring
}
