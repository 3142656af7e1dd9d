package latlon

import "math"

const π = math.Pi

// R is the mean Earth radius in meters.
const R = 6371e3

// MetersPerNm converts nautical miles to meters.
const MetersPerNm = 1852.0

type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func toRadians(a float64) float64 {
	return a * π / 180.0
}

func toDegrees(a float64) float64 {
	return a * 180.0 / π
}

func wrap360(d float64) float64 {
	if 0.0 <= d && d < 360.0 {
		return d
	}
	d1 := d + 360.0
	d2 := d1 - float64(int(d1/360.0)*360)
	return d2
}

// wrap180 normalizes a longitude into [-180, 180).
func wrap180(d float64) float64 {
	return d - 360.0*math.Floor((d+180.0)/360.0)
}
