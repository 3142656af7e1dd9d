package latlon

import (
	"math"
	"testing"
)

func TestDistanceTo(t *testing.T) {
	p1 := LatLon{Lat: 37.7749, Lon: -122.4194}
	p2 := LatLon{Lat: 34.0522, Lon: -118.2437}
	d := DistanceTo(p1, p2) / MetersPerNm
	if d < 300 || d > 305 {
		t.Errorf("{%f,%f}.distanceTo({%f,%f}) = %f nm; want ~302", p1.Lat, p1.Lon, p2.Lat, p2.Lon, d)
	}

	p1 = LatLon{Lat: 10, Lon: 20}
	d = DistanceTo(p1, p1)
	if d != 0 {
		t.Errorf("distanceTo(self) = %f; want 0", d)
	}
}

func TestBearingTo(t *testing.T) {
	p1 := LatLon{Lat: -5, Lon: -5}
	p2 := LatLon{Lat: 5, Lon: 5}
	b := BearingTo(p1, p2)
	if math.Round(b) != 45.0 {
		t.Errorf("{%f,%f}.bearingTo({%f,%f}) = %f; want 45", p1.Lat, p1.Lon, p2.Lat, p2.Lon, b)
	}

	p1 = LatLon{Lat: -5, Lon: 5}
	p2 = LatLon{Lat: 5, Lon: -5}
	b = BearingTo(p1, p2)
	if math.Round(b) != 315.0 {
		t.Errorf("{%f,%f}.bearingTo({%f,%f}) = %f; want 315", p1.Lat, p1.Lon, p2.Lat, p2.Lon, b)
	}
}

func TestDestinationZeroDistance(t *testing.T) {
	from := LatLon{Lat: 35.91355, Lon: -120.33155}
	for bearing := 0.0; bearing < 360.0; bearing += 22.5 {
		to := Destination(from, bearing, 0)
		if math.Abs(to.Lat-from.Lat) > 1e-9 || math.Abs(to.Lon-from.Lon) > 1e-9 {
			t.Errorf("Destination(%v, %f, 0) = %v; want origin", from, bearing, to)
		}
	}
}

func TestDestinationRoundTrip(t *testing.T) {
	from := LatLon{Lat: 48.5, Lon: -4.8}
	for bearing := 0.0; bearing < 360.0; bearing += 45.0 {
		to := Destination(from, bearing, 200*MetersPerNm)
		d := DistanceTo(from, to) / MetersPerNm
		if math.Abs(d-200) > 0.01 {
			t.Errorf("Destination(%f°) lands at %f nm; want 200", bearing, d)
		}
	}
}

func TestDestinationNormalizesLongitude(t *testing.T) {
	from := LatLon{Lat: 0, Lon: 179.5}
	to := Destination(from, 90, 200*MetersPerNm)
	if to.Lon < -180 || to.Lon >= 180 {
		t.Errorf("Destination across antimeridian lon = %f; want in [-180, 180)", to.Lon)
	}
	if to.Lon > 0 {
		t.Errorf("Destination across antimeridian lon = %f; want negative", to.Lon)
	}
}
