package weather

import (
	"math"
	"testing"

	"github.com/passage-nav/console/latlon"
)

// uniformField is a 4x4 one-degree grid starting at (0, 0) with the same
// U/V everywhere.
func uniformField(u, v float64) *Field {
	f := &Field{lat0: 0, lon0: 0, δLat: 1, δLon: 1, nLat: 4, nLon: 4}
	f.u = make([][]float64, 4)
	f.v = make([][]float64, 4)
	for j := 0; j < 4; j++ {
		f.u[j] = []float64{u, u, u, u}
		f.v[j] = []float64{v, v, v, v}
	}
	return f
}

func TestAtUniform(t *testing.T) {
	// pure southerly flow: wind from 180°, 10 m/s
	f := uniformField(0, 10)

	dir, speed, ok := f.At(latlon.LatLon{Lat: 1.5, Lon: 1.5})
	if !ok {
		t.Fatal("At() outside grid; want inside")
	}
	if math.Abs(dir-180) > 1e-9 {
		t.Errorf("dir = %f; want 180", dir)
	}
	wantKts := 10 * metersPerSecondToKnots
	if math.Abs(speed-wantKts) > 1e-9 {
		t.Errorf("speed = %f; want %f", speed, wantKts)
	}
}

func TestAtOutsideGrid(t *testing.T) {
	f := uniformField(5, 5)
	if _, _, ok := f.At(latlon.LatLon{Lat: 40, Lon: 2}); ok {
		t.Error("At(lat outside grid) ok; want false")
	}
}

func TestAtInterpolates(t *testing.T) {
	f := uniformField(0, 0)
	// U ramps west to east on every row: 0, 2, 4, 6
	for j := 0; j < 4; j++ {
		f.u[j] = []float64{0, 2, 4, 6}
	}

	_, speed, ok := f.At(latlon.LatLon{Lat: 1, Lon: 1.5})
	if !ok {
		t.Fatal("At() not ok")
	}
	want := 3 * metersPerSecondToKnots
	if math.Abs(speed-want) > 1e-9 {
		t.Errorf("speed = %f; want %f (midpoint of 2 and 4 m/s)", speed, want)
	}
}

func TestSampleAlong(t *testing.T) {
	f := uniformField(10, 0)
	points := []latlon.LatLon{
		{Lat: 0.5, Lon: 0.5},
		{Lat: 60, Lon: 0.5}, // outside
		{Lat: 2, Lon: 2},
	}

	samples := f.SampleAlong(points)
	if len(samples) != 2 {
		t.Fatalf("len(samples) = %d; want 2", len(samples))
	}
	if math.Abs(samples[0].DirDeg-270) > 1e-9 {
		t.Errorf("dir = %f; want 270 (pure westerly)", samples[0].DirDeg)
	}
}
