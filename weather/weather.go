// Package weather reads a 10 m wind field from a GRIB2 file and samples it
// along a route, backing the console's weather overlay.
package weather

import (
	"fmt"
	"math"
	"os"

	"github.com/nilsmagnus/grib/griblib"
	log "github.com/sirupsen/logrus"

	"github.com/passage-nav/console/latlon"
)

const metersPerSecondToKnots = 1.9438444924406

// Field is a regular lat/lon grid of U/V wind components.
type Field struct {
	lat0, lon0 float64
	δLat, δLon float64
	nLat, nLon uint32
	u, v       [][]float64
}

// Load reads the 10 m U and V wind grids from a GRIB2 file.
func Load(path string) (*Field, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	messages, err := griblib.ReadMessages(file)
	if err != nil {
		return nil, err
	}

	f := &Field{}
	for _, message := range messages {
		if message.Section0.Discipline != uint8(0) ||
			message.Section4.ProductDefinitionTemplate.ParameterCategory != uint8(2) ||
			message.Section4.ProductDefinitionTemplate.FirstSurface.Type != 103 ||
			message.Section4.ProductDefinitionTemplate.FirstSurface.Value != 10 {
			continue
		}
		grid0, ok := message.Section3.Definition.(*griblib.Grid0)
		if !ok {
			continue
		}
		f.lat0 = float64(grid0.La1) / 1e6
		f.lon0 = float64(grid0.Lo1) / 1e6
		f.δLat = float64(grid0.Di) / 1e6
		f.δLon = float64(grid0.Dj) / 1e6
		f.nLat = grid0.Nj
		f.nLon = grid0.Ni
		if message.Section4.ProductDefinitionTemplate.ParameterNumber == 2 {
			f.u = f.buildGrid(message.Section7.Data)
		} else if message.Section4.ProductDefinitionTemplate.ParameterNumber == 3 {
			f.v = f.buildGrid(message.Section7.Data)
		}
	}

	if f.u == nil || f.v == nil {
		return nil, fmt.Errorf("%s carries no 10m wind grids", path)
	}

	log.Infof("Loaded wind field %s (%dx%d)", path, f.nLat, f.nLon)
	return f, nil
}

func (f *Field) buildGrid(data []float64) [][]float64 {
	isContinuous := math.Floor(float64(f.nLon)*f.δLon) >= 360

	nLon := f.nLon
	if isContinuous {
		nLon++
	}

	grid := make([][]float64, f.nLat)

	p := 0
	for j := uint32(0); j < f.nLat; j++ {
		grid[j] = make([]float64, nLon)
		for i := uint32(0); i < f.nLon; i++ {
			grid[j][i] = data[p]
			p++
		}
		if isContinuous {
			grid[j][f.nLon] = grid[j][0]
		}
	}
	return grid
}

func floorMod(a float64, n float64) float64 {
	return a - n*math.Floor(a/n)
}

func bilinearInterpolate(x, y float64, g00, g10, g01, g11 [2]float64) (float64, float64) {
	rx := 1 - x
	ry := 1 - y

	a := rx * ry
	b := x * ry
	c := rx * y
	d := x * y

	u := g00[0]*a + g10[0]*b + g01[0]*c + g11[0]*d
	v := g00[1]*a + g10[1]*b + g01[1]*c + g11[1]*d

	return u, v
}

func vectorToDegrees(u, v, d float64) float64 {
	velocityDir := math.Atan2(u/d, v/d)
	return velocityDir*180/math.Pi + 180
}

// At interpolates the wind at a point, returning direction in degrees and
// speed in knots. ok is false outside the grid.
func (f *Field) At(p latlon.LatLon) (dirDeg, speedKts float64, ok bool) {
	i := math.Abs((p.Lat - f.lat0) / f.δLat)
	j := floorMod(p.Lon-f.lon0, 360.0) / f.δLon

	fi := uint32(i)
	fj := uint32(j)

	if fi+1 >= uint32(len(f.u)) || fj+1 >= uint32(len(f.u[0])) {
		return 0, 0, false
	}

	u, v := bilinearInterpolate(j-float64(fj), i-float64(fi),
		[2]float64{f.u[fi][fj], f.v[fi][fj]},
		[2]float64{f.u[fi][fj+1], f.v[fi][fj+1]},
		[2]float64{f.u[fi+1][fj], f.v[fi+1][fj]},
		[2]float64{f.u[fi+1][fj+1], f.v[fi+1][fj+1]})

	d := math.Sqrt(u*u + v*v)
	if d == 0 {
		return 0, 0, true
	}
	return vectorToDegrees(u, v, d), d * metersPerSecondToKnots, true
}

// Sample is the wind at one route point.
type Sample struct {
	Point    latlon.LatLon `json:"point"`
	DirDeg   float64       `json:"dir_deg"`
	SpeedKts float64       `json:"speed_kts"`
}

// SampleAlong interpolates the wind at every route point. Points outside the
// grid are skipped.
func (f *Field) SampleAlong(points []latlon.LatLon) []Sample {
	samples := make([]Sample, 0, len(points))
	for _, p := range points {
		dir, speed, ok := f.At(p)
		if !ok {
			continue
		}
		samples = append(samples, Sample{Point: p, DirDeg: dir, SpeedKts: speed})
	}
	return samples
}
