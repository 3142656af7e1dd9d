package session

import "github.com/passage-nav/console/latlon"

// Camera transition tuning, identical for every fit.
const (
	FitPaddingPx  = 60
	FitDurationMs = 900
)

// BBox is the axis-aligned bounding box of a geometry.
type BBox struct {
	MinLon float64 `json:"min_lon"`
	MinLat float64 `json:"min_lat"`
	MaxLon float64 `json:"max_lon"`
	MaxLat float64 `json:"max_lat"`
}

// CameraCommand is a fire-and-forget map transition: issued once, never
// acknowledged.
type CameraCommand struct {
	Bounds     BBox `json:"bounds"`
	PaddingPx  int  `json:"padding_px"`
	DurationMs int  `json:"duration_ms"`
}

// MapSurface receives camera commands from the viewport fit engine.
type MapSurface interface {
	FlyTo(CameraCommand)
}

// BoundsOf computes the bounding box over all points in one pass. The second
// return is false for geometries of fewer than two points.
func BoundsOf(points []latlon.LatLon) (BBox, bool) {
	if len(points) < 2 {
		return BBox{}, false
	}

	b := BBox{
		MinLon: points[0].Lon, MaxLon: points[0].Lon,
		MinLat: points[0].Lat, MaxLat: points[0].Lat,
	}
	for _, p := range points[1:] {
		if p.Lon < b.MinLon {
			b.MinLon = p.Lon
		}
		if p.Lon > b.MaxLon {
			b.MaxLon = p.Lon
		}
		if p.Lat < b.MinLat {
			b.MinLat = p.Lat
		}
		if p.Lat > b.MaxLat {
			b.MaxLat = p.Lat
		}
	}
	return b, true
}

// fitLocked issues one camera command for the geometry. No-op when the
// geometry is degenerate or no surface is mounted.
func (s *Session) fitLocked(points []latlon.LatLon) {
	if s.surface == nil {
		return
	}
	bounds, ok := BoundsOf(points)
	if !ok {
		return
	}
	s.surface.FlyTo(CameraCommand{
		Bounds:     bounds,
		PaddingPx:  FitPaddingPx,
		DurationMs: FitDurationMs,
	})
}
