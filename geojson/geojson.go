// Package geojson holds the GeoJSON structures shared by the routing service
// responses and the static reference collections.
package geojson

import (
	"encoding/json"
	"fmt"
)

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

type Feature struct {
	Type       string                 `json:"type"`
	Geometry   Geometry               `json:"geometry"`
	Properties map[string]interface{} `json:"properties,omitempty"`
}

// Geometry keeps its coordinates raw: the nesting depth depends on the
// geometry type ([lon,lat] for Point, [[lon,lat],...] for LineString).
type Geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// Point decodes a Point geometry into (lon, lat).
func (g Geometry) Point() (float64, float64, error) {
	if g.Type != "Point" {
		return 0, 0, fmt.Errorf("geometry is %q, not Point", g.Type)
	}
	var c []float64
	if err := json.Unmarshal(g.Coordinates, &c); err != nil {
		return 0, 0, err
	}
	if len(c) < 2 {
		return 0, 0, fmt.Errorf("point has %d coordinates", len(c))
	}
	return c[0], c[1], nil
}

// LineString decodes a LineString geometry into [lon,lat] pairs.
func (g Geometry) LineString() ([][]float64, error) {
	if g.Type != "LineString" {
		return nil, fmt.Errorf("geometry is %q, not LineString", g.Type)
	}
	var c [][]float64
	if err := json.Unmarshal(g.Coordinates, &c); err != nil {
		return nil, err
	}
	for i, p := range c {
		if len(p) < 2 {
			return nil, fmt.Errorf("position %d has %d coordinates", i, len(p))
		}
	}
	return c, nil
}

// NewPoint builds a Point geometry from (lon, lat).
func NewPoint(lon, lat float64) Geometry {
	raw, _ := json.Marshal([]float64{lon, lat})
	return Geometry{Type: "Point", Coordinates: raw}
}

// NewLineString builds a LineString geometry from [lon,lat] pairs.
func NewLineString(coords [][]float64) Geometry {
	raw, _ := json.Marshal(coords)
	return Geometry{Type: "LineString", Coordinates: raw}
}

// FloatProperty reads a numeric property, tolerating both JSON numbers and
// numeric strings.
func (f Feature) FloatProperty(name string) (float64, bool) {
	v, ok := f.Properties[name]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case json.Number:
		x, err := n.Float64()
		return x, err == nil
	}
	return 0, false
}

// StringProperty reads a string property.
func (f Feature) StringProperty(name string) (string, bool) {
	v, ok := f.Properties[name]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
