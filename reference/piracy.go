package reference

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/passage-nav/console/geojson"
)

// ParseCSV reads piracy reports from rows of
// lat, lon, date, description, source?, risk?. Rows without parsable
// coordinates are dropped.
func ParseCSV(body []byte) ([]geojson.Feature, error) {
	r := csv.NewReader(bytes.NewReader(body))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty csv")
	}

	col := map[string]int{}
	for i, name := range records[0] {
		col[name] = i
	}
	field := func(row []string, names ...string) string {
		for _, n := range names {
			if i, ok := col[n]; ok && i < len(row) {
				return row[i]
			}
		}
		return ""
	}

	var features []geojson.Feature
	for _, row := range records[1:] {
		lat, errLat := strconv.ParseFloat(field(row, "lat"), 64)
		lon, errLon := strconv.ParseFloat(field(row, "lon"), 64)
		if errLat != nil || errLon != nil {
			continue
		}

		props := map[string]interface{}{
			"desc": field(row, "description", "desc"),
		}
		if s := field(row, "source"); s != "" {
			props["source"] = s
		}
		if d := field(row, "date"); d != "" {
			props["date"] = d
		}
		if risk := field(row, "risk"); risk != "" {
			props["risk"] = risk
		}

		features = append(features, geojson.Feature{
			Type:       "Feature",
			Geometry:   geojson.NewPoint(lon, lat),
			Properties: props,
		})
	}
	return features, nil
}

// Normalize keeps point features with clean coordinates, fills a default
// source and reshapes parsable dates to ISO. Invalid features are dropped.
func Normalize(features []geojson.Feature, defaultSource string) []geojson.Feature {
	out := make([]geojson.Feature, 0, len(features))
	for _, f := range features {
		lon, lat, err := f.Geometry.Point()
		if err != nil {
			continue
		}

		props := map[string]interface{}{}
		for k, v := range f.Properties {
			props[k] = v
		}
		if _, ok := props["source"]; !ok {
			props["source"] = defaultSource
		}
		if d, ok := props["date"].(string); ok && d != "" {
			if t, err := time.Parse(time.RFC3339, d); err == nil {
				props["date"] = t.Format("2006-01-02")
			} else if t, err := time.Parse("2006-01-02", d); err == nil {
				props["date"] = t.Format("2006-01-02")
			}
		}

		out = append(out, geojson.Feature{
			Type:       "Feature",
			Geometry:   geojson.NewPoint(lon, lat),
			Properties: props,
		})
	}
	return out
}

// Dedupe drops near-duplicate reports: coordinates rounded to two decimals
// (~0.05 degree clusters) plus the report date form the identity.
func Dedupe(features []geojson.Feature) []geojson.Feature {
	seen := map[string]bool{}
	out := make([]geojson.Feature, 0, len(features))
	for _, f := range features {
		lon, lat, err := f.Geometry.Point()
		if err != nil {
			continue
		}
		date, _ := f.StringProperty("date")
		key := fmt.Sprintf("%.2f|%.2f|%s", lat, lon, date)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, f)
	}
	return out
}
