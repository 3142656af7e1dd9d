package reference

import (
	"context"
	"fmt"
	"testing"

	"github.com/passage-nav/console/geojson"
)

func TestParseCSV(t *testing.T) {
	body := []byte("lat,lon,date,description,risk\n" +
		"4.5,2.5,2024-01-01,boarding,high\n" +
		"not-a-lat,2.5,2024-01-02,skipped,\n" +
		"12.1,44.9,,approach,\n")

	features, err := ParseCSV(body)
	if err != nil {
		t.Fatalf("ParseCSV() error = %v", err)
	}
	if len(features) != 2 {
		t.Fatalf("len(features) = %d; want 2 (bad row dropped)", len(features))
	}

	lon, lat, err := features[0].Geometry.Point()
	if err != nil || lon != 2.5 || lat != 4.5 {
		t.Errorf("features[0] = (%f, %f), %v; want (2.5, 4.5)", lon, lat, err)
	}
	if risk, _ := features[0].StringProperty("risk"); risk != "high" {
		t.Errorf("risk = %q; want high", risk)
	}
	if _, ok := features[1].StringProperty("risk"); ok {
		t.Error("empty risk column should not set a property")
	}
}

func TestNormalize(t *testing.T) {
	features := []geojson.Feature{
		{
			Type:       "Feature",
			Geometry:   geojson.NewPoint(2.5, 4.5),
			Properties: map[string]interface{}{"date": "2024-01-01T13:45:00Z"},
		},
		{
			Type:     "Feature",
			Geometry: geojson.NewLineString([][]float64{{0, 0}, {1, 1}}),
		},
	}

	out := Normalize(features, "mdat")
	if len(out) != 1 {
		t.Fatalf("len(out) = %d; want 1 (non-point dropped)", len(out))
	}
	if src, _ := out[0].StringProperty("source"); src != "mdat" {
		t.Errorf("source = %q; want default mdat", src)
	}
	if date, _ := out[0].StringProperty("date"); date != "2024-01-01" {
		t.Errorf("date = %q; want 2024-01-01", date)
	}
}

func TestDedupe(t *testing.T) {
	near := func(lat, lon float64, date string) geojson.Feature {
		return geojson.Feature{
			Type:       "Feature",
			Geometry:   geojson.NewPoint(lon, lat),
			Properties: map[string]interface{}{"date": date},
		}
	}

	out := Dedupe([]geojson.Feature{
		near(4.501, 2.502, "2024-01-01"),
		near(4.502, 2.498, "2024-01-01"), // same rounded cell, same date
		near(4.501, 2.502, "2024-01-02"), // same cell, other date
		near(6.0, 2.5, "2024-01-01"),
	})
	if len(out) != 3 {
		t.Errorf("len(out) = %d; want 3", len(out))
	}
}

type fakeFetcher struct {
	docs map[string]fetchResult
}

type fetchResult struct {
	ctype string
	body  string
	err   error
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (string, []byte, error) {
	doc, ok := f.docs[url]
	if !ok {
		return "", nil, fmt.Errorf("no such document %s", url)
	}
	return doc.ctype, []byte(doc.body), doc.err
}

func TestLoad(t *testing.T) {
	f := &fakeFetcher{docs: map[string]fetchResult{
		"https://example.com/ports.geojson": {
			ctype: "application/geo+json",
			body: `{"type":"FeatureCollection","features":[
				{"type":"Feature","geometry":{"type":"Point","coordinates":[-122.4,37.8]},"properties":{"name":"San Francisco"}}
			]}`,
		},
		"https://feed.example.com/reports.csv": {
			ctype: "text/csv",
			body:  "lat,lon,date,description\n4.5,2.5,2024-01-01,boarding\n4.5,2.5,2024-01-01,duplicate\n",
		},
	}}

	store := Load(context.Background(), f, Sources{
		PortsURL:   "https://example.com/ports.geojson",
		PiracyURLs: []string{"https://feed.example.com/reports.csv", "https://gone.example.com/x.geojson"},
	})

	if len(store.Ports.Features) != 1 {
		t.Errorf("ports = %d; want 1", len(store.Ports.Features))
	}
	if name, _ := store.Ports.Features[0].StringProperty("name"); name != "San Francisco" {
		t.Errorf("port name = %q; want San Francisco", name)
	}
	if len(store.Piracy.Features) != 1 {
		t.Errorf("piracy = %d; want 1 (deduped, dead source skipped)", len(store.Piracy.Features))
	}
	if src, _ := store.Piracy.Features[0].StringProperty("source"); src != "feed.example.com" {
		t.Errorf("source = %q; want feed.example.com", src)
	}
}
