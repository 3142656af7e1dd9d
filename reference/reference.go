// Package reference loads the static collections the console overlays on the
// map: named ports and piracy-risk reports. Both are fetched once at session
// start and immutable afterwards; a failed fetch logs and leaves the
// collection empty, never fails the session.
package reference

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/passage-nav/console/geojson"
)

// Fetcher retrieves a document, returning its content type and body.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, []byte, error)
}

// Sources names where the reference collections come from.
type Sources struct {
	PortsURL   string   `yaml:"ports"`
	PiracyURLs []string `yaml:"piracy"`
}

// Store holds the loaded collections.
type Store struct {
	Ports  geojson.FeatureCollection
	Piracy geojson.FeatureCollection
}

// Load fetches every configured source. Ports must be a GeoJSON point
// collection; each piracy source may be GeoJSON or CSV. Sources that cannot
// be fetched or parsed are skipped.
func Load(ctx context.Context, f Fetcher, src Sources) *Store {
	store := &Store{
		Ports:  geojson.FeatureCollection{Type: "FeatureCollection", Features: []geojson.Feature{}},
		Piracy: geojson.FeatureCollection{Type: "FeatureCollection", Features: []geojson.Feature{}},
	}

	if src.PortsURL != "" {
		if fc, err := fetchCollection(ctx, f, src.PortsURL); err != nil {
			log.Warnf("Ports collection unavailable: %v", err)
		} else {
			store.Ports = *fc
			log.Infof("Loaded %d ports", len(fc.Features))
		}
	}

	var features []geojson.Feature
	for _, u := range src.PiracyURLs {
		feats, err := loadPiracySource(ctx, f, u)
		if err != nil {
			log.Warnf("Piracy source %s skipped: %v", u, err)
			continue
		}
		features = append(features, feats...)
	}
	store.Piracy.Features = Dedupe(features)
	if len(src.PiracyURLs) > 0 {
		log.Infof("Loaded %d piracy reports from %d sources", len(store.Piracy.Features), len(src.PiracyURLs))
	}

	return store
}

func fetchCollection(ctx context.Context, f Fetcher, u string) (*geojson.FeatureCollection, error) {
	_, body, err := f.Fetch(ctx, u)
	if err != nil {
		return nil, err
	}
	return parseCollection(body)
}

func loadPiracySource(ctx context.Context, f Fetcher, u string) ([]geojson.Feature, error) {
	ctype, body, err := f.Fetch(ctx, u)
	if err != nil {
		return nil, err
	}

	defaultSource := "feed"
	if parsed, err := url.Parse(u); err == nil && parsed.Host != "" {
		defaultSource = parsed.Host
	}

	if strings.Contains(ctype, "csv") || strings.HasSuffix(strings.ToLower(u), ".csv") {
		feats, err := ParseCSV(body)
		if err != nil {
			return nil, err
		}
		return Normalize(feats, defaultSource), nil
	}

	fc, err := parseCollection(body)
	if err != nil {
		return nil, err
	}
	return Normalize(fc.Features, defaultSource), nil
}

func parseCollection(body []byte) (*geojson.FeatureCollection, error) {
	var fc geojson.FeatureCollection
	if err := json.Unmarshal(body, &fc); err != nil {
		return nil, err
	}
	if fc.Type != "FeatureCollection" {
		return nil, fmt.Errorf("document is %q, not a FeatureCollection", fc.Type)
	}
	return &fc, nil
}
