package session

import (
	"context"
	"net/url"
	"strconv"

	log "github.com/sirupsen/logrus"

	"github.com/passage-nav/console/latlon"
	"github.com/passage-nav/console/plan"
)

// Deep-link key set. The whole session serializes to these nine keys.
const (
	keyOriginLat    = "originLat"
	keyOriginLon    = "originLon"
	keyDestLat      = "destLat"
	keyDestLon      = "destLon"
	keySpeed        = "speed"
	keyPiracyWeight = "piracyWeight"
	keyStormWeight  = "stormWeight"
	keyDepthPenalty = "depthPenalty"
	keyAvoidance    = "avoidanceEnabled"
)

// Seed is a decoded deep link: the session state a shared URL restores.
type Seed struct {
	Origin      latlon.LatLon
	Destination latlon.LatLon
	SpeedKts    float64
	Weights     plan.Weights
	Avoidance   bool

	// HasRoute reports whether all four coordinate fields were present and
	// numeric, the precondition for an automatic submit.
	HasRoute bool
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// EncodeShare serializes a planning session into the flat query
// representation. Floats are decimal strings; avoidance is "1" or "0".
func EncodeShare(origin, destination latlon.LatLon, speedKts float64, w plan.Weights, avoidance bool) url.Values {
	q := url.Values{}
	q.Set(keyOriginLat, formatFloat(origin.Lat))
	q.Set(keyOriginLon, formatFloat(origin.Lon))
	q.Set(keyDestLat, formatFloat(destination.Lat))
	q.Set(keyDestLon, formatFloat(destination.Lon))
	q.Set(keySpeed, formatFloat(speedKts))
	q.Set(keyPiracyWeight, formatFloat(w.Piracy))
	q.Set(keyStormWeight, formatFloat(w.Storm))
	q.Set(keyDepthPenalty, formatFloat(w.DepthPenaltyNm))
	if avoidance {
		q.Set(keyAvoidance, "1")
	} else {
		q.Set(keyAvoidance, "0")
	}
	return q
}

func floatOr(q url.Values, key string, fallback float64) (float64, bool) {
	raw := q.Get(key)
	if raw == "" {
		return fallback, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback, false
	}
	return v, true
}

// DecodeShare is the tolerant inverse of EncodeShare: any missing or
// non-numeric field falls back to the supplied default. It never fails.
func DecodeShare(q url.Values, defaults Seed) Seed {
	seed := defaults

	var ok [4]bool
	seed.Origin.Lat, ok[0] = floatOr(q, keyOriginLat, defaults.Origin.Lat)
	seed.Origin.Lon, ok[1] = floatOr(q, keyOriginLon, defaults.Origin.Lon)
	seed.Destination.Lat, ok[2] = floatOr(q, keyDestLat, defaults.Destination.Lat)
	seed.Destination.Lon, ok[3] = floatOr(q, keyDestLon, defaults.Destination.Lon)
	seed.HasRoute = ok[0] && ok[1] && ok[2] && ok[3]

	seed.SpeedKts, _ = floatOr(q, keySpeed, defaults.SpeedKts)
	seed.Weights.Piracy, _ = floatOr(q, keyPiracyWeight, defaults.Weights.Piracy)
	seed.Weights.Storm, _ = floatOr(q, keyStormWeight, defaults.Weights.Storm)
	seed.Weights.DepthPenaltyNm, _ = floatOr(q, keyDepthPenalty, defaults.Weights.DepthPenaltyNm)

	switch q.Get(keyAvoidance) {
	case "1":
		seed.Avoidance = true
	case "0":
		seed.Avoidance = false
	}

	return seed
}

// Hydrate restores the session from a deep-link query. It runs at most once
// per session, at start. When all four coordinates decode to in-range values
// it issues exactly one automatic Submit; decoded coordinates are re-validated
// first, so a tampered link never reaches the network. Returns whether a plan
// was auto-submitted.
func (s *Session) Hydrate(ctx context.Context, q url.Values) (bool, error) {
	s.mu.Lock()
	if s.hydrated {
		s.mu.Unlock()
		return false, nil
	}
	s.hydrated = true

	defaults := Seed{
		SpeedKts:  s.speedKts,
		Weights:   s.weights,
		Avoidance: s.avoidance,
	}
	seed := DecodeShare(q, defaults)

	s.speedKts = seed.SpeedKts
	s.weights = seed.Weights
	s.avoidance = seed.Avoidance
	if seed.HasRoute {
		s.origin = WaypointForm{RawLat: formatFloat(seed.Origin.Lat), RawLon: formatFloat(seed.Origin.Lon)}
		s.destination = WaypointForm{RawLat: formatFloat(seed.Destination.Lat), RawLon: formatFloat(seed.Destination.Lon)}
	}
	s.mu.Unlock()
	s.emit(EventInput)

	if !seed.HasRoute {
		return false, nil
	}
	if err := plan.Validate(seed.Origin, seed.Destination); err != nil {
		log.Warnf("Deep link carries out-of-range coordinates, not submitting: %v", err)
		return false, nil
	}

	return true, s.Submit(ctx)
}
