// Package session holds the route-planning session: the two-phase waypoint
// forms, the submission state machine, the hazard ring, the single-slot
// result cache, layer toggles and the shareable deep link. All mutable state
// is owned here; dependent views subscribe to change events.
package session

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/passage-nav/console/latlon"
	"github.com/passage-nav/console/plan"
)

type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseSubmitting Phase = "submitting"
)

type EventKind string

const (
	EventSubmitting    EventKind = "submitting"
	EventPlanSucceeded EventKind = "plan_succeeded"
	EventPlanFailed    EventKind = "plan_failed"
	EventInvalidInput  EventKind = "invalid_input"
	EventLayers        EventKind = "layers"
	EventInput         EventKind = "input"
	EventHealth        EventKind = "health"
)

type Event struct {
	Kind EventKind
}

// ErrPlanInFlight is returned by Submit while a previous submission has not
// settled. Submissions are serialized, never queued.
var ErrPlanInFlight = errors.New("a plan is already in flight")

// PlanningFailedError is the single error kind every remote failure
// normalizes to: connection errors, non-success statuses and malformed
// responses all end up here with a human-readable detail.
type PlanningFailedError struct {
	Detail string
}

func (e *PlanningFailedError) Error() string {
	return "planning failed: " + e.Detail
}

// Planner is the remote routing service as the session sees it.
type Planner interface {
	Plan(ctx context.Context, req plan.Direct) (*plan.RouteResult, error)
	PlanAvoid(ctx context.Context, req plan.Avoid) (*plan.RouteResult, error)
}

// WaypointForm is the always-present raw editable pair. It is parsed into a
// coordinate only at the submit boundary.
type WaypointForm struct {
	RawLat string `json:"raw_lat"`
	RawLon string `json:"raw_lon"`
}

// Layers are the independent overlay visibility flags.
type Layers struct {
	Ports      bool `json:"ports"`
	Piracy     bool `json:"piracy"`
	Bathymetry bool `json:"bathymetry"`
	Weather    bool `json:"weather"`
}

type Session struct {
	mu      sync.Mutex
	planner Planner

	origin      WaypointForm
	destination WaypointForm
	speedKts    float64
	weights     plan.Weights
	avoidance   bool
	layers      Layers

	phase      Phase
	result     *plan.RouteResult
	hazardRing []latlon.LatLon
	lastErr    error
	share      string

	surface MapSurface

	serviceHealthy bool
	hydrated       bool

	subscribers []func(Event)
}

func New(planner Planner) *Session {
	return &Session{
		planner:  planner,
		phase:    PhaseIdle,
		speedKts: 12,
		layers:   Layers{Ports: true, Piracy: true},
	}
}

// Subscribe registers a change listener. Listeners are invoked synchronously
// after the mutation, without the session lock held.
func (s *Session) Subscribe(fn func(Event)) {
	s.mu.Lock()
	s.subscribers = append(s.subscribers, fn)
	s.mu.Unlock()
}

func (s *Session) emit(kind EventKind) {
	s.mu.Lock()
	subs := make([]func(Event), len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(Event{Kind: kind})
	}
}

func (s *Session) SetOrigin(rawLat, rawLon string) {
	s.mu.Lock()
	s.origin = WaypointForm{RawLat: rawLat, RawLon: rawLon}
	s.mu.Unlock()
	s.emit(EventInput)
}

func (s *Session) SetDestination(rawLat, rawLon string) {
	s.mu.Lock()
	s.destination = WaypointForm{RawLat: rawLat, RawLon: rawLon}
	s.mu.Unlock()
	s.emit(EventInput)
}

func (s *Session) SetSpeed(kts float64) {
	s.mu.Lock()
	s.speedKts = kts
	s.mu.Unlock()
	s.emit(EventInput)
}

func (s *Session) SetWeights(w plan.Weights) {
	s.mu.Lock()
	s.weights = w
	s.mu.Unlock()
	s.emit(EventInput)
}

// SetAvoidance switches the planning mode. Turning avoidance off clears any
// displayed hazard ring.
func (s *Session) SetAvoidance(enabled bool) {
	s.mu.Lock()
	s.avoidance = enabled
	if !enabled {
		s.hazardRing = nil
	}
	s.mu.Unlock()
	s.emit(EventInput)
}

// ToggleLayer flips exactly one visibility flag and touches nothing else.
func (s *Session) ToggleLayer(name string) error {
	s.mu.Lock()
	switch name {
	case "ports":
		s.layers.Ports = !s.layers.Ports
	case "piracy":
		s.layers.Piracy = !s.layers.Piracy
	case "bathymetry":
		s.layers.Bathymetry = !s.layers.Bathymetry
	case "weather":
		s.layers.Weather = !s.layers.Weather
	default:
		s.mu.Unlock()
		return fmt.Errorf("unknown layer %q", name)
	}
	s.mu.Unlock()
	s.emit(EventLayers)
	return nil
}

// SetServiceHealth records the latest liveness probe outcome.
func (s *Session) SetServiceHealth(ok bool) {
	s.mu.Lock()
	changed := s.serviceHealthy != ok
	s.serviceHealthy = ok
	s.mu.Unlock()
	if changed {
		s.emit(EventHealth)
	}
}

// Dismiss clears the retained error.
func (s *Session) Dismiss() {
	s.mu.Lock()
	s.lastErr = nil
	s.mu.Unlock()
}

// MountSurface attaches the map camera target. Camera commands issued while
// no surface is mounted are dropped.
func (s *Session) MountSurface(surface MapSurface) {
	s.mu.Lock()
	s.surface = surface
	s.mu.Unlock()
}

// Result returns the cached route, or nil.
func (s *Session) Result() *plan.RouteResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// HazardRing returns the displayed hazard outline, or nil.
func (s *Session) HazardRing() []latlon.LatLon {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hazardRing
}

// LastError returns the retained error, or nil.
func (s *Session) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// CurrentPhase returns the state machine phase.
func (s *Session) CurrentPhase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// ShareQuery returns the deep-link query string of the last successful plan.
func (s *Session) ShareQuery() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.share
}

// ETAHours derives the passage duration from distance and speed. The second
// return is false when speed is not positive: the value is undefined, never
// infinite.
func ETAHours(distanceNm, speedKts float64) (float64, bool) {
	if speedKts <= 0 {
		return 0, false
	}
	return distanceNm / speedKts, true
}

// Snapshot is the full session view served to the UI.
type Snapshot struct {
	Phase          Phase             `json:"phase"`
	Origin         WaypointForm      `json:"origin"`
	Destination    WaypointForm      `json:"destination"`
	SpeedKts       float64           `json:"speed_kts"`
	Weights        plan.Weights      `json:"weights"`
	Avoidance      bool              `json:"avoidance_enabled"`
	Layers         Layers            `json:"layers"`
	Result         *plan.RouteResult `json:"result,omitempty"`
	HazardRing     []latlon.LatLon   `json:"hazard_ring,omitempty"`
	EtaHours       *float64          `json:"eta_hours,omitempty"`
	Error          string            `json:"error,omitempty"`
	ShareQuery     string            `json:"share_query,omitempty"`
	ServiceHealthy bool              `json:"service_healthy"`
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Phase:          s.phase,
		Origin:         s.origin,
		Destination:    s.destination,
		SpeedKts:       s.speedKts,
		Weights:        s.weights,
		Avoidance:      s.avoidance,
		Layers:         s.layers,
		Result:         s.result,
		HazardRing:     s.hazardRing,
		ShareQuery:     s.share,
		ServiceHealthy: s.serviceHealthy,
	}
	if s.lastErr != nil {
		snap.Error = s.lastErr.Error()
	}
	if s.result != nil {
		if eta, ok := ETAHours(s.result.DistanceNm, s.speedKts); ok {
			snap.EtaHours = &eta
		}
	}
	return snap
}

func parseAxis(point, axis, raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, &plan.InvalidCoordinateError{Point: point, Axis: axis, Value: math.NaN()}
	}
	return v, nil
}

func parseWaypoint(point string, form WaypointForm) (latlon.LatLon, error) {
	lat, err := parseAxis(point, "lat", form.RawLat)
	if err != nil {
		return latlon.LatLon{}, err
	}
	lon, err := parseAxis(point, "lon", form.RawLon)
	if err != nil {
		return latlon.LatLon{}, err
	}
	return latlon.LatLon{Lat: lat, Lon: lon}, nil
}
