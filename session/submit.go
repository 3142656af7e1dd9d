package session

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/passage-nav/console/hazard"
	"github.com/passage-nav/console/latlon"
	"github.com/passage-nav/console/plan"
)

// Submit runs one planning attempt: parse and validate the waypoint forms,
// build the request variant, call the remote service and apply the outcome.
// It is a no-op returning ErrPlanInFlight while a previous submission has not
// settled; a validation failure keeps the machine in Idle without any network
// call. Exactly one request is in flight at a time.
func (s *Session) Submit(ctx context.Context) error {
	s.mu.Lock()
	if s.phase == PhaseSubmitting {
		s.mu.Unlock()
		return ErrPlanInFlight
	}

	origin, destination, err := s.parseFormsLocked()
	if err == nil {
		err = plan.Validate(origin, destination)
	}
	if err != nil {
		s.lastErr = err
		s.mu.Unlock()
		s.emit(EventInvalidInput)
		return err
	}

	req := plan.Build(origin, destination, s.weights, s.avoidance)
	avoidance := s.avoidance
	speed := s.speedKts
	weights := s.weights
	s.phase = PhaseSubmitting
	s.lastErr = nil
	s.mu.Unlock()
	s.emit(EventSubmitting)

	log.WithFields(log.Fields{
		"endpoint": req.Endpoint(),
		"origin":   origin,
		"dest":     destination,
	}).Info("Submitting plan")

	var result *plan.RouteResult
	switch r := req.(type) {
	case plan.Direct:
		result, err = s.planner.Plan(ctx, r)
	case plan.Avoid:
		result, err = s.planner.PlanAvoid(ctx, r)
	}

	if err != nil {
		s.mu.Lock()
		failure := &PlanningFailedError{Detail: err.Error()}
		s.lastErr = failure
		s.result = nil
		if avoidance {
			s.hazardRing = nil
		}
		s.phase = PhaseIdle
		s.mu.Unlock()
		s.emit(EventPlanFailed)
		log.Warnf("Plan failed: %s", failure.Detail)
		return failure
	}

	s.mu.Lock()
	s.result = result
	if avoidance {
		zone := hazard.Zone{LatLon: plan.Midpoint(origin, destination), RadiusNm: plan.HazardRadiusNm}
		s.hazardRing = zone.Ring(hazard.DefaultSteps)
	}
	s.share = EncodeShare(origin, destination, speed, weights, avoidance).Encode()
	s.fitLocked(result.Points)
	s.phase = PhaseIdle
	s.mu.Unlock()
	s.emit(EventPlanSucceeded)

	log.Infof("Plan succeeded: %.1f nm via %s", result.DistanceNm, result.Algo)
	return nil
}

func (s *Session) parseFormsLocked() (latlon.LatLon, latlon.LatLon, error) {
	origin, err := parseWaypoint("origin", s.origin)
	if err != nil {
		return latlon.LatLon{}, latlon.LatLon{}, err
	}
	destination, err := parseWaypoint("destination", s.destination)
	if err != nil {
		return latlon.LatLon{}, latlon.LatLon{}, err
	}
	return origin, destination, nil
}
