// Package console exposes the planning session to the locally served map UI.
package console

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/gorilla/mux"
	"github.com/pkg/profile"

	"github.com/passage-nav/console/plan"
	"github.com/passage-nav/console/reference"
	"github.com/passage-nav/console/session"
	"github.com/passage-nav/console/weather"
)

//go:embed index.html
var indexHTML []byte

type Config struct {
	CPUProfile bool
	MapToken   string
}

type server struct {
	cpuprofile bool
	mapToken   string
	session    *session.Session
	ref        *reference.Store
	field      *weather.Field
	camera     *cameraBuffer
}

// cameraBuffer is the mounted map surface: a one-slot mailbox the UI drains.
// Commands are fire-and-forget; an unread command is replaced by the next.
type cameraBuffer struct {
	mu   sync.Mutex
	last *session.CameraCommand
}

func (b *cameraBuffer) FlyTo(cmd session.CameraCommand) {
	b.mu.Lock()
	b.last = &cmd
	b.mu.Unlock()
}

func (b *cameraBuffer) take() *session.CameraCommand {
	b.mu.Lock()
	defer b.mu.Unlock()
	cmd := b.last
	b.last = nil
	return cmd
}

// InitServer wires the session, reference store and wind field into a router
// and mounts the camera surface.
func InitServer(cfg Config, sess *session.Session, ref *reference.Store, field *weather.Field) *mux.Router {
	router := mux.NewRouter().StrictSlash(true)

	s := server{
		cpuprofile: cfg.CPUProfile,
		mapToken:   cfg.MapToken,
		session:    sess,
		ref:        ref,
		field:      field,
		camera:     &cameraBuffer{},
	}
	sess.MountSurface(s.camera)

	router.HandleFunc("/-/healthz", s.healthz).Methods(http.MethodGet)
	router.HandleFunc("/", s.index).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/state", s.state).Methods(http.MethodGet)
	api.HandleFunc("/plan", s.plan).Methods(http.MethodPost)
	api.HandleFunc("/dismiss", s.dismiss).Methods(http.MethodPost)
	api.HandleFunc("/layers/{name}", s.toggleLayer).Methods(http.MethodPost)
	api.HandleFunc("/share", s.share).Methods(http.MethodGet)
	api.HandleFunc("/reference/ports", s.ports).Methods(http.MethodGet)
	api.HandleFunc("/reference/piracy", s.piracy).Methods(http.MethodGet)
	api.HandleFunc("/weather/route", s.weatherAlongRoute).Methods(http.MethodGet)

	return router
}

func (s *server) healthz(w http.ResponseWriter, r *http.Request) {
	type health struct {
		Status string `json:"status"`
	}
	json.NewEncoder(w).Encode(health{Status: "Ok"})
}

func (s *server) index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

// stateView is the session snapshot plus the pending camera command and the
// map token the UI needs at boot.
type stateView struct {
	session.Snapshot
	Camera   *session.CameraCommand `json:"camera,omitempty"`
	MapToken string                 `json:"map_token,omitempty"`
}

func (s *server) state(w http.ResponseWriter, r *http.Request) {
	view := stateView{
		Snapshot: s.session.Snapshot(),
		Camera:   s.camera.take(),
		MapToken: s.mapToken,
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(view)
}

type planRequest struct {
	Origin      *session.WaypointForm `json:"origin"`
	Destination *session.WaypointForm `json:"destination"`
	SpeedKts    *float64              `json:"speed_kts"`
	Weights     *plan.Weights         `json:"weights"`
	Avoidance   *bool                 `json:"avoidance_enabled"`
}

func (s *server) plan(w http.ResponseWriter, req *http.Request) {
	if s.cpuprofile {
		defer profile.Start().Stop()
	}

	fields := log.Fields{
		"action": "plan",
	}
	if ip, err := getIp(req); err == nil {
		fields["IP"] = ip
	}
	requestLogger := log.WithFields(fields)

	var body planRequest
	if req.Body != nil {
		_ = json.NewDecoder(req.Body).Decode(&body)
	}
	if body.Origin != nil {
		s.session.SetOrigin(body.Origin.RawLat, body.Origin.RawLon)
	}
	if body.Destination != nil {
		s.session.SetDestination(body.Destination.RawLat, body.Destination.RawLon)
	}
	if body.SpeedKts != nil {
		s.session.SetSpeed(*body.SpeedKts)
	}
	if body.Weights != nil {
		s.session.SetWeights(*body.Weights)
	}
	if body.Avoidance != nil {
		s.session.SetAvoidance(*body.Avoidance)
	}

	err := s.session.Submit(req.Context())

	var invalid *plan.InvalidCoordinateError
	var failed *session.PlanningFailedError
	switch {
	case err == nil:
		requestLogger.Infof("Plan ok: %.1f nm", s.session.Result().DistanceNm)
	case errors.Is(err, session.ErrPlanInFlight):
		requestLogger.Warn("Plan rejected: already in flight")
		http.Error(w, err.Error(), http.StatusConflict)
		return
	case errors.As(err, &invalid):
		requestLogger.Warnf("Plan rejected: %s", err)
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	case errors.As(err, &failed):
		requestLogger.Warnf("Plan failed: %s", failed.Detail)
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.session.Snapshot())
}

func (s *server) dismiss(w http.ResponseWriter, r *http.Request) {
	s.session.Dismiss()
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) toggleLayer(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if err := s.session.ToggleLayer(name); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.session.Snapshot().Layers)
}

func (s *server) share(w http.ResponseWriter, r *http.Request) {
	query := s.session.ShareQuery()
	if query == "" {
		http.Error(w, "no plan to share yet", http.StatusNotFound)
		return
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	type shareLink struct {
		URL   string `json:"url"`
		Query string `json:"query"`
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(shareLink{
		URL:   fmt.Sprintf("%s://%s/?%s", scheme, r.Host, query),
		Query: query,
	})
}

func (s *server) ports(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/geo+json")
	json.NewEncoder(w).Encode(s.ref.Ports)
}

func (s *server) piracy(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/geo+json")
	json.NewEncoder(w).Encode(s.ref.Piracy)
}

func (s *server) weatherAlongRoute(w http.ResponseWriter, r *http.Request) {
	if s.field == nil {
		http.Error(w, "no wind field loaded", http.StatusNotFound)
		return
	}
	result := s.session.Result()
	if result == nil {
		http.Error(w, "no route planned", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.field.SampleAlong(result.Points))
}

func getIp(r *http.Request) (string, error) {
	ip := r.Header.Get("X-REAL-IP")
	netIP := net.ParseIP(ip)
	if netIP != nil {
		return ip, nil
	}

	ips := r.Header.Get("X-FORWARDED-FOR")
	splitIps := strings.Split(ips, ",")
	for _, ip := range splitIps {
		netIP := net.ParseIP(ip)
		if netIP != nil {
			return ip, nil
		}
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return "", err
	}
	netIP = net.ParseIP(ip)
	if netIP != nil {
		return ip, nil
	}
	return "", fmt.Errorf("no valid ip found")
}
