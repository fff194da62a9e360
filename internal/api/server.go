// Package api provides the local HTTP control surface for powertray.
// It is the programmatic equivalent of the tray menu: every menu
// command maps to an endpoint, and the menu model itself is served so
// front-ends can render it.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/powertray/powertray/internal/afk"
	"github.com/powertray/powertray/internal/powerplan"
	"github.com/powertray/powertray/internal/tray"
)

// Status is the daemon's user-visible state snapshot.
type Status struct {
	Tooltip           string    `json:"tooltip"`
	ActivePlanID      uuid.UUID `json:"active_plan_id"`
	ActivePlanName    string    `json:"active_plan_name"`
	AfkTimeoutMinutes int       `json:"afk_timeout_minutes"`
	AfkTargetPlan     uuid.UUID `json:"afk_target_plan"`
	AfkApplied        bool      `json:"afk_applied"`
	IdleSeconds       int       `json:"idle_seconds"`
	StartupEnabled    bool      `json:"startup_enabled"`
}

// PlanEntry is one enumerated plan plus whether it is active.
type PlanEntry struct {
	powerplan.Plan
	Active bool `json:"active"`
}

// Controller is the daemon interface the API drives. Every call is
// serialized through the daemon's event loop.
type Controller interface {
	Status() (Status, error)
	Plans() ([]PlanEntry, error)
	Menu() (tray.Model, error)
	ActivatePlan(id uuid.UUID) error
	ActivatePlanIndex(index int) error
	SetAfkTimeout(minutes int) error
	SetAfkTarget(id uuid.UUID) error
	SetAfkTargetIndex(index int) error
	AfkOff() error
	SetStartup(enabled bool) error
	Refresh() error
}

// ErrBadRequest marks controller rejections that are the caller's
// fault (unknown plan, invalid timeout) rather than OS failures.
var ErrBadRequest = errors.New("api: bad request")

// Server is the powertray control API server.
type Server struct {
	ctrl           Controller
	metricsEnabled bool
}

// NewServer creates a control API server around a daemon controller.
func NewServer(ctrl Controller) *Server {
	return &Server{ctrl: ctrl}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/plans", s.handlePlans)
		r.Get("/menu", s.handleMenu)
		r.Post("/plans/activate", s.handleActivate)
		r.Post("/afk/timeout", s.handleAfkTimeout)
		r.Post("/afk/target", s.handleAfkTarget)
		r.Post("/afk/off", s.handleAfkOff)
		r.Post("/startup", s.handleStartup)
		r.Post("/refresh", s.handleRefresh)
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.ctrl.Status()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handlePlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.ctrl.Plans()
	if err != nil {
		writeError(w, err)
		return
	}
	if plans == nil {
		plans = []PlanEntry{}
	}
	writeJSON(w, http.StatusOK, plans)
}

func (s *Server) handleMenu(w http.ResponseWriter, r *http.Request) {
	m, err := s.ctrl.Menu()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// planRef selects a plan either by identifier or by menu position.
type planRef struct {
	ID    string `json:"id,omitempty"`
	Index *int   `json:"index,omitempty"`
}

func (s *Server) handleActivate(w http.ResponseWriter, r *http.Request) {
	s.withPlanRef(w, r, s.ctrl.ActivatePlan, s.ctrl.ActivatePlanIndex)
}

func (s *Server) handleAfkTarget(w http.ResponseWriter, r *http.Request) {
	s.withPlanRef(w, r, s.ctrl.SetAfkTarget, s.ctrl.SetAfkTargetIndex)
}

func (s *Server) withPlanRef(w http.ResponseWriter, r *http.Request, byID func(uuid.UUID) error, byIndex func(int) error) {
	var ref planRef
	if err := json.NewDecoder(r.Body).Decode(&ref); err != nil {
		writeError(w, errBad("invalid body"))
		return
	}
	switch {
	case ref.ID != "":
		id, err := uuid.Parse(ref.ID)
		if err != nil {
			writeError(w, errBad("invalid plan id"))
			return
		}
		if err := byID(id); err != nil {
			writeError(w, err)
			return
		}
	case ref.Index != nil:
		if err := byIndex(*ref.Index); err != nil {
			writeError(w, err)
			return
		}
	default:
		writeError(w, errBad("id or index required"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAfkTimeout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Minutes int `json:"minutes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errBad("invalid body"))
		return
	}
	if err := s.ctrl.SetAfkTimeout(req.Minutes); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAfkOff(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.AfkOff(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStartup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errBad("invalid body"))
		return
	}
	if err := s.ctrl.SetStartup(req.Enabled); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.Refresh(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	if errors.Is(err, ErrBadRequest) || errors.Is(err, powerplan.ErrUnknownPlan) || errors.Is(err, afk.ErrInvalidTimeout) {
		code = http.StatusBadRequest
	}
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func errBad(msg string) error {
	return fmt.Errorf("%w: %s", ErrBadRequest, msg)
}
