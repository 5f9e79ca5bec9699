package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tripmesh/tripmesh/realtime"
	"github.com/tripmesh/tripmesh/session"
	"github.com/tripmesh/tripmesh/trip"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "tripmeshd",
	})
}

// handlePlan runs a full orchestration for the posted request and returns
// the assembled plan. With realtime_updates set, the session starts
// monitored.
func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	var req trip.PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	plan, err := s.svc.Plan(r.Context(), req)
	if err != nil {
		s.logger.Error("plan failed", "error", err)
		writeError(w, http.StatusInternalServerError, "planning failed")
		return
	}

	if req.RealtimeUpdates {
		if err := s.monitor.Start(plan.TripID); err != nil {
			s.logger.Warn("monitoring not started", "trip", plan.TripID, "error", err)
		}
	}
	writeJSON(w, http.StatusOK, plan)
}

// handleEvent accepts an external condition change for a known session and
// publishes it on the session channel.
func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	tripID := chi.URLParam(r, "tripID")
	if _, err := s.store.Get(tripID); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			writeError(w, http.StatusNotFound, "unknown trip: "+tripID)
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var u realtime.Update
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		writeError(w, http.StatusBadRequest, "invalid event body: "+err.Error())
		return
	}
	if u.Kind == "" {
		writeError(w, http.StatusBadRequest, "event kind is required")
		return
	}
	if u.Severity == "" {
		u.Severity = realtime.SeverityInfo
	}

	s.hub.Publish(tripID, u)
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted", "trip_id": tripID})
}

// handleSessionHealth reports whether the session is monitored.
func (s *Server) handleSessionHealth(w http.ResponseWriter, r *http.Request) {
	tripID := chi.URLParam(r, "tripID")
	sess, err := s.store.Get(tripID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			writeError(w, http.StatusNotFound, "unknown trip: "+tripID)
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	status := "not_monitored"
	if s.monitor.Active(tripID) {
		status = "monitored"
	}
	writeJSON(w, http.StatusOK, sessionHealth{
		TripID:     tripID,
		Status:     status,
		LastUpdate: sess.UpdatedAt,
	})
}

func (s *Server) handleConnectionStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.hub.Stats())
}

func (s *Server) handleProviderStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, providerStatus{
		Providers: s.providers.ProbeAll(r.Context()),
		LastUsed:  s.providers.LastUsed(),
	})
}

type sessionHealth struct {
	TripID     string    `json:"trip_id"`
	Status     string    `json:"status"`
	LastUpdate time.Time `json:"last_update"`
}

type providerStatus struct {
	Providers any    `json:"providers"`
	LastUsed  string `json:"last_used,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
