package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"deployfreq/internal/chart"
	"deployfreq/internal/circleci"
	"deployfreq/internal/deploys"
	"deployfreq/internal/frequency"
	"deployfreq/internal/security"

	"github.com/go-chi/chi/v5"
)

// DefaultDays is the window used when a request does not set ?days=
const DefaultDays = 7

// HandleHealth handles health check requests
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":       "ok",
		"targets":      s.Registry.List(),
		"target_count": s.Registry.Count(),
	}

	s.respondJSON(w, http.StatusOK, response)
}

// HandleDeploys returns the per-day deploys of a target as JSON
func (s *Server) HandleDeploys(w http.ResponseWriter, r *http.Request) {
	targetName, days, buckets, ok := s.aggregate(w, r)
	if !ok {
		return
	}

	labels := buckets.Labels()
	byDay := make(map[string][]deploys.Deploy, len(labels))
	for _, label := range labels {
		byDay[label] = buckets.Deploys(label)
	}

	response := map[string]interface{}{
		"target":  targetName,
		"days":    days,
		"labels":  labels,
		"counts":  buckets.Counts(),
		"deploys": byDay,
	}

	s.respondJSON(w, http.StatusOK, response)
}

// HandleChart renders the per-day deploy counts of a target as an HTML chart
func (s *Server) HandleChart(w http.ResponseWriter, r *http.Request) {
	targetName, days, buckets, ok := s.aggregate(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	err := chart.Render(&buf, buckets, chart.Options{
		Title:    "Deploy frequency",
		Subtitle: fmt.Sprintf("%s, last %d days", targetName, days),
	})
	if err != nil {
		s.Logger.Error("Failed to render chart", "error", err, "target", targetName)
		s.respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to render chart"})
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		s.Logger.Error("Failed to write chart", "error", err)
	}
}

// aggregate validates the request, resolves the target, and aggregates its
// deploys. It writes the error response itself and reports false on failure.
func (s *Server) aggregate(w http.ResponseWriter, r *http.Request) (string, int, *frequency.DayBuckets, bool) {
	targetName := chi.URLParam(r, "targetName")

	// Validate target name for security
	if err := security.ValidateTargetName(targetName); err != nil {
		s.Logger.Warn("Invalid target name in request", "target", targetName, "error", err)
		s.respondJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("Invalid target name: %v", err)})
		return "", 0, nil, false
	}

	target, err := s.Registry.Get(targetName)
	if err != nil {
		s.respondJSON(w, http.StatusNotFound, map[string]string{"error": "Unknown target"})
		return "", 0, nil, false
	}

	days := DefaultDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		days, err = strconv.Atoi(raw)
		if err != nil || days < 1 || days > frequency.MaxDays {
			s.respondJSON(w, http.StatusBadRequest, map[string]string{
				"error": fmt.Sprintf("days must be an integer between 1 and %d", frequency.MaxDays),
			})
			return "", 0, nil, false
		}
	}

	if !s.LockManager.TryLock(targetName) {
		s.Logger.Warn("Aggregation already in progress, rejecting", "target", targetName)
		s.respondJSON(w, http.StatusTooManyRequests, map[string]string{"error": "Aggregation already in progress"})
		return "", 0, nil, false
	}
	defer s.LockManager.Unlock(targetName)

	buckets, err := frequency.NewAggregator(s.Resolver, target).Aggregate(r.Context(), days)
	if err != nil {
		s.respondError(w, targetName, err)
		return "", 0, nil, false
	}

	s.Logger.Info("aggregated deploys", "target", targetName, "days", days, "deploys", buckets.Total())
	return targetName, days, buckets, true
}

// respondError maps an aggregation failure to a status code
func (s *Server) respondError(w http.ResponseWriter, targetName string, err error) {
	var transport *circleci.TransportError
	var malformed *circleci.MalformedResponseError
	var violation *frequency.InvariantViolationError

	switch {
	case errors.As(err, &transport), errors.As(err, &malformed):
		s.Logger.Error("Upstream request failed", "error", err, "target", targetName)
		s.respondJSON(w, http.StatusBadGateway, map[string]string{"error": "Upstream request failed"})
	case errors.As(err, &violation):
		s.Logger.Error("Deploy outside aggregation window", "error", err, "target", targetName)
		s.respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal error"})
	default:
		s.Logger.Error("Aggregation failed", "error", err, "target", targetName)
		s.respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Aggregation failed"})
	}
}

// respondJSON sends a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.Logger.Error("Failed to encode JSON response", "error", err)
	}
}
