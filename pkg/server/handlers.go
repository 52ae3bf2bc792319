package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"routedesk-hq/routedesk/pkg/audit"
	"routedesk-hq/routedesk/pkg/nginx"
	"routedesk-hq/routedesk/pkg/service"
	"routedesk-hq/routedesk/pkg/store"
	"routedesk-hq/routedesk/pkg/validate"
)

// fragmentsRequest is the body of validate and submit calls.
type fragmentsRequest struct {
	UpstreamsConfig string `json:"upstreams_config"`
	LocationsConfig string `json:"locations_config"`
}

// validateResponse reports the outcome of a validation run. Errors
// holds every violation when the fragments are rejected.
type validateResponse struct {
	Valid     bool                  `json:"valid"`
	Errors    []string              `json:"errors,omitempty"`
	Locations []nginx.LocationBlock `json:"locations,omitempty"`
}

// configResponse is the committed configuration of a team in an
// environment.
type configResponse struct {
	Team            string `json:"team"`
	Environment     string `json:"environment"`
	UpstreamsConfig string `json:"upstreams_config"`
	LocationsConfig string `json:"locations_config"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeServiceError maps service and store errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "change request not found")
	case errors.Is(err, store.ErrNotAbandonable):
		writeError(w, http.StatusConflict, "submitted requests cannot be abandoned")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeFragments(w http.ResponseWriter, r *http.Request) (fragmentsRequest, bool) {
	var req fragmentsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return req, false
	}
	return req, true
}

// handleValidate runs the pipeline and reports every violation without
// queueing anything.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	team := r.PathValue("team")
	req, ok := decodeFragments(w, r)
	if !ok {
		return
	}

	result, err := s.service.Validate(r.Context(), team, req.UpstreamsConfig, req.LocationsConfig)
	if err != nil {
		if ve, isValidation := validate.AsValidationError(err); isValidation {
			writeJSON(w, http.StatusUnprocessableEntity, validateResponse{
				Valid:  false,
				Errors: ve.Messages,
			})
			return
		}
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, validateResponse{
		Valid:     true,
		Locations: result.Locations,
	})
}

// handleSubmit validates and queues a change request. Acceptance means
// queued, not submitted: the worker opens the pull request later.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	team := r.PathValue("team")
	environment := r.PathValue("env")
	req, ok := decodeFragments(w, r)
	if !ok {
		return
	}

	created, err := s.service.Submit(r.Context(), team, environment, req.UpstreamsConfig, req.LocationsConfig)
	if err != nil {
		if ve, isValidation := validate.AsValidationError(err); isValidation {
			writeJSON(w, http.StatusUnprocessableEntity, validateResponse{
				Valid:  false,
				Errors: ve.Messages,
			})
			return
		}
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, created)
}

// handleListRequests returns a team's change requests, newest first.
func (s *Server) handleListRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := s.service.Requests(r.Context(), r.PathValue("team"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, requests)
}

// handleAbandon withdraws a request that has not been submitted.
func (s *Server) handleAbandon(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Abandon(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleCurrentConfig returns the committed fragments for a team in an
// environment.
func (s *Server) handleCurrentConfig(w http.ResponseWriter, r *http.Request) {
	team := r.PathValue("team")
	environment := r.PathValue("env")

	pair, err := s.service.CurrentConfig(r.Context(), team, environment)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, configResponse{
		Team:            team,
		Environment:     environment,
		UpstreamsConfig: pair.Upstreams,
		LocationsConfig: pair.Locations,
	})
}

// handleHistory returns a team's audit trail, newest first. Supports
// limit and offset query parameters.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	query := audit.Query{Team: r.PathValue("team")}
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		query.Limit = limit
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			writeError(w, http.StatusBadRequest, "invalid offset")
			return
		}
		query.Offset = offset
	}

	events, err := s.service.History(r.Context(), query)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// handleHealth is the liveness probe.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.health.CheckLiveness(r.Context()))
}

// handleReady is the readiness probe. Degraded dependencies produce a
// 503 so load balancers stop routing here.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status := s.health.CheckReadiness(r.Context())
	code := http.StatusOK
	if status.Status != "ready" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, status)
}
