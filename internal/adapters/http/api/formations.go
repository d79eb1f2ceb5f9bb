// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
)

// FormationsHandler handles formation job requests.
type FormationsHandler struct {
	deps     Dependencies
	maxLimit int
}

// NewFormationsHandler creates a new formations handler.
func NewFormationsHandler(deps Dependencies, maxLimit int) *FormationsHandler {
	return &FormationsHandler{
		deps:     deps,
		maxLimit: maxLimit,
	}
}

// HandleFormations dispatches POST /formations and GET /formations?limit=N.
func (h *FormationsHandler) HandleFormations(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handleSubmit(w, r)
	case http.MethodGet:
		h.handleList(w, r)
	default:
		http.NotFound(w, r)
	}
}

// handleSubmit handles POST /formations requests.
func (h *FormationsHandler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_formation"

	var req formationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	// Idempotency check - mark as seen first
	if h.deps.SeenAndRecord(r.Context(), req.RequestID) {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}

	// Try to submit for async processing
	jobID, ok := h.deps.Submit(r.Context(), req.toJob())
	if !ok {
		// Rollback the "seen" status since submit failed
		h.deps.Unrecord(r.Context(), req.RequestID)
		writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", Duplicate: false, JobID: jobID})
}

// handleList handles GET /formations?limit=N requests.
func (h *FormationsHandler) handleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_formations"

	limitStr := r.URL.Query().Get("limit")
	n, err := strconv.Atoi(limitStr)
	if err != nil || n < 1 {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	if n > h.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
		return
	}
	jobs, err := h.deps.Recent(r.Context(), n)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

// HandleGetFormation handles GET /formations/{id} requests.
func (h *FormationsHandler) HandleGetFormation(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_formation"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	// Extract path parameter after /formations/
	id := strings.TrimPrefix(r.URL.Path, "/formations/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	job, err := h.deps.Job(r.Context(), id)
	if err != nil {
		// If upstream exposes not-found, translate; otherwise 500
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, job)
}
