// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"fmt"
	"net/http"

	"github.com/danielhkuo/quickly-elect/election"
	"github.com/danielhkuo/quickly-elect/middleware"
	"github.com/danielhkuo/quickly-elect/models"
)

type ResultsHandler struct {
	svc *election.Service
}

func NewResultsHandler(svc *election.Service) *ResultsHandler {
	return &ResultsHandler{svc: svc}
}

// GetResults handles GET /results/{session_id}
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	results, err := h.svc.Results(r.Context(), r.PathValue("session_id"))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, results)
}

// GetAudit handles GET /results/{session_id}/audit
// Lists candidates whose stored tally disagrees with their ballot records.
func (h *ResultsHandler) GetAudit(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.Audit(r.Context(), r.PathValue("session_id"))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, report)
}

// ResetSession handles POST /sessions/{id}/reset
func (h *ResultsHandler) ResetSession(w http.ResponseWriter, r *http.Request) {
	removed, err := h.svc.ResetAll(r.Context(), r.PathValue("id"))
	h.respondReset(w, "session", removed, err)
}

// ResetPosition handles POST /positions/{id}/reset
func (h *ResultsHandler) ResetPosition(w http.ResponseWriter, r *http.Request) {
	removed, err := h.svc.ResetPosition(r.Context(), r.PathValue("id"))
	h.respondReset(w, "position", removed, err)
}

// ResetVoter handles POST /voters/{id}/reset
func (h *ResultsHandler) ResetVoter(w http.ResponseWriter, r *http.Request) {
	removed, err := h.svc.ResetVoter(r.Context(), r.PathValue("id"))
	h.respondReset(w, "voter", removed, err)
}

func (h *ResultsHandler) respondReset(w http.ResponseWriter, scope string, removed int, err error) {
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{
		Message: fmt.Sprintf("Reset %s: %d ballot records removed", scope, removed),
	})
}
