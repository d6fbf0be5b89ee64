// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/quickly-elect/apperr"
	"github.com/danielhkuo/quickly-elect/election"
	"github.com/danielhkuo/quickly-elect/imagestore"
	"github.com/danielhkuo/quickly-elect/middleware"
	"github.com/danielhkuo/quickly-elect/models"
	"github.com/danielhkuo/quickly-elect/store"
)

type SessionHandler struct {
	store  *store.Store
	svc    *election.Service
	images imagestore.Store
}

func NewSessionHandler(st *store.Store, svc *election.Service, images imagestore.Store) *SessionHandler {
	return &SessionHandler{store: st, svc: svc, images: images}
}

// ListSessions handles GET /sessions
func (h *SessionHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.store.ListSessions(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.SessionsResponse{Sessions: sessions})
}

// CreateSession handles POST /sessions
// The first session ever created becomes active.
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSessionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		middleware.WriteError(w, apperr.New(apperr.KindInvalidInput, "name is required"))
		return
	}
	if len(req.Name) > 100 {
		middleware.WriteError(w, apperr.New(apperr.KindInvalidInput, "name must be at most 100 characters"))
		return
	}

	session, err := h.store.CreateSession(r.Context(), req)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	slog.Info("session created", "session_id", session.ID, "name", session.Name, "active", session.IsActive)
	middleware.JSONResponse(w, http.StatusCreated, session)
}

// ActivateSession handles POST /sessions/{id}/activate
func (h *SessionHandler) ActivateSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.svc.ActivateSession(r.Context(), r.PathValue("id"))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, session)
}

// DeleteSession handles DELETE /sessions/{id}
// Removes positions, candidates and ballots of the session.
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	photos, err := h.svc.DeleteSession(r.Context(), id)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	deletePhotos(r.Context(), h.images, photos...)

	slog.Info("session deleted", "session_id", id)
	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{Message: "Session deleted"})
}
