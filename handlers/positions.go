// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/quickly-elect/apperr"
	"github.com/danielhkuo/quickly-elect/imagestore"
	"github.com/danielhkuo/quickly-elect/middleware"
	"github.com/danielhkuo/quickly-elect/models"
	"github.com/danielhkuo/quickly-elect/store"
)

type PositionHandler struct {
	store  *store.Store
	images imagestore.Store
}

func NewPositionHandler(st *store.Store, images imagestore.Store) *PositionHandler {
	return &PositionHandler{store: st, images: images}
}

// ListPositions handles GET /sessions/{id}/positions
func (h *PositionHandler) ListPositions(w http.ResponseWriter, r *http.Request) {
	positions, err := h.store.ListPositions(r.Context(), r.PathValue("id"))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.PositionsResponse{Positions: positions})
}

// CreatePosition handles POST /positions
func (h *PositionHandler) CreatePosition(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePositionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.GradeFilter = strings.TrimSpace(req.GradeFilter)
	switch {
	case req.Name == "":
		middleware.WriteError(w, apperr.New(apperr.KindInvalidInput, "name is required"))
		return
	case req.SessionID == "":
		middleware.WriteError(w, apperr.New(apperr.KindInvalidInput, "session_id is required"))
		return
	case req.VotingType != "" && req.VotingType != models.VotingSingle && req.VotingType != models.VotingDouble:
		middleware.WriteError(w, apperr.New(apperr.KindInvalidInput, "voting_type must be %q or %q", models.VotingSingle, models.VotingDouble))
		return
	}

	pos, err := h.store.CreatePosition(r.Context(), req)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	slog.Info("position created", "position_id", pos.ID, "session_id", pos.SessionID, "voting_type", pos.VotingType)
	middleware.JSONResponse(w, http.StatusCreated, pos)
}

// DeletePosition handles DELETE /positions/{id}
func (h *PositionHandler) DeletePosition(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	photos, err := h.store.DeletePosition(r.Context(), id)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	deletePhotos(r.Context(), h.images, photos...)

	slog.Info("position deleted", "position_id", id)
	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{Message: "Position deleted"})
}
