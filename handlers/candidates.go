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

type CandidateHandler struct {
	store  *store.Store
	images imagestore.Store
}

func NewCandidateHandler(st *store.Store, images imagestore.Store) *CandidateHandler {
	return &CandidateHandler{store: st, images: images}
}

// ListCandidates handles GET /positions/{id}/candidates
func (h *CandidateHandler) ListCandidates(w http.ResponseWriter, r *http.Request) {
	candidates, err := h.store.ListCandidates(r.Context(), r.PathValue("id"))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.CandidatesResponse{Candidates: candidates})
}

// CreateCandidate handles POST /candidates
// Accepts a multipart form with name, position_id, grade, manifesto and an
// optional photo file.
func (h *CandidateHandler) CreateCandidate(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}

	req := models.CreateCandidateRequest{
		Name:       strings.TrimSpace(r.FormValue("name")),
		PositionID: strings.TrimSpace(r.FormValue("position_id")),
		Grade:      strings.TrimSpace(r.FormValue("grade")),
		Manifesto:  strings.TrimSpace(r.FormValue("manifesto")),
	}
	if req.Name == "" || req.PositionID == "" {
		middleware.WriteError(w, apperr.New(apperr.KindInvalidInput, "name and position_id are required"))
		return
	}

	// Check the position before spending an upload on it
	if _, err := h.store.GetPosition(r.Context(), req.PositionID); err != nil {
		middleware.WriteError(w, err)
		return
	}

	photo, err := uploadPhoto(r.Context(), r, h.images, imagestore.FolderCandidates)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	req.PhotoURL = photo

	candidate, err := h.store.CreateCandidate(r.Context(), req)
	if err != nil {
		if photo != nil {
			deletePhotos(r.Context(), h.images, *photo)
		}
		middleware.WriteError(w, err)
		return
	}

	slog.Info("candidate created", "candidate_id", candidate.ID, "position_id", candidate.PositionID)
	middleware.JSONResponse(w, http.StatusCreated, candidate)
}

// DeleteCandidate handles DELETE /candidates/{id}
func (h *CandidateHandler) DeleteCandidate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	photo, err := h.store.DeleteCandidate(r.Context(), id)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	if photo != nil {
		deletePhotos(r.Context(), h.images, *photo)
	}

	slog.Info("candidate deleted", "candidate_id", id)
	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{Message: "Candidate deleted"})
}
