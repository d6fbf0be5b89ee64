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

type VoterHandler struct {
	store  *store.Store
	svc    *election.Service
	images imagestore.Store
}

func NewVoterHandler(st *store.Store, svc *election.Service, images imagestore.Store) *VoterHandler {
	return &VoterHandler{store: st, svc: svc, images: images}
}

// ListVoters handles GET /voters
func (h *VoterHandler) ListVoters(w http.ResponseWriter, r *http.Request) {
	voters, err := h.store.ListVoters(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.VotersResponse{Voters: voters})
}

// RegisterVoter handles POST /voters
// Accepts a multipart form with name, grade and an optional photo file.
// The response carries the generated student ID and voter code.
func (h *VoterHandler) RegisterVoter(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}

	req := models.RegisterVoterRequest{
		Name:  strings.TrimSpace(r.FormValue("name")),
		Grade: strings.TrimSpace(r.FormValue("grade")),
	}
	if req.Name == "" || req.Grade == "" {
		middleware.WriteError(w, apperr.New(apperr.KindInvalidInput, "name and grade are required"))
		return
	}

	photo, err := uploadPhoto(r.Context(), r, h.images, imagestore.FolderVoters)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	req.PhotoURL = photo

	voter, err := h.store.CreateVoter(r.Context(), req)
	if err != nil {
		if photo != nil {
			deletePhotos(r.Context(), h.images, *photo)
		}
		middleware.WriteError(w, err)
		return
	}

	slog.Info("voter registered", "voter_id", voter.ID, "student_id", voter.StudentID)
	middleware.JSONResponse(w, http.StatusCreated, voter)
}

// DeleteVoter handles DELETE /voters/{id}
// Every vote the voter cast is taken back off the tallies first.
func (h *VoterHandler) DeleteVoter(w http.ResponseWriter, r *http.Request) {
	voter, err := h.svc.DeleteVoter(r.Context(), r.PathValue("id"))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	if voter.PhotoURL != nil {
		deletePhotos(r.Context(), h.images, *voter.PhotoURL)
	}

	slog.Info("voter deleted", "voter_id", voter.ID)
	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{Message: "Voter deleted"})
}

// VoterStats handles GET /voters/stats
func (h *VoterHandler) VoterStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.VoterStats(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, stats)
}
