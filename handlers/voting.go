// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/quickly-elect/election"
	"github.com/danielhkuo/quickly-elect/middleware"
	"github.com/danielhkuo/quickly-elect/models"
)

type VotingHandler struct {
	svc *election.Service
}

func NewVotingHandler(svc *election.Service) *VotingHandler {
	return &VotingHandler{svc: svc}
}

// Verify handles POST /voting/verify
// Exchanges a voter code for a voter token used by the other voting routes.
func (h *VotingHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req models.VerifyVoterRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	resp, err := h.svc.Verify(r.Context(), req.VoterCode)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	slog.Info("voter verified", "voter_id", resp.Voter.ID, "session_id", resp.Session.ID)
	middleware.JSONResponse(w, http.StatusOK, resp)
}

// Positions handles GET /voting/positions
func (h *VotingHandler) Positions(w http.ResponseWriter, r *http.Request) {
	positions, err := h.svc.VotingPositions(r.Context(), middleware.VoterToken(r))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.VotingPositionsResponse{Positions: positions})
}

// Vote handles POST /voting/vote
// A request with second_candidate_id is a dual-choice ballot.
func (h *VotingHandler) Vote(w http.ResponseWriter, r *http.Request) {
	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	token := middleware.VoterToken(r)
	meta := election.ClientMeta{
		IP:        middleware.GetClientIP(r),
		UserAgent: r.UserAgent(),
	}
	positionID := strings.TrimSpace(req.PositionID)
	first := strings.TrimSpace(req.CandidateID)
	second := strings.TrimSpace(req.SecondCandidateID)

	var ballotIDs []string
	if second == "" {
		rec, err := h.svc.CastSingle(r.Context(), token, positionID, first, meta)
		if err != nil {
			middleware.WriteError(w, err)
			return
		}
		ballotIDs = []string{rec.ID}
	} else {
		recs, err := h.svc.CastDouble(r.Context(), token, positionID, first, second, meta)
		if err != nil {
			middleware.WriteError(w, err)
			return
		}
		for _, rec := range recs {
			ballotIDs = append(ballotIDs, rec.ID)
		}
	}

	middleware.JSONResponse(w, http.StatusCreated, models.CastVoteResponse{
		BallotIDs: ballotIDs,
		Message:   "Vote recorded",
	})
}

// Complete handles POST /voting/complete
// Marks the voter as done and invalidates the voter token.
func (h *VotingHandler) Complete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.CompleteVoting(r.Context(), middleware.VoterToken(r)); err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{Message: "Voting completed"})
}
