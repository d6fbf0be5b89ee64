// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danielhkuo/quickly-elect/auth"
	"github.com/danielhkuo/quickly-elect/election"
	"github.com/danielhkuo/quickly-elect/handlers"
	"github.com/danielhkuo/quickly-elect/imagestore"
	"github.com/danielhkuo/quickly-elect/middleware"
	"github.com/danielhkuo/quickly-elect/store"
)

// Deps are the collaborators the handlers are built from
type Deps struct {
	Store    *store.Store
	Service  *election.Service
	Admin    *auth.AdminAuthenticator
	Images   imagestore.Store
	Gatherer prometheus.Gatherer
}

func NewRouter(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	images := d.Images
	if images == nil {
		images = imagestore.Noop{}
	}

	// Initialize handlers
	adminHandler := handlers.NewAdminHandler(d.Admin, d.Store)
	sessionHandler := handlers.NewSessionHandler(d.Store, d.Service, images)
	positionHandler := handlers.NewPositionHandler(d.Store, images)
	candidateHandler := handlers.NewCandidateHandler(d.Store, images)
	voterHandler := handlers.NewVoterHandler(d.Store, d.Service, images)
	votingHandler := handlers.NewVotingHandler(d.Service)
	resultsHandler := handlers.NewResultsHandler(d.Service)

	requireAdmin := middleware.RequireAdmin(d.Admin)
	admin := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(requireAdmin(h))
	}

	// Health and metrics
	mux.HandleFunc("GET /health", adminHandler.Health)
	mux.HandleFunc("GET /health/db", middleware.WithLogging(adminHandler.HealthDB))
	if d.Gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	mux.HandleFunc("POST /admin/login", middleware.WithLogging(adminHandler.Login))

	// Sessions (admin)
	mux.HandleFunc("GET /sessions", admin(sessionHandler.ListSessions))
	mux.HandleFunc("POST /sessions", admin(sessionHandler.CreateSession))
	mux.HandleFunc("POST /sessions/{id}/activate", admin(sessionHandler.ActivateSession))
	mux.HandleFunc("DELETE /sessions/{id}", admin(sessionHandler.DeleteSession))

	// Positions and candidates (admin)
	mux.HandleFunc("GET /sessions/{id}/positions", admin(positionHandler.ListPositions))
	mux.HandleFunc("POST /positions", admin(positionHandler.CreatePosition))
	mux.HandleFunc("DELETE /positions/{id}", admin(positionHandler.DeletePosition))
	mux.HandleFunc("GET /positions/{id}/candidates", admin(candidateHandler.ListCandidates))
	mux.HandleFunc("POST /candidates", admin(candidateHandler.CreateCandidate))
	mux.HandleFunc("DELETE /candidates/{id}", admin(candidateHandler.DeleteCandidate))

	// Voters (admin)
	mux.HandleFunc("GET /voters", admin(voterHandler.ListVoters))
	mux.HandleFunc("POST /voters", admin(voterHandler.RegisterVoter))
	mux.HandleFunc("GET /voters/stats", admin(voterHandler.VoterStats))
	mux.HandleFunc("DELETE /voters/{id}", admin(voterHandler.DeleteVoter))

	// Voting (voter token)
	mux.HandleFunc("POST /voting/verify", middleware.WithLogging(votingHandler.Verify))
	mux.HandleFunc("GET /voting/positions", middleware.WithLogging(votingHandler.Positions))
	mux.HandleFunc("POST /voting/vote", middleware.WithLogging(votingHandler.Vote))
	mux.HandleFunc("POST /voting/complete", middleware.WithLogging(votingHandler.Complete))

	// Results and resets (admin)
	mux.HandleFunc("GET /results/{session_id}", admin(resultsHandler.GetResults))
	mux.HandleFunc("GET /results/{session_id}/audit", admin(resultsHandler.GetAudit))
	mux.HandleFunc("POST /sessions/{id}/reset", admin(resultsHandler.ResetSession))
	mux.HandleFunc("POST /positions/{id}/reset", admin(resultsHandler.ResetPosition))
	mux.HandleFunc("POST /voters/{id}/reset", admin(resultsHandler.ResetVoter))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("quickly-elect API v1"))
	})

	return mux
}
