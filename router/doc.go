// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the election API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(router.Deps{
		Store:    st,
		Service:  svc,
		Admin:    authn,
		Images:   images,
		Gatherer: prometheus.DefaultGatherer,
	})

A nil Images falls back to imagestore.Noop. A nil Gatherer leaves
/metrics unregistered.

# Endpoints

Public:

	GET  /health
	GET  /health/db
	GET  /metrics
	POST /admin/login

Administration (requires Authorization: Bearer <admin token>):

	GET    /sessions
	POST   /sessions
	POST   /sessions/{id}/activate
	DELETE /sessions/{id}
	POST   /sessions/{id}/reset
	GET    /sessions/{id}/positions
	POST   /positions
	DELETE /positions/{id}
	POST   /positions/{id}/reset
	GET    /positions/{id}/candidates
	POST   /candidates
	DELETE /candidates/{id}
	GET    /voters
	POST   /voters
	GET    /voters/stats
	DELETE /voters/{id}
	POST   /voters/{id}/reset
	GET    /results/{session_id}
	GET    /results/{session_id}/audit

Voting (requires X-Voter-Token except verify):

	POST /voting/verify
	GET  /voting/positions
	POST /voting/vote
	POST /voting/complete
*/
package router
