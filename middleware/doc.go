// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health/db", middleware.WithLogging(handler))

Logs request start (method, path, remote) and completion (status,
duration_ms).

# Metrics

Instrument counts requests by method and status class and records latency:

	handler := middleware.Instrument(m, mux)

# Authentication

RequireAdmin validates an "Authorization: Bearer" admin token and stores
the admin username in the request context:

	mux.HandleFunc("GET /sessions", middleware.RequireAdmin(authn)(h.ListSessions))

VoterToken reads the X-Voter-Token header issued by voter verification.

# CORS Middleware

Enable cross-origin requests for frontend access:

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

# JSON Helpers

Write JSON responses and classified errors:

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.WriteError(w, err)

WriteError maps the apperr kind of err to a status code and writes
{"error": kind, "message": text}. Unclassified errors become a 500 with a
generic message.

# Client IP Extraction

Get the original client IP (handles X-Forwarded-For, X-Real-IP):

	ip := middleware.GetClientIP(r)

The address is only ever stored as a salted hash.
*/
package middleware
