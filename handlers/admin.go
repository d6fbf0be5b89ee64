// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/quickly-elect/apperr"
	"github.com/danielhkuo/quickly-elect/auth"
	"github.com/danielhkuo/quickly-elect/middleware"
	"github.com/danielhkuo/quickly-elect/models"
)

// Pinger reports database reachability and entity counts
type Pinger interface {
	Ping(ctx context.Context) error
	Counts(ctx context.Context) (models.EntityCounts, error)
}

type AdminHandler struct {
	authn *auth.AdminAuthenticator
	db    Pinger
}

func NewAdminHandler(authn *auth.AdminAuthenticator, db Pinger) *AdminHandler {
	return &AdminHandler{authn: authn, db: db}
}

// Login handles POST /admin/login
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.AdminLoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	token, err := h.authn.Login(req.Username, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		slog.Warn("admin login failed", "username", req.Username, "remote", middleware.GetClientIP(r))
		middleware.WriteError(w, apperr.Wrap(apperr.KindUnauthenticated, err, "invalid username or password"))
		return
	}
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.AdminLoginResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(auth.AdminTokenTTL).UTC(),
	})
}

// Health handles GET /health
func (h *AdminHandler) Health(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HealthDB handles GET /health/db
// Reports entity counts, or 503 when the database is unreachable.
func (h *AdminHandler) HealthDB(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(r.Context()); err != nil {
		slog.Error("database ping failed", "error", err)
		middleware.ErrorResponse(w, http.StatusServiceUnavailable, "Database unreachable")
		return
	}
	counts, err := h.db.Counts(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, counts)
}
