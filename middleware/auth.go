// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielhkuo/quickly-elect/apperr"
	"github.com/danielhkuo/quickly-elect/auth"
)

// VoterTokenHeader carries the pass issued by voter verification
const VoterTokenHeader = "X-Voter-Token"

type contextKey string

const adminKey contextKey = "admin"

// TokenValidator checks an admin bearer token
type TokenValidator interface {
	ValidateToken(token string) (*auth.AdminClaims, error)
}

// RequireAdmin rejects requests without a valid admin bearer token
func RequireAdmin(v TokenValidator) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				WriteError(w, apperr.New(apperr.KindUnauthenticated, "admin authentication required"))
				return
			}
			claims, err := v.ValidateToken(token)
			if err != nil {
				WriteError(w, apperr.Wrap(apperr.KindUnauthenticated, err, "invalid or expired admin token"))
				return
			}
			next(w, r.WithContext(context.WithValue(r.Context(), adminKey, claims.Username)))
		}
	}
}

// AdminFromContext returns the admin username set by RequireAdmin
func AdminFromContext(ctx context.Context) string {
	name, _ := ctx.Value(adminKey).(string)
	return name
}

// BearerToken returns the token from an "Authorization: Bearer" header
func BearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// VoterToken returns the voter pass token sent with the request
func VoterToken(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(VoterTokenHeader))
}
