// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/quickly-elect/auth"
)

func TestRequireAdmin(t *testing.T) {
	hash, err := auth.HashPassword("secret")
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	authn := auth.NewAdminAuthenticator("admin", hash, "signing-key")
	token, err := authn.Login("Admin", "secret")
	if err != nil {
		t.Fatalf("Failed to log in: %v", err)
	}

	var seenAdmin string
	handler := RequireAdmin(authn)(func(w http.ResponseWriter, r *http.Request) {
		seenAdmin = AdminFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	testCases := []struct {
		name           string
		authorization  string
		expectedStatus int
	}{
		{"valid token", "Bearer " + token, http.StatusNoContent},
		{"lowercase scheme", "bearer " + token, http.StatusNoContent},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"tampered token", "Bearer " + token + "x", http.StatusUnauthorized},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			seenAdmin = ""
			req := httptest.NewRequest("DELETE", "/sessions/abc", nil)
			if tc.authorization != "" {
				req.Header.Set("Authorization", tc.authorization)
			}
			w := httptest.NewRecorder()

			handler(w, req)

			if w.Code != tc.expectedStatus {
				t.Errorf("Expected status %d, got %d", tc.expectedStatus, w.Code)
			}
			if tc.expectedStatus == http.StatusNoContent && seenAdmin != "admin" {
				t.Errorf("Expected admin in context, got %q", seenAdmin)
			}
		})
	}
}

func TestVoterToken(t *testing.T) {
	req := httptest.NewRequest("GET", "/voting/positions", nil)
	if got := VoterToken(req); got != "" {
		t.Errorf("Expected empty token, got %q", got)
	}

	req.Header.Set(VoterTokenHeader, " abc123 ")
	if got := VoterToken(req); got != "abc123" {
		t.Errorf("Expected 'abc123', got %q", got)
	}
}
