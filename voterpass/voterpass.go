// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voterpass

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned for unknown, expired, or revoked tokens
var ErrNotFound = errors.New("voter pass not found or expired")

// Pass binds an opaque token to a verified voter and the session they
// verified against. It expires after TTL without use.
type Pass struct {
	Token     string    `json:"-"`
	VoterID   string    `json:"voter_id"`
	SessionID string    `json:"session_id"`
	ExpiresAt time.Time `json:"-"`
}

// Store keeps live voter passes.
type Store interface {
	// Issue creates a pass for the voter in the session
	Issue(ctx context.Context, voterID, sessionID string) (*Pass, error)
	// Resolve returns the pass for token and restarts its inactivity window
	Resolve(ctx context.Context, token string) (*Pass, error)
	// Revoke ends the pass immediately. Unknown tokens are not an error.
	Revoke(ctx context.Context, token string) error
}

func validateTTL(ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("voter pass ttl must be positive, got %v", ttl)
	}
	return nil
}
