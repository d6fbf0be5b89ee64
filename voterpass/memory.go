// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voterpass

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/danielhkuo/quickly-elect/auth"
)

// MemoryStore keeps passes in process. Passes do not survive a restart;
// voters simply verify again.
type MemoryStore struct {
	mu     sync.Mutex
	passes map[string]Pass
	ttl    time.Duration
	now    func() time.Time
}

func NewMemoryStore(ttl time.Duration) (*MemoryStore, error) {
	if err := validateTTL(ttl); err != nil {
		return nil, err
	}
	return &MemoryStore{
		passes: make(map[string]Pass),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

func (m *MemoryStore) Issue(_ context.Context, voterID, sessionID string) (*Pass, error) {
	token, err := auth.GenerateVoterToken()
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	pass := Pass{
		Token:     token,
		VoterID:   voterID,
		SessionID: sessionID,
		ExpiresAt: m.now().Add(m.ttl),
	}
	m.passes[token] = pass
	return &pass, nil
}

func (m *MemoryStore) Resolve(_ context.Context, token string) (*Pass, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pass, ok := m.passes[token]
	if !ok {
		return nil, ErrNotFound
	}
	now := m.now()
	if !now.Before(pass.ExpiresAt) {
		delete(m.passes, token)
		return nil, ErrNotFound
	}

	pass.ExpiresAt = now.Add(m.ttl)
	m.passes[token] = pass
	return &pass, nil
}

func (m *MemoryStore) Revoke(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.passes, token)
	return nil
}

// StartCleanup removes expired passes every interval until ctx is cancelled.
func (m *MemoryStore) StartCleanup(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := m.RemoveExpiredAt(m.now()); n > 0 {
				slog.Debug("expired voter passes removed", "count", n)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// RemoveExpiredAt drops passes that expired as of now and returns how many.
func (m *MemoryStore) RemoveExpiredAt(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for token, pass := range m.passes {
		if !now.Before(pass.ExpiresAt) {
			delete(m.passes, token)
			removed++
		}
	}
	return removed
}

// Len returns the number of passes held, expired or not
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.passes)
}
