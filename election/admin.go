// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"
	"log/slog"

	"github.com/danielhkuo/quickly-elect/audit"
	"github.com/danielhkuo/quickly-elect/models"
)

// ActivateSession makes the session the single active one
func (s *Service) ActivateSession(ctx context.Context, id string) (*models.Session, error) {
	session, err := s.repo.ActivateSession(ctx, id)
	if err != nil {
		return nil, err
	}
	slog.Info("session activated", "session_id", id)
	s.publish(ctx, audit.Event{Type: audit.EventSessionActivated, SessionID: id})
	return session, nil
}

// DeleteSession removes the session and everything under it. Returns the
// photo URLs of the removed candidates.
func (s *Service) DeleteSession(ctx context.Context, id string) ([]string, error) {
	photos, err := s.repo.DeleteSession(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, audit.Event{Type: audit.EventSessionDeleted, SessionID: id})
	return photos, nil
}

// DeleteVoter removes the voter after reversing every vote they cast
func (s *Service) DeleteVoter(ctx context.Context, id string) (*models.Voter, error) {
	voter, err := s.repo.DeleteVoter(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, audit.Event{Type: audit.EventVoterDeleted, VoterID: id})
	return voter, nil
}
