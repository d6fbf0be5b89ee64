// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"
	"log/slog"

	"github.com/danielhkuo/quickly-elect/audit"
	"github.com/danielhkuo/quickly-elect/models"
)

// ResetAll clears every tally and ballot record of the session. Returns the
// number of records removed.
func (s *Service) ResetAll(ctx context.Context, sessionID string) (int, error) {
	removed, err := s.repo.ResetSession(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	s.afterReset(ctx, audit.Event{SessionID: sessionID, Scope: models.ScopeSession, Records: removed})
	return removed, nil
}

// ResetPosition clears the tallies and records of one position
func (s *Service) ResetPosition(ctx context.Context, positionID string) (int, error) {
	pos, err := s.repo.GetPosition(ctx, positionID)
	if err != nil {
		return 0, err
	}
	removed, err := s.repo.ResetPosition(ctx, positionID)
	if err != nil {
		return 0, err
	}
	s.afterReset(ctx, audit.Event{SessionID: pos.SessionID, PositionID: positionID, Scope: models.ScopePosition, Records: removed})
	return removed, nil
}

// ResetVoter removes one voter's ballots, decrementing only the candidates
// they voted for, and lets them vote again.
func (s *Service) ResetVoter(ctx context.Context, voterID string) (int, error) {
	removed, err := s.repo.ResetVoter(ctx, voterID)
	if err != nil {
		return 0, err
	}
	s.afterReset(ctx, audit.Event{VoterID: voterID, Scope: models.ScopeVoter, Records: removed})
	return removed, nil
}

func (s *Service) afterReset(ctx context.Context, e audit.Event) {
	slog.Info("tallies reset", "scope", e.Scope, "session_id", e.SessionID, "position_id", e.PositionID, "voter_id", e.VoterID, "records", e.Records)
	s.metrics.IncrementReset(e.Scope)
	e.Type = audit.EventReset
	s.publish(ctx, e)
}
