// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"
	"errors"
	"strings"

	"github.com/danielhkuo/quickly-elect/apperr"
	"github.com/danielhkuo/quickly-elect/audit"
	"github.com/danielhkuo/quickly-elect/models"
)

// Verify exchanges a voter code for a voter pass bound to the active
// session.
func (s *Service) Verify(ctx context.Context, code string) (*models.VerifyVoterResponse, error) {
	resp, err := s.verify(ctx, strings.TrimSpace(code))
	if err != nil {
		s.metrics.IncrementVerification(string(apperr.KindOf(err)))
		return nil, err
	}
	s.metrics.IncrementVerification("ok")
	return resp, nil
}

func (s *Service) verify(ctx context.Context, code string) (*models.VerifyVoterResponse, error) {
	if code == "" {
		return nil, apperr.New(apperr.KindInvalidInput, "voter code is required")
	}

	voter, err := s.repo.GetVoterByCode(ctx, code)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.Wrap(apperr.KindNotFound, err, "invalid voter code")
		}
		return nil, err
	}
	if voter.HasVoted {
		return nil, apperr.New(apperr.KindAlreadyVoted, "this voter has already completed voting")
	}

	session, err := s.repo.GetActiveSession(ctx)
	if err != nil {
		return nil, err
	}

	pass, err := s.passes.Issue(ctx, voter.ID, session.ID)
	if err != nil {
		return nil, err
	}

	return &models.VerifyVoterResponse{
		VoterToken: pass.Token,
		ExpiresAt:  pass.ExpiresAt,
		Voter: models.VoterIdentity{
			ID:        voter.ID,
			Name:      voter.Name,
			StudentID: voter.StudentID,
			Grade:     voter.Grade,
		},
		Session: *session,
	}, nil
}

// CompleteVoting marks the pass holder as done and ends the pass. Calling
// it for a voter already marked is not an error, but a live pass is
// required.
func (s *Service) CompleteVoting(ctx context.Context, token string) error {
	pass, err := s.resolvePass(ctx, token)
	if err != nil {
		return err
	}

	if err := s.repo.MarkVoted(ctx, pass.VoterID); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			_ = s.passes.Revoke(ctx, token)
			return apperr.Wrap(apperr.KindUnauthenticated, err, "voter no longer registered")
		}
		return err
	}
	if err := s.passes.Revoke(ctx, token); err != nil {
		return err
	}

	s.metrics.IncrementVotingComplete()
	s.publish(ctx, audit.Event{
		Type:      audit.EventVotingCompleted,
		SessionID: pass.SessionID,
		VoterID:   pass.VoterID,
	})
	return nil
}
