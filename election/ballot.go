// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"
	"time"

	"github.com/danielhkuo/quickly-elect/apperr"
	"github.com/danielhkuo/quickly-elect/audit"
	"github.com/danielhkuo/quickly-elect/models"
)

// CastSingle records one vote on a single-choice position
func (s *Service) CastSingle(ctx context.Context, token, positionID, candidateID string, meta ClientMeta) (*models.BallotRecord, error) {
	start := time.Now()
	defer s.metrics.ObserveCast(start)

	rec, err := s.castSingle(ctx, token, positionID, candidateID, meta)
	if err != nil {
		s.metrics.IncrementCastRejected(string(apperr.KindOf(err)))
		return nil, err
	}

	s.metrics.IncrementBallotCast(models.VotingSingle)
	s.publish(ctx, audit.Event{
		Type:       audit.EventBallotCast,
		SessionID:  rec.SessionID,
		PositionID: rec.PositionID,
		VoterID:    rec.VoterID,
		Records:    1,
	})
	return rec, nil
}

func (s *Service) castSingle(ctx context.Context, token, positionID, candidateID string, meta ClientMeta) (*models.BallotRecord, error) {
	vc, err := s.authorize(ctx, token)
	if err != nil {
		return nil, err
	}
	pos, err := s.ballotPosition(ctx, vc, positionID, models.VotingSingle)
	if err != nil {
		return nil, err
	}
	if err := s.checkCandidate(ctx, pos.ID, candidateID); err != nil {
		return nil, err
	}
	if err := s.checkNotVoted(ctx, vc, pos.ID); err != nil {
		return nil, err
	}

	rec := &models.BallotRecord{
		SessionID:   vc.session.ID,
		PositionID:  pos.ID,
		CandidateID: candidateID,
		VoterID:     vc.voter.ID,
		IPHash:      meta.ipHash(s.cfg.IPHashSalt),
		UserAgent:   meta.deviceSummary(),
	}
	if err := s.repo.RecordBallot(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// CastDouble records a first and second choice on a dual-choice position.
// Both candidates are credited one vote each.
func (s *Service) CastDouble(ctx context.Context, token, positionID, firstID, secondID string, meta ClientMeta) ([]models.RankedBallotRecord, error) {
	start := time.Now()
	defer s.metrics.ObserveCast(start)

	recs, err := s.castDouble(ctx, token, positionID, firstID, secondID, meta)
	if err != nil {
		s.metrics.IncrementCastRejected(string(apperr.KindOf(err)))
		return nil, err
	}

	s.metrics.IncrementBallotCast(models.VotingDouble)
	s.publish(ctx, audit.Event{
		Type:       audit.EventBallotCast,
		SessionID:  recs[0].SessionID,
		PositionID: recs[0].PositionID,
		VoterID:    recs[0].VoterID,
		Records:    len(recs),
	})
	return recs, nil
}

func (s *Service) castDouble(ctx context.Context, token, positionID, firstID, secondID string, meta ClientMeta) ([]models.RankedBallotRecord, error) {
	vc, err := s.authorize(ctx, token)
	if err != nil {
		return nil, err
	}
	if firstID == secondID {
		return nil, apperr.New(apperr.KindInvalidInput, "first and second choice must be different candidates")
	}
	pos, err := s.ballotPosition(ctx, vc, positionID, models.VotingDouble)
	if err != nil {
		return nil, err
	}
	for _, id := range []string{firstID, secondID} {
		if err := s.checkCandidate(ctx, pos.ID, id); err != nil {
			return nil, err
		}
	}
	if err := s.checkNotVoted(ctx, vc, pos.ID); err != nil {
		return nil, err
	}

	base := models.BallotRecord{
		SessionID:  vc.session.ID,
		PositionID: pos.ID,
		VoterID:    vc.voter.ID,
		IPHash:     meta.ipHash(s.cfg.IPHashSalt),
		UserAgent:  meta.deviceSummary(),
	}
	first := models.RankedBallotRecord{BallotRecord: base, VoteOrder: 1}
	first.CandidateID = firstID
	second := models.RankedBallotRecord{BallotRecord: base, VoteOrder: 2}
	second.CandidateID = secondID

	if err := s.repo.RecordRankedBallot(ctx, &first, &second); err != nil {
		return nil, err
	}
	return []models.RankedBallotRecord{first, second}, nil
}

// ballotPosition loads the position and checks the voter may cast the
// given kind of ballot on it.
func (s *Service) ballotPosition(ctx context.Context, vc *voterContext, positionID, votingType string) (*models.Position, error) {
	if positionID == "" {
		return nil, apperr.New(apperr.KindInvalidInput, "position_id is required")
	}
	pos, err := s.repo.GetPosition(ctx, positionID)
	if err != nil {
		return nil, err
	}
	if pos.SessionID != vc.session.ID {
		return nil, apperr.New(apperr.KindInvalidInput, "position %q is not part of the active session", pos.Name)
	}
	if !pos.OpenTo(vc.voter.Grade) {
		return nil, apperr.New(apperr.KindInvalidInput, "position %q is not open to grade %s", pos.Name, vc.voter.Grade)
	}
	if pos.VotingType != votingType {
		return nil, apperr.New(apperr.KindInvalidInput, "position %q takes %s-choice ballots", pos.Name, pos.VotingType)
	}
	return pos, nil
}

func (s *Service) checkCandidate(ctx context.Context, positionID, candidateID string) error {
	if candidateID == "" {
		return apperr.New(apperr.KindInvalidInput, "candidate_id is required")
	}
	c, err := s.repo.GetCandidate(ctx, candidateID)
	if err != nil {
		return err
	}
	if c.PositionID != positionID {
		return apperr.New(apperr.KindNotFound, "candidate not found for this position")
	}
	return nil
}

// checkNotVoted is the fast path. The unique constraint on ballot records
// still decides concurrent casts.
func (s *Service) checkNotVoted(ctx context.Context, vc *voterContext, positionID string) error {
	voted, err := s.repo.HasBallot(ctx, vc.session.ID, positionID, vc.voter.ID)
	if err != nil {
		return err
	}
	if voted {
		return apperr.New(apperr.KindAlreadyVoted, "you have already voted for this position")
	}
	return nil
}
