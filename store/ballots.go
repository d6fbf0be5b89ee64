// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"slices"

	"github.com/danielhkuo/quickly-elect/apperr"
	"github.com/danielhkuo/quickly-elect/auth"
	"github.com/danielhkuo/quickly-elect/db"
	"github.com/danielhkuo/quickly-elect/models"
)

// RecordBallot stores a single-choice ballot and increments the candidate's
// tally in one transaction. ID and CastAt are assigned here.
//
// A second ballot for the same (session, position, voter) fails with
// AlreadyVoted; the unique constraint decides races.
func (s *Store) RecordBallot(ctx context.Context, rec *models.BallotRecord) error {
	if err := s.stampRecord(rec); err != nil {
		return err
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO ballot_record (id, session_id, position_id, candidate_id, voter_id, cast_at, ip_hash, user_agent)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, rec.ID, rec.SessionID, rec.PositionID, rec.CandidateID, rec.VoterID, rec.CastAt, rec.IPHash, rec.UserAgent)
		if err != nil {
			return classifyBallotError(err)
		}
		return incrementCandidate(ctx, tx, rec.CandidateID, rec.PositionID)
	})
}

// RecordRankedBallot stores both choices of a dual-choice ballot and
// increments both candidates in one transaction. first must have VoteOrder 1
// and second VoteOrder 2.
func (s *Store) RecordRankedBallot(ctx context.Context, first, second *models.RankedBallotRecord) error {
	for _, rec := range []*models.RankedBallotRecord{first, second} {
		if err := s.stampRecord(&rec.BallotRecord); err != nil {
			return err
		}
	}
	second.CastAt = first.CastAt

	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, rec := range []*models.RankedBallotRecord{first, second} {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO ranked_ballot_record (id, session_id, position_id, candidate_id, voter_id, vote_order, cast_at, ip_hash, user_agent)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			`, rec.ID, rec.SessionID, rec.PositionID, rec.CandidateID, rec.VoterID, rec.VoteOrder, rec.CastAt, rec.IPHash, rec.UserAgent)
			if err != nil {
				return classifyBallotError(err)
			}
		}
		return incrementCandidates(ctx, tx, first.PositionID, first.CandidateID, second.CandidateID)
	})
}

func (s *Store) stampRecord(rec *models.BallotRecord) error {
	id, err := auth.GenerateID()
	if err != nil {
		return err
	}
	rec.ID = id
	rec.CastAt = s.timestamp()
	return nil
}

func classifyBallotError(err error) error {
	switch {
	case db.IsUniqueViolation(err):
		return apperr.Wrap(apperr.KindAlreadyVoted, err, "you have already voted for this position")
	case db.IsForeignKeyViolation(err):
		return apperr.Wrap(apperr.KindNotFound, err, "position, candidate, or voter no longer exists")
	}
	return fmt.Errorf("failed to record ballot: %w", err)
}

// incrementCandidates bumps each candidate in id order so concurrent
// ranked ballots lock rows consistently, like decrementCandidates.
func incrementCandidates(ctx context.Context, tx *sql.Tx, positionID string, candidateIDs ...string) error {
	ids := slices.Clone(candidateIDs)
	slices.Sort(ids)
	for _, id := range ids {
		if err := incrementCandidate(ctx, tx, id, positionID); err != nil {
			return err
		}
	}
	return nil
}

func incrementCandidate(ctx context.Context, tx *sql.Tx, candidateID, positionID string) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE candidate SET votes = votes + 1 WHERE id = $1 AND position_id = $2
	`, candidateID, positionID)
	if err != nil {
		return fmt.Errorf("failed to increment candidate votes: %w", err)
	}
	return rowsAffected(res, "candidate not found")
}

// HasBallot reports whether the voter already has a record of either kind
// for the position in the session.
func (s *Store) HasBallot(ctx context.Context, sessionID, positionID, voterID string) (bool, error) {
	found, err := exists(ctx, s.conn, `
		SELECT 1 FROM ballot_record WHERE session_id = $1 AND position_id = $2 AND voter_id = $3
		UNION ALL
		SELECT 1 FROM ranked_ballot_record WHERE session_id = $1 AND position_id = $2 AND voter_id = $3
	`, sessionID, positionID, voterID)
	if err != nil {
		return false, fmt.Errorf("failed to check ballot: %w", err)
	}
	return found, nil
}

// VotedPositions returns the ids of positions the voter has voted on in the
// session.
func (s *Store) VotedPositions(ctx context.Context, sessionID, voterID string) (map[string]bool, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT position_id FROM ballot_record WHERE session_id = $1 AND voter_id = $2
		UNION
		SELECT position_id FROM ranked_ballot_record WHERE session_id = $1 AND voter_id = $2
	`, sessionID, voterID)
	if err != nil {
		return nil, fmt.Errorf("failed to query voted positions: %w", err)
	}
	defer rows.Close()

	voted := make(map[string]bool)
	for rows.Next() {
		var positionID string
		if err := rows.Scan(&positionID); err != nil {
			return nil, fmt.Errorf("failed to scan position id: %w", err)
		}
		voted[positionID] = true
	}
	return voted, rows.Err()
}
