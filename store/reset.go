// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/danielhkuo/quickly-elect/apperr"
)

// ResetSession zeroes every candidate in the session and deletes its ballot
// records. Resetting the active session also clears has_voted for every
// voter. Returns the number of records deleted.
//
// Tallies are zeroed before records are deleted: a concurrent cast either
// commits before the reset (its record and increment are both removed) or
// after it (both survive).
func (s *Store) ResetSession(ctx context.Context, sessionID string) (int, error) {
	var removed int
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		sess, err := s.getSession(ctx, tx, sessionID)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE candidate SET votes = 0
			WHERE position_id IN (SELECT id FROM election_position WHERE session_id = $1)
		`, sessionID); err != nil {
			return fmt.Errorf("failed to zero candidate votes: %w", err)
		}

		removed, err = deleteRecords(ctx, tx, `session_id = $1`, sessionID)
		if err != nil {
			return err
		}

		if sess.IsActive {
			if _, err := tx.ExecContext(ctx, `UPDATE voter SET has_voted = FALSE WHERE has_voted`); err != nil {
				return fmt.Errorf("failed to clear voter flags: %w", err)
			}
		}
		return nil
	})
	return removed, err
}

// ResetPosition zeroes the position's candidates and deletes its records.
// Voter has_voted flags are left alone.
func (s *Store) ResetPosition(ctx context.Context, positionID string) (int, error) {
	var removed int
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		found, err := exists(ctx, tx, `SELECT 1 FROM election_position WHERE id = $1`, positionID)
		if err != nil {
			return fmt.Errorf("failed to check position: %w", err)
		}
		if !found {
			return apperr.New(apperr.KindNotFound, "position not found")
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE candidate SET votes = 0 WHERE position_id = $1
		`, positionID); err != nil {
			return fmt.Errorf("failed to zero candidate votes: %w", err)
		}

		removed, err = deleteRecords(ctx, tx, `position_id = $1`, positionID)
		return err
	})
	return removed, err
}

// ResetVoter deletes every record the voter cast, decrements the affected
// candidates by exactly those records, and clears has_voted.
func (s *Store) ResetVoter(ctx context.Context, voterID string) (int, error) {
	var removed int
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := s.getVoter(ctx, tx, `id`, voterID); err != nil {
			return err
		}

		n, err := reverseVoterBallots(ctx, tx, voterID)
		if err != nil {
			return err
		}
		removed = n

		if _, err := tx.ExecContext(ctx, `UPDATE voter SET has_voted = FALSE WHERE id = $1`, voterID); err != nil {
			return fmt.Errorf("failed to clear voter flag: %w", err)
		}
		return nil
	})
	return removed, err
}

func deleteRecords(ctx context.Context, tx *sql.Tx, where string, args ...any) (int, error) {
	total := 0
	for _, table := range []string{"ranked_ballot_record", "ballot_record"} {
		res, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE `+where, args...)
		if err != nil {
			return 0, fmt.Errorf("failed to delete %s rows: %w", table, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to read rows affected: %w", err)
		}
		total += int(n)
	}
	return total, nil
}
