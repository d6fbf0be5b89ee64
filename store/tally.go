// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"fmt"

	"github.com/danielhkuo/quickly-elect/models"
)

// AuditTally compares every candidate's stored tally in the session with
// the number of ballot records naming that candidate. An empty result means
// the tallies are consistent.
func (s *Store) AuditTally(ctx context.Context, sessionID string) ([]models.TallyMismatch, error) {
	if _, err := s.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}

	rows, err := s.conn.QueryContext(ctx, `
		SELECT c.id, c.position_id, c.votes,
			(SELECT COUNT(*) FROM ballot_record b WHERE b.candidate_id = c.id) +
			(SELECT COUNT(*) FROM ranked_ballot_record r WHERE r.candidate_id = c.id)
		FROM candidate c
		JOIN election_position p ON p.id = c.position_id
		WHERE p.session_id = $1
		ORDER BY c.id
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to audit tallies: %w", err)
	}
	defer rows.Close()

	mismatches := []models.TallyMismatch{}
	for rows.Next() {
		var m models.TallyMismatch
		if err := rows.Scan(&m.CandidateID, &m.PositionID, &m.Votes, &m.Records); err != nil {
			return nil, fmt.Errorf("failed to scan audit row: %w", err)
		}
		if m.Votes != m.Records {
			mismatches = append(mismatches, m)
		}
	}
	return mismatches, rows.Err()
}

// Counts returns row counts for the main entities
func (s *Store) Counts(ctx context.Context) (models.EntityCounts, error) {
	var c models.EntityCounts
	err := s.conn.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM election_session),
			(SELECT COUNT(*) FROM election_position),
			(SELECT COUNT(*) FROM candidate),
			(SELECT COUNT(*) FROM voter)
	`).Scan(&c.Sessions, &c.Positions, &c.Candidates, &c.Voters)
	if err != nil {
		return c, fmt.Errorf("failed to count entities: %w", err)
	}
	return c, nil
}

// Ping checks the database connection
func (s *Store) Ping(ctx context.Context) error {
	return s.conn.PingContext(ctx)
}
