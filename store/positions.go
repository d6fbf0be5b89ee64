// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/danielhkuo/quickly-elect/apperr"
	"github.com/danielhkuo/quickly-elect/auth"
	"github.com/danielhkuo/quickly-elect/db"
	"github.com/danielhkuo/quickly-elect/models"
)

const positionColumns = `p.id, p.session_id, p.name, p.display_order, p.description, p.grade_filter, p.voting_type`

func scanPosition(row interface{ Scan(...any) error }, extra ...any) (models.Position, error) {
	var pos models.Position
	dest := append([]any{&pos.ID, &pos.SessionID, &pos.Name, &pos.DisplayOrder, &pos.Description, &pos.GradeFilter, &pos.VotingType}, extra...)
	err := row.Scan(dest...)
	return pos, err
}

// CreatePosition adds a position to an existing session. An empty grade
// filter means every grade may vote.
func (s *Store) CreatePosition(ctx context.Context, req models.CreatePositionRequest) (*models.Position, error) {
	id, err := auth.GenerateID()
	if err != nil {
		return nil, err
	}

	pos := models.Position{
		ID:           id,
		SessionID:    req.SessionID,
		Name:         req.Name,
		DisplayOrder: req.DisplayOrder,
		Description:  req.Description,
		VotingType:   req.VotingType,
	}
	if pos.VotingType == "" {
		pos.VotingType = models.VotingSingle
	}
	if req.GradeFilter != "" {
		grade := req.GradeFilter
		pos.GradeFilter = &grade
	}

	found, err := exists(ctx, s.conn, `SELECT 1 FROM election_session WHERE id = $1`, req.SessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to check session: %w", err)
	}
	if !found {
		return nil, apperr.New(apperr.KindNotFound, "session not found")
	}

	_, err = s.conn.ExecContext(ctx, `
		INSERT INTO election_position (id, session_id, name, display_order, description, grade_filter, voting_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, pos.ID, pos.SessionID, pos.Name, pos.DisplayOrder, pos.Description, pos.GradeFilter, pos.VotingType)
	if err != nil {
		switch {
		case db.IsUniqueViolation(err):
			return nil, apperr.Wrap(apperr.KindDuplicateName, err, "a position named %q already exists in this session", req.Name)
		case db.IsForeignKeyViolation(err):
			// Session deleted between the check and the insert
			return nil, apperr.Wrap(apperr.KindNotFound, err, "session not found")
		}
		return nil, fmt.Errorf("failed to create position: %w", err)
	}

	return &pos, nil
}

// ListPositions returns the session's positions in display order with
// their candidate counts.
func (s *Store) ListPositions(ctx context.Context, sessionID string) ([]models.PositionSummary, error) {
	if _, err := s.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}

	rows, err := s.conn.QueryContext(ctx, `
		SELECT `+positionColumns+`, COUNT(c.id)
		FROM election_position p
		LEFT JOIN candidate c ON c.position_id = p.id
		WHERE p.session_id = $1
		GROUP BY p.id, p.session_id, p.name, p.display_order, p.description, p.grade_filter, p.voting_type
		ORDER BY p.display_order, p.name
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list positions: %w", err)
	}
	defer rows.Close()

	positions := []models.PositionSummary{}
	for rows.Next() {
		var count int
		pos, err := scanPosition(rows, &count)
		if err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		positions = append(positions, models.PositionSummary{Position: pos, CandidateCount: count})
	}
	return positions, rows.Err()
}

// SessionPositions returns the session's positions ordered by display order
// then creation.
func (s *Store) SessionPositions(ctx context.Context, sessionID string) ([]models.Position, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT `+positionColumns+` FROM election_position p
		WHERE p.session_id = $1
		ORDER BY p.display_order, p.id
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()

	positions := []models.Position{}
	for rows.Next() {
		pos, err := scanPosition(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		positions = append(positions, pos)
	}
	return positions, rows.Err()
}

func (s *Store) GetPosition(ctx context.Context, id string) (*models.Position, error) {
	pos, err := scanPosition(s.conn.QueryRowContext(ctx, `
		SELECT `+positionColumns+` FROM election_position p WHERE p.id = $1
	`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.Wrap(apperr.KindNotFound, err, "position not found")
		}
		return nil, fmt.Errorf("failed to get position: %w", err)
	}
	return &pos, nil
}

// DeletePosition removes the position with its candidates and ballot
// records. It returns the photo URLs of the deleted candidates.
func (s *Store) DeletePosition(ctx context.Context, id string) ([]string, error) {
	var photos []string
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		found, err := exists(ctx, tx, `SELECT 1 FROM election_position WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to check position: %w", err)
		}
		if !found {
			return apperr.New(apperr.KindNotFound, "position not found")
		}

		photos, err = candidatePhotos(ctx, tx, `
			SELECT photo_url FROM candidate WHERE position_id = $1 AND photo_url IS NOT NULL
		`, id)
		if err != nil {
			return err
		}

		stmts := []string{
			`DELETE FROM ranked_ballot_record WHERE position_id = $1`,
			`DELETE FROM ballot_record WHERE position_id = $1`,
			`DELETE FROM candidate WHERE position_id = $1`,
			`DELETE FROM election_position WHERE id = $1`,
		}
		for _, stmt := range stmts {
			if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
				return fmt.Errorf("failed to delete position: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return photos, nil
}
