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

const candidateColumns = `c.id, c.position_id, c.name, c.grade, c.manifesto, c.photo_url, c.votes`

func scanCandidate(row interface{ Scan(...any) error }) (models.Candidate, error) {
	var cand models.Candidate
	err := row.Scan(&cand.ID, &cand.PositionID, &cand.Name, &cand.Grade, &cand.Manifesto, &cand.PhotoURL, &cand.Votes)
	return cand, err
}

func (s *Store) CreateCandidate(ctx context.Context, req models.CreateCandidateRequest) (*models.Candidate, error) {
	id, err := auth.GenerateID()
	if err != nil {
		return nil, err
	}

	cand := models.Candidate{
		ID:         id,
		PositionID: req.PositionID,
		Name:       req.Name,
		Grade:      req.Grade,
		Manifesto:  req.Manifesto,
		PhotoURL:   req.PhotoURL,
	}

	_, err = s.conn.ExecContext(ctx, `
		INSERT INTO candidate (id, position_id, name, grade, manifesto, photo_url, votes)
		VALUES ($1, $2, $3, $4, $5, $6, 0)
	`, cand.ID, cand.PositionID, cand.Name, cand.Grade, cand.Manifesto, cand.PhotoURL)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return nil, apperr.Wrap(apperr.KindNotFound, err, "position not found")
		}
		return nil, fmt.Errorf("failed to create candidate: %w", err)
	}

	return &cand, nil
}

// ListCandidates returns the position's candidates ordered by name
func (s *Store) ListCandidates(ctx context.Context, positionID string) ([]models.Candidate, error) {
	if _, err := s.GetPosition(ctx, positionID); err != nil {
		return nil, err
	}

	rows, err := s.conn.QueryContext(ctx, `
		SELECT `+candidateColumns+` FROM candidate c
		WHERE c.position_id = $1
		ORDER BY c.name, c.id
	`, positionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	defer rows.Close()

	candidates := []models.Candidate{}
	for rows.Next() {
		cand, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		candidates = append(candidates, cand)
	}
	return candidates, rows.Err()
}

// SessionCandidates returns every candidate in the session grouped by
// position id, each group in creation order.
func (s *Store) SessionCandidates(ctx context.Context, sessionID string) (map[string][]models.Candidate, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT `+candidateColumns+` FROM candidate c
		JOIN election_position p ON p.id = c.position_id
		WHERE p.session_id = $1
		ORDER BY c.position_id, c.id
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer rows.Close()

	byPosition := make(map[string][]models.Candidate)
	for rows.Next() {
		cand, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		byPosition[cand.PositionID] = append(byPosition[cand.PositionID], cand)
	}
	return byPosition, rows.Err()
}

func (s *Store) GetCandidate(ctx context.Context, id string) (*models.Candidate, error) {
	cand, err := scanCandidate(s.conn.QueryRowContext(ctx, `
		SELECT `+candidateColumns+` FROM candidate c WHERE c.id = $1
	`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.Wrap(apperr.KindNotFound, err, "candidate not found")
		}
		return nil, fmt.Errorf("failed to get candidate: %w", err)
	}
	return &cand, nil
}

// DeleteCandidate removes the candidate and every ballot record naming it.
// A dual-choice voter who ranked this candidate keeps their other choice.
// It returns the candidate's photo URL, if any.
func (s *Store) DeleteCandidate(ctx context.Context, id string) (*string, error) {
	var photo *string
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `SELECT photo_url FROM candidate WHERE id = $1`, id).Scan(&photo)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperr.Wrap(apperr.KindNotFound, err, "candidate not found")
			}
			return fmt.Errorf("failed to get candidate: %w", err)
		}

		stmts := []string{
			`DELETE FROM ranked_ballot_record WHERE candidate_id = $1`,
			`DELETE FROM ballot_record WHERE candidate_id = $1`,
			`DELETE FROM candidate WHERE id = $1`,
		}
		for _, stmt := range stmts {
			if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
				return fmt.Errorf("failed to delete candidate: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return photo, nil
}
