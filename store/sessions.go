// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/danielhkuo/quickly-elect/apperr"
	"github.com/danielhkuo/quickly-elect/auth"
	"github.com/danielhkuo/quickly-elect/db"
	"github.com/danielhkuo/quickly-elect/models"
)

const sessionColumns = `id, name, academic_year, description, is_active, created_at`

func scanSession(row interface{ Scan(...any) error }) (models.Session, error) {
	var sess models.Session
	err := row.Scan(&sess.ID, &sess.Name, &sess.AcademicYear, &sess.Description, &sess.IsActive, &sess.CreatedAt)
	return sess, err
}

// CreateSession inserts a session. The very first session is activated
// right away so a fresh install is usable without an extra step.
func (s *Store) CreateSession(ctx context.Context, req models.CreateSessionRequest) (*models.Session, error) {
	id, err := auth.GenerateID()
	if err != nil {
		return nil, err
	}

	sess := models.Session{
		ID:           id,
		Name:         req.Name,
		AcademicYear: req.AcademicYear,
		Description:  req.Description,
		CreatedAt:    s.timestamp(),
	}

	err = s.inTx(ctx, func(tx *sql.Tx) error {
		// Serializes with other creates and activations, so exactly one of
		// several concurrent first sessions sees a count of 1.
		if err := db.Lock(ctx, tx, s.dialect, db.ActivationLock); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO election_session (id, name, academic_year, description, is_active, created_at)
			VALUES ($1, $2, $3, $4, FALSE, $5)
		`, sess.ID, sess.Name, sess.AcademicYear, sess.Description, sess.CreatedAt); err != nil {
			if db.IsUniqueViolation(err) {
				return apperr.Wrap(apperr.KindDuplicateName, err, "a session named %q already exists", req.Name)
			}
			return fmt.Errorf("failed to create session: %w", err)
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE election_session SET is_active = TRUE
			WHERE id = $1 AND (SELECT COUNT(*) FROM election_session) = 1
		`, sess.ID)
		if err != nil {
			return fmt.Errorf("failed to auto-activate session: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to auto-activate session: %w", err)
		}
		sess.IsActive = n == 1
		return nil
	})
	if err != nil {
		return nil, err
	}

	if sess.IsActive {
		slog.Info("first session auto-activated", "session_id", sess.ID)
	}
	return &sess, nil
}

// ListSessions returns every session, newest first
func (s *Store) ListSessions(ctx context.Context) ([]models.Session, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT `+sessionColumns+`
		FROM election_session
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	sessions := []models.Session{}
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

func (s *Store) GetSession(ctx context.Context, id string) (*models.Session, error) {
	return s.getSession(ctx, s.conn, id)
}

func (s *Store) getSession(ctx context.Context, q queryer, id string) (*models.Session, error) {
	sess, err := scanSession(q.QueryRowContext(ctx, `
		SELECT `+sessionColumns+` FROM election_session WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.Wrap(apperr.KindNotFound, err, "session not found")
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &sess, nil
}

// GetActiveSession returns the single active session, or NoActiveSession.
func (s *Store) GetActiveSession(ctx context.Context) (*models.Session, error) {
	sess, err := scanSession(s.conn.QueryRowContext(ctx, `
		SELECT `+sessionColumns+` FROM election_session WHERE is_active
	`))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.Wrap(apperr.KindNoActiveSession, err, "no active election session")
		}
		return nil, fmt.Errorf("failed to get active session: %w", err)
	}
	return &sess, nil
}

// ActivateSession makes id the only active session. Switching to a different
// session clears every voter's has_voted flag, since that flag tracks the
// active session's ballot.
func (s *Store) ActivateSession(ctx context.Context, id string) (*models.Session, error) {
	var sess *models.Session
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if err := db.Lock(ctx, tx, s.dialect, db.ActivationLock); err != nil {
			return err
		}

		target, err := s.getSession(ctx, tx, id)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE election_session SET is_active = FALSE WHERE is_active AND id <> $1
		`, id); err != nil {
			return fmt.Errorf("failed to deactivate sessions: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE election_session SET is_active = TRUE WHERE id = $1
		`, id); err != nil {
			return fmt.Errorf("failed to activate session: %w", err)
		}

		if !target.IsActive {
			if _, err := tx.ExecContext(ctx, `UPDATE voter SET has_voted = FALSE WHERE has_voted`); err != nil {
				return fmt.Errorf("failed to clear voter flags: %w", err)
			}
		}

		target.IsActive = true
		sess = target
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// DeleteSession removes the session with its positions, candidates, and
// ballot records. It returns the photo URLs of the deleted candidates.
func (s *Store) DeleteSession(ctx context.Context, id string) ([]string, error) {
	var photos []string
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		sess, err := s.getSession(ctx, tx, id)
		if err != nil {
			return err
		}

		photos, err = candidatePhotos(ctx, tx, `
			SELECT c.photo_url FROM candidate c
			JOIN election_position p ON p.id = c.position_id
			WHERE p.session_id = $1 AND c.photo_url IS NOT NULL
		`, id)
		if err != nil {
			return err
		}

		stmts := []string{
			`DELETE FROM ranked_ballot_record WHERE session_id = $1
				OR position_id IN (SELECT id FROM election_position WHERE session_id = $1)`,
			`DELETE FROM ballot_record WHERE session_id = $1
				OR position_id IN (SELECT id FROM election_position WHERE session_id = $1)`,
			`DELETE FROM candidate WHERE position_id IN (SELECT id FROM election_position WHERE session_id = $1)`,
			`DELETE FROM election_position WHERE session_id = $1`,
			`DELETE FROM election_session WHERE id = $1`,
		}
		for _, stmt := range stmts {
			if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
				return fmt.Errorf("failed to delete session: %w", err)
			}
		}

		if sess.IsActive {
			if _, err := tx.ExecContext(ctx, `UPDATE voter SET has_voted = FALSE WHERE has_voted`); err != nil {
				return fmt.Errorf("failed to clear voter flags: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return photos, nil
}

func candidatePhotos(ctx context.Context, q queryer, query string, args ...any) ([]string, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidate photos: %w", err)
	}
	defer rows.Close()

	var photos []string
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("failed to scan photo url: %w", err)
		}
		photos = append(photos, url)
	}
	return photos, rows.Err()
}
