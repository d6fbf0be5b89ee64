// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/danielhkuo/quickly-elect/apperr"
	"github.com/danielhkuo/quickly-elect/auth"
	"github.com/danielhkuo/quickly-elect/db"
	"github.com/danielhkuo/quickly-elect/models"
)

const (
	// maxRegisterAttempts bounds retries when the unique constraints still
	// reject generated identifiers.
	maxRegisterAttempts = 5
	maxCodeAttempts     = 20
)

const voterColumns = `id, student_id, voter_code, name, grade, photo_url, has_voted, registered_at`

func scanVoter(row interface{ Scan(...any) error }) (models.Voter, error) {
	var v models.Voter
	err := row.Scan(&v.ID, &v.StudentID, &v.VoterCode, &v.Name, &v.Grade, &v.PhotoURL, &v.HasVoted, &v.RegisteredAt)
	return v, err
}

// CreateVoter registers a voter, assigning the next student ID for the
// current year and a fresh 6-digit voter code.
func (s *Store) CreateVoter(ctx context.Context, req models.RegisterVoterRequest) (*models.Voter, error) {
	taken, err := exists(ctx, s.conn, `SELECT 1 FROM voter WHERE name = $1`, req.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to check voter name: %w", err)
	}
	if taken {
		return nil, apperr.New(apperr.KindDuplicateName, "a voter named %q is already registered", req.Name)
	}

	for attempt := 1; attempt <= maxRegisterAttempts; attempt++ {
		var voter *models.Voter
		err := s.inTx(ctx, func(tx *sql.Tx) error {
			var err error
			voter, err = s.insertVoter(ctx, tx, req)
			return err
		})
		if err == nil {
			return voter, nil
		}
		if apperr.KindOf(err) != apperr.KindInternal {
			return nil, err
		}
		if !db.IsUniqueViolation(err) {
			return nil, fmt.Errorf("failed to register voter: %w", err)
		}
		if isVoterNameConstraint(db.ViolatedConstraint(err)) {
			return nil, apperr.Wrap(apperr.KindDuplicateName, err, "a voter named %q is already registered", req.Name)
		}
		slog.Warn("voter identifier collision, retrying", "attempt", attempt, "constraint", db.ViolatedConstraint(err))
	}

	return nil, apperr.New(apperr.KindDuplicateKey, "could not allocate a unique student id and voter code")
}

func isVoterNameConstraint(name string) bool {
	return name == "voter_name_key" || name == "voter.name"
}

// insertVoter allocates identifiers and inserts under the registration
// lock, so concurrent registrations see each other's student IDs.
func (s *Store) insertVoter(ctx context.Context, tx *sql.Tx, req models.RegisterVoterRequest) (*models.Voter, error) {
	if err := db.Lock(ctx, tx, s.dialect, db.RegistrationLock); err != nil {
		return nil, err
	}

	id, err := auth.GenerateID()
	if err != nil {
		return nil, err
	}

	now := s.timestamp()
	studentID, err := s.nextStudentID(ctx, tx, now)
	if err != nil {
		return nil, err
	}
	code, err := s.unusedVoterCode(ctx, tx)
	if err != nil {
		return nil, err
	}

	voter := models.Voter{
		ID:           id,
		StudentID:    studentID,
		VoterCode:    code,
		Name:         req.Name,
		Grade:        req.Grade,
		PhotoURL:     req.PhotoURL,
		RegisteredAt: now,
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO voter (id, student_id, voter_code, name, grade, photo_url, has_voted, registered_at)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE, $7)
	`, voter.ID, voter.StudentID, voter.VoterCode, voter.Name, voter.Grade, voter.PhotoURL, voter.RegisteredAt)
	if err != nil {
		return nil, err
	}
	return &voter, nil
}

func (s *Store) nextStudentID(ctx context.Context, q queryer, now time.Time) (string, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT student_id FROM voter WHERE student_id LIKE $1
	`, auth.StudentIDPattern(s.studentPrefix, now.Year()))
	if err != nil {
		return "", fmt.Errorf("failed to query student ids: %w", err)
	}
	defer rows.Close()

	var existing []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", fmt.Errorf("failed to scan student id: %w", err)
		}
		existing = append(existing, id)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	return auth.NextStudentID(s.studentPrefix, now, existing), nil
}

func (s *Store) unusedVoterCode(ctx context.Context, q queryer) (string, error) {
	for i := 0; i < maxCodeAttempts; i++ {
		code, err := s.voterCode()
		if err != nil {
			return "", err
		}
		taken, err := exists(ctx, q, `SELECT 1 FROM voter WHERE voter_code = $1`, code)
		if err != nil {
			return "", fmt.Errorf("failed to check voter code: %w", err)
		}
		if !taken {
			return code, nil
		}
	}
	return "", apperr.New(apperr.KindDuplicateKey, "could not allocate a unique voter code")
}

// ListVoters returns every voter, most recently registered first
func (s *Store) ListVoters(ctx context.Context) ([]models.Voter, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT `+voterColumns+` FROM voter
		ORDER BY registered_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list voters: %w", err)
	}
	defer rows.Close()

	voters := []models.Voter{}
	for rows.Next() {
		v, err := scanVoter(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan voter: %w", err)
		}
		voters = append(voters, v)
	}
	return voters, rows.Err()
}

func (s *Store) GetVoter(ctx context.Context, id string) (*models.Voter, error) {
	return s.getVoter(ctx, s.conn, `id`, id)
}

// GetVoterByCode looks a voter up by their 6-digit code
func (s *Store) GetVoterByCode(ctx context.Context, code string) (*models.Voter, error) {
	return s.getVoter(ctx, s.conn, `voter_code`, code)
}

func (s *Store) getVoter(ctx context.Context, q queryer, column, value string) (*models.Voter, error) {
	v, err := scanVoter(q.QueryRowContext(ctx, `
		SELECT `+voterColumns+` FROM voter WHERE `+column+` = $1
	`, value))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.Wrap(apperr.KindNotFound, err, "voter not found")
		}
		return nil, fmt.Errorf("failed to get voter: %w", err)
	}
	return &v, nil
}

// DeleteVoter removes the voter after taking back every vote they cast,
// in any session. It returns the deleted voter.
func (s *Store) DeleteVoter(ctx context.Context, id string) (*models.Voter, error) {
	var voter *models.Voter
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		v, err := s.getVoter(ctx, tx, `id`, id)
		if err != nil {
			return err
		}

		if _, err := reverseVoterBallots(ctx, tx, id); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM voter WHERE id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete voter: %w", err)
		}
		voter = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return voter, nil
}

// MarkVoted sets has_voted for the voter
func (s *Store) MarkVoted(ctx context.Context, id string) error {
	res, err := s.conn.ExecContext(ctx, `UPDATE voter SET has_voted = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark voter: %w", err)
	}
	return rowsAffected(res, "voter not found")
}

// VoterStats counts registered voters and how many have completed voting.
// ParticipationRate is a percentage rounded to one decimal.
func (s *Store) VoterStats(ctx context.Context) (models.VoterStats, error) {
	var stats models.VoterStats
	err := s.conn.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN has_voted THEN 1 ELSE 0 END), 0) FROM voter
	`).Scan(&stats.Total, &stats.Voted)
	if err != nil {
		return stats, fmt.Errorf("failed to count voters: %w", err)
	}

	stats.NotVoted = stats.Total - stats.Voted
	if stats.Total > 0 {
		stats.ParticipationRate = math.Round(float64(stats.Voted)*1000/float64(stats.Total)) / 10
	}
	return stats, nil
}

// reverseVoterBallots deletes every record the voter cast and decrements
// each affected candidate by the number of records removed. Returns the
// number of records removed.
func reverseVoterBallots(ctx context.Context, tx *sql.Tx, voterID string) (int, error) {
	counts := make(map[string]int)
	for _, table := range []string{"ballot_record", "ranked_ballot_record"} {
		if err := collectDeleted(ctx, tx, counts, `DELETE FROM `+table+` WHERE voter_id = $1 RETURNING candidate_id`, voterID); err != nil {
			return 0, err
		}
	}
	return decrementCandidates(ctx, tx, counts)
}

// collectDeleted runs a DELETE ... RETURNING candidate_id and tallies the
// returned candidate ids into counts.
func collectDeleted(ctx context.Context, tx *sql.Tx, counts map[string]int, query string, args ...any) error {
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete ballot records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var candidateID string
		if err := rows.Scan(&candidateID); err != nil {
			return fmt.Errorf("failed to scan deleted record: %w", err)
		}
		counts[candidateID]++
	}
	return rows.Err()
}

// decrementCandidates subtracts counts from candidate tallies. Candidates
// are updated in id order so concurrent reversals lock rows consistently.
func decrementCandidates(ctx context.Context, tx *sql.Tx, counts map[string]int) (int, error) {
	ids := make([]string, 0, len(counts))
	total := 0
	for id, n := range counts {
		ids = append(ids, id)
		total += n
	}
	sort.Strings(ids)

	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, `
			UPDATE candidate SET votes = votes - $1 WHERE id = $2
		`, counts[id], id); err != nil {
			return 0, fmt.Errorf("failed to decrement candidate votes: %w", err)
		}
	}
	return total, nil
}
