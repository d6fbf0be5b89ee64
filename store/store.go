// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/danielhkuo/quickly-elect/apperr"
	"github.com/danielhkuo/quickly-elect/auth"
	"github.com/danielhkuo/quickly-elect/db"
)

// DefaultStudentIDPrefix is used when no prefix is configured
const DefaultStudentIDPrefix = "AA"

// Store persists sessions, positions, candidates, voters, and ballot records.
// Every multi-statement mutation runs in one transaction.
type Store struct {
	conn          *sql.DB
	dialect       db.Dialect
	studentPrefix string
	now           func() time.Time
	voterCode     func() (string, error)
}

// Option configures a Store
type Option func(*Store)

// WithStudentIDPrefix sets PREFIX in PREFIX-STU-YYYY-NNNN
func WithStudentIDPrefix(prefix string) Option {
	return func(s *Store) {
		if prefix != "" {
			s.studentPrefix = prefix
		}
	}
}

// WithClock overrides the time source for timestamps and student-ID years
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithVoterCodes overrides the voter code generator
func WithVoterCodes(gen func() (string, error)) Option {
	return func(s *Store) {
		if gen != nil {
			s.voterCode = gen
		}
	}
}

func New(conn *sql.DB, dialect db.Dialect, opts ...Option) *Store {
	s := &Store{
		conn:          conn,
		dialect:       dialect,
		studentPrefix: DefaultStudentIDPrefix,
		now:           time.Now,
		voterCode:     auth.GenerateVoterCode,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// inTx runs fn in a transaction. Any error from fn rolls everything back.
func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Store) timestamp() time.Time {
	return s.now().UTC()
}

// queryer is satisfied by *sql.DB and *sql.Tx
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func exists(ctx context.Context, q queryer, query string, args ...any) (bool, error) {
	var found bool
	err := q.QueryRowContext(ctx, `SELECT EXISTS(`+query+`)`, args...).Scan(&found)
	if err != nil {
		return false, err
	}
	return found, nil
}

// rowsAffected returns NotFound when an UPDATE or DELETE matched nothing
func rowsAffected(res sql.Result, format string, args ...any) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return apperr.New(apperr.KindNotFound, format, args...)
	}
	return nil
}
