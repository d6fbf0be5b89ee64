// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Dialect names the SQL backend. Both accept the same $N placeholders.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// ParseDialect maps a DATABASE_TYPE value to a Dialect.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "postgres", "postgresql":
		return Postgres, nil
	case "sqlite", "sqlite3", "":
		return SQLite, nil
	default:
		return "", fmt.Errorf("unsupported database type %q", s)
	}
}

// Open connects to the database and verifies the connection.
//
// SQLite is limited to a single connection: it has one writer anyway, and
// this keeps foreign_keys (a per-connection pragma) on for every statement.
func Open(dialect Dialect, url string) (*sql.DB, error) {
	var (
		conn *sql.DB
		err  error
	)
	switch dialect {
	case Postgres:
		conn, err = sql.Open("postgres", url)
	case SQLite:
		conn, err = sql.Open("sqlite", sqliteDSN(url))
	default:
		return nil, fmt.Errorf("unsupported dialect %q", dialect)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if dialect == SQLite {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	return conn, nil
}

func sqliteDSN(url string) string {
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	return url + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// Advisory lock keys for operations that must not interleave
const (
	ActivationLock   int64 = 7_340_117
	RegistrationLock int64 = 7_340_118
)

// Lock serializes the critical section guarded by key for the rest of tx.
// PostgreSQL takes a transaction-scoped advisory lock; SQLite already has a
// single writer.
func Lock(ctx context.Context, tx *sql.Tx, dialect Dialect, key int64) error {
	if dialect != Postgres {
		return nil
	}
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, key); err != nil {
		return fmt.Errorf("failed to take advisory lock: %w", err)
	}
	return nil
}
