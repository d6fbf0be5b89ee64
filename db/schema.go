// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
// The same DDL runs on PostgreSQL and SQLite.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Tables lists every table in dependency order (children first).
var Tables = []string{
	"ranked_ballot_record",
	"ballot_record",
	"candidate",
	"election_position",
	"voter",
	"election_session",
}

// Foreign keys have no ON DELETE CASCADE: the store deletes dependents
// explicitly, and the constraints catch anything it misses.
const schema = `
-- Sessions
CREATE TABLE IF NOT EXISTS election_session (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    academic_year TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    is_active BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP NOT NULL
);

-- At most one active session
CREATE UNIQUE INDEX IF NOT EXISTS idx_election_session_single_active
    ON election_session(is_active) WHERE is_active;

-- Positions
CREATE TABLE IF NOT EXISTS election_position (
    id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL REFERENCES election_session(id),
    name TEXT NOT NULL,
    display_order INTEGER NOT NULL DEFAULT 0,
    description TEXT NOT NULL DEFAULT '',
    grade_filter TEXT,
    voting_type TEXT NOT NULL DEFAULT 'single' CHECK (voting_type IN ('single', 'double')),
    UNIQUE (session_id, name)
);

CREATE INDEX IF NOT EXISTS idx_election_position_session_id ON election_position(session_id);

-- Candidates
CREATE TABLE IF NOT EXISTS candidate (
    id TEXT PRIMARY KEY,
    position_id TEXT NOT NULL REFERENCES election_position(id),
    name TEXT NOT NULL,
    grade TEXT NOT NULL DEFAULT '',
    manifesto TEXT NOT NULL DEFAULT '',
    photo_url TEXT,
    votes INTEGER NOT NULL DEFAULT 0 CHECK (votes >= 0)
);

CREATE INDEX IF NOT EXISTS idx_candidate_position_id ON candidate(position_id);

-- Voters
CREATE TABLE IF NOT EXISTS voter (
    id TEXT PRIMARY KEY,
    student_id TEXT NOT NULL UNIQUE,
    voter_code TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL UNIQUE,
    grade TEXT NOT NULL,
    photo_url TEXT,
    has_voted BOOLEAN NOT NULL DEFAULT FALSE,
    registered_at TIMESTAMP NOT NULL
);

-- Single-choice ballots: one per (session, position, voter)
CREATE TABLE IF NOT EXISTS ballot_record (
    id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL REFERENCES election_session(id),
    position_id TEXT NOT NULL REFERENCES election_position(id),
    candidate_id TEXT NOT NULL REFERENCES candidate(id),
    voter_id TEXT NOT NULL REFERENCES voter(id),
    cast_at TIMESTAMP NOT NULL,
    ip_hash TEXT,
    user_agent TEXT,
    UNIQUE (session_id, position_id, voter_id)
);

CREATE INDEX IF NOT EXISTS idx_ballot_record_candidate_id ON ballot_record(candidate_id);
CREATE INDEX IF NOT EXISTS idx_ballot_record_voter_id ON ballot_record(voter_id);

-- Dual-choice ballots: one pair per (session, position, voter)
CREATE TABLE IF NOT EXISTS ranked_ballot_record (
    id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL REFERENCES election_session(id),
    position_id TEXT NOT NULL REFERENCES election_position(id),
    candidate_id TEXT NOT NULL REFERENCES candidate(id),
    voter_id TEXT NOT NULL REFERENCES voter(id),
    vote_order INTEGER NOT NULL CHECK (vote_order IN (1, 2)),
    cast_at TIMESTAMP NOT NULL,
    ip_hash TEXT,
    user_agent TEXT,
    UNIQUE (session_id, position_id, voter_id, vote_order),
    UNIQUE (session_id, position_id, voter_id, candidate_id)
);

CREATE INDEX IF NOT EXISTS idx_ranked_ballot_record_candidate_id ON ranked_ballot_record(candidate_id);
CREATE INDEX IF NOT EXISTS idx_ranked_ballot_record_voter_id ON ranked_ballot_record(voter_id);
`
