// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles connections, schema creation, and driver error
classification for PostgreSQL and SQLite.

# Connecting

	conn, err := db.Open(db.SQLite, "file:quickly-elect.db")
	if err != nil {
		log.Fatal(err)
	}

SQLite connections run with foreign_keys on and a single open connection.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - election_session: One election event; at most one active
  - election_position: Electable office within a session
  - candidate: Candidate with running vote tally
  - voter: Registered voter with student ID and voter code
  - ballot_record: Single-choice ballots
  - ranked_ballot_record: Dual-choice ballots (vote_order 1 and 2)

# Relationships

	election_session 1──* election_position
	election_position 1──* candidate
	candidate 1──* ballot_record, ranked_ballot_record
	voter 1──* ballot_record, ranked_ballot_record

Foreign keys do not cascade; the store deletes dependents explicitly.

# Uniqueness

  - election_session.name
  - election_session.is_active (partial index WHERE is_active)
  - election_position.(session_id, name)
  - voter.student_id, voter.voter_code, voter.name
  - ballot_record.(session_id, position_id, voter_id)
  - ranked_ballot_record.(session_id, position_id, voter_id, vote_order)
  - ranked_ballot_record.(session_id, position_id, voter_id, candidate_id)

IsUniqueViolation and IsForeignKeyViolation classify driver errors from
lib/pq and modernc.org/sqlite.
*/
package db
