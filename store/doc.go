// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store persists election entities and ballot records.

	st := store.New(conn, db.SQLite, store.WithStudentIDPrefix("AA"))
	sess, err := st.CreateSession(ctx, models.CreateSessionRequest{Name: "Spring 2025"})

# Tallies

A candidate's votes column always equals the number of ballot records
naming that candidate. Every operation that touches both runs in a single
transaction:

  - RecordBallot: insert record, increment candidate
  - RecordRankedBallot: insert both records, increment both candidates
  - ResetSession, ResetPosition: zero candidates, delete records
  - ResetVoter, DeleteVoter: delete the voter's records, decrement each
    candidate by the records removed
  - DeleteCandidate, DeletePosition, DeleteSession: delete dependents first

AuditTally reports any candidate where the two disagree.

# Errors

Errors are classified with apperr kinds: missing rows and foreign-key
violations become NotFound, duplicate names become DuplicateName, and a
second ballot for the same (session, position, voter) becomes
AlreadyVoted. Anything else is wrapped with context and treated as
internal.
*/
package store
