// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the election API.

# Handler Types

  - AdminHandler: admin login, liveness and database health
  - SessionHandler: session list, create, activate, delete
  - PositionHandler: positions of a session
  - CandidateHandler: candidates with optional photo upload
  - VoterHandler: voter registration, deletion and turnout stats
  - VotingHandler: voter verification, ballot view, casting, completion
  - ResultsHandler: results, tally audit and resets

Handlers that only read or write entities use *store.Store directly.
Anything touching ballots, passes or the audit stream goes through
*election.Service:

	voting := handlers.NewVotingHandler(svc)
	sessions := handlers.NewSessionHandler(st, svc, images)

# Voting Flow

	POST /voting/verify   → Verify (voter_code → voter_token)
	GET  /voting/positions → Positions
	POST /voting/vote      → Vote (single, or dual with second_candidate_id)
	POST /voting/complete  → Complete

Voter routes require the X-Voter-Token header returned by Verify.

# Photos

Candidate and voter creation accept multipart forms with an optional
"photo" file (png, jpg, jpeg, gif, bmp). Photos are uploaded through an
imagestore.Store before the row is inserted and removed again if the
insert fails. Deleting an entity deletes its photos on a best-effort basis.

# Errors

Every failure is written by middleware.WriteError as
{"error": kind, "message": text}.
*/
package handlers
