// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

  - CreateSessionRequest: name, academic_year, description
  - CreatePositionRequest: name, session_id, display_order, grade_filter, voting_type
  - CreateCandidateRequest / RegisterVoterRequest: parsed multipart form fields
  - AdminLoginRequest: username, password
  - VerifyVoterRequest: voter_code
  - CastVoteRequest: position_id, candidate_id, second_candidate_id (dual-choice only)

# Domain Types

  - Session: one election event; at most one active
  - Position: electable office, optional grade filter, single or double voting
  - Candidate: candidate with running vote tally
  - Voter: registered voter (student_id, voter_code, has_voted)
  - BallotRecord / RankedBallotRecord: cast-ballot logs

# Result Types

  - SessionResults: per-position ranked candidates plus statistics
  - AuditReport: tally/record mismatches for a session

# Constants

Voting types:

	VotingSingle = "single"
	VotingDouble = "double"

Reset scopes:

	ScopeSession, ScopePosition, ScopeVoter
*/
package models
