// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Voting type constants
const (
	VotingSingle = "single"
	VotingDouble = "double"
)

// Reset scope constants
const (
	ScopeSession  = "session"
	ScopePosition = "position"
	ScopeVoter    = "voter"
)

// Request types

type CreateSessionRequest struct {
	Name         string `json:"name"`
	AcademicYear string `json:"academic_year"`
	Description  string `json:"description"`
}

type CreatePositionRequest struct {
	Name         string `json:"name"`
	SessionID    string `json:"session_id"`
	DisplayOrder int    `json:"display_order"`
	Description  string `json:"description"`
	GradeFilter  string `json:"grade_filter"`
	VotingType   string `json:"voting_type"`
}

// Candidates and voters arrive as multipart forms (photo upload); these are
// the parsed form fields.
type CreateCandidateRequest struct {
	Name       string
	PositionID string
	Grade      string
	Manifesto  string
	PhotoURL   *string
}

type RegisterVoterRequest struct {
	Name     string
	Grade    string
	PhotoURL *string
}

type AdminLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type VerifyVoterRequest struct {
	VoterCode string `json:"voter_code"`
}

// SecondCandidateID is set only for dual-choice positions
type CastVoteRequest struct {
	PositionID        string `json:"position_id"`
	CandidateID       string `json:"candidate_id"`
	SecondCandidateID string `json:"second_candidate_id,omitempty"`
}

// Response types

type AdminLoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type VerifyVoterResponse struct {
	VoterToken string        `json:"voter_token"`
	ExpiresAt  time.Time     `json:"expires_at"`
	Voter      VoterIdentity `json:"voter"`
	Session    Session       `json:"session"`
}

type VoterIdentity struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	StudentID string `json:"student_id"`
	Grade     string `json:"grade"`
}

type CastVoteResponse struct {
	BallotIDs []string `json:"ballot_ids"`
	Message   string   `json:"message"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type VotingPositionsResponse struct {
	Positions []VotingPosition `json:"positions"`
}

type SessionsResponse struct {
	Sessions []Session `json:"sessions"`
}

type PositionsResponse struct {
	Positions []PositionSummary `json:"positions"`
}

type CandidatesResponse struct {
	Candidates []Candidate `json:"candidates"`
}

type VotersResponse struct {
	Voters []Voter `json:"voters"`
}

// Domain types

type Session struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	AcademicYear string    `json:"academic_year"`
	Description  string    `json:"description"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

type Position struct {
	ID           string  `json:"id"`
	SessionID    string  `json:"session_id"`
	Name         string  `json:"name"`
	DisplayOrder int     `json:"display_order"`
	Description  string  `json:"description"`
	GradeFilter  *string `json:"grade_filter"`
	VotingType   string  `json:"voting_type"`
}

// OpenTo reports whether a voter in grade may vote on the position
func (p Position) OpenTo(grade string) bool {
	return p.GradeFilter == nil || *p.GradeFilter == grade
}

type PositionSummary struct {
	Position
	CandidateCount int `json:"candidate_count"`
}

type Candidate struct {
	ID         string  `json:"id"`
	PositionID string  `json:"position_id"`
	Name       string  `json:"name"`
	Grade      string  `json:"grade"`
	Manifesto  string  `json:"manifesto"`
	PhotoURL   *string `json:"photo_url"`
	Votes      int     `json:"votes"`
}

type Voter struct {
	ID           string    `json:"id"`
	StudentID    string    `json:"student_id"`
	VoterCode    string    `json:"voter_code"`
	Name         string    `json:"name"`
	Grade        string    `json:"grade"`
	PhotoURL     *string   `json:"photo_url"`
	HasVoted     bool      `json:"has_voted"`
	RegisteredAt time.Time `json:"registered_at"`
}

type BallotRecord struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"session_id"`
	PositionID  string    `json:"position_id"`
	CandidateID string    `json:"candidate_id"`
	VoterID     string    `json:"voter_id"`
	CastAt      time.Time `json:"cast_at"`
	IPHash      *string   `json:"-"` // Never expose in JSON
	UserAgent   *string   `json:"-"` // Never expose in JSON
}

type RankedBallotRecord struct {
	BallotRecord
	VoteOrder int `json:"vote_order"`
}

// Voting view types

// VotingCandidate omits Votes unless live counts are enabled
type VotingCandidate struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Grade     string  `json:"grade"`
	Manifesto string  `json:"manifesto"`
	PhotoURL  *string `json:"photo_url"`
	Votes     *int    `json:"votes,omitempty"`
}

type VotingPosition struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	GradeFilter *string           `json:"grade_filter"`
	VotingType  string            `json:"voting_type"`
	HasVoted    bool              `json:"has_voted"`
	Candidates  []VotingCandidate `json:"candidates"`
}

// Result types

type CandidateResult struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Grade      string  `json:"grade"`
	PhotoURL   *string `json:"photo_url"`
	Manifesto  string  `json:"manifesto"`
	Votes      int     `json:"votes"`
	Percentage float64 `json:"percentage"`
	IsWinner   bool    `json:"is_winner"`
	Rank       int     `json:"rank"`
}

type PositionResult struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	VotingType  string            `json:"voting_type"`
	TotalVotes  int               `json:"total_votes"`
	Candidates  []CandidateResult `json:"candidates"`
}

type ResultStatistics struct {
	TotalPositions          int `json:"total_positions"`
	TotalCandidates         int `json:"total_candidates"`
	TotalVotes              int `json:"total_votes"`
	AverageVotesPerPosition int `json:"average_votes_per_position"`
}

type SessionResults struct {
	Session    Session          `json:"session"`
	Positions  []PositionResult `json:"positions"`
	Statistics ResultStatistics `json:"statistics"`
	Voters     VoterStats       `json:"voters"`
}

type VoterStats struct {
	Total             int     `json:"total"`
	Voted             int     `json:"voted"`
	NotVoted          int     `json:"not_voted"`
	ParticipationRate float64 `json:"participation_rate"`
}

// TallyMismatch is a candidate whose stored tally disagrees with its records
type TallyMismatch struct {
	CandidateID string `json:"candidate_id"`
	PositionID  string `json:"position_id"`
	Votes       int    `json:"votes"`
	Records     int    `json:"records"`
}

type AuditReport struct {
	SessionID  string          `json:"session_id"`
	Consistent bool            `json:"consistent"`
	Mismatches []TallyMismatch `json:"mismatches"`
}

type EntityCounts struct {
	Sessions   int `json:"sessions"`
	Positions  int `json:"positions"`
	Candidates int `json:"candidates"`
	Voters     int `json:"voters"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
