// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"
	"math"
	"sort"

	"github.com/danielhkuo/quickly-elect/models"
)

// Results ranks every position of the session. Candidates are ordered by
// votes descending, ties broken by candidate id (creation order).
func (s *Service) Results(ctx context.Context, sessionID string) (*models.SessionResults, error) {
	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	positions, err := s.repo.SessionPositions(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	candidates, err := s.repo.SessionCandidates(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	voters, err := s.repo.VoterStats(ctx)
	if err != nil {
		return nil, err
	}

	results := &models.SessionResults{
		Session:   *session,
		Positions: []models.PositionResult{},
		Voters:    voters,
	}
	for _, pos := range positions {
		pr := rankPosition(pos, candidates[pos.ID])
		results.Statistics.TotalCandidates += len(pr.Candidates)
		results.Statistics.TotalVotes += pr.TotalVotes
		results.Positions = append(results.Positions, pr)
	}
	results.Statistics.TotalPositions = len(positions)
	if len(positions) > 0 {
		results.Statistics.AverageVotesPerPosition = results.Statistics.TotalVotes / len(positions)
	}
	return results, nil
}

// rankPosition sorts and annotates one position's candidates. A position
// with a single candidate never declares a winner.
func rankPosition(pos models.Position, candidates []models.Candidate) models.PositionResult {
	sorted := append([]models.Candidate(nil), candidates...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Votes != sorted[j].Votes {
			return sorted[i].Votes > sorted[j].Votes
		}
		return sorted[i].ID < sorted[j].ID
	})

	pr := models.PositionResult{
		ID:          pos.ID,
		Name:        pos.Name,
		Description: pos.Description,
		VotingType:  pos.VotingType,
		Candidates:  make([]models.CandidateResult, 0, len(sorted)),
	}
	for _, c := range sorted {
		pr.TotalVotes += c.Votes
	}

	for i, c := range sorted {
		pr.Candidates = append(pr.Candidates, models.CandidateResult{
			ID:         c.ID,
			Name:       c.Name,
			Grade:      c.Grade,
			PhotoURL:   c.PhotoURL,
			Manifesto:  c.Manifesto,
			Votes:      c.Votes,
			Percentage: percentage(c.Votes, pr.TotalVotes),
			IsWinner:   i == 0 && len(sorted) > 1 && c.Votes > 0,
			Rank:       i + 1,
		})
	}
	return pr
}

// percentage of total, rounded to one decimal
func percentage(votes, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(votes)*1000/float64(total)) / 10
}

// Audit compares every candidate's stored tally in the session with the
// records that reference it.
func (s *Service) Audit(ctx context.Context, sessionID string) (*models.AuditReport, error) {
	mismatches, err := s.repo.AuditTally(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if mismatches == nil {
		mismatches = []models.TallyMismatch{}
	}
	return &models.AuditReport{
		SessionID:  sessionID,
		Consistent: len(mismatches) == 0,
		Mismatches: mismatches,
	}, nil
}
