// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"

	"github.com/danielhkuo/quickly-elect/models"
)

// VotingPositions returns the positions of the active session the pass
// holder may vote on, in display order, each with its candidates and
// whether this voter has already voted on it.
func (s *Service) VotingPositions(ctx context.Context, token string) ([]models.VotingPosition, error) {
	vc, err := s.authorize(ctx, token)
	if err != nil {
		return nil, err
	}

	positions, err := s.repo.SessionPositions(ctx, vc.session.ID)
	if err != nil {
		return nil, err
	}
	candidates, err := s.repo.SessionCandidates(ctx, vc.session.ID)
	if err != nil {
		return nil, err
	}
	voted, err := s.repo.VotedPositions(ctx, vc.session.ID, vc.voter.ID)
	if err != nil {
		return nil, err
	}

	return eligiblePositions(positions, candidates, voted, vc.voter.Grade, s.cfg.ShowLiveCounts), nil
}

// eligiblePositions keeps the positions open to grade, preserving order
func eligiblePositions(positions []models.Position, candidates map[string][]models.Candidate, voted map[string]bool, grade string, liveCounts bool) []models.VotingPosition {
	result := []models.VotingPosition{}
	for _, pos := range positions {
		if !pos.OpenTo(grade) {
			continue
		}

		vp := models.VotingPosition{
			ID:          pos.ID,
			Name:        pos.Name,
			Description: pos.Description,
			GradeFilter: pos.GradeFilter,
			VotingType:  pos.VotingType,
			HasVoted:    voted[pos.ID],
			Candidates:  []models.VotingCandidate{},
		}
		for _, c := range candidates[pos.ID] {
			vc := models.VotingCandidate{
				ID:        c.ID,
				Name:      c.Name,
				Grade:     c.Grade,
				Manifesto: c.Manifesto,
				PhotoURL:  c.PhotoURL,
			}
			if liveCounts {
				votes := c.Votes
				vc.Votes = &votes
			}
			vp.Candidates = append(vp.Candidates, vc)
		}
		result = append(result, vp)
	}
	return result
}
