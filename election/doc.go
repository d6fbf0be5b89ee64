// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package election implements the voting rules on top of the store.

A voter exchanges their voter code for a pass with Verify. Every other
voter operation takes the pass token and re-checks that the voter still
exists, has not completed voting, and that the session they verified
against is still the active one.

	resp, err := svc.Verify(ctx, code)
	positions, err := svc.VotingPositions(ctx, resp.VoterToken)
	rec, err := svc.CastSingle(ctx, resp.VoterToken, positionID, candidateID, meta)
	err = svc.CompleteVoting(ctx, resp.VoterToken)

Casting validates the position type, grade eligibility and candidate
membership before anything is written; the store's unique constraints
settle races between concurrent casts for the same voter and position.

Results ranks candidates by votes then id and marks a winner only when a
position has more than one candidate and the leader has at least one vote.
Audit compares stored tallies with the ballot records behind them.

Accepted ballots, completions, resets, activations and deletions are
published to an audit.Publisher after they commit. Events never carry the
chosen candidates.
*/
package election
