// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/danielhkuo/quickly-elect/models"
	"github.com/danielhkuo/quickly-elect/testutil"
)

// TestConcurrentVotes verifies that simultaneous ballots from different
// voters all land and the stored tallies match the records
func TestConcurrentVotes(t *testing.T) {
	env := newTestEnv(t)
	f := newBallotFixture(t, env)
	handler := NewVotingHandler(env.svc)

	numVoters := 10
	tokens := make([]string, numVoters)
	for i := 0; i < numVoters; i++ {
		_, code := testutil.CreateTestVoter(t, env.conn, fmt.Sprintf("Concurrent Voter %d", i), "10")
		tokens[i] = env.verify(t, code)
	}

	var successCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numVoters; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			choice := f.alice
			if idx%2 == 1 {
				choice = f.bob
			}
			req := testutil.MakeRequest("POST", "/voting/vote",
				models.CastVoteRequest{PositionID: f.president, CandidateID: choice},
				voterHeaders(tokens[idx]))
			w := httptest.NewRecorder()

			handler.Vote(w, req)

			if w.Code == http.StatusCreated {
				successCount.Add(1)
			}
		}(i)
	}

	wg.Wait()

	if int(successCount.Load()) != numVoters {
		t.Errorf("Expected %d successful votes, got %d", numVoters, successCount.Load())
	}
	if n := testutil.CountRows(t, env.conn, "ballot_record", "position_id = $1", f.president); n != numVoters {
		t.Errorf("Expected %d ballot records, got %d", numVoters, n)
	}
	if a, b := testutil.CandidateVotes(t, env.conn, f.alice), testutil.CandidateVotes(t, env.conn, f.bob); a != 5 || b != 5 {
		t.Errorf("Expected 5/5 split, got %d/%d", a, b)
	}
}

// TestConcurrentDuplicateVote verifies that one voter firing the same
// ballot many times at once is counted exactly once
func TestConcurrentDuplicateVote(t *testing.T) {
	env := newTestEnv(t)
	f := newBallotFixture(t, env)
	handler := NewVotingHandler(env.svc)
	token := env.verify(t, f.code)

	numAttempts := 8
	var created, conflicts atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numAttempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			req := testutil.MakeRequest("POST", "/voting/vote",
				models.CastVoteRequest{PositionID: f.prefects, CandidateID: f.cara, SecondCandidateID: f.dan},
				voterHeaders(token))
			w := httptest.NewRecorder()

			handler.Vote(w, req)

			switch w.Code {
			case http.StatusCreated:
				created.Add(1)
			case http.StatusConflict:
				conflicts.Add(1)
			}
		}()
	}

	wg.Wait()

	if created.Load() != 1 {
		t.Errorf("Expected exactly 1 accepted ballot, got %d", created.Load())
	}
	if int(conflicts.Load()) != numAttempts-1 {
		t.Errorf("Expected %d conflicts, got %d", numAttempts-1, conflicts.Load())
	}
	if n := testutil.CountRows(t, env.conn, "ranked_ballot_record", "voter_id = $1", f.voterID); n != 2 {
		t.Errorf("Expected 2 ranked records, got %d", n)
	}
	if c := testutil.CandidateVotes(t, env.conn, f.cara); c != 1 {
		t.Errorf("Expected Cara to have 1 vote, got %d", c)
	}
}
