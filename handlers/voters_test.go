// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/danielhkuo/quickly-elect/auth"
	"github.com/danielhkuo/quickly-elect/election"
	"github.com/danielhkuo/quickly-elect/models"
	"github.com/danielhkuo/quickly-elect/testutil"
)

func TestRegisterVoter(t *testing.T) {
	env := newTestEnv(t)
	handler := NewVoterHandler(env.store, env.svc, env.images)
	year := time.Now().UTC().Year()

	tests := []struct {
		name           string
		fields         map[string]string
		photo          string
		expectedStatus int
		checkResponse  func(t *testing.T, w *httptest.ResponseRecorder)
	}{
		{
			name:           "first voter of the year",
			fields:         map[string]string{"name": "Alice Tan", "grade": "10"},
			photo:          "alice.png",
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, w *httptest.ResponseRecorder) {
				var voter models.Voter
				testutil.AssertJSON(t, w, &voter)
				if want := fmt.Sprintf("AA-STU-%d-0001", year); voter.StudentID != want {
					t.Errorf("Expected student id %s, got %s", want, voter.StudentID)
				}
				if len(voter.VoterCode) != auth.VoterCodeLength {
					t.Errorf("Expected %d digit voter code, got %q", auth.VoterCodeLength, voter.VoterCode)
				}
				if voter.PhotoURL == nil || !strings.HasPrefix(*voter.PhotoURL, "https://images.test/voters/") {
					t.Errorf("Unexpected photo url: %v", voter.PhotoURL)
				}
				if voter.HasVoted {
					t.Error("Expected new voter not to have voted")
				}
			},
		},
		{
			name:           "sequence increments",
			fields:         map[string]string{"name": "Ben Lim", "grade": "11"},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, w *httptest.ResponseRecorder) {
				var voter models.Voter
				testutil.AssertJSON(t, w, &voter)
				if want := fmt.Sprintf("AA-STU-%d-0002", year); voter.StudentID != want {
					t.Errorf("Expected student id %s, got %s", want, voter.StudentID)
				}
			},
		},
		{
			name:           "duplicate name",
			fields:         map[string]string{"name": "Alice Tan", "grade": "12"},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "missing grade",
			fields:         map[string]string{"name": "Cara Ng"},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeMultipartRequest(t, "POST", "/voters", tt.fields, tt.photo)
			w := httptest.NewRecorder()

			handler.RegisterVoter(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.checkResponse != nil {
				tt.checkResponse(t, w)
			}
		})
	}

	req := httptest.NewRequest("GET", "/voters", nil)
	w := httptest.NewRecorder()
	handler.ListVoters(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.VotersResponse
	testutil.AssertJSON(t, w, &resp)
	if len(resp.Voters) != 2 {
		t.Errorf("Expected 2 voters, got %d", len(resp.Voters))
	}
}

func TestDeleteVoterReversesVotes(t *testing.T) {
	env := newTestEnv(t)
	handler := NewVoterHandler(env.store, env.svc, env.images)

	sessionID := testutil.CreateTestSession(t, env.conn, "Spring", true)
	positionID := testutil.CreateTestPosition(t, env.conn, sessionID, "President", models.VotingSingle, "")
	candidateID := testutil.CreateTestCandidate(t, env.conn, positionID, "Alice")
	voterID, code := testutil.CreateTestVoter(t, env.conn, "Voter One", "10")

	token := env.verify(t, code)
	if _, err := env.svc.CastSingle(t.Context(), token, positionID, candidateID, election.ClientMeta{}); err != nil {
		t.Fatalf("Failed to cast: %v", err)
	}

	req := httptest.NewRequest("DELETE", "/voters/"+voterID, nil)
	req.SetPathValue("id", voterID)
	w := httptest.NewRecorder()
	handler.DeleteVoter(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	if votes := testutil.CandidateVotes(t, env.conn, candidateID); votes != 0 {
		t.Errorf("Expected tally to drop to 0, got %d", votes)
	}
	if n := testutil.CountRows(t, env.conn, "ballot_record", ""); n != 0 {
		t.Errorf("Expected no ballot records, got %d", n)
	}

	w = httptest.NewRecorder()
	handler.DeleteVoter(w, req)
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestVoterStats(t *testing.T) {
	env := newTestEnv(t)
	handler := NewVoterHandler(env.store, env.svc, env.images)

	testutil.CreateTestSession(t, env.conn, "Spring", true)
	for i := 0; i < 4; i++ {
		testutil.CreateTestVoter(t, env.conn, fmt.Sprintf("Voter %d", i), "10")
	}
	_, code := testutil.CreateTestVoter(t, env.conn, "Finished", "10")
	if err := env.svc.CompleteVoting(t.Context(), env.verify(t, code)); err != nil {
		t.Fatalf("Failed to complete voting: %v", err)
	}

	req := httptest.NewRequest("GET", "/voters/stats", nil)
	w := httptest.NewRecorder()
	handler.VoterStats(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var stats models.VoterStats
	testutil.AssertJSON(t, w, &stats)
	if stats.Total != 5 || stats.Voted != 1 || stats.NotVoted != 4 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
	if stats.ParticipationRate != 20 {
		t.Errorf("Expected 20%% participation, got %v", stats.ParticipationRate)
	}
}
