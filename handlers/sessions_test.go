// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/quickly-elect/imagestore"
	"github.com/danielhkuo/quickly-elect/models"
	"github.com/danielhkuo/quickly-elect/testutil"
)

func TestCreateSession(t *testing.T) {
	env := newTestEnv(t)
	handler := NewSessionHandler(env.store, env.svc, env.images)

	tests := []struct {
		name           string
		requestBody    interface{}
		expectedStatus int
		checkResponse  func(t *testing.T, w *httptest.ResponseRecorder)
	}{
		{
			name:           "first session becomes active",
			requestBody:    models.CreateSessionRequest{Name: "Spring 2025", AcademicYear: "2024-2025"},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, w *httptest.ResponseRecorder) {
				var session models.Session
				testutil.AssertJSON(t, w, &session)
				if session.ID == "" {
					t.Error("Expected non-empty id")
				}
				if !session.IsActive {
					t.Error("Expected first session to be active")
				}
			},
		},
		{
			name:           "second session stays inactive",
			requestBody:    models.CreateSessionRequest{Name: "Autumn 2025"},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, w *httptest.ResponseRecorder) {
				var session models.Session
				testutil.AssertJSON(t, w, &session)
				if session.IsActive {
					t.Error("Expected second session to be inactive")
				}
			},
		},
		{
			name:           "duplicate name",
			requestBody:    models.CreateSessionRequest{Name: "Spring 2025"},
			expectedStatus: http.StatusConflict,
			checkResponse: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp models.ErrorResponse
				testutil.AssertJSON(t, w, &resp)
				if resp.Error != "DuplicateName" {
					t.Errorf("Expected DuplicateName, got %s", resp.Error)
				}
			},
		},
		{
			name:           "missing name",
			requestBody:    models.CreateSessionRequest{Name: "   "},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid JSON",
			requestBody:    "not an object",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/sessions", tt.requestBody, nil)
			w := httptest.NewRecorder()

			handler.CreateSession(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.checkResponse != nil {
				tt.checkResponse(t, w)
			}
		})
	}

	req := testutil.MakeRequest("GET", "/sessions", nil, nil)
	w := httptest.NewRecorder()
	handler.ListSessions(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var list models.SessionsResponse
	testutil.AssertJSON(t, w, &list)
	if len(list.Sessions) != 2 {
		t.Fatalf("Expected 2 sessions, got %d", len(list.Sessions))
	}
	if list.Sessions[0].Name != "Autumn 2025" {
		t.Errorf("Expected newest session first, got %s", list.Sessions[0].Name)
	}
}

func TestActivateSession(t *testing.T) {
	env := newTestEnv(t)
	handler := NewSessionHandler(env.store, env.svc, env.images)

	first := testutil.CreateTestSession(t, env.conn, "First", true)
	second := testutil.CreateTestSession(t, env.conn, "Second", false)

	req := httptest.NewRequest("POST", "/sessions/"+second+"/activate", nil)
	req.SetPathValue("id", second)
	w := httptest.NewRecorder()
	handler.ActivateSession(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	if n := testutil.CountRows(t, env.conn, "election_session", "is_active"); n != 1 {
		t.Errorf("Expected exactly 1 active session, got %d", n)
	}
	if n := testutil.CountRows(t, env.conn, "election_session", "is_active AND id = $1", first); n != 0 {
		t.Error("Expected first session to be deactivated")
	}

	req = httptest.NewRequest("POST", "/sessions/missing/activate", nil)
	req.SetPathValue("id", "missing")
	w = httptest.NewRecorder()
	handler.ActivateSession(w, req)
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestDeleteSession(t *testing.T) {
	env := newTestEnv(t)
	handler := NewSessionHandler(env.store, env.svc, env.images)
	candidates := NewCandidateHandler(env.store, env.images)

	sessionID := testutil.CreateTestSession(t, env.conn, "Doomed", true)
	positionID := testutil.CreateTestPosition(t, env.conn, sessionID, "President", models.VotingSingle, "")

	req := testutil.MakeMultipartRequest(t, "POST", "/candidates", map[string]string{
		"name": "Alice", "position_id": positionID, "grade": "12",
	}, "alice.png")
	w := httptest.NewRecorder()
	candidates.CreateCandidate(w, req)
	testutil.AssertStatus(t, w, http.StatusCreated)

	req = httptest.NewRequest("DELETE", "/sessions/"+sessionID, nil)
	req.SetPathValue("id", sessionID)
	w = httptest.NewRecorder()
	handler.DeleteSession(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	for _, table := range []string{"election_session", "election_position", "candidate"} {
		if n := testutil.CountRows(t, env.conn, table, ""); n != 0 {
			t.Errorf("Expected %s to be empty, got %d rows", table, n)
		}
	}
	if deleted := env.images.Deleted(); len(deleted) != 1 || deleted[0] != "https://images.test/candidates/alice.png" {
		t.Errorf("Expected candidate photo to be deleted, got %v", deleted)
	}

	w = httptest.NewRecorder()
	handler.DeleteSession(w, req)
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestCreatePosition(t *testing.T) {
	env := newTestEnv(t)
	handler := NewPositionHandler(env.store, env.images)
	sessionID := testutil.CreateTestSession(t, env.conn, "Spring", true)

	tests := []struct {
		name           string
		requestBody    models.CreatePositionRequest
		expectedStatus int
	}{
		{"single choice default", models.CreatePositionRequest{Name: "President", SessionID: sessionID}, http.StatusCreated},
		{"dual choice with grade filter", models.CreatePositionRequest{Name: "Grade 10 Prefects", SessionID: sessionID, VotingType: models.VotingDouble, GradeFilter: "10"}, http.StatusCreated},
		{"duplicate name in session", models.CreatePositionRequest{Name: "President", SessionID: sessionID}, http.StatusConflict},
		{"unknown session", models.CreatePositionRequest{Name: "Treasurer", SessionID: "missing"}, http.StatusNotFound},
		{"bad voting type", models.CreatePositionRequest{Name: "Treasurer", SessionID: sessionID, VotingType: "ranked"}, http.StatusBadRequest},
		{"missing session", models.CreatePositionRequest{Name: "Treasurer"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/positions", tt.requestBody, nil)
			w := httptest.NewRecorder()

			handler.CreatePosition(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
		})
	}

	req := httptest.NewRequest("GET", "/sessions/"+sessionID+"/positions", nil)
	req.SetPathValue("id", sessionID)
	w := httptest.NewRecorder()
	handler.ListPositions(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.PositionsResponse
	testutil.AssertJSON(t, w, &resp)
	if len(resp.Positions) != 2 {
		t.Fatalf("Expected 2 positions, got %d", len(resp.Positions))
	}
	for _, p := range resp.Positions {
		if p.Name == "Grade 10 Prefects" && (p.GradeFilter == nil || *p.GradeFilter != "10" || p.VotingType != models.VotingDouble) {
			t.Errorf("Unexpected position: %+v", p)
		}
	}
}

func TestCandidates(t *testing.T) {
	env := newTestEnv(t)
	handler := NewCandidateHandler(env.store, env.images)
	sessionID := testutil.CreateTestSession(t, env.conn, "Spring", true)
	positionID := testutil.CreateTestPosition(t, env.conn, sessionID, "President", models.VotingSingle, "")

	tests := []struct {
		name           string
		fields         map[string]string
		photo          string
		expectedStatus int
	}{
		{"with photo", map[string]string{"name": "Alice", "position_id": positionID, "grade": "12", "manifesto": "Longer lunch"}, "alice.JPG", http.StatusCreated},
		{"without photo", map[string]string{"name": "Bob", "position_id": positionID, "grade": "11"}, "", http.StatusCreated},
		{"unsupported photo type", map[string]string{"name": "Cara", "position_id": positionID}, "cara.svg", http.StatusBadRequest},
		{"unknown position", map[string]string{"name": "Dan", "position_id": "missing"}, "", http.StatusNotFound},
		{"missing name", map[string]string{"position_id": positionID}, "", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeMultipartRequest(t, "POST", "/candidates", tt.fields, tt.photo)
			w := httptest.NewRecorder()

			handler.CreateCandidate(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
		})
	}

	req := httptest.NewRequest("GET", "/positions/"+positionID+"/candidates", nil)
	req.SetPathValue("id", positionID)
	w := httptest.NewRecorder()
	handler.ListCandidates(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.CandidatesResponse
	testutil.AssertJSON(t, w, &resp)
	if len(resp.Candidates) != 2 {
		t.Fatalf("Expected 2 candidates, got %d", len(resp.Candidates))
	}
	alice := resp.Candidates[0]
	if alice.Name != "Alice" || alice.PhotoURL == nil || alice.Votes != 0 {
		t.Errorf("Unexpected candidate: %+v", alice)
	}

	req = httptest.NewRequest("DELETE", "/candidates/"+alice.ID, nil)
	req.SetPathValue("id", alice.ID)
	w = httptest.NewRecorder()
	handler.DeleteCandidate(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	if deleted := env.images.Deleted(); len(deleted) != 1 || deleted[0] != *alice.PhotoURL {
		t.Errorf("Expected photo %s deleted, got %v", *alice.PhotoURL, deleted)
	}
}

func TestCreateCandidateWithoutImageHost(t *testing.T) {
	env := newTestEnv(t)
	env.images.fail = imagestore.ErrNotConfigured
	handler := NewCandidateHandler(env.store, env.images)
	sessionID := testutil.CreateTestSession(t, env.conn, "Spring", true)
	positionID := testutil.CreateTestPosition(t, env.conn, sessionID, "President", models.VotingSingle, "")

	req := testutil.MakeMultipartRequest(t, "POST", "/candidates", map[string]string{"name": "Alice", "position_id": positionID}, "alice.png")
	w := httptest.NewRecorder()
	handler.CreateCandidate(w, req)

	testutil.AssertStatus(t, w, http.StatusBadRequest)
	if n := testutil.CountRows(t, env.conn, "candidate", ""); n != 0 {
		t.Errorf("Expected no candidate, got %d", n)
	}
}
