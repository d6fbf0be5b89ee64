// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielhkuo/quickly-elect/auth"
	"github.com/danielhkuo/quickly-elect/cliparse"
	"github.com/danielhkuo/quickly-elect/db"
)

// Test admin credential
const (
	TestAdminUsername = "election-admin"
	TestAdminPassword = "test-password"
)

// SetupTestDB creates a fresh SQLite database file with the full schema.
// The file lives in a per-test temp dir and is removed afterwards.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(db.SQLite, filepath.Join(t.TempDir(), "election.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig(t *testing.T) cliparse.Config {
	t.Helper()

	hash, err := auth.HashPassword(TestAdminPassword)
	if err != nil {
		t.Fatalf("Failed to hash admin password: %v", err)
	}

	return cliparse.Config{
		Port:              3318,
		DatabaseURL:       "file:test.db",
		DatabaseType:      "sqlite",
		AdminUsername:     TestAdminUsername,
		AdminPasswordHash: hash,
		AdminTokenSecret:  "test-token-secret",
		IPHashSalt:        "test-ip-salt",
		StudentIDPrefix:   "AA",
		VoterPassTTL:      cliparse.DefaultVoterPassTTL,
		AuditTopic:        "election-audit",
	}
}

// CreateTestSession inserts a session and returns its ID
func CreateTestSession(t *testing.T, conn *sql.DB, name string, active bool) string {
	t.Helper()

	id, _ := auth.GenerateID()
	_, err := conn.Exec(`
		INSERT INTO election_session (id, name, academic_year, description, is_active, created_at)
		VALUES ($1, $2, '2025', 'Test session', $3, $4)
	`, id, name, active, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test session: %v", err)
	}

	return id
}

// CreateTestPosition adds a position to a session and returns its ID.
// An empty gradeFilter opens the position to every grade.
func CreateTestPosition(t *testing.T, conn *sql.DB, sessionID, name, votingType, gradeFilter string) string {
	t.Helper()

	var filter *string
	if gradeFilter != "" {
		filter = &gradeFilter
	}

	id, _ := auth.GenerateID()
	_, err := conn.Exec(`
		INSERT INTO election_position (id, session_id, name, display_order, description, grade_filter, voting_type)
		VALUES ($1, $2, $3, 0, '', $4, $5)
	`, id, sessionID, name, filter, votingType)
	if err != nil {
		t.Fatalf("Failed to create test position: %v", err)
	}

	return id
}

// CreateTestCandidate adds a candidate to a position and returns its ID
func CreateTestCandidate(t *testing.T, conn *sql.DB, positionID, name string) string {
	t.Helper()

	id, _ := auth.GenerateID()
	_, err := conn.Exec(`
		INSERT INTO candidate (id, position_id, name, grade, manifesto, votes)
		VALUES ($1, $2, $3, '12', 'Vote for me', 0)
	`, id, positionID, name)
	if err != nil {
		t.Fatalf("Failed to create test candidate: %v", err)
	}

	return id
}

// CreateTestVoter registers a voter and returns the voter ID and code
func CreateTestVoter(t *testing.T, conn *sql.DB, name, grade string) (voterID, voterCode string) {
	t.Helper()

	voterID, _ = auth.GenerateID()
	voterCode, _ = auth.GenerateVoterCode()
	// Fixture IDs use their own prefix so they never collide with generated ones
	studentID := "TT-STU-2025-" + voterID

	_, err := conn.Exec(`
		INSERT INTO voter (id, student_id, voter_code, name, grade, has_voted, registered_at)
		VALUES ($1, $2, $3, $4, $5, FALSE, $6)
	`, voterID, studentID, voterCode, name, grade, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test voter: %v", err)
	}

	return voterID, voterCode
}

// CandidateVotes reads a candidate's stored tally
func CandidateVotes(t *testing.T, conn *sql.DB, candidateID string) int {
	t.Helper()

	var votes int
	if err := conn.QueryRow(`SELECT votes FROM candidate WHERE id = $1`, candidateID).Scan(&votes); err != nil {
		t.Fatalf("Failed to read candidate votes: %v", err)
	}
	return votes
}

// CountRows counts rows in table matching where
func CountRows(t *testing.T, conn *sql.DB, table, where string, args ...any) int {
	t.Helper()

	query := `SELECT COUNT(*) FROM ` + table
	if where != "" {
		query += ` WHERE ` + where
	}
	var n int
	if err := conn.QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatalf("Failed to count %s rows: %v", table, err)
	}
	return n
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}

// MakeMultipartRequest builds a multipart form request. A non-empty
// photoName attaches a small file under the "photo" field.
func MakeMultipartRequest(t *testing.T, method, path string, fields map[string]string, photoName string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("Failed to write field: %v", err)
		}
	}
	if photoName != "" {
		part, err := mw.CreateFormFile("photo", photoName)
		if err != nil {
			t.Fatalf("Failed to create form file: %v", err)
		}
		part.Write([]byte("\x89PNG fake image bytes"))
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("Failed to close multipart writer: %v", err)
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}
