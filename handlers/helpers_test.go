// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"io"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/danielhkuo/quickly-elect/audit"
	"github.com/danielhkuo/quickly-elect/db"
	"github.com/danielhkuo/quickly-elect/election"
	"github.com/danielhkuo/quickly-elect/metrics"
	"github.com/danielhkuo/quickly-elect/store"
	"github.com/danielhkuo/quickly-elect/testutil"
	"github.com/danielhkuo/quickly-elect/voterpass"
)

// testEnv wires handlers to a fresh SQLite database
type testEnv struct {
	conn     *sql.DB
	store    *store.Store
	svc      *election.Service
	images   *fakeImages
	recorder *audit.Recorder
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	conn := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig(t)

	passes, err := voterpass.NewMemoryStore(cfg.VoterPassTTL)
	if err != nil {
		t.Fatalf("Failed to create pass store: %v", err)
	}

	st := store.New(conn, db.SQLite, store.WithStudentIDPrefix(cfg.StudentIDPrefix))
	recorder := &audit.Recorder{}
	svc := election.NewService(st, passes, recorder, metrics.New(prometheus.NewRegistry()), election.Config{
		IPHashSalt:     cfg.IPHashSalt,
		ShowLiveCounts: cfg.ShowLiveCounts,
	})

	return &testEnv{
		conn:     conn,
		store:    st,
		svc:      svc,
		images:   &fakeImages{},
		recorder: recorder,
	}
}

// verify exchanges a voter code for a voter token through the service
func (e *testEnv) verify(t *testing.T, code string) string {
	t.Helper()
	resp, err := e.svc.Verify(context.Background(), code)
	if err != nil {
		t.Fatalf("Failed to verify voter: %v", err)
	}
	return resp.VoterToken
}

// fakeImages records uploads and deletes in memory
type fakeImages struct {
	mu      sync.Mutex
	uploads []string
	deletes []string
	fail    error
}

func (f *fakeImages) Upload(_ context.Context, folder, filename string, r io.Reader) (string, error) {
	if f.fail != nil {
		return "", f.fail
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	url := "https://images.test/" + folder + "/" + filename
	f.uploads = append(f.uploads, url)
	return url, nil
}

func (f *fakeImages) Delete(_ context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, url)
	return nil
}

func (f *fakeImages) Deleted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deletes...)
}
