// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Event types
const (
	EventSessionActivated = "session.activated"
	EventSessionDeleted   = "session.deleted"
	EventBallotCast       = "ballot.cast"
	EventVotingCompleted  = "voting.completed"
	EventReset            = "tally.reset"
	EventVoterDeleted     = "voter.deleted"
)

// Event describes a state change worth keeping an outside record of.
// Ballot events name the position but never the chosen candidates.
type Event struct {
	Type       string    `json:"type"`
	SessionID  string    `json:"session_id,omitempty"`
	PositionID string    `json:"position_id,omitempty"`
	VoterID    string    `json:"voter_id,omitempty"`
	Scope      string    `json:"scope,omitempty"`
	Records    int       `json:"records,omitempty"`
	At         time.Time `json:"at"`
}

// Publisher emits audit events. Events are published after the change has
// committed; a failed publish is logged and never undoes the change.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// LogPublisher writes events to the structured log
type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, e Event) error {
	slog.Info("audit event",
		"type", e.Type,
		"session_id", e.SessionID,
		"position_id", e.PositionID,
		"voter_id", e.VoterID,
		"scope", e.Scope,
		"records", e.Records,
		"at", e.At,
	)
	return nil
}

func (LogPublisher) Close() error { return nil }

// Recorder keeps events in memory
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *Recorder) Close() error { return nil }

// Events returns a copy of everything published so far
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Types returns the type of each recorded event in order
func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]string, len(r.events))
	for i, e := range r.events {
		types[i] = e.Type
	}
	return types
}
