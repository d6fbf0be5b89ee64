// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/danielhkuo/quickly-elect/apperr"
	"github.com/danielhkuo/quickly-elect/audit"
	"github.com/danielhkuo/quickly-elect/metrics"
	"github.com/danielhkuo/quickly-elect/models"
	"github.com/danielhkuo/quickly-elect/voterpass"
)

// Repository is the slice of the entity store the election flow needs.
// *store.Store satisfies it.
type Repository interface {
	GetSession(ctx context.Context, id string) (*models.Session, error)
	GetActiveSession(ctx context.Context) (*models.Session, error)
	ActivateSession(ctx context.Context, id string) (*models.Session, error)
	DeleteSession(ctx context.Context, id string) ([]string, error)

	GetPosition(ctx context.Context, id string) (*models.Position, error)
	SessionPositions(ctx context.Context, sessionID string) ([]models.Position, error)
	GetCandidate(ctx context.Context, id string) (*models.Candidate, error)
	SessionCandidates(ctx context.Context, sessionID string) (map[string][]models.Candidate, error)

	GetVoter(ctx context.Context, id string) (*models.Voter, error)
	GetVoterByCode(ctx context.Context, code string) (*models.Voter, error)
	DeleteVoter(ctx context.Context, id string) (*models.Voter, error)
	MarkVoted(ctx context.Context, id string) error
	VoterStats(ctx context.Context) (models.VoterStats, error)

	HasBallot(ctx context.Context, sessionID, positionID, voterID string) (bool, error)
	VotedPositions(ctx context.Context, sessionID, voterID string) (map[string]bool, error)
	RecordBallot(ctx context.Context, rec *models.BallotRecord) error
	RecordRankedBallot(ctx context.Context, first, second *models.RankedBallotRecord) error

	ResetSession(ctx context.Context, sessionID string) (int, error)
	ResetPosition(ctx context.Context, positionID string) (int, error)
	ResetVoter(ctx context.Context, voterID string) (int, error)
	AuditTally(ctx context.Context, sessionID string) ([]models.TallyMismatch, error)
}

// Config holds the service settings taken from the command line
type Config struct {
	IPHashSalt     string
	ShowLiveCounts bool
}

// Service runs voter verification, ballot casting, tallying and resets
// on top of a Repository.
type Service struct {
	repo      Repository
	passes    voterpass.Store
	publisher audit.Publisher
	metrics   *metrics.Metrics
	cfg       Config
	now       func() time.Time
}

type Option func(*Service)

// WithClock overrides the time source used for audit timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(repo Repository, passes voterpass.Store, publisher audit.Publisher, m *metrics.Metrics, cfg Config, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		passes:    passes,
		publisher: publisher,
		metrics:   m,
		cfg:       cfg,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// publish sends an audit event after the change it describes has
// committed. A failed publish is logged and otherwise ignored.
func (s *Service) publish(ctx context.Context, e audit.Event) {
	e.At = s.now().UTC()
	if err := s.publisher.Publish(ctx, e); err != nil {
		slog.Error("failed to publish audit event", "type", e.Type, "session_id", e.SessionID, "error", err)
	}
}

// voterContext is a resolved pass with the voter and session it is bound to
type voterContext struct {
	pass    *voterpass.Pass
	voter   *models.Voter
	session *models.Session
}

// resolvePass looks up a live pass, sliding its expiry
func (s *Service) resolvePass(ctx context.Context, token string) (*voterpass.Pass, error) {
	if token == "" {
		return nil, apperr.New(apperr.KindUnauthenticated, "voter not verified")
	}
	pass, err := s.passes.Resolve(ctx, token)
	if err != nil {
		if errors.Is(err, voterpass.ErrNotFound) {
			return nil, apperr.Wrap(apperr.KindUnauthenticated, err, "voter not verified or session expired")
		}
		return nil, err
	}
	return pass, nil
}

// authorize resolves a voter token into a live voter context. The pass must
// exist and its session must still be the active one.
func (s *Service) authorize(ctx context.Context, token string) (*voterContext, error) {
	pass, err := s.resolvePass(ctx, token)
	if err != nil {
		return nil, err
	}

	voter, err := s.repo.GetVoter(ctx, pass.VoterID)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			// Voter was deleted while holding a pass
			_ = s.passes.Revoke(ctx, token)
			return nil, apperr.Wrap(apperr.KindUnauthenticated, err, "voter no longer registered")
		}
		return nil, err
	}
	if voter.HasVoted {
		// A second pass issued before the first one completed voting
		_ = s.passes.Revoke(ctx, token)
		return nil, apperr.New(apperr.KindAlreadyVoted, "this voter has already completed voting")
	}

	active, err := s.repo.GetActiveSession(ctx)
	if err != nil {
		return nil, err
	}
	if active.ID != pass.SessionID {
		return nil, apperr.New(apperr.KindNoActiveSession, "the election session has changed; verify again")
	}

	return &voterContext{pass: pass, voter: voter, session: active}, nil
}
