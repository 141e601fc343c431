// Package archive persists finished practice sessions and computes the
// per-rep statistics shown to managers.
package archive

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/doorstep/internal/domain"
	"github.com/MikeSquared-Agency/doorstep/internal/hermes"
)

// DefaultListLimit caps how many sessions a rep history returns.
const DefaultListLimit = 100

// Repository is the storage the archive needs. Both list calls return
// sessions newest first; since is an inclusive lower bound on createdAt.
type Repository interface {
	InsertSession(ctx context.Context, s domain.SessionSummary) error
	ListSessionsByRep(ctx context.Context, repName string, since *time.Time, limit int) ([]domain.SessionSummary, error)
	ListSessions(ctx context.Context, since *time.Time) ([]domain.SessionSummary, error)
}

// Publisher announces saved sessions. It may be nil.
type Publisher interface {
	Publish(subject string, data any) error
}

// Notifier tells managers about a saved session. It may be nil. It runs in the
// background, detached from the request that saved the session.
type Notifier interface {
	NotifySessionSaved(ctx context.Context, s domain.SessionSummary) error
}

type Service struct {
	repo     Repository
	pub      Publisher
	notifier Notifier
	now      func() time.Time
	logger   *slog.Logger
	wg       sync.WaitGroup
}

func New(repo Repository, pub Publisher, notifier Notifier, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		pub:      pub,
		notifier: notifier,
		now:      time.Now,
		logger:   logger,
	}
}

// Save archives a finished session. Negative counts are stored as 0.
func (s *Service) Save(ctx context.Context, repName string, durationSeconds, repMessageCount int, analysis *domain.AnalysisRecord) (uuid.UUID, error) {
	repName = strings.TrimSpace(repName)
	if repName == "" {
		return uuid.Nil, domain.Validationf("repName is required")
	}
	if analysis == nil {
		return uuid.Nil, domain.Validationf("analysis is required")
	}

	summary := domain.SessionSummary{
		ID:              uuid.New(),
		RepName:         repName,
		CreatedAt:       s.now().UTC(),
		DurationSeconds: max(durationSeconds, 0),
		RepMessageCount: max(repMessageCount, 0),
		Analysis:        *analysis,
	}
	if err := s.repo.InsertSession(ctx, summary); err != nil {
		return uuid.Nil, domain.Collaborator("insert session", err)
	}

	s.logger.Info("session saved",
		"session_id", summary.ID,
		"rep", summary.RepName,
		"overall", summary.Analysis.Overall,
		"duration_s", summary.DurationSeconds,
	)

	if s.pub != nil {
		if err := s.pub.Publish(hermes.SubjectSessionSaved, hermes.SessionSaved{
			SessionID:       summary.ID.String(),
			RepName:         summary.RepName,
			Overall:         summary.Analysis.Overall,
			DurationSeconds: summary.DurationSeconds,
			RepMessageCount: summary.RepMessageCount,
			KeyImprovement:  summary.Analysis.KeyImprovement,
			Timestamp:       summary.CreatedAt,
		}); err != nil {
			s.logger.Warn("failed to publish session saved", "session_id", summary.ID, "error", err)
		}
	}
	if s.notifier != nil {
		notifyCtx := context.WithoutCancel(ctx)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if err := s.notifier.NotifySessionSaved(notifyCtx, summary); err != nil {
				s.logger.Warn("failed to notify managers", "session_id", summary.ID, "error", err)
			}
		}()
	}

	return summary.ID, nil
}

// Wait blocks until pending manager notifications have finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

// ListByRep returns a rep's sessions newest first. The name match ignores case.
func (s *Service) ListByRep(ctx context.Context, repName string, limit int) ([]domain.SessionSummary, error) {
	return s.list(ctx, repName, nil, limit)
}

// ListForRepWindowed is ListByRep restricted to the last sinceDays days.
func (s *Service) ListForRepWindowed(ctx context.Context, repName string, sinceDays *int) ([]domain.SessionSummary, error) {
	return s.list(ctx, repName, s.since(sinceDays), DefaultListLimit)
}

func (s *Service) list(ctx context.Context, repName string, since *time.Time, limit int) ([]domain.SessionSummary, error) {
	repName = strings.TrimSpace(repName)
	if repName == "" {
		return nil, domain.Validationf("rep name is required")
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}

	sessions, err := s.repo.ListSessionsByRep(ctx, repName, since, limit)
	if err != nil {
		return nil, domain.Collaborator("list sessions", err)
	}
	if sessions == nil {
		sessions = []domain.SessionSummary{}
	}
	return sessions, nil
}

// AggregateByRep computes RepStats for every rep with sessions in the window.
func (s *Service) AggregateByRep(ctx context.Context, sinceDays *int) ([]domain.RepStats, error) {
	sessions, err := s.repo.ListSessions(ctx, s.since(sinceDays))
	if err != nil {
		return nil, domain.Collaborator("list sessions", err)
	}
	return Aggregate(sessions), nil
}

func (s *Service) since(days *int) *time.Time {
	if days == nil || *days <= 0 {
		return nil
	}
	t := s.now().UTC().Add(-time.Duration(*days) * 24 * time.Hour)
	return &t
}
