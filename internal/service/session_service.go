package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nosenfield/nerdy-tutor-quality-sub000/internal/models"
	appErrors "github.com/nosenfield/nerdy-tutor-quality-sub000/pkg/errors"
	"github.com/nosenfield/nerdy-tutor-quality-sub000/pkg/jobs"
)

// Background job types emitted by session ingestion.
const (
	JobTypeEvaluateSession = "evaluate_session"
	JobTypeEvaluateTutor   = "evaluate_tutor"
)

// EvaluationJobPayload carries the identifiers an evaluation job needs.
type EvaluationJobPayload struct {
	SessionID string `json:"session_id,omitempty"`
	TutorID   string `json:"tutor_id"`
}

// EvaluationQueue abstracts the async job queue used after ingestion.
type EvaluationQueue interface {
	Enqueue(job jobs.Job) error
}

// SessionRepository describes the persistence layer required by SessionService.
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	FindByID(ctx context.Context, id string) (*models.Session, error)
	List(ctx context.Context, filter models.SessionFilter) ([]models.Session, int, error)
}

// SessionService handles session ingestion and retrieval. Ingestion is
// the only write path: each accepted session is persisted, the tutor's
// cached statistics are invalidated, and evaluation jobs are queued.
type SessionService struct {
	repo    SessionRepository
	stats   *StatsService
	queue   EvaluationQueue
	metrics *MetricsService
	logger  *zap.Logger
}

// NewSessionService constructs a session service.
func NewSessionService(repo SessionRepository, stats *StatsService, queue EvaluationQueue, metrics *MetricsService, logger *zap.Logger) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{repo: repo, stats: stats, queue: queue, metrics: metrics, logger: logger}
}

// Ingest persists a completed session and schedules its evaluation.
func (s *SessionService) Ingest(ctx context.Context, session *models.Session) (*models.Session, error) {
	start := time.Now()
	if err := s.repo.Create(ctx, session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist session")
	}
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("session_create", time.Since(start))
	}

	if s.stats != nil {
		s.stats.InvalidateTutor(ctx, session.TutorID)
	}

	if s.queue != nil {
		s.enqueue(jobs.Job{
			ID:      uuid.NewString(),
			Type:    JobTypeEvaluateSession,
			Payload: EvaluationJobPayload{SessionID: session.ID, TutorID: session.TutorID},
		})
		s.enqueue(jobs.Job{
			ID:      uuid.NewString(),
			Type:    JobTypeEvaluateTutor,
			Payload: EvaluationJobPayload{TutorID: session.TutorID},
		})
	}

	return session, nil
}

// Get fetches one session by ID.
func (s *SessionService) Get(ctx context.Context, id string) (*models.Session, error) {
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch session")
	}
	return session, nil
}

// List returns sessions matching the filter with pagination metadata.
func (s *SessionService) List(ctx context.Context, filter models.SessionFilter) ([]models.Session, *models.Pagination, error) {
	sessions, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sessions")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return sessions, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

func (s *SessionService) enqueue(job jobs.Job) {
	if err := s.queue.Enqueue(job); err != nil {
		s.logger.Warn("enqueue evaluation job", zap.String("type", job.Type), zap.Error(err))
	}
}
