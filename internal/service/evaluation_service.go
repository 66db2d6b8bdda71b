package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/nosenfield/nerdy-tutor-quality-sub000/internal/models"
	"github.com/nosenfield/nerdy-tutor-quality-sub000/internal/rules"
	"github.com/nosenfield/nerdy-tutor-quality-sub000/internal/scoring"
	appErrors "github.com/nosenfield/nerdy-tutor-quality-sub000/pkg/errors"
	"github.com/nosenfield/nerdy-tutor-quality-sub000/pkg/jobs"
)

type evaluationSessionRepository interface {
	FindByID(ctx context.Context, id string) (*models.Session, error)
}

type evaluationFlagRepository interface {
	CreateBatch(ctx context.Context, flags []models.Flag) error
}

type evaluationScoreRepository interface {
	Create(ctx context.Context, score *models.TutorScore) error
}

// EvaluationService runs the rule engine over ingested sessions and
// windowed tutor statistics, persisting triggered flags and score
// snapshots. It is driven by the background queue but both passes can
// also be invoked synchronously.
type EvaluationService struct {
	sessions   evaluationSessionRepository
	flags      evaluationFlagRepository
	scores     evaluationScoreRepository
	stats      *StatsService
	scoreCache *ScoreService
	metrics    *MetricsService
	logger     *zap.Logger
	cfg        rules.Config
	weights    models.ScoreWeights
}

// NewEvaluationService constructs an evaluation service.
func NewEvaluationService(
	sessions evaluationSessionRepository,
	flags evaluationFlagRepository,
	scores evaluationScoreRepository,
	stats *StatsService,
	scoreCache *ScoreService,
	metrics *MetricsService,
	logger *zap.Logger,
	cfg rules.Config,
	weights models.ScoreWeights,
) *EvaluationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EvaluationService{
		sessions:   sessions,
		flags:      flags,
		scores:     scores,
		stats:      stats,
		scoreCache: scoreCache,
		metrics:    metrics,
		logger:     logger,
		cfg:        cfg,
		weights:    weights,
	}
}

// EvaluateSession runs the session-level rules against one session and
// persists any triggered flags.
func (s *EvaluationService) EvaluateSession(ctx context.Context, sessionID string) ([]models.Flag, error) {
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}

	start := time.Now()
	triggered := rules.Triggered(rules.EvaluateSession(session, s.cfg))
	if s.metrics != nil {
		s.metrics.ObserveEvaluation("session", time.Since(start))
	}

	flags := make([]models.Flag, 0, len(triggered))
	for _, result := range triggered {
		flags = append(flags, resultToFlag(result, session.TutorID, &session.ID))
	}

	if err := s.persistFlags(ctx, flags); err != nil {
		return nil, err
	}

	s.logger.Info("session evaluated",
		zap.String("session_id", session.ID),
		zap.String("tutor_id", session.TutorID),
		zap.Int("flags", len(flags)))
	return flags, nil
}

// EvaluateTutor runs the aggregate rules over the tutor's current
// window, persists triggered flags and records a score snapshot.
func (s *EvaluationService) EvaluateTutor(ctx context.Context, tutorID string, asOf time.Time) (*models.TutorStats, []models.Flag, *models.TutorScore, error) {
	tutorStats, _, err := s.stats.TutorStats(ctx, tutorID, asOf)
	if err != nil {
		return nil, nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute tutor stats")
	}

	start := time.Now()
	triggered := rules.Triggered(rules.EvaluateStats(tutorStats, s.cfg))
	if s.metrics != nil {
		s.metrics.ObserveEvaluation("aggregate", time.Since(start))
	}

	flags := make([]models.Flag, 0, len(triggered))
	for _, result := range triggered {
		flags = append(flags, resultToFlag(result, tutorID, nil))
	}

	if err := s.persistFlags(ctx, flags); err != nil {
		return nil, nil, nil, err
	}

	result, err := scoring.CalculateAll(*tutorStats, s.weights)
	if err != nil {
		return nil, nil, nil, err
	}

	snapshot := &models.TutorScore{
		TutorID:          tutorID,
		WindowStart:      tutorStats.WindowStart,
		WindowEnd:        tutorStats.WindowEnd,
		TotalSessions:    tutorStats.TotalSessions,
		AttendanceScore:  result.Breakdown.Attendance,
		RatingsScore:     result.Breakdown.Ratings,
		CompletionScore:  result.Breakdown.Completion,
		ReliabilityScore: result.Breakdown.Reliability,
		OverallScore:     result.OverallScore,
		ConfidenceScore:  result.ConfidenceScore,
	}
	if err := s.scores.Create(ctx, snapshot); err != nil {
		return nil, nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist score snapshot")
	}
	if s.scoreCache != nil {
		s.scoreCache.InvalidateTutor(ctx, tutorID)
	}

	s.logger.Info("tutor evaluated",
		zap.String("tutor_id", tutorID),
		zap.Int("total_sessions", tutorStats.TotalSessions),
		zap.Int("flags", len(flags)),
		zap.Int("overall_score", result.OverallScore))
	return tutorStats, flags, snapshot, nil
}

// HandleJob dispatches one queued evaluation job.
func (s *EvaluationService) HandleJob(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(EvaluationJobPayload)
	if !ok {
		return fmt.Errorf("job %s: unexpected payload %T", job.ID, job.Payload)
	}

	switch job.Type {
	case JobTypeEvaluateSession:
		_, err := s.EvaluateSession(ctx, payload.SessionID)
		return err
	case JobTypeEvaluateTutor:
		_, _, _, err := s.EvaluateTutor(ctx, payload.TutorID, time.Time{})
		return err
	default:
		return fmt.Errorf("job %s: unknown type %q", job.ID, job.Type)
	}
}

func (s *EvaluationService) persistFlags(ctx context.Context, flags []models.Flag) error {
	if len(flags) == 0 {
		return nil
	}
	if err := s.flags.CreateBatch(ctx, flags); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist flags")
	}
	if s.metrics != nil {
		for _, flag := range flags {
			s.metrics.RecordFlag(flag.FlagType, flag.Severity)
		}
	}
	return nil
}

// resultToFlag converts a triggered rule result into its persisted form.
func resultToFlag(result models.RuleResult, tutorID string, sessionID *string) models.Flag {
	flag := models.Flag{
		TutorID:     tutorID,
		SessionID:   sessionID,
		FlagType:    result.FlagType,
		Severity:    result.Severity,
		Title:       result.Title,
		Description: result.Description,
		Confidence:  result.Confidence,
		Status:      models.FlagStatusOpen,
	}
	if result.RecommendedAction != "" {
		action := result.RecommendedAction
		flag.RecommendedAction = &action
	}
	if result.SupportingData != nil {
		flag.SupportingData = *result.SupportingData
	}
	return flag
}
