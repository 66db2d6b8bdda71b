package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/nosenfield/nerdy-tutor-quality-sub000/internal/models"
	appErrors "github.com/nosenfield/nerdy-tutor-quality-sub000/pkg/errors"
)

// ScoreRepository describes the persistence layer required by ScoreService.
type ScoreRepository interface {
	LatestByTutor(ctx context.Context, tutorID string) (*models.TutorScore, error)
	HistoryByTutor(ctx context.Context, tutorID string, limit int) ([]models.TutorScore, error)
}

// ScoreService exposes persisted score snapshots with cache integration.
type ScoreService struct {
	repo   ScoreRepository
	cache  *CacheService
	logger *zap.Logger
}

// NewScoreService constructs a score service.
func NewScoreService(repo ScoreRepository, cache *CacheService, logger *zap.Logger) *ScoreService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScoreService{repo: repo, cache: cache, logger: logger}
}

// Latest returns the most recent score snapshot for one tutor. The
// boolean indicates whether data originated from cache.
func (s *ScoreService) Latest(ctx context.Context, tutorID string) (*models.TutorScore, bool, error) {
	cacheKey := fmt.Sprintf("score:tutor:%s:latest", tutorID)
	var cached models.TutorScore
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err != nil {
			return nil, false, fmt.Errorf("get score cache: %w", err)
		} else if hit {
			return &cached, true, nil
		}
	}

	score, err := s.repo.LatestByTutor(ctx, tutorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, appErrors.Clone(appErrors.ErrNotFound, "no score snapshot for tutor")
		}
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch score")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, score, 0); err != nil {
			s.logger.Warn("cache score", zap.Error(err))
		}
	}
	return score, false, nil
}

// History returns score snapshots for one tutor, newest first.
func (s *ScoreService) History(ctx context.Context, tutorID string, limit int) ([]models.TutorScore, error) {
	scores, err := s.repo.HistoryByTutor(ctx, tutorID, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch score history")
	}
	return scores, nil
}

// InvalidateTutor drops cached score payloads for one tutor.
func (s *ScoreService) InvalidateTutor(ctx context.Context, tutorID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, fmt.Sprintf("score:tutor:%s:*", tutorID)); err != nil {
		s.logger.Warn("invalidate tutor score", zap.String("tutor_id", tutorID), zap.Error(err))
	}
}
