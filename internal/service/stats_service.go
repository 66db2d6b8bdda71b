package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/nosenfield/nerdy-tutor-quality-sub000/internal/models"
	"github.com/nosenfield/nerdy-tutor-quality-sub000/internal/rules"
	"github.com/nosenfield/nerdy-tutor-quality-sub000/internal/stats"
)

// StatsSessionRepository describes the persistence layer required by StatsService.
type StatsSessionRepository interface {
	ListByTutorWindow(ctx context.Context, tutorID string, from, to time.Time) ([]models.Session, error)
}

// StatsService computes windowed tutor statistics with cache integration.
// Statistics are derived on demand from the session log; nothing is
// persisted here.
type StatsService struct {
	sessions StatsSessionRepository
	cache    *CacheService
	metrics  *MetricsService
	logger   *zap.Logger
	cfg      rules.Config
	cacheTTL time.Duration
}

// NewStatsService constructs a stats service.
func NewStatsService(sessions StatsSessionRepository, cache *CacheService, metrics *MetricsService, logger *zap.Logger, cfg rules.Config, cacheTTL time.Duration) *StatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsService{sessions: sessions, cache: cache, metrics: metrics, logger: logger, cfg: cfg, cacheTTL: cacheTTL}
}

// TutorStats returns statistics for one tutor over the aggregate window
// ending at asOf. The boolean indicates whether data originated from cache.
func (s *StatsService) TutorStats(ctx context.Context, tutorID string, asOf time.Time) (*models.TutorStats, bool, error) {
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}
	windowEnd := asOf
	windowStart := windowEnd.AddDate(0, 0, -s.cfg.AggregateWindowDays)

	cacheKey := statsCacheKey(tutorID, windowEnd)
	var cached models.TutorStats
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err != nil {
			return nil, false, fmt.Errorf("get stats cache: %w", err)
		} else if hit {
			return &cached, true, nil
		}
	}

	// The trend windows run back from windowEnd and can reach behind
	// windowStart, so fetch sessions covering the earliest of the two.
	recentWindow := time.Duration(s.cfg.TrendRecentWindowDays) * 24 * time.Hour
	priorWindow := time.Duration(s.cfg.TrendPriorWindowDays) * 24 * time.Hour
	fetchFrom := windowEnd.Add(-(recentWindow + priorWindow))
	if windowStart.Before(fetchFrom) {
		fetchFrom = windowStart
	}

	start := time.Now()
	sessions, err := s.sessions.ListByTutorWindow(ctx, tutorID, fetchFrom, windowEnd)
	if err != nil {
		return nil, false, err
	}
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("sessions_by_tutor_window", time.Since(start))
	}

	built := stats.Build(stats.BuildParams{
		TutorID:                  tutorID,
		WindowStart:              windowStart,
		WindowEnd:                windowEnd,
		LatenessThresholdMinutes: s.cfg.LatenessThresholdMinutes,
		EarlyEndThresholdMinutes: s.cfg.EarlyEndThresholdMinutes,
		TrendRecentWindow:        recentWindow,
		TrendPriorWindow:         priorWindow,
		TrendStabilityThreshold:  s.cfg.TrendStabilityThreshold,
	}, sessions)

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, built, s.cacheTTL); err != nil && s.logger != nil {
			s.logger.Warn("cache stats", zap.Error(err))
		}
	}
	return &built, false, nil
}

// InvalidateTutor drops cached statistics for one tutor, typically after
// a new session for that tutor is ingested.
func (s *StatsService) InvalidateTutor(ctx context.Context, tutorID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, fmt.Sprintf("stats:tutor:%s:*", tutorID)); err != nil {
		s.logger.Warn("invalidate tutor stats", zap.String("tutor_id", tutorID), zap.Error(err))
	}
}

// Config exposes the rule thresholds the service aggregates with.
func (s *StatsService) Config() rules.Config {
	return s.cfg
}

func statsCacheKey(tutorID string, windowEnd time.Time) string {
	return fmt.Sprintf("stats:tutor:%s:%s", tutorID, windowEnd.UTC().Format("2006-01-02T15"))
}
