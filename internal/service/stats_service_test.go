package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nosenfield/nerdy-tutor-quality-sub000/internal/models"
	"github.com/nosenfield/nerdy-tutor-quality-sub000/internal/rules"
	appErrors "github.com/nosenfield/nerdy-tutor-quality-sub000/pkg/errors"
)

type mockSessionWindowRepo struct {
	sessions []models.Session
	calls    int
	lastFrom time.Time
	lastTo   time.Time
	err      error
}

func (m *mockSessionWindowRepo) ListByTutorWindow(_ context.Context, _ string, from, to time.Time) ([]models.Session, error) {
	m.calls++
	m.lastFrom = from
	m.lastTo = to
	if m.err != nil {
		return nil, m.err
	}
	return m.sessions, nil
}

type stubCacheRepo struct {
	store map[string][]byte
}

func (s *stubCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	if s.store == nil {
		return appErrors.ErrCacheMiss
	}
	payload, ok := s.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (s *stubCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if s.store == nil {
		s.store = make(map[string][]byte)
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.store[key] = payload
	return nil
}

func (s *stubCacheRepo) DeleteByPattern(_ context.Context, _ string) error {
	s.store = nil
	return nil
}

func timePtr(t time.Time) *time.Time { return &t }

func completedSession(tutorID string, start time.Time) models.Session {
	end := start.Add(time.Hour)
	return models.Session{
		ID:             "s-" + start.Format("20060102150405"),
		TutorID:        tutorID,
		StudentID:      "student-1",
		ScheduledStart: start,
		ScheduledEnd:   end,
		TutorJoinTime:  timePtr(start),
		TutorLeaveTime: timePtr(end),
	}
}

func TestStatsServiceTutorStatsCaching(t *testing.T) {
	asOf := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	repo := &mockSessionWindowRepo{sessions: []models.Session{
		completedSession("tutor-1", asOf.AddDate(0, 0, -3)),
		completedSession("tutor-1", asOf.AddDate(0, 0, -5)),
	}}
	cacheSvc := NewCacheService(&stubCacheRepo{}, nil, time.Minute, zap.NewNop(), true)
	svc := NewStatsService(repo, cacheSvc, nil, zap.NewNop(), rules.DefaultConfig(), time.Minute)

	ctx := context.Background()
	stats, cacheHit, err := svc.TutorStats(ctx, "tutor-1", asOf)
	require.NoError(t, err)
	assert.False(t, cacheHit)
	assert.Equal(t, 2, stats.TotalSessions)
	assert.Equal(t, 1, repo.calls)

	statsCached, cacheHit2, err := svc.TutorStats(ctx, "tutor-1", asOf)
	require.NoError(t, err)
	assert.True(t, cacheHit2)
	assert.Equal(t, 1, repo.calls)
	assert.Equal(t, stats.TotalSessions, statsCached.TotalSessions)
}

func TestStatsServiceFetchCoversTrendWindows(t *testing.T) {
	asOf := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	repo := &mockSessionWindowRepo{}
	svc := NewStatsService(repo, nil, nil, zap.NewNop(), rules.DefaultConfig(), time.Minute)

	_, _, err := svc.TutorStats(context.Background(), "tutor-1", asOf)
	require.NoError(t, err)

	// Default trend windows span 60 days back, twice the aggregate window.
	assert.Equal(t, asOf.Add(-60*24*time.Hour), repo.lastFrom)
	assert.Equal(t, asOf, repo.lastTo)
}

func TestStatsServiceErrorPassthrough(t *testing.T) {
	repo := &mockSessionWindowRepo{err: assert.AnError}
	svc := NewStatsService(repo, nil, nil, zap.NewNop(), rules.DefaultConfig(), time.Minute)

	_, _, err := svc.TutorStats(context.Background(), "tutor-1", time.Now().UTC())
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}
