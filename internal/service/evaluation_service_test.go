package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nosenfield/nerdy-tutor-quality-sub000/internal/models"
	"github.com/nosenfield/nerdy-tutor-quality-sub000/internal/rules"
	"github.com/nosenfield/nerdy-tutor-quality-sub000/pkg/jobs"
)

func jobFor(jobType string, payload EvaluationJobPayload) jobs.Job {
	return jobs.Job{ID: "job-1", Type: jobType, Payload: payload}
}

type fakeSessionStore struct {
	sessions map[string]*models.Session
}

func (f *fakeSessionStore) FindByID(_ context.Context, id string) (*models.Session, error) {
	if s, ok := f.sessions[id]; ok {
		return s, nil
	}
	return nil, assert.AnError
}

type fakeFlagStore struct {
	created []models.Flag
}

func (f *fakeFlagStore) CreateBatch(_ context.Context, flags []models.Flag) error {
	f.created = append(f.created, flags...)
	return nil
}

type fakeScoreStore struct {
	created []*models.TutorScore
}

func (f *fakeScoreStore) Create(_ context.Context, score *models.TutorScore) error {
	f.created = append(f.created, score)
	return nil
}

func newEvaluationFixture(sessions []models.Session) (*EvaluationService, *fakeFlagStore, *fakeScoreStore) {
	sessionStore := &fakeSessionStore{sessions: map[string]*models.Session{}}
	for i := range sessions {
		sessionStore.sessions[sessions[i].ID] = &sessions[i]
	}
	flagStore := &fakeFlagStore{}
	scoreStore := &fakeScoreStore{}
	statsSvc := NewStatsService(&mockSessionWindowRepo{sessions: sessions}, nil, nil, zap.NewNop(), rules.DefaultConfig(), time.Minute)
	svc := NewEvaluationService(sessionStore, flagStore, scoreStore, statsSvc, nil, nil, zap.NewNop(), rules.DefaultConfig(), models.DefaultScoreWeights())
	return svc, flagStore, scoreStore
}

func TestEvaluateSessionNoShowPersistsCriticalFlag(t *testing.T) {
	start := time.Date(2026, 7, 20, 10, 0, 0, 0, time.UTC)
	noShow := models.Session{
		ID:             "s-noshow",
		TutorID:        "tutor-1",
		StudentID:      "student-1",
		ScheduledStart: start,
		ScheduledEnd:   start.Add(time.Hour),
	}
	svc, flagStore, _ := newEvaluationFixture([]models.Session{noShow})

	flags, err := svc.EvaluateSession(context.Background(), "s-noshow")
	require.NoError(t, err)
	require.Len(t, flags, 1)
	assert.Equal(t, models.FlagNoShow, flags[0].FlagType)
	assert.Equal(t, models.SeverityCritical, flags[0].Severity)
	assert.Equal(t, 1.0, flags[0].Confidence)
	require.NotNil(t, flags[0].SessionID)
	assert.Equal(t, "s-noshow", *flags[0].SessionID)
	assert.Equal(t, models.FlagStatusOpen, flags[0].Status)
	assert.Len(t, flagStore.created, 1)
}

func TestEvaluateSessionCleanSessionPersistsNothing(t *testing.T) {
	start := time.Date(2026, 7, 20, 10, 0, 0, 0, time.UTC)
	clean := completedSession("tutor-1", start)
	clean.ID = "s-clean"
	svc, flagStore, _ := newEvaluationFixture([]models.Session{clean})

	flags, err := svc.EvaluateSession(context.Background(), "s-clean")
	require.NoError(t, err)
	assert.Empty(t, flags)
	assert.Empty(t, flagStore.created)
}

func TestEvaluateTutorRaisesAggregateFlagsAndSnapshot(t *testing.T) {
	asOf := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	rescheduledBy := models.RescheduledByTutor

	var sessions []models.Session
	for i := 0; i < 10; i++ {
		session := completedSession("tutor-1", asOf.AddDate(0, 0, -(i + 1)))
		session.ID = session.ID + string(rune('a'+i))
		if i < 4 {
			session.WasRescheduled = true
			session.RescheduledBy = &rescheduledBy
		}
		sessions = append(sessions, session)
	}
	svc, flagStore, scoreStore := newEvaluationFixture(sessions)

	stats, flags, snapshot, err := svc.EvaluateTutor(context.Background(), "tutor-1", asOf)
	require.NoError(t, err)
	assert.Equal(t, 10, stats.TotalSessions)

	// 40% tutor-initiated reschedules is more than double the 15%
	// threshold, so the flag escalates to high.
	require.Len(t, flags, 1)
	assert.Equal(t, models.FlagHighRescheduleRate, flags[0].FlagType)
	assert.Equal(t, models.SeverityHigh, flags[0].Severity)
	assert.Nil(t, flags[0].SessionID)
	assert.Len(t, flagStore.created, 1)

	require.Len(t, scoreStore.created, 1)
	assert.Equal(t, snapshot, scoreStore.created[0])
	assert.Equal(t, 10, snapshot.TotalSessions)
	assert.InDelta(t, float64(10)/30.0, snapshot.ConfidenceScore, 1e-9)
	// No ratings were submitted, so the ratings component is neutral.
	assert.InDelta(t, 50.0, snapshot.RatingsScore, 1e-9)
	assert.Greater(t, snapshot.OverallScore, 0)
}

func TestEvaluateTutorBelowSampleFloorRaisesNoAggregateFlags(t *testing.T) {
	asOf := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	rescheduledBy := models.RescheduledByTutor

	// Every session rescheduled, but only 3 sessions in the window.
	var sessions []models.Session
	for i := 0; i < 3; i++ {
		session := completedSession("tutor-1", asOf.AddDate(0, 0, -(i + 1)))
		session.ID = session.ID + string(rune('a'+i))
		session.WasRescheduled = true
		session.RescheduledBy = &rescheduledBy
		sessions = append(sessions, session)
	}
	svc, flagStore, _ := newEvaluationFixture(sessions)

	_, flags, snapshot, err := svc.EvaluateTutor(context.Background(), "tutor-1", asOf)
	require.NoError(t, err)
	assert.Empty(t, flags)
	assert.Empty(t, flagStore.created)
	// The score snapshot is still recorded with low confidence.
	require.NotNil(t, snapshot)
	assert.InDelta(t, 0.1, snapshot.ConfidenceScore, 1e-9)
}

func TestHandleJobDispatch(t *testing.T) {
	start := time.Date(2026, 7, 20, 10, 0, 0, 0, time.UTC)
	noShow := models.Session{
		ID:             "s-noshow",
		TutorID:        "tutor-1",
		StudentID:      "student-1",
		ScheduledStart: start,
		ScheduledEnd:   start.Add(time.Hour),
	}
	svc, flagStore, _ := newEvaluationFixture([]models.Session{noShow})

	err := svc.HandleJob(context.Background(), jobFor(JobTypeEvaluateSession, EvaluationJobPayload{SessionID: "s-noshow", TutorID: "tutor-1"}))
	require.NoError(t, err)
	assert.Len(t, flagStore.created, 1)

	err = svc.HandleJob(context.Background(), jobFor("unknown", EvaluationJobPayload{}))
	require.Error(t, err)
}
