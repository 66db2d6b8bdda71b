package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nosenfield/nerdy-tutor-quality-sub000/internal/models"
)

func buildParams(end time.Time) BuildParams {
	return BuildParams{
		TutorID:                  "tutor-1",
		WindowStart:              end.AddDate(0, 0, -30),
		WindowEnd:                end,
		LatenessThresholdMinutes: 5,
		EarlyEndThresholdMinutes: 10,
		TrendRecentWindow:        30 * 24 * time.Hour,
		TrendPriorWindow:         30 * 24 * time.Hour,
		TrendStabilityThreshold:  0.05,
		RecentSampleSize:         10,
	}
}

func attendedSession(id string, start time.Time, joinOffset, leaveOffset time.Duration) models.Session {
	end := start.Add(time.Hour)
	return models.Session{
		ID:             id,
		TutorID:        "tutor-1",
		StudentID:      "student-1",
		ScheduledStart: start,
		ScheduledEnd:   end,
		TutorJoinTime:  timePtr(start.Add(joinOffset)),
		TutorLeaveTime: timePtr(end.Add(leaveOffset)),
	}
}

func TestBuildEmptyWindow(t *testing.T) {
	end := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	st := Build(buildParams(end), nil)

	assert.Equal(t, "tutor-1", st.TutorID)
	assert.Zero(t, st.TotalSessions)
	assert.Nil(t, st.NoShowRate)
	assert.Nil(t, st.LateRate)
	assert.Nil(t, st.EarlyEndRate)
	assert.Nil(t, st.RescheduleRate)
	assert.Nil(t, st.AvgStudentRating)
	assert.Nil(t, st.RatingTrend)
	assert.Empty(t, st.RecentSessions)
}

func TestBuildNoShowRate(t *testing.T) {
	end := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	params := buildParams(end)

	var sessions []models.Session
	for i := 0; i < 100; i++ {
		start := params.WindowStart.Add(time.Duration(i*7) * time.Hour)
		s := attendedSession("s", start, 0, 0)
		if i%6 == 0 { // 17 of 100
			s.TutorJoinTime = nil
			s.TutorLeaveTime = nil
		}
		sessions = append(sessions, s)
	}

	st := Build(params, sessions)

	assert.Equal(t, 100, st.TotalSessions)
	assert.Equal(t, 17, st.NoShowCount)
	require.NotNil(t, st.NoShowRate)
	assert.InDelta(t, 0.17, *st.NoShowRate, 1e-9)
}

func TestBuildLatenessAggregation(t *testing.T) {
	end := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	params := buildParams(end)

	sessions := []models.Session{
		attendedSession("on-time", params.WindowStart, 2*time.Minute, 0),
		attendedSession("late-a", params.WindowStart.Add(24*time.Hour), 15*time.Minute, 0),
		attendedSession("late-b", params.WindowStart.Add(48*time.Hour), 15*time.Minute, 0),
	}

	st := Build(params, sessions)

	assert.Equal(t, 3, st.TotalSessions)
	assert.Equal(t, 2, st.LateCount)
	require.NotNil(t, st.LateRate)
	assert.InDelta(t, 2.0/3.0, *st.LateRate, 1e-9)
	require.NotNil(t, st.AvgLatenessMinutes)
	assert.InDelta(t, 15.0, *st.AvgLatenessMinutes, 1e-9)
}

func TestBuildWindowBoundaries(t *testing.T) {
	end := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	params := buildParams(end)

	sessions := []models.Session{
		attendedSession("before", params.WindowStart.Add(-time.Minute), 0, 0),
		attendedSession("at-start", params.WindowStart, 0, 0),
		attendedSession("inside", params.WindowStart.Add(15*24*time.Hour), 0, 0),
		attendedSession("at-end", params.WindowEnd, 0, 0),
	}

	st := Build(params, sessions)

	// Half-open window: the start is included, the end is not.
	assert.Equal(t, 2, st.TotalSessions)
}

func TestBuildIgnoresOtherTutors(t *testing.T) {
	end := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	params := buildParams(end)

	other := attendedSession("other", params.WindowStart.Add(time.Hour), 0, 0)
	other.TutorID = "tutor-2"

	st := Build(params, []models.Session{
		attendedSession("mine", params.WindowStart.Add(time.Hour), 0, 0),
		other,
	})

	assert.Equal(t, 1, st.TotalSessions)
}

func TestBuildRescheduleCountsTutorInitiatedOnly(t *testing.T) {
	end := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	params := buildParams(end)

	byTutor := models.RescheduledByTutor
	byStudent := models.RescheduledByStudent

	tutorResched := attendedSession("a", params.WindowStart.Add(time.Hour), 0, 0)
	tutorResched.WasRescheduled = true
	tutorResched.RescheduledBy = &byTutor

	studentResched := attendedSession("b", params.WindowStart.Add(2*time.Hour), 0, 0)
	studentResched.WasRescheduled = true
	studentResched.RescheduledBy = &byStudent

	st := Build(params, []models.Session{tutorResched, studentResched})

	assert.Equal(t, 1, st.RescheduleCount)
	require.NotNil(t, st.RescheduleRate)
	assert.InDelta(t, 0.5, *st.RescheduleRate, 1e-9)
}

func TestBuildRatingTrendBuckets(t *testing.T) {
	end := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	params := buildParams(end)

	rate := func(s models.Session, r int) models.Session {
		s.StudentFeedbackRating = &r
		return s
	}

	sessions := []models.Session{
		// Prior window: 30-60 days back, high ratings.
		rate(attendedSession("p1", end.AddDate(0, 0, -45), 0, 0), 5),
		rate(attendedSession("p2", end.AddDate(0, 0, -40), 0, 0), 5),
		// Recent window: last 30 days, lower ratings.
		rate(attendedSession("r1", end.AddDate(0, 0, -10), 0, 0), 3),
		rate(attendedSession("r2", end.AddDate(0, 0, -5), 0, 0), 3),
	}

	st := Build(params, sessions)

	require.NotNil(t, st.RecentAvgRating)
	assert.InDelta(t, 3.0, *st.RecentAvgRating, 1e-9)
	require.NotNil(t, st.PriorAvgRating)
	assert.InDelta(t, 5.0, *st.PriorAvgRating, 1e-9)
	require.NotNil(t, st.RatingTrend)
	assert.Equal(t, models.TrendDeclining, *st.RatingTrend)
}

func TestBuildRecentSessionsCappedAndSorted(t *testing.T) {
	end := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	params := buildParams(end)
	params.RecentSampleSize = 3

	var sessions []models.Session
	for i := 0; i < 6; i++ {
		start := params.WindowStart.Add(time.Duration(i*24) * time.Hour)
		sessions = append(sessions, attendedSession("s", start, 0, 0))
	}

	st := Build(params, sessions)

	require.Len(t, st.RecentSessions, 3)
	for i := 1; i < len(st.RecentSessions); i++ {
		assert.True(t, st.RecentSessions[i-1].ScheduledStart.After(st.RecentSessions[i].ScheduledStart))
	}
}
