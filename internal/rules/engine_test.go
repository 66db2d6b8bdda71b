package rules

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nosenfield/nerdy-tutor-quality-sub000/internal/models"
)

func TestEvaluateSessionReturnsOneResultPerRule(t *testing.T) {
	cfg := DefaultConfig()
	session := sessionFixture(durPtr(0), durPtr(0))

	results := EvaluateSession(session, cfg)
	assert.Len(t, results, len(SessionRules()))
	for _, result := range results {
		assert.False(t, result.Triggered)
	}
}

func TestEvaluateStatsReturnsOneResultPerRule(t *testing.T) {
	cfg := DefaultConfig()
	results := EvaluateStats(statsFixture(10), cfg)
	assert.Len(t, results, len(AggregateRules()))
}

func TestEvaluateSessionIsDeterministic(t *testing.T) {
	cfg := DefaultConfig()

	start := time.Date(2026, 7, 15, 10, 0, 0, 0, time.UTC)
	rating := 1
	session := &models.Session{
		ID:                    "session-1",
		TutorID:               "tutor-1",
		StudentID:             "student-1",
		ScheduledStart:        start,
		ScheduledEnd:          start.Add(time.Hour),
		TutorJoinTime:         timePtr(start.Add(12 * time.Minute)),
		TutorLeaveTime:        timePtr(start.Add(40 * time.Minute)),
		IsFirstSession:        true,
		StudentFeedbackRating: &rating,
	}

	first := EvaluateSession(session, cfg)
	second := EvaluateSession(session, cfg)
	assert.Equal(t, first, second)

	triggered := Triggered(first)
	require.Len(t, triggered, 3)
	types := make([]models.FlagType, 0, len(triggered))
	for _, result := range triggered {
		types = append(types, result.FlagType)
	}
	assert.ElementsMatch(t, []models.FlagType{
		models.FlagChronicLateness,
		models.FlagEarlyEnd,
		models.FlagPoorFirstSession,
	}, types)
}

func TestTriggeredFiltersUntriggered(t *testing.T) {
	results := []models.RuleResult{
		{Triggered: true, FlagType: models.FlagNoShow},
		{Triggered: false, FlagType: models.FlagEarlyEnd},
		{Triggered: true, FlagType: models.FlagLowRatings},
	}
	filtered := Triggered(results)
	require.Len(t, filtered, 2)
	assert.Equal(t, models.FlagNoShow, filtered[0].FlagType)
	assert.Equal(t, models.FlagLowRatings, filtered[1].FlagType)
}
