package rules

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nosenfield/nerdy-tutor-quality-sub000/internal/models"
)

func floatPtr(v float64) *float64 { return &v }

func statsFixture(total int) *models.TutorStats {
	end := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	return &models.TutorStats{
		TutorID:       "tutor-1",
		WindowStart:   end.AddDate(0, 0, -30),
		WindowEnd:     end,
		TotalSessions: total,
	}
}

func TestAggregateRulesSampleFloor(t *testing.T) {
	cfg := DefaultConfig() // floor 5

	st := statsFixture(4)
	st.RescheduleRate = floatPtr(0.9)
	st.LateRate = floatPtr(0.9)
	trend := models.TrendDeclining
	st.RatingTrend = &trend

	assert.False(t, DetectHighRescheduleRate(Context{Stats: st, Config: cfg}).Triggered)
	assert.False(t, DetectChronicLateness(Context{Stats: st, Config: cfg}).Triggered)
	assert.False(t, DetectDecliningRatings(Context{Stats: st, Config: cfg}).Triggered)
}

func TestAggregateRulesNilRateGate(t *testing.T) {
	cfg := DefaultConfig()
	st := statsFixture(10)

	assert.False(t, DetectHighRescheduleRate(Context{Stats: st, Config: cfg}).Triggered)
	assert.False(t, DetectChronicLateness(Context{Stats: st, Config: cfg}).Triggered)
	assert.False(t, DetectDecliningRatings(Context{Stats: st, Config: cfg}).Triggered)
}

func TestDetectHighRescheduleRate(t *testing.T) {
	cfg := DefaultConfig() // threshold 0.15

	at := statsFixture(10)
	at.RescheduleRate = floatPtr(0.15)
	assert.False(t, DetectHighRescheduleRate(Context{Stats: at, Config: cfg}).Triggered)

	over := statsFixture(10)
	over.RescheduleRate = floatPtr(0.2)
	result := DetectHighRescheduleRate(Context{Stats: over, Config: cfg})
	assert.True(t, result.Triggered)
	assert.Equal(t, models.FlagHighRescheduleRate, result.FlagType)
	assert.Equal(t, models.SeverityMedium, result.Severity)

	// At twice the threshold, severity escalates.
	double := statsFixture(10)
	double.RescheduleRate = floatPtr(0.3)
	result = DetectHighRescheduleRate(Context{Stats: double, Config: cfg})
	assert.True(t, result.Triggered)
	assert.Equal(t, models.SeverityHigh, result.Severity)
}

func TestDetectChronicLateness(t *testing.T) {
	cfg := DefaultConfig() // threshold 0.30

	over := statsFixture(12)
	over.LateRate = floatPtr(0.4)
	over.LateCount = 5
	over.AvgLatenessMinutes = floatPtr(11)
	result := DetectChronicLateness(Context{Stats: over, Config: cfg})
	assert.True(t, result.Triggered)
	assert.Equal(t, models.SeverityMedium, result.Severity)
	assert.InDelta(t, 11.0, result.SupportingData.Metrics["avg_lateness_minutes"], 1e-9)

	double := statsFixture(12)
	double.LateRate = floatPtr(0.6)
	result = DetectChronicLateness(Context{Stats: double, Config: cfg})
	assert.Equal(t, models.SeverityHigh, result.Severity)
}

func TestDetectDecliningRatings(t *testing.T) {
	cfg := DefaultConfig()

	declining := models.TrendDeclining
	stable := models.TrendStable

	st := statsFixture(10)
	st.RatingTrend = &stable
	assert.False(t, DetectDecliningRatings(Context{Stats: st, Config: cfg}).Triggered)

	st = statsFixture(10)
	st.RatingTrend = &declining
	st.PriorAvgRating = floatPtr(4.5)
	st.RecentAvgRating = floatPtr(3.5)
	result := DetectDecliningRatings(Context{Stats: st, Config: cfg})
	assert.True(t, result.Triggered)
	assert.Equal(t, models.FlagLowRatings, result.FlagType)
	assert.Equal(t, models.SeverityMedium, result.Severity)

	// A recent average below 2.5 escalates to high.
	st = statsFixture(10)
	st.RatingTrend = &declining
	st.PriorAvgRating = floatPtr(4.0)
	st.RecentAvgRating = floatPtr(2.0)
	result = DetectDecliningRatings(Context{Stats: st, Config: cfg})
	assert.True(t, result.Triggered)
	assert.Equal(t, models.SeverityHigh, result.Severity)
}
