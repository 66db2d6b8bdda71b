package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nosenfield/nerdy-tutor-quality-sub000/internal/models"
	appErrors "github.com/nosenfield/nerdy-tutor-quality-sub000/pkg/errors"
)

func floatPtr(v float64) *float64 { return &v }

func TestAttendanceScore(t *testing.T) {
	// Nil rates carry no penalty.
	assert.InDelta(t, 100, AttendanceScore(nil, nil), 1e-9)
	assert.InDelta(t, 100, AttendanceScore(floatPtr(0), floatPtr(0)), 1e-9)
	assert.InDelta(t, 96, AttendanceScore(floatPtr(0.1), floatPtr(0.4)), 1e-9)
	// Penalties clamp at zero.
	assert.InDelta(t, 80, AttendanceScore(floatPtr(1), floatPtr(0)), 1e-9)
}

func TestRatingsScore(t *testing.T) {
	assert.InDelta(t, 50, RatingsScore(nil), 1e-9)
	assert.InDelta(t, 0, RatingsScore(floatPtr(1)), 1e-9)
	assert.InDelta(t, 50, RatingsScore(floatPtr(3)), 1e-9)
	assert.InDelta(t, 100, RatingsScore(floatPtr(5)), 1e-9)
	assert.InDelta(t, 87.5, RatingsScore(floatPtr(4.5)), 1e-9)
}

func TestCompletionScore(t *testing.T) {
	assert.InDelta(t, 100, CompletionScore(nil), 1e-9)
	assert.InDelta(t, 97, CompletionScore(floatPtr(0.3)), 1e-9)
}

func TestReliabilityScore(t *testing.T) {
	assert.InDelta(t, 100, ReliabilityScore(nil), 1e-9)
	assert.InDelta(t, 98, ReliabilityScore(floatPtr(0.4)), 1e-9)
}

func TestConfidenceScore(t *testing.T) {
	assert.Zero(t, ConfidenceScore(0))
	assert.Zero(t, ConfidenceScore(-3))
	assert.InDelta(t, 0.5, ConfidenceScore(15), 1e-9)
	assert.InDelta(t, 1.0, ConfidenceScore(30), 1e-9)
	assert.InDelta(t, 1.0, ConfidenceScore(100), 1e-9)
}

func TestValidateWeights(t *testing.T) {
	assert.NoError(t, ValidateWeights(models.DefaultScoreWeights()))

	negative := models.ScoreWeights{Attendance: -0.1, Ratings: 0.5, Completion: 0.3, Reliability: 0.3}
	err := ValidateWeights(negative)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidWeights.Code, appErrors.FromError(err).Code)

	badSum := models.ScoreWeights{Attendance: 0.5, Ratings: 0.5, Completion: 0.5, Reliability: 0.5}
	err = ValidateWeights(badSum)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidWeights.Code, appErrors.FromError(err).Code)
}

func TestOverallScoreWeighting(t *testing.T) {
	breakdown := models.ScoreBreakdown{Attendance: 100, Ratings: 80, Completion: 60, Reliability: 40}
	weights := models.ScoreWeights{Attendance: 0.35, Ratings: 0.35, Completion: 0.15, Reliability: 0.15}

	// 35 + 28 + 9 + 6 = 78
	assert.Equal(t, 78, OverallScore(breakdown, weights))
}

func TestCalculateAllExcellentTutor(t *testing.T) {
	st := models.TutorStats{
		TotalSessions:    40,
		NoShowRate:       floatPtr(0),
		LateRate:         floatPtr(0),
		EarlyEndRate:     floatPtr(0),
		RescheduleRate:   floatPtr(0),
		AvgStudentRating: floatPtr(5),
	}

	result, err := CalculateAll(st, models.DefaultScoreWeights())
	require.NoError(t, err)
	assert.Equal(t, 100, result.OverallScore)
	assert.InDelta(t, 1.0, result.ConfidenceScore, 1e-9)
	assert.InDelta(t, 100, result.Breakdown.Attendance, 1e-9)
	assert.InDelta(t, 100, result.Breakdown.Ratings, 1e-9)
}

func TestCalculateAllNoData(t *testing.T) {
	result, err := CalculateAll(models.TutorStats{}, models.DefaultScoreWeights())
	require.NoError(t, err)

	// Empty window: rate components score perfect, ratings score neutral.
	assert.InDelta(t, 50, result.Breakdown.Ratings, 1e-9)
	assert.InDelta(t, 100, result.Breakdown.Attendance, 1e-9)
	assert.Zero(t, result.ConfidenceScore)
}

func TestCalculateAllRejectsBadWeights(t *testing.T) {
	_, err := CalculateAll(models.TutorStats{}, models.ScoreWeights{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidWeights.Code, appErrors.FromError(err).Code)
}
