// Package scoring maps windowed tutor statistics into component quality
// scores, a weighted overall score and a confidence score. All functions
// are pure and safe for concurrent use.
package scoring

import (
	"math"

	"github.com/nosenfield/nerdy-tutor-quality-sub000/internal/models"
	appErrors "github.com/nosenfield/nerdy-tutor-quality-sub000/pkg/errors"
)

const (
	// fullConfidenceSessions is where the confidence ramp reaches 1.0.
	fullConfidenceSessions = 30
	// neutralRatingsScore is returned when no ratings exist: absence of
	// data is scored as neutral, not as failure or success.
	neutralRatingsScore = 50.0

	weightTolerance = 1e-6
)

func clampScore(v float64) float64 {
	return math.Min(100, math.Max(0, v))
}

// rateOrZero treats a nil rate as zero penalty: no events of that kind
// occurred, which is evidence of good behavior (unlike a missing rating,
// which is merely ambiguous).
func rateOrZero(rate *float64) float64 {
	if rate == nil {
		return 0
	}
	return *rate
}

// AttendanceScore penalizes no-shows four times harder than lateness per
// unit rate.
func AttendanceScore(noShowRate, lateRate *float64) float64 {
	return clampScore(100 - rateOrZero(noShowRate)*20 - rateOrZero(lateRate)*5)
}

// RatingsScore maps the average student rating linearly onto [0,100]
// (1 star = 0, 5 stars = 100). A nil average scores the neutral 50.
func RatingsScore(avgStudentRating *float64) float64 {
	if avgStudentRating == nil {
		return neutralRatingsScore
	}
	return clampScore((*avgStudentRating - 1) / 4 * 100)
}

// CompletionScore penalizes sessions the tutor ended early.
func CompletionScore(earlyEndRate *float64) float64 {
	return clampScore(100 - rateOrZero(earlyEndRate)*10)
}

// ReliabilityScore penalizes tutor-initiated reschedules.
func ReliabilityScore(rescheduleRate *float64) float64 {
	return clampScore(100 - rateOrZero(rescheduleRate)*5)
}

// OverallScore combines the breakdown into a rounded weighted score.
func OverallScore(breakdown models.ScoreBreakdown, weights models.ScoreWeights) int {
	weighted := breakdown.Attendance*weights.Attendance +
		breakdown.Ratings*weights.Ratings +
		breakdown.Completion*weights.Completion +
		breakdown.Reliability*weights.Reliability
	return int(math.Round(clampScore(weighted)))
}

// ConfidenceScore ramps linearly with session count, reaching 1.0 at 30
// sessions. It measures statistical reliability of the score, not the
// score's favorability, and never suppresses flag generation.
func ConfidenceScore(totalSessions int) float64 {
	if totalSessions <= 0 {
		return 0
	}
	return math.Min(1.0, float64(totalSessions)/fullConfidenceSessions)
}

// ValidateWeights checks that weights are non-negative and sum to 1.0.
func ValidateWeights(weights models.ScoreWeights) error {
	if weights.Attendance < 0 || weights.Ratings < 0 || weights.Completion < 0 || weights.Reliability < 0 {
		return appErrors.Clone(appErrors.ErrInvalidWeights, "score weights must be non-negative")
	}
	sum := weights.Attendance + weights.Ratings + weights.Completion + weights.Reliability
	if math.Abs(sum-1.0) > weightTolerance {
		return appErrors.Clone(appErrors.ErrInvalidWeights, "score weights must sum to 1.0")
	}
	return nil
}

// CalculateAll composes the component scores, overall score and
// confidence score for one TutorStats snapshot. It is the single entry
// point consumers should use.
func CalculateAll(stats models.TutorStats, weights models.ScoreWeights) (models.ScoreResult, error) {
	if err := ValidateWeights(weights); err != nil {
		return models.ScoreResult{}, err
	}

	breakdown := models.ScoreBreakdown{
		Attendance:  AttendanceScore(stats.NoShowRate, stats.LateRate),
		Ratings:     RatingsScore(stats.AvgStudentRating),
		Completion:  CompletionScore(stats.EarlyEndRate),
		Reliability: ReliabilityScore(stats.RescheduleRate),
	}

	return models.ScoreResult{
		Breakdown:       breakdown,
		OverallScore:    OverallScore(breakdown, weights),
		ConfidenceScore: ConfidenceScore(stats.TotalSessions),
	}, nil
}
