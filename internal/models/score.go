package models

import "time"

// ScoreWeights distributes the four component scores into the overall
// score. Weights must be non-negative and sum to 1.0; they are applied
// only at overall-score aggregation time.
type ScoreWeights struct {
	Attendance  float64 `json:"attendance"`
	Ratings     float64 `json:"ratings"`
	Completion  float64 `json:"completion"`
	Reliability float64 `json:"reliability"`
}

// DefaultScoreWeights returns the standard weighting.
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{
		Attendance:  0.35,
		Ratings:     0.35,
		Completion:  0.15,
		Reliability: 0.15,
	}
}

// ScoreBreakdown holds the four component scores, each in [0,100].
type ScoreBreakdown struct {
	Attendance  float64 `json:"attendance"`
	Ratings     float64 `json:"ratings"`
	Completion  float64 `json:"completion"`
	Reliability float64 `json:"reliability"`
}

// ScoreResult is the output of a full score calculation.
type ScoreResult struct {
	Breakdown       ScoreBreakdown `json:"breakdown"`
	OverallScore    int            `json:"overall_score"`
	ConfidenceScore float64        `json:"confidence_score"`
}

// TutorScore is a persisted score snapshot for one evaluation run.
type TutorScore struct {
	ID               string    `db:"id" json:"id"`
	TutorID          string    `db:"tutor_id" json:"tutor_id"`
	WindowStart      time.Time `db:"window_start" json:"window_start"`
	WindowEnd        time.Time `db:"window_end" json:"window_end"`
	TotalSessions    int       `db:"total_sessions" json:"total_sessions"`
	AttendanceScore  float64   `db:"attendance_score" json:"attendance_score"`
	RatingsScore     float64   `db:"ratings_score" json:"ratings_score"`
	CompletionScore  float64   `db:"completion_score" json:"completion_score"`
	ReliabilityScore float64   `db:"reliability_score" json:"reliability_score"`
	OverallScore     int       `db:"overall_score" json:"overall_score"`
	ConfidenceScore  float64   `db:"confidence_score" json:"confidence_score"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// Breakdown reconstructs the component breakdown from a snapshot.
func (s *TutorScore) Breakdown() ScoreBreakdown {
	return ScoreBreakdown{
		Attendance:  s.AttendanceScore,
		Ratings:     s.RatingsScore,
		Completion:  s.CompletionScore,
		Reliability: s.ReliabilityScore,
	}
}
