package models

import "time"

// TrendDirection classifies how a metric moved between two windows.
type TrendDirection string

const (
	TrendImproving TrendDirection = "improving"
	TrendStable    TrendDirection = "stable"
	TrendDeclining TrendDirection = "declining"
)

// TutorStats aggregates behavioral facts for one tutor over the window
// [WindowStart, WindowEnd). Every *Rate field is count/TotalSessions and
// is nil (not 0) when TotalSessions is zero, so "no data" remains
// distinguishable from a perfect record. Snapshots are recomputed on
// demand and never mutated.
type TutorStats struct {
	TutorID     string    `json:"tutor_id"`
	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`

	TotalSessions int `json:"total_sessions"`
	FirstSessions int `json:"first_sessions"`

	NoShowCount     int      `json:"no_show_count"`
	NoShowRate      *float64 `json:"no_show_rate,omitempty"`
	LateCount       int      `json:"late_count"`
	LateRate        *float64 `json:"late_rate,omitempty"`
	EarlyEndCount   int      `json:"early_end_count"`
	EarlyEndRate    *float64 `json:"early_end_rate,omitempty"`
	RescheduleCount int      `json:"reschedule_count"`
	RescheduleRate  *float64 `json:"reschedule_rate,omitempty"`

	AvgLatenessMinutes *float64 `json:"avg_lateness_minutes,omitempty"`
	AvgEarlyEndMinutes *float64 `json:"avg_early_end_minutes,omitempty"`

	AvgStudentRating      *float64 `json:"avg_student_rating,omitempty"`
	AvgFirstSessionRating *float64 `json:"avg_first_session_rating,omitempty"`

	RecentAvgRating *float64        `json:"recent_avg_rating,omitempty"`
	PriorAvgRating  *float64        `json:"prior_avg_rating,omitempty"`
	RatingTrend     *TrendDirection `json:"rating_trend,omitempty"`

	RecentSessions []Session `json:"recent_sessions,omitempty"`
}
