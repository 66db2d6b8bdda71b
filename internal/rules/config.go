// Package rules implements the deterministic rule evaluation engine that
// inspects individual sessions and windowed tutor statistics and emits
// coaching flags. Every rule is a pure function with no shared state, so
// rules are safe to evaluate in parallel across sessions, tutors and
// rule types.
package rules

// Config carries the named thresholds consumed by rule functions and the
// statistics aggregator. It is plain configuration data: copy it freely
// and override per invocation. Nothing in this package mutates a Config.
type Config struct {
	// LatenessThresholdMinutes is the closed lower bound for a session to
	// count as late.
	LatenessThresholdMinutes int
	// EarlyEndThresholdMinutes is the minimum minutes before scheduled end
	// for a departure to count as ending early.
	EarlyEndThresholdMinutes int
	// PoorFirstSessionRatingThreshold is the highest student rating that
	// still flags a first session as poor.
	PoorFirstSessionRatingThreshold int
	// HighRescheduleRateThreshold is the exclusive floor on the
	// tutor-initiated reschedule rate.
	HighRescheduleRateThreshold float64
	// ChronicLatenessRateThreshold is the exclusive floor on the late rate.
	ChronicLatenessRateThreshold float64
	// AggregateWindowDays sets the lookback window for tutor statistics.
	AggregateWindowDays int
	// MinSessionsForAggregateRules gates every aggregate rule: below this
	// sample size they report not-triggered regardless of the rates.
	MinSessionsForAggregateRules int
	// TrendRecentWindowDays and TrendPriorWindowDays bound the two rating
	// windows compared by the declining-ratings rule.
	TrendRecentWindowDays int
	TrendPriorWindowDays  int
	// TrendStabilityThreshold is the relative change below which a rating
	// trajectory counts as stable.
	TrendStabilityThreshold float64
}

// DefaultConfig returns the documented default thresholds.
func DefaultConfig() Config {
	return Config{
		LatenessThresholdMinutes:        5,
		EarlyEndThresholdMinutes:        10,
		PoorFirstSessionRatingThreshold: 2,
		HighRescheduleRateThreshold:     0.15,
		ChronicLatenessRateThreshold:    0.30,
		AggregateWindowDays:             30,
		MinSessionsForAggregateRules:    5,
		TrendRecentWindowDays:           30,
		TrendPriorWindowDays:            30,
		TrendStabilityThreshold:         0.05,
	}
}
