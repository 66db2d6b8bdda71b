package rules

import (
	"fmt"

	"github.com/nosenfield/nerdy-tutor-quality-sub000/internal/models"
)

// belowSampleFloor applies the minimum-sessions gate shared by every
// aggregate rule. Insufficient sample size is a hard gate, not a
// confidence adjustment: below the floor a rule reports not-triggered
// regardless of the computed rates.
func belowSampleFloor(stats *models.TutorStats, cfg Config) bool {
	return stats == nil || stats.TotalSessions < cfg.MinSessionsForAggregateRules
}

func aggregateSupportingData(stats *models.TutorStats, metrics map[string]float64) models.SupportingData {
	metrics["total_sessions"] = float64(stats.TotalSessions)
	ids := make([]string, 0, len(stats.RecentSessions))
	for _, session := range stats.RecentSessions {
		ids = append(ids, session.ID)
	}
	return models.SupportingData{SessionIDs: ids, Metrics: metrics}
}

// DetectHighRescheduleRate triggers when the tutor-initiated reschedule
// rate over the window exceeds the configured threshold.
func DetectHighRescheduleRate(ctx Context) models.RuleResult {
	st := ctx.Stats
	if belowSampleFloor(st, ctx.Config) || st.RescheduleRate == nil {
		return notTriggered(models.FlagHighRescheduleRate)
	}

	rate := *st.RescheduleRate
	threshold := ctx.Config.HighRescheduleRateThreshold
	if rate <= threshold {
		return notTriggered(models.FlagHighRescheduleRate)
	}

	severity := models.SeverityMedium
	if rate >= 2*threshold {
		severity = models.SeverityHigh
	}

	return triggered(
		models.FlagHighRescheduleRate,
		severity,
		fmt.Sprintf("High reschedule rate (%.0f%%)", rate*100),
		fmt.Sprintf("Tutor %s rescheduled %d of %d sessions (%.0f%%) in the current window.",
			st.TutorID, st.RescheduleCount, st.TotalSessions, rate*100),
		withRecommendedAction("Discuss schedule reliability with the tutor and review their availability."),
		withSupportingData(aggregateSupportingData(st, map[string]float64{"reschedule_rate": rate})),
		withConfidence(0.85),
	)
}

// DetectChronicLateness triggers when the late-session rate over the
// window exceeds the chronic-lateness threshold.
func DetectChronicLateness(ctx Context) models.RuleResult {
	st := ctx.Stats
	if belowSampleFloor(st, ctx.Config) || st.LateRate == nil {
		return notTriggered(models.FlagChronicLateness)
	}

	rate := *st.LateRate
	threshold := ctx.Config.ChronicLatenessRateThreshold
	if rate <= threshold {
		return notTriggered(models.FlagChronicLateness)
	}

	severity := models.SeverityMedium
	if rate >= 2*threshold {
		severity = models.SeverityHigh
	}

	metrics := map[string]float64{"late_rate": rate}
	if st.AvgLatenessMinutes != nil {
		metrics["avg_lateness_minutes"] = *st.AvgLatenessMinutes
	}

	return triggered(
		models.FlagChronicLateness,
		severity,
		fmt.Sprintf("Chronically late (%.0f%% of sessions)", rate*100),
		fmt.Sprintf("Tutor %s was late to %d of %d sessions (%.0f%%) in the current window.",
			st.TutorID, st.LateCount, st.TotalSessions, rate*100),
		withRecommendedAction("Coach the tutor on punctuality and monitor the next window."),
		withSupportingData(aggregateSupportingData(st, metrics)),
		withConfidence(0.85),
	)
}

// DetectDecliningRatings triggers when the tutor's average student rating
// in the recent window fell relative to the prior window. For ratings a
// decrease is the unfavorable direction, which matches the trend
// utility's sign convention directly.
func DetectDecliningRatings(ctx Context) models.RuleResult {
	st := ctx.Stats
	if belowSampleFloor(st, ctx.Config) || st.RatingTrend == nil {
		return notTriggered(models.FlagLowRatings)
	}
	if *st.RatingTrend != models.TrendDeclining {
		return notTriggered(models.FlagLowRatings)
	}

	severity := models.SeverityMedium
	if st.RecentAvgRating != nil && *st.RecentAvgRating < 2.5 {
		severity = models.SeverityHigh
	}

	metrics := map[string]float64{}
	if st.RecentAvgRating != nil {
		metrics["recent_avg_rating"] = *st.RecentAvgRating
	}
	if st.PriorAvgRating != nil {
		metrics["prior_avg_rating"] = *st.PriorAvgRating
	}

	return triggered(
		models.FlagLowRatings,
		severity,
		"Student ratings are declining",
		fmt.Sprintf("Tutor %s's average student rating fell from %.2f to %.2f between rating windows.",
			st.TutorID, deref(st.PriorAvgRating), deref(st.RecentAvgRating)),
		withRecommendedAction("Review recent session feedback with the tutor to find what changed."),
		withSupportingData(aggregateSupportingData(st, metrics)),
		withConfidence(0.8),
	)
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
