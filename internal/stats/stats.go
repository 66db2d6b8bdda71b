// Package stats provides the pure numeric helpers and the single-pass
// tutor statistics aggregator behind the quality rules and scores. Every
// function is side-effect free; nil results mean "no data", never zero.
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/nosenfield/nerdy-tutor-quality-sub000/internal/models"
)

// Lateness returns the whole minutes between the scheduled start and the
// actual join time, rounded half away from zero. Nil when the tutor never
// joined (no-shows are handled separately); negative when they arrived
// early.
func Lateness(scheduledStart time.Time, actualJoin *time.Time) *int {
	if actualJoin == nil {
		return nil
	}
	minutes := int(math.Round(actualJoin.Sub(scheduledStart).Minutes()))
	return &minutes
}

// MinutesEarly returns the whole minutes between the actual leave time
// and the scheduled end. Nil when the tutor never left (or never joined);
// negative when they stayed past the scheduled end.
func MinutesEarly(scheduledEnd time.Time, actualLeave *time.Time) *int {
	if actualLeave == nil {
		return nil
	}
	minutes := int(math.Round(scheduledEnd.Sub(*actualLeave).Minutes()))
	return &minutes
}

// EndedEarly reports whether the tutor left at least thresholdMinutes
// before the scheduled end. Leaving after the scheduled end never counts.
func EndedEarly(scheduledEnd time.Time, actualLeave *time.Time, thresholdMinutes int) bool {
	early := MinutesEarly(scheduledEnd, actualLeave)
	if early == nil {
		return false
	}
	return *early >= thresholdMinutes
}

// Average returns the arithmetic mean, or nil for empty input.
func Average(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	avg := sum / float64(len(values))
	return &avg
}

// Rate returns count/total, or nil when total is zero so an empty sample
// is distinguishable from a perfect record.
func Rate(count, total int) *float64 {
	if total == 0 {
		return nil
	}
	r := float64(count) / float64(total)
	return &r
}

// Percentile returns the p-th percentile (p in [0,100]) using nearest-rank
// interpolation, or nil for empty input.
func Percentile(values []float64, p float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if p <= 0 {
		return &sorted[0]
	}
	if p >= 100 {
		return &sorted[len(sorted)-1]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return &sorted[lower]
	}
	frac := rank - float64(lower)
	v := sorted[lower] + (sorted[upper]-sorted[lower])*frac
	return &v
}

// Trend classifies the relative change from oldVal to newVal. Nil when
// either input is missing or the baseline is zero. A relative change
// smaller than thresholdFraction in magnitude is stable; otherwise the
// sign of the change determines direction. The classification is
// direction-agnostic: for metrics where a rise is unfavorable, the caller
// must invert the interpretation.
func Trend(oldVal, newVal *float64, thresholdFraction float64) *models.TrendDirection {
	if oldVal == nil || newVal == nil || *oldVal == 0 {
		return nil
	}
	change := (*newVal - *oldVal) / *oldVal
	direction := models.TrendStable
	if math.Abs(change) >= thresholdFraction {
		if change > 0 {
			direction = models.TrendImproving
		} else {
			direction = models.TrendDeclining
		}
	}
	return &direction
}
