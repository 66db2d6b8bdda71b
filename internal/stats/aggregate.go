package stats

import (
	"sort"
	"time"

	"github.com/nosenfield/nerdy-tutor-quality-sub000/internal/models"
)

// BuildParams configures one aggregation pass. Thresholds mirror the
// rules-engine configuration; the trend windows are measured back from
// WindowEnd and may extend before WindowStart, so callers should supply
// sessions covering the union of both ranges.
type BuildParams struct {
	TutorID     string
	WindowStart time.Time
	WindowEnd   time.Time

	LatenessThresholdMinutes int
	EarlyEndThresholdMinutes int

	TrendRecentWindow       time.Duration
	TrendPriorWindow        time.Duration
	TrendStabilityThreshold float64

	RecentSampleSize int
}

// Build computes TutorStats for sessions with a scheduled start in
// [WindowStart, WindowEnd) in a single pass over the input. Sessions for
// other tutors or outside every window are ignored. An empty window is a
// valid outcome: counts are zero and every rate is nil.
func Build(params BuildParams, sessions []models.Session) models.TutorStats {
	if params.RecentSampleSize <= 0 {
		params.RecentSampleSize = 10
	}

	st := models.TutorStats{
		TutorID:     params.TutorID,
		WindowStart: params.WindowStart,
		WindowEnd:   params.WindowEnd,
	}

	recentFrom := params.WindowEnd.Add(-params.TrendRecentWindow)
	priorFrom := recentFrom.Add(-params.TrendPriorWindow)

	var (
		latenessValues []float64
		earlyValues    []float64
		ratings        []float64
		firstRatings   []float64
		recentRatings  []float64
		priorRatings   []float64
		inWindow       []models.Session
	)

	for _, session := range sessions {
		if session.TutorID != params.TutorID {
			continue
		}

		// Trend windows are independent of the aggregate window.
		if session.StudentFeedbackRating != nil {
			rating := float64(*session.StudentFeedbackRating)
			start := session.ScheduledStart
			switch {
			case !start.Before(recentFrom) && start.Before(params.WindowEnd):
				recentRatings = append(recentRatings, rating)
			case !start.Before(priorFrom) && start.Before(recentFrom):
				priorRatings = append(priorRatings, rating)
			}
		}

		if session.ScheduledStart.Before(params.WindowStart) || !session.ScheduledStart.Before(params.WindowEnd) {
			continue
		}
		inWindow = append(inWindow, session)

		st.TotalSessions++
		if session.IsFirstSession {
			st.FirstSessions++
		}

		if session.NoShow() {
			st.NoShowCount++
		} else {
			if late := Lateness(session.ScheduledStart, session.TutorJoinTime); late != nil && *late >= params.LatenessThresholdMinutes {
				st.LateCount++
				latenessValues = append(latenessValues, float64(*late))
			}
			if EndedEarly(session.ScheduledEnd, session.TutorLeaveTime, params.EarlyEndThresholdMinutes) {
				st.EarlyEndCount++
				if early := MinutesEarly(session.ScheduledEnd, session.TutorLeaveTime); early != nil {
					earlyValues = append(earlyValues, float64(*early))
				}
			}
		}

		if session.WasRescheduled && session.RescheduledBy != nil && *session.RescheduledBy == models.RescheduledByTutor {
			st.RescheduleCount++
		}

		if session.StudentFeedbackRating != nil {
			rating := float64(*session.StudentFeedbackRating)
			ratings = append(ratings, rating)
			if session.IsFirstSession {
				firstRatings = append(firstRatings, rating)
			}
		}
	}

	st.NoShowRate = Rate(st.NoShowCount, st.TotalSessions)
	st.LateRate = Rate(st.LateCount, st.TotalSessions)
	st.EarlyEndRate = Rate(st.EarlyEndCount, st.TotalSessions)
	st.RescheduleRate = Rate(st.RescheduleCount, st.TotalSessions)

	st.AvgLatenessMinutes = Average(latenessValues)
	st.AvgEarlyEndMinutes = Average(earlyValues)
	st.AvgStudentRating = Average(ratings)
	st.AvgFirstSessionRating = Average(firstRatings)

	st.RecentAvgRating = Average(recentRatings)
	st.PriorAvgRating = Average(priorRatings)
	st.RatingTrend = Trend(st.PriorAvgRating, st.RecentAvgRating, params.TrendStabilityThreshold)

	sort.Slice(inWindow, func(i, j int) bool {
		return inWindow[i].ScheduledStart.After(inWindow[j].ScheduledStart)
	})
	if len(inWindow) > params.RecentSampleSize {
		inWindow = inWindow[:params.RecentSampleSize]
	}
	st.RecentSessions = inWindow

	return st
}
