package rules

import (
	"fmt"

	"github.com/nosenfield/nerdy-tutor-quality-sub000/internal/models"
	"github.com/nosenfield/nerdy-tutor-quality-sub000/internal/stats"
)

// DetectNoShow triggers when the tutor never joined the session. A
// no-show is a binary fact, so severity is always critical and
// confidence 1.0.
func DetectNoShow(ctx Context) models.RuleResult {
	session := ctx.Session
	if session == nil {
		return notTriggered(models.FlagNoShow)
	}
	if !session.NoShow() {
		return notTriggered(models.FlagNoShow)
	}

	return triggered(
		models.FlagNoShow,
		models.SeverityCritical,
		"Tutor no-show",
		fmt.Sprintf("Tutor %s never joined the session scheduled for %s with student %s.",
			session.TutorID, session.ScheduledStart.Format("2006-01-02 15:04 MST"), session.StudentID),
		withRecommendedAction("Contact the tutor immediately and offer the student a make-up session."),
		withSupportingData(models.SupportingData{SessionIDs: []string{session.ID}}),
	)
}

// DetectLateness triggers when the tutor joined at or past the lateness
// threshold. No-shows are skipped: the no-show rule owns them.
func DetectLateness(ctx Context) models.RuleResult {
	session := ctx.Session
	if session == nil || session.NoShow() {
		return notTriggered(models.FlagChronicLateness)
	}

	late := stats.Lateness(session.ScheduledStart, session.TutorJoinTime)
	if late == nil || *late < ctx.Config.LatenessThresholdMinutes {
		return notTriggered(models.FlagChronicLateness)
	}

	severity := models.SeverityLow
	switch {
	case *late >= 15:
		severity = models.SeverityHigh
	case *late >= 10:
		severity = models.SeverityMedium
	}

	return triggered(
		models.FlagChronicLateness,
		severity,
		fmt.Sprintf("Tutor joined %d minutes late", *late),
		fmt.Sprintf("Tutor %s joined %d minutes after the scheduled start of the session with student %s.",
			session.TutorID, *late, session.StudentID),
		withRecommendedAction("Remind the tutor to join sessions on time; repeated lateness erodes student trust."),
		withSupportingData(models.SupportingData{
			SessionIDs: []string{session.ID},
			Metrics:    map[string]float64{"lateness_minutes": float64(*late)},
		}),
		withConfidence(0.95),
	)
}

// DetectEarlyEnd triggers when the tutor left at least the early-end
// threshold before the scheduled end. Sessions where the tutor never
// joined or never left are skipped.
func DetectEarlyEnd(ctx Context) models.RuleResult {
	session := ctx.Session
	if session == nil || session.NoShow() || session.TutorLeaveTime == nil {
		return notTriggered(models.FlagEarlyEnd)
	}

	if !stats.EndedEarly(session.ScheduledEnd, session.TutorLeaveTime, ctx.Config.EarlyEndThresholdMinutes) {
		return notTriggered(models.FlagEarlyEnd)
	}
	early := stats.MinutesEarly(session.ScheduledEnd, session.TutorLeaveTime)

	severity := models.SeverityLow
	switch {
	case *early >= 20:
		severity = models.SeverityHigh
	case *early >= 15:
		severity = models.SeverityMedium
	}

	return triggered(
		models.FlagEarlyEnd,
		severity,
		fmt.Sprintf("Session ended %d minutes early", *early),
		fmt.Sprintf("Tutor %s left %d minutes before the scheduled end of the session with student %s.",
			session.TutorID, *early, session.StudentID),
		withRecommendedAction("Confirm the student received the full scheduled session time."),
		withSupportingData(models.SupportingData{
			SessionIDs: []string{session.ID},
			Metrics:    map[string]float64{"early_end_minutes": float64(*early)},
		}),
		withConfidence(0.95),
	)
}

// DetectPoorFirstSession triggers when a first session received a student
// rating at or below the poor-first-session threshold. First sessions
// disproportionately drive churn, so the severity ladder is steeper than
// the rating alone suggests.
func DetectPoorFirstSession(ctx Context) models.RuleResult {
	session := ctx.Session
	if session == nil || !session.IsFirstSession || session.StudentFeedbackRating == nil {
		return notTriggered(models.FlagPoorFirstSession)
	}

	rating := *session.StudentFeedbackRating
	if rating > ctx.Config.PoorFirstSessionRatingThreshold {
		return notTriggered(models.FlagPoorFirstSession)
	}

	severity := models.SeverityMedium
	switch rating {
	case 1:
		severity = models.SeverityCritical
	case 2:
		severity = models.SeverityHigh
	}

	return triggered(
		models.FlagPoorFirstSession,
		severity,
		fmt.Sprintf("Poor first session (%d star rating)", rating),
		fmt.Sprintf("Student %s rated their first session with tutor %s %d out of 5.",
			session.StudentID, session.TutorID, rating),
		withRecommendedAction("Review the session with the tutor and consider rematching the student."),
		withSupportingData(models.SupportingData{
			SessionIDs: []string{session.ID},
			Metrics:    map[string]float64{"student_rating": float64(rating)},
		}),
		withConfidence(0.9),
	)
}
