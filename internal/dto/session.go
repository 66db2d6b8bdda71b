package dto

import (
	"time"

	"github.com/nosenfield/nerdy-tutor-quality-sub000/internal/models"
	appErrors "github.com/nosenfield/nerdy-tutor-quality-sub000/pkg/errors"
)

// IngestSessionRequest is the webhook payload describing one completed
// session. Join/leave times and ratings are optional: their absence is
// meaningful and is preserved into the model.
type IngestSessionRequest struct {
	ID                    string     `json:"id"`
	TutorID               string     `json:"tutor_id" binding:"required"`
	StudentID             string     `json:"student_id" binding:"required"`
	ScheduledStart        time.Time  `json:"scheduled_start" binding:"required"`
	ScheduledEnd          time.Time  `json:"scheduled_end" binding:"required"`
	TutorJoinTime         *time.Time `json:"tutor_join_time"`
	StudentJoinTime       *time.Time `json:"student_join_time"`
	TutorLeaveTime        *time.Time `json:"tutor_leave_time"`
	StudentLeaveTime      *time.Time `json:"student_leave_time"`
	IsFirstSession        bool       `json:"is_first_session"`
	WasRescheduled        bool       `json:"was_rescheduled"`
	RescheduledBy         *string    `json:"rescheduled_by"`
	StudentFeedbackRating *int       `json:"student_feedback_rating"`
	TutorFeedbackRating   *int       `json:"tutor_feedback_rating"`
}

// Validate enforces the structural invariants gin binding cannot express.
func (r *IngestSessionRequest) Validate() error {
	if !r.ScheduledEnd.After(r.ScheduledStart) {
		return appErrors.Clone(appErrors.ErrValidation, "scheduled_end must be after scheduled_start")
	}
	if r.TutorJoinTime == nil && r.TutorLeaveTime != nil {
		return appErrors.Clone(appErrors.ErrValidation, "tutor_leave_time requires tutor_join_time")
	}
	if r.TutorJoinTime != nil && r.TutorLeaveTime != nil && r.TutorLeaveTime.Before(*r.TutorJoinTime) {
		return appErrors.Clone(appErrors.ErrValidation, "tutor_leave_time must not precede tutor_join_time")
	}
	if err := validateRating(r.StudentFeedbackRating, "student_feedback_rating"); err != nil {
		return err
	}
	if err := validateRating(r.TutorFeedbackRating, "tutor_feedback_rating"); err != nil {
		return err
	}
	if r.WasRescheduled {
		if r.RescheduledBy == nil {
			return appErrors.Clone(appErrors.ErrValidation, "rescheduled_by is required when was_rescheduled is true")
		}
		if !models.RescheduledBy(*r.RescheduledBy).Valid() {
			return appErrors.Clone(appErrors.ErrValidation, "rescheduled_by must be tutor, student or system")
		}
	} else if r.RescheduledBy != nil {
		return appErrors.Clone(appErrors.ErrValidation, "rescheduled_by requires was_rescheduled")
	}
	return nil
}

// ToModel converts the validated request into its persisted form.
func (r *IngestSessionRequest) ToModel() *models.Session {
	session := &models.Session{
		ID:                    r.ID,
		TutorID:               r.TutorID,
		StudentID:             r.StudentID,
		ScheduledStart:        r.ScheduledStart,
		ScheduledEnd:          r.ScheduledEnd,
		TutorJoinTime:         r.TutorJoinTime,
		StudentJoinTime:       r.StudentJoinTime,
		TutorLeaveTime:        r.TutorLeaveTime,
		StudentLeaveTime:      r.StudentLeaveTime,
		IsFirstSession:        r.IsFirstSession,
		WasRescheduled:        r.WasRescheduled,
		StudentFeedbackRating: r.StudentFeedbackRating,
		TutorFeedbackRating:   r.TutorFeedbackRating,
	}
	if r.RescheduledBy != nil {
		by := models.RescheduledBy(*r.RescheduledBy)
		session.RescheduledBy = &by
	}
	return session
}

func validateRating(rating *int, field string) error {
	if rating == nil {
		return nil
	}
	if *rating < 1 || *rating > 5 {
		return appErrors.Clone(appErrors.ErrValidation, field+" must be between 1 and 5")
	}
	return nil
}

// SessionListQuery captures query parameters for session listings.
type SessionListQuery struct {
	TutorID   string     `form:"tutorId"`
	StudentID string     `form:"studentId"`
	From      *time.Time `form:"from" time_format:"2006-01-02"`
	To        *time.Time `form:"to" time_format:"2006-01-02"`
	Page      int        `form:"page,default=1"`
	PageSize  int        `form:"pageSize,default=20"`
}

// ToFilter converts the query into a repository filter.
func (q *SessionListQuery) ToFilter() models.SessionFilter {
	return models.SessionFilter{
		TutorID:   q.TutorID,
		StudentID: q.StudentID,
		From:      q.From,
		To:        q.To,
		Page:      q.Page,
		PageSize:  q.PageSize,
	}
}
