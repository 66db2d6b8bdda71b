package models

import "time"

// RescheduledBy identifies which party initiated a session reschedule.
type RescheduledBy string

const (
	RescheduledByTutor   RescheduledBy = "tutor"
	RescheduledByStudent RescheduledBy = "student"
	RescheduledBySystem  RescheduledBy = "system"
)

// Valid returns true when the value is a supported reschedule initiator.
func (r RescheduledBy) Valid() bool {
	switch r {
	case RescheduledByTutor, RescheduledByStudent, RescheduledBySystem:
		return true
	default:
		return false
	}
}

// Session represents one completed tutoring appointment. Sessions are
// append-only facts: written once at ingestion and never mutated.
// A nil TutorJoinTime denotes a tutor no-show.
type Session struct {
	ID                    string         `db:"id" json:"id"`
	TutorID               string         `db:"tutor_id" json:"tutor_id"`
	StudentID             string         `db:"student_id" json:"student_id"`
	ScheduledStart        time.Time      `db:"scheduled_start" json:"scheduled_start"`
	ScheduledEnd          time.Time      `db:"scheduled_end" json:"scheduled_end"`
	TutorJoinTime         *time.Time     `db:"tutor_join_time" json:"tutor_join_time,omitempty"`
	StudentJoinTime       *time.Time     `db:"student_join_time" json:"student_join_time,omitempty"`
	TutorLeaveTime        *time.Time     `db:"tutor_leave_time" json:"tutor_leave_time,omitempty"`
	StudentLeaveTime      *time.Time     `db:"student_leave_time" json:"student_leave_time,omitempty"`
	IsFirstSession        bool           `db:"is_first_session" json:"is_first_session"`
	WasRescheduled        bool           `db:"was_rescheduled" json:"was_rescheduled"`
	RescheduledBy         *RescheduledBy `db:"rescheduled_by" json:"rescheduled_by,omitempty"`
	StudentFeedbackRating *int           `db:"student_feedback_rating" json:"student_feedback_rating,omitempty"`
	TutorFeedbackRating   *int           `db:"tutor_feedback_rating" json:"tutor_feedback_rating,omitempty"`
	CreatedAt             time.Time      `db:"created_at" json:"created_at"`
}

// NoShow reports whether the tutor never joined the session.
func (s *Session) NoShow() bool {
	return s.TutorJoinTime == nil
}

// SessionFilter scopes session listing queries.
type SessionFilter struct {
	TutorID   string
	StudentID string
	From      *time.Time
	To        *time.Time
	Page      int
	PageSize  int
}
