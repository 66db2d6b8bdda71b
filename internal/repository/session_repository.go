package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nosenfield/nerdy-tutor-quality-sub000/internal/models"
)

const sessionColumns = `id, tutor_id, student_id, scheduled_start, scheduled_end,
        tutor_join_time, student_join_time, tutor_leave_time, student_leave_time,
        is_first_session, was_rescheduled, rescheduled_by,
        student_feedback_rating, tutor_feedback_rating, created_at`

// SessionRepository manages persistence for session records. Sessions
// are append-only; there is no update path.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository constructs a SessionRepository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create inserts a new session record.
func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO sessions (id, tutor_id, student_id, scheduled_start, scheduled_end,
        tutor_join_time, student_join_time, tutor_leave_time, student_leave_time,
        is_first_session, was_rescheduled, rescheduled_by,
        student_feedback_rating, tutor_feedback_rating, created_at)
        VALUES (:id, :tutor_id, :student_id, :scheduled_start, :scheduled_end,
        :tutor_join_time, :student_join_time, :tutor_leave_time, :student_leave_time,
        :is_first_session, :was_rescheduled, :rescheduled_by,
        :student_feedback_rating, :tutor_feedback_rating, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, session); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// FindByID fetches a session by ID.
func (r *SessionRepository) FindByID(ctx context.Context, id string) (*models.Session, error) {
	query := fmt.Sprintf("SELECT %s FROM sessions WHERE id = $1", sessionColumns)
	var session models.Session
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		return nil, err
	}
	return &session, nil
}

// ListByTutorWindow returns all sessions for one tutor whose scheduled
// start falls in [from, to), ordered oldest first.
func (r *SessionRepository) ListByTutorWindow(ctx context.Context, tutorID string, from, to time.Time) ([]models.Session, error) {
	query := fmt.Sprintf(`SELECT %s FROM sessions
        WHERE tutor_id = $1 AND scheduled_start >= $2 AND scheduled_start < $3
        ORDER BY scheduled_start ASC`, sessionColumns)
	var sessions []models.Session
	if err := r.db.SelectContext(ctx, &sessions, query, tutorID, from, to); err != nil {
		return nil, fmt.Errorf("list tutor sessions: %w", err)
	}
	return sessions, nil
}

// List returns sessions matching the provided filters with a total count.
func (r *SessionRepository) List(ctx context.Context, filter models.SessionFilter) ([]models.Session, int, error) {
	base := "FROM sessions"
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.TutorID != "" {
		conditions = append(conditions, fmt.Sprintf("tutor_id = $%d", len(args)+1))
		args = append(args, filter.TutorID)
	}
	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("scheduled_start >= $%d", len(args)+1))
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("scheduled_start < $%d", len(args)+1))
		args = append(args, *filter.To)
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY scheduled_start DESC LIMIT %d OFFSET %d", sessionColumns, base, size, offset)

	var sessions []models.Session
	if err := r.db.SelectContext(ctx, &sessions, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list sessions: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count sessions: %w", err)
	}
	return sessions, total, nil
}
