package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nosenfield/nerdy-tutor-quality-sub000/internal/models"
)

const scoreColumns = `id, tutor_id, window_start, window_end, total_sessions,
        attendance_score, ratings_score, completion_score, reliability_score,
        overall_score, confidence_score, created_at`

// ScoreRepository manages persistence for tutor score snapshots.
type ScoreRepository struct {
	db *sqlx.DB
}

// NewScoreRepository constructs a ScoreRepository.
func NewScoreRepository(db *sqlx.DB) *ScoreRepository {
	return &ScoreRepository{db: db}
}

// Create inserts a new score snapshot.
func (r *ScoreRepository) Create(ctx context.Context, score *models.TutorScore) error {
	if score.ID == "" {
		score.ID = uuid.NewString()
	}
	if score.CreatedAt.IsZero() {
		score.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO tutor_scores (id, tutor_id, window_start, window_end, total_sessions,
        attendance_score, ratings_score, completion_score, reliability_score,
        overall_score, confidence_score, created_at)
        VALUES (:id, :tutor_id, :window_start, :window_end, :total_sessions,
        :attendance_score, :ratings_score, :completion_score, :reliability_score,
        :overall_score, :confidence_score, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, score); err != nil {
		return fmt.Errorf("create score snapshot: %w", err)
	}
	return nil
}

// LatestByTutor fetches the most recent score snapshot for one tutor.
func (r *ScoreRepository) LatestByTutor(ctx context.Context, tutorID string) (*models.TutorScore, error) {
	query := fmt.Sprintf(`SELECT %s FROM tutor_scores
        WHERE tutor_id = $1 ORDER BY created_at DESC LIMIT 1`, scoreColumns)
	var score models.TutorScore
	if err := r.db.GetContext(ctx, &score, query, tutorID); err != nil {
		return nil, err
	}
	return &score, nil
}

// HistoryByTutor returns score snapshots for one tutor, newest first,
// capped at limit.
func (r *ScoreRepository) HistoryByTutor(ctx context.Context, tutorID string, limit int) ([]models.TutorScore, error) {
	if limit <= 0 || limit > 100 {
		limit = 30
	}
	query := fmt.Sprintf(`SELECT %s FROM tutor_scores
        WHERE tutor_id = $1 ORDER BY created_at DESC LIMIT %d`, scoreColumns, limit)
	var scores []models.TutorScore
	if err := r.db.SelectContext(ctx, &scores, query, tutorID); err != nil {
		return nil, fmt.Errorf("score history: %w", err)
	}
	return scores, nil
}
