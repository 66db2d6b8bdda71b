package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nosenfield/nerdy-tutor-quality-sub000/internal/models"
)

func scoreRows() *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "tutor_id", "window_start", "window_end", "total_sessions",
		"attendance_score", "ratings_score", "completion_score", "reliability_score",
		"overall_score", "confidence_score", "created_at",
	}).AddRow("sc-1", "tutor-1", now.AddDate(0, 0, -30), now, 12,
		95.5, 87.5, 100.0, 98.0,
		93, 0.4, now)
}

func TestScoreRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScoreRepository(db)

	mock.ExpectExec("INSERT INTO tutor_scores").
		WillReturnResult(sqlmock.NewResult(1, 1))

	score := &models.TutorScore{TutorID: "tutor-1", TotalSessions: 12, OverallScore: 93, ConfidenceScore: 0.4}
	err := repo.Create(context.Background(), score)
	require.NoError(t, err)
	assert.NotEmpty(t, score.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScoreRepositoryLatestByTutor(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScoreRepository(db)

	mock.ExpectQuery("FROM tutor_scores\\s+WHERE tutor_id = \\$1 ORDER BY created_at DESC LIMIT 1").
		WithArgs("tutor-1").
		WillReturnRows(scoreRows())

	score, err := repo.LatestByTutor(context.Background(), "tutor-1")
	require.NoError(t, err)
	assert.Equal(t, 93, score.OverallScore)
	assert.InDelta(t, 0.4, score.ConfidenceScore, 1e-9)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScoreRepositoryHistoryByTutor(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScoreRepository(db)

	mock.ExpectQuery("FROM tutor_scores\\s+WHERE tutor_id = \\$1 ORDER BY created_at DESC LIMIT 30").
		WithArgs("tutor-1").
		WillReturnRows(scoreRows())

	scores, err := repo.HistoryByTutor(context.Background(), "tutor-1", 0)
	require.NoError(t, err)
	assert.Len(t, scores, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
