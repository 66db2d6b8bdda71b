package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/nosenfield/nerdy-tutor-quality-sub000/internal/models"
	appErrors "github.com/nosenfield/nerdy-tutor-quality-sub000/pkg/errors"
)

const flagColumns = `id, tutor_id, session_id, flag_type, severity, title, description,
        recommended_action, supporting_data, confidence, status, resolved_by, resolved_at, created_at`

// FlagRepository manages persistence for quality flags.
type FlagRepository struct {
	db *sqlx.DB
}

// NewFlagRepository constructs a FlagRepository.
func NewFlagRepository(db *sqlx.DB) *FlagRepository {
	return &FlagRepository{db: db}
}

// CreateBatch inserts the provided flags inside one transaction. An
// empty batch is a no-op.
func (r *FlagRepository) CreateBatch(ctx context.Context, flags []models.Flag) error {
	if len(flags) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin flag batch: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const query = `INSERT INTO quality_flags (id, tutor_id, session_id, flag_type, severity, title, description,
        recommended_action, supporting_data, confidence, status, resolved_by, resolved_at, created_at)
        VALUES (:id, :tutor_id, :session_id, :flag_type, :severity, :title, :description,
        :recommended_action, :supporting_data, :confidence, :status, :resolved_by, :resolved_at, :created_at)`

	now := time.Now().UTC()
	for i := range flags {
		if flags[i].ID == "" {
			flags[i].ID = uuid.NewString()
		}
		if flags[i].Status == "" {
			flags[i].Status = models.FlagStatusOpen
		}
		if flags[i].CreatedAt.IsZero() {
			flags[i].CreatedAt = now
		}
		if _, err := tx.NamedExecContext(ctx, query, flags[i]); err != nil {
			return fmt.Errorf("insert flag: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit flag batch: %w", err)
	}
	return nil
}

// FindByID fetches a flag by ID.
func (r *FlagRepository) FindByID(ctx context.Context, id string) (*models.Flag, error) {
	query := fmt.Sprintf("SELECT %s FROM quality_flags WHERE id = $1", flagColumns)
	var flag models.Flag
	if err := r.db.GetContext(ctx, &flag, query, id); err != nil {
		return nil, err
	}
	return &flag, nil
}

// List returns flags matching the provided filters with a total count.
func (r *FlagRepository) List(ctx context.Context, filter models.FlagFilter) ([]models.Flag, int, error) {
	base := "FROM quality_flags"
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.TutorID != "" {
		conditions = append(conditions, fmt.Sprintf("tutor_id = $%d", len(args)+1))
		args = append(args, filter.TutorID)
	}
	if filter.FlagType != "" {
		conditions = append(conditions, fmt.Sprintf("flag_type = $%d", len(args)+1))
		args = append(args, filter.FlagType)
	}
	if filter.MinSeverity != nil {
		conditions = append(conditions, fmt.Sprintf("severity = ANY($%d)", len(args)+1))
		args = append(args, pq.Array(severityNamesAtLeast(*filter.MinSeverity)))
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", len(args)+1))
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("created_at < $%d", len(args)+1))
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT %d OFFSET %d", flagColumns, base, size, offset)

	var flags []models.Flag
	if err := r.db.SelectContext(ctx, &flags, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list flags: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count flags: %w", err)
	}
	return flags, total, nil
}

// ListOpenByTutor returns every open flag for one tutor, most recent first.
func (r *FlagRepository) ListOpenByTutor(ctx context.Context, tutorID string) ([]models.Flag, error) {
	query := fmt.Sprintf(`SELECT %s FROM quality_flags
        WHERE tutor_id = $1 AND status = $2 ORDER BY created_at DESC`, flagColumns)
	var flags []models.Flag
	if err := r.db.SelectContext(ctx, &flags, query, tutorID, models.FlagStatusOpen); err != nil {
		return nil, fmt.Errorf("list open flags: %w", err)
	}
	return flags, nil
}

// Resolve marks an open flag as resolved by the given user. Resolving a
// flag that is not open returns ErrConflict.
func (r *FlagRepository) Resolve(ctx context.Context, id, resolvedBy string) error {
	const query = `UPDATE quality_flags SET status = $2, resolved_by = $3, resolved_at = $4
        WHERE id = $1 AND status = $5`
	result, err := r.db.ExecContext(ctx, query, id, models.FlagStatusResolved, resolvedBy, time.Now().UTC(), models.FlagStatusOpen)
	if err != nil {
		return fmt.Errorf("resolve flag: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("resolve flag rows: %w", err)
	}
	if affected == 0 {
		if _, err := r.FindByID(ctx, id); err != nil {
			if err == sql.ErrNoRows {
				return appErrors.ErrNotFound
			}
			return fmt.Errorf("resolve flag lookup: %w", err)
		}
		return appErrors.Clone(appErrors.ErrConflict, "flag already resolved")
	}
	return nil
}

// severityNamesAtLeast expands a minimum severity into the set of
// severity labels stored in the database.
func severityNamesAtLeast(min models.Severity) []string {
	all := []models.Severity{models.SeverityLow, models.SeverityMedium, models.SeverityHigh, models.SeverityCritical}
	names := make([]string, 0, len(all))
	for _, s := range all {
		if s.AtLeast(min) {
			names = append(names, s.String())
		}
	}
	return names
}
