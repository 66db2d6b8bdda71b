package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/nosenfield/nerdy-tutor-quality-sub000/internal/models"
	appErrors "github.com/nosenfield/nerdy-tutor-quality-sub000/pkg/errors"
)

// FlagRepository describes the persistence layer required by FlagService.
type FlagRepository interface {
	List(ctx context.Context, filter models.FlagFilter) ([]models.Flag, int, error)
	FindByID(ctx context.Context, id string) (*models.Flag, error)
	ListOpenByTutor(ctx context.Context, tutorID string) ([]models.Flag, error)
	Resolve(ctx context.Context, id, resolvedBy string) error
}

// FlagService exposes the coaching workflow over persisted flags.
type FlagService struct {
	repo   FlagRepository
	logger *zap.Logger
}

// NewFlagService constructs a flag service.
func NewFlagService(repo FlagRepository, logger *zap.Logger) *FlagService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FlagService{repo: repo, logger: logger}
}

// List returns flags matching the filter with pagination metadata.
func (s *FlagService) List(ctx context.Context, filter models.FlagFilter) ([]models.Flag, *models.Pagination, error) {
	flags, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list flags")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return flags, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get fetches one flag by ID.
func (s *FlagService) Get(ctx context.Context, id string) (*models.Flag, error) {
	flag, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "flag not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch flag")
	}
	return flag, nil
}

// OpenByTutor returns every open flag for one tutor.
func (s *FlagService) OpenByTutor(ctx context.Context, tutorID string) ([]models.Flag, error) {
	flags, err := s.repo.ListOpenByTutor(ctx, tutorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list open flags")
	}
	return flags, nil
}

// Resolve marks an open flag as resolved by the acting user and returns
// the updated record. Resolution is idempotent-hostile on purpose: a
// second resolve attempt surfaces a conflict.
func (s *FlagService) Resolve(ctx context.Context, id, resolvedBy string) (*models.Flag, error) {
	if err := s.repo.Resolve(ctx, id, resolvedBy); err != nil {
		return nil, err
	}
	flag, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload flag")
	}
	s.logger.Info("flag resolved", zap.String("flag_id", id), zap.String("resolved_by", resolvedBy))
	return flag, nil
}
