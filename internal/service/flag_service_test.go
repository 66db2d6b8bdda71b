package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nosenfield/nerdy-tutor-quality-sub000/internal/models"
	appErrors "github.com/nosenfield/nerdy-tutor-quality-sub000/pkg/errors"
)

type fakeFlagRepo struct {
	flags      map[string]*models.Flag
	resolveErr error
}

func (f *fakeFlagRepo) List(_ context.Context, _ models.FlagFilter) ([]models.Flag, int, error) {
	out := make([]models.Flag, 0, len(f.flags))
	for _, flag := range f.flags {
		out = append(out, *flag)
	}
	return out, len(out), nil
}

func (f *fakeFlagRepo) FindByID(_ context.Context, id string) (*models.Flag, error) {
	if flag, ok := f.flags[id]; ok {
		return flag, nil
	}
	return nil, assert.AnError
}

func (f *fakeFlagRepo) ListOpenByTutor(_ context.Context, tutorID string) ([]models.Flag, error) {
	var out []models.Flag
	for _, flag := range f.flags {
		if flag.TutorID == tutorID && flag.Status == models.FlagStatusOpen {
			out = append(out, *flag)
		}
	}
	return out, nil
}

func (f *fakeFlagRepo) Resolve(_ context.Context, id, resolvedBy string) error {
	if f.resolveErr != nil {
		return f.resolveErr
	}
	flag, ok := f.flags[id]
	if !ok {
		return appErrors.ErrNotFound
	}
	now := time.Now().UTC()
	flag.Status = models.FlagStatusResolved
	flag.ResolvedBy = &resolvedBy
	flag.ResolvedAt = &now
	return nil
}

func TestFlagServiceResolve(t *testing.T) {
	repo := &fakeFlagRepo{flags: map[string]*models.Flag{
		"f-1": {ID: "f-1", TutorID: "tutor-1", FlagType: models.FlagNoShow, Severity: models.SeverityCritical, Status: models.FlagStatusOpen},
	}}
	svc := NewFlagService(repo, zap.NewNop())

	flag, err := svc.Resolve(context.Background(), "f-1", "coach-1")
	require.NoError(t, err)
	assert.Equal(t, models.FlagStatusResolved, flag.Status)
	require.NotNil(t, flag.ResolvedBy)
	assert.Equal(t, "coach-1", *flag.ResolvedBy)
	assert.NotNil(t, flag.ResolvedAt)
}

func TestFlagServiceResolveConflictPassthrough(t *testing.T) {
	conflict := appErrors.Clone(appErrors.ErrConflict, "flag already resolved")
	repo := &fakeFlagRepo{resolveErr: conflict}
	svc := NewFlagService(repo, zap.NewNop())

	_, err := svc.Resolve(context.Background(), "f-1", "coach-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestFlagServiceListPaginationDefaults(t *testing.T) {
	repo := &fakeFlagRepo{flags: map[string]*models.Flag{
		"f-1": {ID: "f-1", TutorID: "tutor-1", Status: models.FlagStatusOpen},
	}}
	svc := NewFlagService(repo, zap.NewNop())

	flags, pagination, err := svc.List(context.Background(), models.FlagFilter{})
	require.NoError(t, err)
	assert.Len(t, flags, 1)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 20, pagination.PageSize)
	assert.Equal(t, 1, pagination.TotalCount)
}

func TestFlagServiceOpenByTutor(t *testing.T) {
	repo := &fakeFlagRepo{flags: map[string]*models.Flag{
		"f-1": {ID: "f-1", TutorID: "tutor-1", Status: models.FlagStatusOpen},
		"f-2": {ID: "f-2", TutorID: "tutor-1", Status: models.FlagStatusResolved},
		"f-3": {ID: "f-3", TutorID: "tutor-2", Status: models.FlagStatusOpen},
	}}
	svc := NewFlagService(repo, zap.NewNop())

	flags, err := svc.OpenByTutor(context.Background(), "tutor-1")
	require.NoError(t, err)
	require.Len(t, flags, 1)
	assert.Equal(t, "f-1", flags[0].ID)
}
