package dto

import (
	"time"

	"github.com/nosenfield/nerdy-tutor-quality-sub000/internal/models"
	appErrors "github.com/nosenfield/nerdy-tutor-quality-sub000/pkg/errors"
)

// FlagListQuery captures query parameters for flag listings.
type FlagListQuery struct {
	TutorID     string     `form:"tutorId"`
	FlagType    string     `form:"flagType"`
	MinSeverity string     `form:"minSeverity"`
	Status      string     `form:"status"`
	From        *time.Time `form:"from" time_format:"2006-01-02"`
	To          *time.Time `form:"to" time_format:"2006-01-02"`
	Page        int        `form:"page,default=1"`
	PageSize    int        `form:"pageSize,default=20"`
}

// ToFilter validates and converts the query into a repository filter.
func (q *FlagListQuery) ToFilter() (models.FlagFilter, error) {
	filter := models.FlagFilter{
		TutorID:  q.TutorID,
		FlagType: q.FlagType,
		Status:   q.Status,
		From:     q.From,
		To:       q.To,
		Page:     q.Page,
		PageSize: q.PageSize,
	}
	if q.FlagType != "" && !models.FlagType(q.FlagType).Valid() {
		return filter, appErrors.Clone(appErrors.ErrValidation, "unknown flag type")
	}
	if q.Status != "" && q.Status != string(models.FlagStatusOpen) && q.Status != string(models.FlagStatusResolved) {
		return filter, appErrors.Clone(appErrors.ErrValidation, "status must be open or resolved")
	}
	if q.MinSeverity != "" {
		severity, err := models.ParseSeverity(q.MinSeverity)
		if err != nil {
			return filter, appErrors.Clone(appErrors.ErrValidation, "unknown severity")
		}
		filter.MinSeverity = &severity
	}
	return filter, nil
}
