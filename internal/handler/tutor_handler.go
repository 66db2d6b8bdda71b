package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nosenfield/nerdy-tutor-quality-sub000/internal/middleware"
	"github.com/nosenfield/nerdy-tutor-quality-sub000/internal/service"
	appErrors "github.com/nosenfield/nerdy-tutor-quality-sub000/pkg/errors"
	"github.com/nosenfield/nerdy-tutor-quality-sub000/pkg/response"
)

// TutorHandler exposes per-tutor statistics, scores and evaluation
// endpoints.
type TutorHandler struct {
	stats      *service.StatsService
	scores     *service.ScoreService
	flags      *service.FlagService
	evaluation *service.EvaluationService
}

// NewTutorHandler constructs the tutor handler.
func NewTutorHandler(stats *service.StatsService, scores *service.ScoreService, flags *service.FlagService, evaluation *service.EvaluationService) *TutorHandler {
	return &TutorHandler{stats: stats, scores: scores, flags: flags, evaluation: evaluation}
}

// Stats returns windowed statistics for one tutor.
// @Summary Tutor statistics
// @Tags tutors
// @Produce json
// @Param id path string true "Tutor ID"
// @Param asOf query string false "Window end (RFC 3339)"
// @Success 200 {object} response.Envelope
// @Router /tutors/{id}/stats [get]
func (h *TutorHandler) Stats(c *gin.Context) {
	asOf, err := parseAsOf(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	stats, cacheHit, err := h.stats.TutorStats(c.Request.Context(), c.Param("id"), asOf)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, stats, nil, middleware.ExtractMeta(c))
}

// Score returns the latest persisted score snapshot for one tutor.
// @Summary Latest tutor score
// @Tags tutors
// @Produce json
// @Param id path string true "Tutor ID"
// @Success 200 {object} response.Envelope
// @Router /tutors/{id}/score [get]
func (h *TutorHandler) Score(c *gin.Context) {
	score, cacheHit, err := h.scores.Latest(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, score, nil, middleware.ExtractMeta(c))
}

// ScoreHistory returns past score snapshots for one tutor.
// @Summary Tutor score history
// @Tags tutors
// @Produce json
// @Param id path string true "Tutor ID"
// @Param limit query int false "Maximum snapshots"
// @Success 200 {object} response.Envelope
// @Router /tutors/{id}/score/history [get]
func (h *TutorHandler) ScoreHistory(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "30"))
	scores, err := h.scores.History(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, scores, nil)
}

// OpenFlags returns every open flag for one tutor.
// @Summary Open tutor flags
// @Tags tutors
// @Produce json
// @Param id path string true "Tutor ID"
// @Success 200 {object} response.Envelope
// @Router /tutors/{id}/flags [get]
func (h *TutorHandler) OpenFlags(c *gin.Context) {
	flags, err := h.flags.OpenByTutor(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, flags, nil)
}

// Evaluate runs the aggregate evaluation pass synchronously.
// @Summary Evaluate a tutor now
// @Tags tutors
// @Produce json
// @Param id path string true "Tutor ID"
// @Success 200 {object} response.Envelope
// @Router /tutors/{id}/evaluate [post]
func (h *TutorHandler) Evaluate(c *gin.Context) {
	asOf, err := parseAsOf(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	stats, flags, snapshot, err := h.evaluation.EvaluateTutor(c.Request.Context(), c.Param("id"), asOf)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"stats": stats,
		"flags": flags,
		"score": snapshot,
	}, nil)
}

func parseAsOf(c *gin.Context) (time.Time, error) {
	raw := c.Query("asOf")
	if raw == "" {
		return time.Time{}, nil
	}
	asOf, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "asOf must be RFC 3339")
	}
	return asOf, nil
}
