package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nosenfield/nerdy-tutor-quality-sub000/internal/dto"
	"github.com/nosenfield/nerdy-tutor-quality-sub000/internal/service"
	appErrors "github.com/nosenfield/nerdy-tutor-quality-sub000/pkg/errors"
	"github.com/nosenfield/nerdy-tutor-quality-sub000/pkg/response"
)

// FlagHandler exposes the coaching workflow over quality flags.
type FlagHandler struct {
	flags *service.FlagService
}

// NewFlagHandler constructs the flag handler.
func NewFlagHandler(flags *service.FlagService) *FlagHandler {
	return &FlagHandler{flags: flags}
}

// List returns flags matching the query filters.
// @Summary List quality flags
// @Tags flags
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /flags [get]
func (h *FlagHandler) List(c *gin.Context) {
	var query dto.FlagListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid flag query"))
		return
	}
	filter, err := query.ToFilter()
	if err != nil {
		response.Error(c, err)
		return
	}

	flags, pagination, err := h.flags.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, flags, pagination)
}

// Get returns one flag by ID.
// @Summary Fetch a quality flag
// @Tags flags
// @Produce json
// @Param id path string true "Flag ID"
// @Success 200 {object} response.Envelope
// @Router /flags/{id} [get]
func (h *FlagHandler) Get(c *gin.Context) {
	flag, err := h.flags.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, flag, nil)
}

// Resolve marks an open flag as resolved by the current user.
// @Summary Resolve a quality flag
// @Tags flags
// @Produce json
// @Param id path string true "Flag ID"
// @Success 200 {object} response.Envelope
// @Router /flags/{id}/resolve [post]
func (h *FlagHandler) Resolve(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	flag, err := h.flags.Resolve(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, flag, nil)
}
