package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nosenfield/nerdy-tutor-quality-sub000/internal/dto"
	"github.com/nosenfield/nerdy-tutor-quality-sub000/internal/service"
	appErrors "github.com/nosenfield/nerdy-tutor-quality-sub000/pkg/errors"
	"github.com/nosenfield/nerdy-tutor-quality-sub000/pkg/response"
)

// SessionHandler exposes session ingestion and retrieval endpoints.
type SessionHandler struct {
	sessions *service.SessionService
}

// NewSessionHandler constructs the session handler.
func NewSessionHandler(sessions *service.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// Ingest accepts one completed session from the scheduling system.
// @Summary Ingest a completed session
// @Tags sessions
// @Accept json
// @Produce json
// @Success 201 {object} response.Envelope
// @Router /sessions [post]
func (h *SessionHandler) Ingest(c *gin.Context) {
	var req dto.IngestSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session payload"))
		return
	}
	if err := req.Validate(); err != nil {
		response.Error(c, err)
		return
	}

	session, err := h.sessions.Ingest(c.Request.Context(), req.ToModel())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, session)
}

// Get returns one session by ID.
// @Summary Fetch a session
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id} [get]
func (h *SessionHandler) Get(c *gin.Context) {
	session, err := h.sessions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// List returns sessions matching the query filters.
// @Summary List sessions
// @Tags sessions
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /sessions [get]
func (h *SessionHandler) List(c *gin.Context) {
	var query dto.SessionListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session query"))
		return
	}

	sessions, pagination, err := h.sessions.List(c.Request.Context(), query.ToFilter())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessions, pagination)
}
