package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/eduforge/eduforge-backend/internal/apperr"
	"github.com/eduforge/eduforge-backend/internal/logger"
	"github.com/eduforge/eduforge-backend/internal/requestdata"
	"github.com/eduforge/eduforge-backend/internal/services"
	"github.com/eduforge/eduforge-backend/internal/types"
)

type LessonHandler struct {
	lessonService   services.LessonService
	progressService services.ProgressService
	log             *logger.Logger
}

func NewLessonHandler(
	lessonService services.LessonService,
	progressService services.ProgressService,
	baseLog *logger.Logger,
) *LessonHandler {
	return &LessonHandler{
		lessonService:   lessonService,
		progressService: progressService,
		log:             baseLog.With("handler", "LessonHandler"),
	}
}

func (h *LessonHandler) AddLesson(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		respondError(c, apperr.Unauthorized("missing request identity"))
		return
	}

	var input services.AddLessonInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, err)
		return
	}

	lesson, err := h.lessonService.Add(c.Request.Context(), rd.Username, input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, lesson)
}

func (h *LessonHandler) GetLesson(c *gin.Context) {
	lessonID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperr.InvalidArgument("id must be a uuid"))
		return
	}

	lesson, err := h.lessonService.Get(c.Request.Context(), lessonID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, lesson)
}

// Sign opens a lesson for the caller and seeds its attempt budget.
func (h *LessonHandler) Sign(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		respondError(c, apperr.Unauthorized("missing request identity"))
		return
	}

	var input struct {
		LessonID uuid.UUID `json:"lesson_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, err)
		return
	}

	progress, err := h.progressService.StartMaterial(
		c.Request.Context(), rd.UserID, input.LessonID, types.MaterialTypeLesson)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, progress)
}

func (h *LessonHandler) CompleteLesson(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		respondError(c, apperr.Unauthorized("missing request identity"))
		return
	}

	var input struct {
		LessonID uuid.UUID `json:"lesson_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, err)
		return
	}

	progress, err := h.progressService.CompleteLesson(c.Request.Context(), rd.UserID, input.LessonID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, progress)
}

// GetProgress returns the caller's progress row for a material.
func (h *LessonHandler) GetProgress(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		respondError(c, apperr.Unauthorized("missing request identity"))
		return
	}

	materialID, err := uuid.Parse(c.Param("materialId"))
	if err != nil {
		respondError(c, apperr.InvalidArgument("materialId must be a uuid"))
		return
	}

	progress, err := h.progressService.GetProgress(c.Request.Context(), rd.UserID, materialID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, progress)
}

func (h *LessonHandler) AnswerLesson(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		respondError(c, apperr.Unauthorized("missing request identity"))
		return
	}

	var input struct {
		LessonID uuid.UUID `json:"lesson_id" binding:"required"`
		Answer   string    `json:"answer" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, err)
		return
	}

	result, err := h.progressService.AnswerLesson(
		c.Request.Context(), rd.UserID, input.LessonID, input.Answer)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, result)
}
