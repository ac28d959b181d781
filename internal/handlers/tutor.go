package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/eduforge/eduforge-backend/internal/apperr"
	"github.com/eduforge/eduforge-backend/internal/logger"
	"github.com/eduforge/eduforge-backend/internal/requestdata"
	"github.com/eduforge/eduforge-backend/internal/services"
)

type TutorHandler struct {
	tutorService services.TutorService
	log          *logger.Logger
}

func NewTutorHandler(tutorService services.TutorService, baseLog *logger.Logger) *TutorHandler {
	return &TutorHandler{
		tutorService: tutorService,
		log:          baseLog.With("handler", "TutorHandler"),
	}
}

func (h *TutorHandler) Ask(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		respondError(c, apperr.Unauthorized("missing request identity"))
		return
	}

	var input struct {
		LessonID uuid.UUID `json:"lesson_id" binding:"required"`
		Question string    `json:"question" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, err)
		return
	}

	answer, err := h.tutorService.AskLessonQuestion(
		c.Request.Context(), rd.UserID, input.LessonID, input.Question)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"answer": answer})
}

func (h *TutorHandler) GenerateTask(c *gin.Context) {
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

	task, err := h.tutorService.GenerateTask(c.Request.Context(), rd.UserID, input.LessonID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, task)
}

func (h *TutorHandler) AnswerTask(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		respondError(c, apperr.Unauthorized("missing request identity"))
		return
	}

	var input struct {
		TaskID uuid.UUID `json:"task_id" binding:"required"`
		Answer string    `json:"answer" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, err)
		return
	}

	result, err := h.tutorService.AnswerTask(c.Request.Context(), rd.UserID, input.TaskID, input.Answer)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, result)
}
