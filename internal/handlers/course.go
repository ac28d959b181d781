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

type CourseHandler struct {
	courseService   services.CourseService
	progressService services.ProgressService
	log             *logger.Logger
}

func NewCourseHandler(
	courseService services.CourseService,
	progressService services.ProgressService,
	baseLog *logger.Logger,
) *CourseHandler {
	return &CourseHandler{
		courseService:   courseService,
		progressService: progressService,
		log:             baseLog.With("handler", "CourseHandler"),
	}
}

func (h *CourseHandler) AddCourse(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		respondError(c, apperr.Unauthorized("missing request identity"))
		return
	}

	var input services.CreateCourseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, err)
		return
	}

	course, err := h.courseService.Create(c.Request.Context(), rd.Username, input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, course)
}

func (h *CourseHandler) GetCourse(c *gin.Context) {
	title := c.Query("name")

	var courseID *uuid.UUID
	if raw := c.Query("id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			respondError(c, apperr.InvalidArgument("id must be a uuid"))
			return
		}
		courseID = &parsed
	}

	courses, err := h.courseService.Get(c.Request.Context(), title, courseID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, courses)
}

// Sign enrolls the caller in a course.
func (h *CourseHandler) Sign(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		respondError(c, apperr.Unauthorized("missing request identity"))
		return
	}

	var input struct {
		CourseID uuid.UUID `json:"course_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, err)
		return
	}

	progress, err := h.progressService.StartMaterial(
		c.Request.Context(), rd.UserID, input.CourseID, types.MaterialTypeCourse)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, progress)
}
