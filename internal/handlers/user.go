package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eduforge/eduforge-backend/internal/apperr"
	"github.com/eduforge/eduforge-backend/internal/logger"
	"github.com/eduforge/eduforge-backend/internal/requestdata"
	"github.com/eduforge/eduforge-backend/internal/services"
)

type UserHandler struct {
	userService services.UserService
	log         *logger.Logger
}

func NewUserHandler(userService services.UserService, baseLog *logger.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		log:         baseLog.With("handler", "UserHandler"),
	}
}

func (h *UserHandler) Me(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		respondError(c, apperr.Unauthorized("missing request identity"))
		return
	}

	user, err := h.userService.GetMe(c.Request.Context(), rd.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, user)
}

func (h *UserHandler) Stats(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		respondError(c, apperr.Unauthorized("missing request identity"))
		return
	}

	stats, err := h.userService.GetStats(c.Request.Context(), rd.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, stats)
}

func (h *UserHandler) MyBadges(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		respondError(c, apperr.Unauthorized("missing request identity"))
		return
	}

	badges, err := h.userService.MyBadges(c.Request.Context(), rd.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, badges)
}
