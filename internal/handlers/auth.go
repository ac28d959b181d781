package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/eduforge/eduforge-backend/internal/apperr"
	"github.com/eduforge/eduforge-backend/internal/logger"
	"github.com/eduforge/eduforge-backend/internal/services"
)

type AuthHandler struct {
	authService services.AuthService
	log         *logger.Logger
}

func NewAuthHandler(authService services.AuthService, baseLog *logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		log:         baseLog.With("handler", "AuthHandler"),
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var input services.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, err)
		return
	}

	user, pair, err := h.authService.Register(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, gin.H{"user": user, "tokens": pair})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var input services.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, err)
		return
	}

	user, pair, err := h.authService.Login(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"user": user, "tokens": pair})
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var input struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, err)
		return
	}

	pair, err := h.authService.Refresh(c.Request.Context(), input.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"tokens": pair})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		respondError(c, apperr.Unauthorized("missing bearer token"))
		return
	}

	if err := h.authService.Logout(c.Request.Context(), token); err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"logged_out": true})
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}
