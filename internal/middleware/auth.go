package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/eduforge/eduforge-backend/internal/logger"
	"github.com/eduforge/eduforge-backend/internal/services"
)

// Auth validates the bearer token and attaches the caller's identity to
// the request context for downstream handlers.
func Auth(authService services.AuthService, baseLog *logger.Logger) gin.HandlerFunc {
	log := baseLog.With("middleware", "Auth")

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"code": "unauthorized", "message": "missing bearer token"},
			})
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")

		ctx, err := authService.SetContextFromToken(c.Request.Context(), token)
		if err != nil {
			log.Debug("token rejected", "error", err.Error())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"code": "unauthorized", "message": "invalid access token"},
			})
			return
		}

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
