package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eduforge/eduforge-backend/internal/apperr"
)

// respondError maps an application error kind onto an HTTP status and a
// stable machine-readable code.
func respondError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)

	status := http.StatusInternalServerError
	code := "internal"
	switch kind {
	case apperr.KindNotFound:
		status, code = http.StatusNotFound, "not_found"
	case apperr.KindConflict:
		status, code = http.StatusConflict, "conflict"
	case apperr.KindInvalidArgument:
		status, code = http.StatusBadRequest, "invalid_argument"
	case apperr.KindInvalidOperation:
		status, code = http.StatusBadRequest, "invalid_operation"
	case apperr.KindAttemptsExhausted:
		status, code = http.StatusConflict, "attempts_exhausted"
	case apperr.KindUnauthorized:
		status, code = http.StatusUnauthorized, "unauthorized"
	case apperr.KindUpstreamJudge:
		status, code = http.StatusBadGateway, "upstream_judge"
	case apperr.KindStorage:
		status, code = http.StatusInternalServerError, "storage"
	}

	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal error"
	}
	c.JSON(status, gin.H{"error": gin.H{"code": code, "message": message}})
}

func respondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"data": data})
}

func respondBadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "invalid_argument", "message": err.Error()}})
}
