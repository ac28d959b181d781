package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/eduforge/eduforge-backend/internal/apperr"
)

func TestRespondErrorStatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		err        error
		wantStatus int
	}{
		{apperr.NotFound("missing"), http.StatusNotFound},
		{apperr.Conflict("duplicate"), http.StatusConflict},
		{apperr.InvalidArgument("bad input"), http.StatusBadRequest},
		{apperr.InvalidOperation("not allowed"), http.StatusBadRequest},
		{apperr.AttemptsExhausted("spent"), http.StatusConflict},
		{apperr.Unauthorized("who are you"), http.StatusUnauthorized},
		{apperr.UpstreamJudge("bad verdict"), http.StatusBadGateway},
		{apperr.Storage(errors.New("db down")), http.StatusInternalServerError},
		{errors.New("unclassified"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		recorder := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(recorder)

		respondError(c, tt.err)

		if recorder.Code != tt.wantStatus {
			t.Fatalf("respondError(%v) = %d, want %d", tt.err, recorder.Code, tt.wantStatus)
		}
	}
}

func TestRespondErrorHidesInternalDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)

	respondError(c, errors.New("password=hunter2 leaked into an error"))

	if recorder.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", recorder.Code, http.StatusInternalServerError)
	}
	if body := recorder.Body.String(); strings.Contains(body, "hunter2") {
		t.Fatalf("internal error leaked details: %s", body)
	}
}
