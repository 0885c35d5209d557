package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"swipe-quiz/internal/quiz"
)

func writeServiceError(c *gin.Context, err error) {
	var validationErr *quiz.ValidationError
	switch {
	case errors.As(err, &validationErr):
		writeJSON(c, http.StatusBadRequest, errorResponse{Error: "invalid contact form", Fields: validationErr.Fields})
	case errors.Is(err, quiz.ErrSessionNotFound):
		writeJSON(c, http.StatusNotFound, errorResponse{Error: "session not found"})
	case errors.Is(err, quiz.ErrOutOfSequence):
		writeJSON(c, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, quiz.ErrSessionComplete):
		writeJSON(c, http.StatusConflict, errorResponse{Error: "all prompts already decided"})
	case errors.Is(err, quiz.ErrSessionIncomplete):
		writeJSON(c, http.StatusConflict, errorResponse{Error: "session has undecided prompts"})
	default:
		_ = c.Error(err)
		writeJSON(c, http.StatusInternalServerError, errorResponse{Error: "request failed"})
	}
}

func sessionID(c *gin.Context) string {
	return strings.TrimSpace(c.Param("session_id"))
}

func toSessionResponse(view quiz.SessionView) sessionResponse {
	return sessionResponse{
		SessionID: view.SessionID,
		Progress:  view.Progress,
	}
}

func writeJSON(c *gin.Context, statusCode int, payload any) {
	c.JSON(statusCode, payload)
}
