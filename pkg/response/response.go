// Package response centralizes HTTP response shapes and helpers.
// Handlers rely on it to keep controllers thin and uniform.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/volleyball-scoreboard/internal/match"
	"github.com/maxviazov/volleyball-scoreboard/internal/repository"
	"github.com/maxviazov/volleyball-scoreboard/internal/service"
	"github.com/maxviazov/volleyball-scoreboard/internal/session"
)

// ErrorPayload is the canonical error envelope returned by the API.
type ErrorPayload struct {
	Error       string               `json:"error"`
	Message     string               `json:"message,omitempty"`
	FieldErrors []service.FieldError `json:"field_errors,omitempty"`
}

// MapError converts a domain / infrastructure error into an HTTP status and payload.
// Domain errors carry their message to the client; infrastructure errors do not.
func MapError(err error) (int, ErrorPayload) {
	if err == nil {
		return http.StatusOK, ErrorPayload{Error: "ok"}
	}

	if errors.Is(err, service.ErrInvalidInput) {
		return http.StatusBadRequest, ErrorPayload{
			Error:       "invalid_input",
			Message:     "one or more fields are invalid",
			FieldErrors: service.FieldErrors(err),
		}
	}

	switch {
	case errors.Is(err, match.ErrConfiguration):
		return http.StatusBadRequest, ErrorPayload{Error: "invalid_configuration", Message: err.Error()}
	case errors.Is(err, match.ErrUnknownPlayer):
		return http.StatusBadRequest, ErrorPayload{Error: "unknown_player", Message: err.Error()}
	case errors.Is(err, match.ErrInvalidAction):
		return http.StatusBadRequest, ErrorPayload{Error: "invalid_action", Message: err.Error()}
	case errors.Is(err, match.ErrInvalidState):
		return http.StatusConflict, ErrorPayload{Error: "invalid_state", Message: err.Error()}
	case errors.Is(err, service.ErrPersistence):
		return http.StatusInternalServerError, ErrorPayload{Error: "persistence_failed", Message: "match could not be stored; resubmit the final action"}
	case errors.Is(err, session.ErrBusy):
		return http.StatusConflict, ErrorPayload{Error: "session_busy", Message: "another update of this session is in progress; retry"}
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound, ErrorPayload{Error: "session_not_found"}
	case errors.Is(err, service.ErrNoLiveMatch):
		return http.StatusNotFound, ErrorPayload{Error: "no_live_match"}
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, ErrorPayload{Error: "not_found"}
	case errors.Is(err, repository.ErrAlreadyExists):
		return http.StatusConflict, ErrorPayload{Error: "already_exists"}
	case errors.Is(err, repository.ErrConflict):
		return http.StatusConflict, ErrorPayload{Error: "conflict"}
	default:
		return http.StatusInternalServerError, ErrorPayload{Error: "internal_error"}
	}
}

// WriteError writes an error response and aborts the context.
func WriteError(c *gin.Context, err error) {
	status, payload := MapError(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, payload)
}

// WriteData writes a successful JSON response.
func WriteData(c *gin.Context, status int, data any) {
	c.JSON(status, data)
}
