// Package httputil provides request and response helpers shared by the gin handlers.
package httputil

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/qrgate/internal/errors"
)

// ErrorResponse is the JSON body of every error answer.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type errorMapping struct {
	status int
	code   string
	// message replaces err.Error() when set, hiding internal detail.
	message string
}

var errorMappings = map[error]errorMapping{
	apperrors.ErrNotFound:     {status: http.StatusNotFound, code: "not_found", message: "The requested resource was not found"},
	apperrors.ErrConflict:     {status: http.StatusConflict, code: "conflict"},
	apperrors.ErrInvalidInput: {status: http.StatusUnprocessableEntity, code: "invalid_input"},
	apperrors.ErrUnauthorized: {status: http.StatusUnauthorized, code: "unauthorized", message: "Authentication is required"},
	apperrors.ErrUnavailable:  {status: http.StatusServiceUnavailable, code: "unavailable"},
}

var internalError = errorMapping{
	status:  http.StatusInternalServerError,
	code:    "internal_error",
	message: "An internal error occurred",
}

// HandleErrorGin answers with the status of err's class. Unclassified errors
// become 500 without exposing their text.
func HandleErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if err == nil {
		return
	}

	mapping, ok := errorMappings[apperrors.Class(err)]
	if !ok {
		mapping = internalError
	}

	message := mapping.message
	if message == "" {
		message = err.Error()
	}

	if logger != nil {
		level := slog.LevelWarn
		if mapping.status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(c, level, "request failed",
			slog.Int("status_code", mapping.status),
			slog.String("error_code", mapping.code),
			slog.Any("error", err),
		)
	}

	c.JSON(mapping.status, ErrorResponse{Error: mapping.code, Message: message})
}

// HandleBadRequestGin answers 400 for malformed JSON or query parameters.
func HandleBadRequestGin(c *gin.Context, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("bad request", slog.Any("error", err))
	}

	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "bad_request",
		Message: err.Error(),
	})
}

// HandleValidationErrorGin answers 422 for a request that failed validation.
func HandleValidationErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("validation failed", slog.Any("error", err))
	}

	c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
		Error:   "validation_error",
		Message: err.Error(),
	})
}
