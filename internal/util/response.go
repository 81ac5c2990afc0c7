package util

import (
	"net/http"

	"github.com/certifiedcode/memberguard/internal/errors"
	"github.com/certifiedcode/memberguard/internal/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ErrorResponse is the body of every failed API call. Error repeats Message
// because the dashboard reads `error`.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Field   string `json:"field,omitempty"`
	Details string `json:"details,omitempty"`
}

func newErrorResponse(e *errors.APIError) ErrorResponse {
	return ErrorResponse{
		Code:    string(e.Code),
		Message: e.Message,
		Error:   e.Message,
		Field:   e.Field,
		Details: e.Details,
	}
}

// RespondWithAPIError aborts the request with e rendered as JSON. Server
// faults log at error, client faults at warn.
func RespondWithAPIError(c *gin.Context, e *errors.APIError) {
	level := zapcore.WarnLevel
	if e.Status >= http.StatusInternalServerError {
		level = zapcore.ErrorLevel
	}
	if ce := logger.Log.Check(level, "API error"); ce != nil {
		ce.Write(
			zap.String("code", string(e.Code)),
			zap.String("message", e.Message),
			zap.String("field", e.Field),
			zap.String("details", e.Details),
			logger.WithStatus(e.Status),
			zap.String("path", c.FullPath()),
		)
	}

	c.AbortWithStatusJSON(e.Status, newErrorResponse(e))
}

func RespondUnauthorized(c *gin.Context, message string) {
	RespondWithAPIError(c, errors.Unauthorized(message))
}

func RespondBadRequest(c *gin.Context, message string) {
	RespondWithAPIError(c, errors.BadRequest(message))
}

// RespondInternalError hides the cause behind a generic message when none is given
func RespondInternalError(c *gin.Context, message string) {
	if message == "" {
		message = "internal server error"
	}
	RespondWithAPIError(c, errors.InternalError(message))
}
