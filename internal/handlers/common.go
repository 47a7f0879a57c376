package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/binhtph/quiz-app/internal/services"
	"github.com/binhtph/quiz-app/internal/utils"
	"github.com/gin-gonic/gin"
)

// ===== COMMON RESPONSE STRUCTURES =====

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	Code    string `json:"code,omitempty"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ===== BASE HANDLER STRUCT =====

// BaseHandler provides common logging functionality for all handlers
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{
		logger: logger,
	}
}

// LogRequest logs incoming HTTP requests with context information
func (h *BaseHandler) LogRequest(c *gin.Context, message string, additionalFields ...any) {
	fields := []any{
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"remote_addr", c.ClientIP(),
	}
	fields = append(fields, additionalFields...)

	utils.GetLoggerFromContext(c, h.logger).Debug(message, fields...)
}

// LogError logs error details with context information
func (h *BaseHandler) LogError(c *gin.Context, err error, message string, additionalFields ...any) {
	fields := []any{
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	}
	fields = append(fields, additionalFields...)

	utils.GetLoggerFromContext(c, h.logger).LogError(err, message, fields...)
}

func (h *BaseHandler) LogWarn(c *gin.Context, message string, additionalFields ...any) {
	fields := []any{
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	}
	fields = append(fields, additionalFields...)

	utils.GetLoggerFromContext(c, h.logger).Warn(message, fields...)
}

// RespondWithError sends a consistent error response and logs it
func (h *BaseHandler) RespondWithError(c *gin.Context, statusCode int, message string, err error, details ...any) {
	errorResp := ErrorResponse{
		Message: message,
	}
	if len(details) > 0 {
		errorResp.Details = details[0]
	}

	if err != nil && statusCode >= http.StatusInternalServerError {
		h.LogError(c, err, message, "status_code", statusCode)
	} else {
		h.LogWarn(c, message, "status_code", statusCode)
	}

	c.JSON(statusCode, errorResp)
}

// BindJSON decodes the body into dest, answering 400 on failure.
func (h *BaseHandler) BindJSON(c *gin.Context, dest any) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return false
	}
	return true
}

// requestContext carries the request id into service logs.
func (h *BaseHandler) requestContext(c *gin.Context) context.Context {
	return services.WithRequestID(c.Request.Context(), utils.RequestID(c))
}

// handleServiceError maps service error classes to HTTP status codes.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		h.RespondWithError(c, http.StatusBadRequest, "Validation failed", err, validationErrors)
		return
	}

	var businessRuleError *services.BusinessRuleError
	if errors.As(err, &businessRuleError) {
		h.RespondWithError(c, http.StatusUnprocessableEntity, businessRuleError.Message, err, map[string]any{
			"rule":    businessRuleError.Rule,
			"context": businessRuleError.Context,
		})
		return
	}

	switch {
	case services.IsNotFound(err):
		h.RespondWithError(c, http.StatusNotFound, err.Error(), err)
	case services.IsUnauthorized(err):
		h.RespondWithError(c, http.StatusUnauthorized, err.Error(), err)
	case services.IsValidation(err):
		h.RespondWithError(c, http.StatusBadRequest, err.Error(), err)
	case services.IsBusinessRule(err):
		h.RespondWithError(c, http.StatusUnprocessableEntity, err.Error(), err)
	case services.IsConflict(err):
		h.RespondWithError(c, http.StatusConflict, err.Error(), err)
	default:
		h.RespondWithError(c, http.StatusInternalServerError, "Internal server error", err)
	}
}
