package api

import (
	stderrors "errors"
	"net/http"

	"agroalerta.app/internal/ports"
	"agroalerta.app/pkg/errors"
	"github.com/gin-gonic/gin"
)

// ErrorResponse represents an error message structure for API responses
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// handleError maps application error types to HTTP status codes. Infrastructure
// details never leak to clients; validation and token messages do, they are
// written for the caller.
func (s *HTTPServerAdapter) handleError(c *gin.Context, err error) {
	errType := errors.TypeOf(err)

	var statusCode int
	message := "Internal server error"

	switch errType {
	case errors.ErrorTypeValidation, errors.ErrorTypeLocationInvalid, errors.ErrorTypeToken:
		statusCode = http.StatusBadRequest
		message = appMessage(err)
	case errors.ErrorTypeNotFound:
		statusCode = http.StatusNotFound
		message = appMessage(err)
	case errors.ErrorTypeAlreadyExists:
		statusCode = http.StatusConflict
		message = appMessage(err)
	case errors.ErrorTypePermissionDenied:
		statusCode = http.StatusForbidden
		message = appMessage(err)
	case errors.ErrorTypeRateLimited:
		statusCode = http.StatusTooManyRequests
		message = "Provider rate limit exceeded"
	case errors.ErrorTypeTimeout:
		statusCode = http.StatusGatewayTimeout
		message = "Upstream request timed out"
	case errors.ErrorTypeNetwork, errors.ErrorTypeProvider, errors.ErrorTypePositionUnavailable:
		statusCode = http.StatusServiceUnavailable
		message = "External service unavailable"
	case errors.ErrorTypeEmail:
		statusCode = http.StatusServiceUnavailable
		message = "Unable to send email"
	default:
		statusCode = http.StatusInternalServerError
	}

	s.logger.Error("Request failed",
		ports.F("status", statusCode),
		ports.F("type", errType.String()),
		ports.F("error", err.Error()))

	c.JSON(statusCode, ErrorResponse{Error: message, Code: errType.String()})
}

// appMessage extracts the caller-facing message from an AppError chain
func appMessage(err error) string {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
