package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"customsdesk/internal/domain"
	"customsdesk/internal/extractor"
	"customsdesk/internal/middleware"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
// Client errors carry the wrapped message so callers can see which document failed.
func MapDomainError(err error) (status int, code, msg string) {
	var rle *extractor.RateLimitError
	switch {
	case errors.Is(err, domain.ErrMissingDocument):
		return http.StatusBadRequest, "MISSING_DOCUMENT", err.Error()
	case errors.Is(err, domain.ErrDuplicateDocument):
		return http.StatusBadRequest, "DUPLICATE_DOCUMENT", err.Error()
	case errors.Is(err, domain.ErrUnknownDocumentKind):
		return http.StatusBadRequest, "UNKNOWN_DOCUMENT_KIND", err.Error()
	case errors.Is(err, domain.ErrUnsupportedFileType):
		return http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE", "unsupported file type; allowed: pdf"
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum allowed size"
	case errors.Is(err, domain.ErrSchemaViolation):
		return http.StatusUnprocessableEntity, "SCHEMA_VIOLATION", err.Error()
	case errors.As(err, &rle):
		return http.StatusTooManyRequests, "RATE_LIMITED", "extraction service is rate limited; retry later"
	case errors.Is(err, domain.ErrExtractionTimeout):
		return http.StatusGatewayTimeout, "EXTRACTION_TIMEOUT", "extraction service did not answer in time"
	case errors.Is(err, domain.ErrExtractionFailed):
		return http.StatusBadGateway, "EXTRACTION_FAILED", "extraction service call failed"
	case errors.Is(err, domain.ErrStorageNotConfigured):
		return http.StatusServiceUnavailable, "STORAGE_NOT_CONFIGURED", "object storage is not configured"
	case errors.Is(err, domain.ErrUploadFailed):
		return http.StatusInternalServerError, "UPLOAD_FAILED", "report upload to storage failed"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)

	var rle *extractor.RateLimitError
	if errors.As(err, &rle) {
		c.Header("Retry-After", strconv.Itoa(int(rle.RetryAfter.Seconds())))
	}
	if status >= 500 {
		zap.L().Error("handler: request failed",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.Int("status", status),
			zap.Error(err))
	}
	RespondError(c, status, code, msg)
}
