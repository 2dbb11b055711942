package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/orgtask-api/internal/logging"
)

// Error codes
const (
	// Authentication errors
	ErrCodeUnauthorized = "UNAUTHORIZED"

	// Authorization errors
	ErrCodeForbidden = "FORBIDDEN"

	// Validation errors
	ErrCodeInvalidInput = "INVALID_INPUT"

	// Resource errors
	ErrCodeNotFound = "NOT_FOUND"
	ErrCodeConflict = "CONFLICT"

	// Service errors
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// Kind classifies a domain rule violation.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
)

// Error is a foreseeable domain rule violation. Services return it as-is and
// handlers translate it into the response envelope.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Status returns the HTTP style status code for the error kind.
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Code returns the machine readable error code for the error kind.
func (e *Error) Code() string {
	switch e.Kind {
	case KindValidation:
		return ErrCodeInvalidInput
	case KindUnauthorized:
		return ErrCodeUnauthorized
	case KindForbidden:
		return ErrCodeForbidden
	case KindNotFound:
		return ErrCodeNotFound
	case KindConflict:
		return ErrCodeConflict
	default:
		return ErrCodeInternalError
	}
}

func newError(kind Kind, format string, args ...any) *Error {
	if len(args) == 0 {
		return &Error{Kind: kind, Message: format}
	}
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func BadRequest(format string, args ...any) *Error {
	return newError(KindValidation, format, args...)
}

func Unauthorized(format string, args ...any) *Error {
	return newError(KindUnauthorized, format, args...)
}

func Forbidden(format string, args ...any) *Error {
	return newError(KindForbidden, format, args...)
}

func NotFound(format string, args ...any) *Error {
	return newError(KindNotFound, format, args...)
}

func Conflict(format string, args ...any) *Error {
	return newError(KindConflict, format, args...)
}

// StatusOf maps any error to a status code. Errors that are not domain errors
// are unexpected and map to 500.
func StatusOf(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Status()
	}
	return http.StatusInternalServerError
}

// APIError represents the error form of the response envelope
type APIError struct {
	Status  int         `json:"status"`
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// NewAPIError creates a new APIError
func NewAPIError(status int, code, message string) *APIError {
	return &APIError{
		Status:  status,
		Code:    code,
		Message: message,
	}
}

// RespondWithError sends an error response
func RespondWithError(c *gin.Context, err *APIError) {
	c.JSON(err.Status, err)
}

// Respond sends a success envelope. Payload keys are merged next to status
// and message.
func Respond(c *gin.Context, status int, message string, payload gin.H) {
	body := gin.H{
		"status":  status,
		"message": message,
	}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(status, body)
}

// HandleError writes the envelope for err. Domain errors keep their message;
// anything else is logged and reported as a generic internal error.
func HandleError(c *gin.Context, err error) {
	var domainErr *Error
	if errors.As(err, &domainErr) && domainErr.Kind != KindInternal {
		RespondWithError(c, NewAPIError(domainErr.Status(), domainErr.Code(), domainErr.Message))
		return
	}

	logging.Logger.WithFields(logrus.Fields{
		"method": c.Request.Method,
		"path":   c.FullPath(),
	}).WithError(err).Error("unexpected error")
	InternalError(c, "")
}

// Helper functions for common error responses

// Unauthorized sends a 401 response
func RespondUnauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Authentication required"
	}
	RespondWithError(c, NewAPIError(http.StatusUnauthorized, ErrCodeUnauthorized, message))
}

// RespondForbidden sends a 403 response
func RespondForbidden(c *gin.Context, message string) {
	if message == "" {
		message = "Access denied"
	}
	RespondWithError(c, NewAPIError(http.StatusForbidden, ErrCodeForbidden, message))
}

// RespondBadRequest sends a 400 response
func RespondBadRequest(c *gin.Context, message string) {
	if message == "" {
		message = "Invalid request"
	}
	RespondWithError(c, NewAPIError(http.StatusBadRequest, ErrCodeInvalidInput, message))
}

// InternalError sends a 500 response
func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = "Internal server error."
	}
	RespondWithError(c, NewAPIError(http.StatusInternalServerError, ErrCodeInternalError, message))
}
