package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthenticated is returned when no valid session accompanies a request.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden is returned when the caller is not the owner of the resource.
	ErrForbidden = errors.New("you do not have access to this resource")
	// ErrNoteNotFound is returned when a note id does not resolve.
	ErrNoteNotFound = errors.New("note not found")
	// ErrFileNotFound is returned when a stored file id does not resolve.
	ErrFileNotFound = errors.New("file not found")
	// ErrStorage is returned when the store is unreachable or rejected a write.
	ErrStorage = errors.New("storage error")
)

// Validation error codes for attachment and upload payloads.
const (
	CodeInvalidShape    = "INVALID_SHAPE"
	CodeTooManyImages   = "TOO_MANY_IMAGES"
	CodeInvalidImage    = "INVALID_IMAGE"
	CodeImageTooLarge   = "IMAGE_TOO_LARGE"
	CodeInvalidFileType = "INVALID_FILE_TYPE"
	CodeFileTooLarge    = "FILE_TOO_LARGE"
)

// ValidationError is a payload validation failure. Name carries the offending
// attachment's file name when one is known.
type ValidationError struct {
	Code    string
	Message string
	Name    string
}

func (e *ValidationError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Name)
	}
	return e.Message
}

// NewValidationError creates a validation error with the given code.
func NewValidationError(code, message, name string) *ValidationError {
	return &ValidationError{Code: code, Message: message, Name: name}
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return NewHTTPError(http.StatusBadRequest, vErr.Error(), vErr.Code)
	}

	switch {
	case errors.Is(err, ErrUnauthenticated):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "UNAUTHENTICATED")
	case errors.Is(err, ErrForbidden):
		return NewHTTPError(http.StatusForbidden, err.Error(), "FORBIDDEN")
	case errors.Is(err, ErrNoteNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "NOTE_NOT_FOUND")
	case errors.Is(err, ErrFileNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "FILE_NOT_FOUND")
	case errors.Is(err, ErrStorage):
		return NewHTTPError(http.StatusInternalServerError, err.Error(), "STORAGE_ERROR")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
