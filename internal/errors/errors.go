package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUserNotFound is returned when no user matches the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserAlreadyExists is returned when signing up with a taken username.
	ErrUserAlreadyExists = errors.New("User already exists")
	// ErrInvalidCredentials is returned when username or password is incorrect.
	ErrInvalidCredentials = errors.New("Incorrect username or password")
	// ErrUnauthorized is returned when a bearer token is missing, invalid or expired.
	ErrUnauthorized = errors.New("Could not validate credentials")
	// ErrInsufficientCredits is returned when a non-admin user has no credits left.
	ErrInsufficientCredits = errors.New("You don't have enough credits")
	// ErrInvalidModelVariant is returned for an unknown TTS model variant.
	ErrInvalidModelVariant = errors.New("invalid tts model")
	// ErrPasswordTooLong is returned for passwords bcrypt cannot hash.
	ErrPasswordTooLong = errors.New("password must be at most 72 bytes")
	// ErrMalformedUpstreamReply is returned when the provider accepted a
	// request but its reply could not be read.
	ErrMalformedUpstreamReply = errors.New("unreadable reply from Fish Audio API")
)

// UpstreamError is returned when the voice provider answers with a non-success status.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("Error from Fish Audio API: %s", e.Body)
}

// TransportError is returned when the voice provider could not be reached.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("Request error: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Detail string `json:"detail"`
	Code   string `json:"code,omitempty"`
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
		Detail: e.Message,
		Code:   e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		status := upstream.StatusCode
		if status < http.StatusBadRequest {
			status = http.StatusBadGateway
		}
		return NewHTTPError(status, upstream.Error(), "UPSTREAM_ERROR")
	}

	var transport *TransportError
	if errors.As(err, &transport) {
		return NewHTTPError(http.StatusInternalServerError, transport.Error(), "REQUEST_ERROR")
	}

	switch {
	case errors.Is(err, ErrUserAlreadyExists):
		return NewHTTPError(http.StatusBadRequest, ErrUserAlreadyExists.Error(), "USER_ALREADY_EXISTS")
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusBadRequest, ErrInvalidCredentials.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrUnauthorized):
		return NewHTTPError(http.StatusUnauthorized, ErrUnauthorized.Error(), "UNAUTHORIZED")
	case errors.Is(err, ErrInsufficientCredits):
		// Keeps the operation suffix, e.g. "... to use TTS".
		return NewHTTPError(http.StatusPaymentRequired, err.Error(), "INSUFFICIENT_CREDITS")
	case errors.Is(err, ErrInvalidModelVariant):
		return NewHTTPError(http.StatusUnprocessableEntity, err.Error(), "INVALID_TTS_MODEL")
	case errors.Is(err, ErrPasswordTooLong):
		return NewHTTPError(http.StatusBadRequest, ErrPasswordTooLong.Error(), "VALIDATION_ERROR")
	case errors.Is(err, ErrMalformedUpstreamReply):
		return NewHTTPError(http.StatusBadGateway, ErrMalformedUpstreamReply.Error(), "UPSTREAM_ERROR")
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, ErrUserNotFound.Error(), "USER_NOT_FOUND")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
