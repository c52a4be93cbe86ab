package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToHTTP(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantDetail string
	}{
		{
			name:       "duplicate user",
			err:        ErrUserAlreadyExists,
			wantStatus: http.StatusBadRequest,
			wantCode:   "USER_ALREADY_EXISTS",
			wantDetail: "User already exists",
		},
		{
			name:       "bad credentials",
			err:        ErrInvalidCredentials,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_CREDENTIALS",
			wantDetail: "Incorrect username or password",
		},
		{
			name:       "wrapped unauthorized",
			err:        fmt.Errorf("parse token: %w", ErrUnauthorized),
			wantStatus: http.StatusUnauthorized,
			wantCode:   "UNAUTHORIZED",
			wantDetail: "Could not validate credentials",
		},
		{
			name:       "insufficient credits keeps suffix",
			err:        fmt.Errorf("%w to use TTS", ErrInsufficientCredits),
			wantStatus: http.StatusPaymentRequired,
			wantCode:   "INSUFFICIENT_CREDITS",
			wantDetail: "You don't have enough credits to use TTS",
		},
		{
			name:       "upstream status relayed",
			err:        &UpstreamError{StatusCode: http.StatusTooManyRequests, Body: `{"message":"slow down"}`},
			wantStatus: http.StatusTooManyRequests,
			wantCode:   "UPSTREAM_ERROR",
			wantDetail: `Error from Fish Audio API: {"message":"slow down"}`,
		},
		{
			name:       "upstream redirect becomes bad gateway",
			err:        &UpstreamError{StatusCode: http.StatusFound, Body: ""},
			wantStatus: http.StatusBadGateway,
			wantCode:   "UPSTREAM_ERROR",
			wantDetail: "Error from Fish Audio API: ",
		},
		{
			name:       "transport",
			err:        fmt.Errorf("list models: %w", &TransportError{Err: errors.New("connection refused")}),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "REQUEST_ERROR",
			wantDetail: "Request error: connection refused",
		},
		{
			name:       "password over bcrypt limit",
			err:        fmt.Errorf("hash password: %w", ErrPasswordTooLong),
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
			wantDetail: "password must be at most 72 bytes",
		},
		{
			name:       "accepted but unreadable reply",
			err:        fmt.Errorf("%w: reply is not JSON", ErrMalformedUpstreamReply),
			wantStatus: http.StatusBadGateway,
			wantCode:   "UPSTREAM_ERROR",
			wantDetail: "unreadable reply from Fish Audio API",
		},
		{
			name:       "unknown",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_ERROR",
			wantDetail: "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpErr := MapErrorToHTTP(tt.err)
			assert.Equal(t, tt.wantStatus, httpErr.StatusCode)
			assert.Equal(t, ErrorResponse{Detail: tt.wantDetail, Code: tt.wantCode}, httpErr.ToErrorResponse())
		})
	}
}
