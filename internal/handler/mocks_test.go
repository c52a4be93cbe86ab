package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"

	"voiceclone/internal/auth"
	"voiceclone/internal/fishaudio"
	"voiceclone/internal/model"
	"voiceclone/internal/service"
)

type testValidator struct {
	validator *validator.Validate
}

func (v *testValidator) Validate(i interface{}) error {
	return v.validator.Struct(i)
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = &testValidator{validator: validator.New()}
	return e
}

func withIdentity(c echo.Context, username string) {
	c.Set(IdentityContextKey, &auth.Identity{Username: username, UserID: 1})
}

func decodeRecorder(rec *httptest.ResponseRecorder, dst any) error {
	return json.Unmarshal(rec.Body.Bytes(), dst)
}

// MockAuthService is a mock implementation of service.AuthService.
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Signup(ctx context.Context, in service.SignupInput) error {
	args := m.Called(ctx, in)
	return args.Error(0)
}

func (m *MockAuthService) Login(ctx context.Context, username, password string) (string, error) {
	args := m.Called(ctx, username, password)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) Authenticate(token string) (*auth.Identity, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Identity), args.Error(1)
}

// MockUserService is a mock implementation of service.UserService.
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetProfile(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

// MockVoiceService is a mock implementation of service.VoiceService.
type MockVoiceService struct {
	mock.Mock
}

func (m *MockVoiceService) ListModels(ctx context.Context, username string) (map[string]string, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

func (m *MockVoiceService) CreateModel(ctx context.Context, username string, sample service.VoiceSample, opts service.ModelOptions) (json.RawMessage, error) {
	args := m.Called(ctx, username, sample, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

func (m *MockVoiceService) TextToSpeech(ctx context.Context, username string, in service.SpeechInput) (*fishaudio.Speech, error) {
	args := m.Called(ctx, username, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fishaudio.Speech), args.Error(1)
}
