package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"voiceclone/internal/auth"
	apperrors "voiceclone/internal/errors"
	"voiceclone/internal/model"
	"voiceclone/internal/repository"
)

// SignupInput carries the fields of a new account.
type SignupInput struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
}

// AuthService handles authentication operations.
type AuthService interface {
	Signup(ctx context.Context, in SignupInput) error
	Login(ctx context.Context, username, password string) (accessToken string, err error)
	Authenticate(token string) (*auth.Identity, error)
}

// TokenIssuer issues and validates access tokens.
type TokenIssuer interface {
	GenerateAccessToken(username string, userID uint) (string, error)
	ValidateToken(token string) (*auth.Identity, error)
}

type authService struct {
	userRepo      repository.UserRepository
	tokens        TokenIssuer
	signupCredits int
	logger        *zap.Logger
}

// NewAuthService creates a new authentication service. New accounts start
// with signupCredits credits.
func NewAuthService(userRepo repository.UserRepository, tokens TokenIssuer, signupCredits int, logger *zap.Logger) AuthService {
	return &authService{
		userRepo:      userRepo,
		tokens:        tokens,
		signupCredits: signupCredits,
		logger:        logger,
	}
}

// Signup creates a new non-admin user with a hashed password.
func (s *authService) Signup(ctx context.Context, in SignupInput) error {
	existing, err := s.userRepo.FindByUsername(ctx, in.Username)
	if err == nil && existing != nil {
		return apperrors.ErrUserAlreadyExists
	}
	if err != nil && !errors.Is(err, apperrors.ErrUserNotFound) {
		return fmt.Errorf("check user existence: %w", err)
	}

	hashedPassword, err := auth.HashPassword(in.Password)
	if err != nil {
		return err
	}

	user := &model.User{
		Username:     in.Username,
		PasswordHash: hashedPassword,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		IsAdmin:      false,
		Credits:      s.signupCredits,
	}

	// Create reports ErrUserAlreadyExists itself if a concurrent signup won.
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrUserAlreadyExists) {
			return err
		}
		return fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user signed up", zap.String("username", user.Username), zap.Uint("user_id", user.ID))
	return nil
}

// Login checks credentials and returns a signed access token.
func (s *authService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if errors.Is(err, apperrors.ErrUserNotFound) {
		return "", apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return "", fmt.Errorf("find user: %w", err)
	}

	ok, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		s.logger.Error("stored password hash is unusable", zap.String("username", username), zap.Error(err))
	}
	if !ok {
		return "", apperrors.ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateAccessToken(user.Username, user.ID)
	if err != nil {
		return "", fmt.Errorf("generate access token: %w", err)
	}
	return token, nil
}

// Authenticate validates a bearer token.
func (s *authService) Authenticate(token string) (*auth.Identity, error) {
	identity, err := s.tokens.ValidateToken(token)
	if err != nil {
		s.logger.Debug("token rejected", zap.Error(err))
		return nil, apperrors.ErrUnauthorized
	}
	return identity, nil
}
