package service

import (
	"context"

	"voiceclone/internal/model"
	"voiceclone/internal/repository"
)

// UserService exposes read access to a user's own profile.
type UserService interface {
	GetProfile(ctx context.Context, username string) (*model.User, error)
}

type userService struct {
	repo repository.UserRepository
}

// NewUserService builds a UserService.
func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

func (s *userService) GetProfile(ctx context.Context, username string) (*model.User, error) {
	return s.repo.FindByUsername(ctx, username)
}
