package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	apperrors "voiceclone/internal/errors"
	"voiceclone/internal/repository"
)

// Charge is one reserved credit. Exempt charges belong to admins and never
// touch the balance.
type Charge struct {
	Username string
	Exempt   bool
}

// CreditService meters billable actions against the per-user balance.
type CreditService interface {
	HasCredits(ctx context.Context, username string) (bool, error)
	IsAdmin(ctx context.Context, username string) (bool, error)
	// Decrement takes one credit or fails with ErrInsufficientCredits.
	Decrement(ctx context.Context, username string) error
	// Reserve takes one credit up front for a non-admin user.
	Reserve(ctx context.Context, username string) (*Charge, error)
	// Refund gives a reserved credit back after a failed billable action.
	Refund(ctx context.Context, charge *Charge) error
}

type creditService struct {
	repo   repository.UserRepository
	logger *zap.Logger
}

// NewCreditService creates a new credit ledger.
func NewCreditService(repo repository.UserRepository, logger *zap.Logger) CreditService {
	return &creditService{repo: repo, logger: logger}
}

func (s *creditService) HasCredits(ctx context.Context, username string) (bool, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return false, fmt.Errorf("load credits: %w", err)
	}
	return user.Credits > 0, nil
}

func (s *creditService) IsAdmin(ctx context.Context, username string) (bool, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return false, fmt.Errorf("load admin flag: %w", err)
	}
	return user.IsAdmin, nil
}

func (s *creditService) Decrement(ctx context.Context, username string) error {
	taken, err := s.repo.DecrementCredits(ctx, username)
	if err != nil {
		return fmt.Errorf("decrement credits: %w", err)
	}
	if !taken {
		return apperrors.ErrInsufficientCredits
	}
	return nil
}

func (s *creditService) Reserve(ctx context.Context, username string) (*Charge, error) {
	admin, err := s.IsAdmin(ctx, username)
	if err != nil {
		return nil, err
	}
	if admin {
		return &Charge{Username: username, Exempt: true}, nil
	}

	if err := s.Decrement(ctx, username); err != nil {
		return nil, err
	}
	s.logger.Debug("credit reserved", zap.String("username", username))
	return &Charge{Username: username}, nil
}

func (s *creditService) Refund(ctx context.Context, charge *Charge) error {
	if charge == nil || charge.Exempt {
		return nil
	}
	if err := s.repo.IncrementCredits(ctx, charge.Username); err != nil {
		s.logger.Error("credit refund failed", zap.String("username", charge.Username), zap.Error(err))
		return fmt.Errorf("refund credit: %w", err)
	}
	s.logger.Debug("credit refunded", zap.String("username", charge.Username))
	return nil
}
