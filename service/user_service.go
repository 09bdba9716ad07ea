package service

import (
	"context"
	"fmt"

	"nightfall/models"
	"nightfall/solana"
)

type userService struct {
	uowFactory UnitOfWorkFactory
}

// NewUserService creates a new user service
func NewUserService(uowFactory UnitOfWorkFactory) UserService {
	return &userService{
		uowFactory: uowFactory,
	}
}

// GetOrCreateUser retrieves an existing user or creates one with zero balance
func (s *userService) GetOrCreateUser(ctx context.Context, wallet string) (*models.User, error) {
	if err := solana.ValidateAddress(wallet); err != nil {
		return nil, fmt.Errorf("invalid wallet: %w", err)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	user, err := uow.UserRepository().GetOrCreate(ctx, wallet)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return user, nil
}

// GetUser retrieves a user, returning nil when absent
func (s *userService) GetUser(ctx context.Context, wallet string) (*models.User, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	return uow.UserRepository().GetByWallet(ctx, wallet)
}
