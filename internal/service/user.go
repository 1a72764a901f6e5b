package service

import (
	"context"
	"fmt"

	"github.com/aliskhannn/prompt-study-bot/internal/domain/entities"
)

type UserService struct {
	repository UserRepository
	reset      ResetRepository
	clock      Clock
}

func NewUserService(repository UserRepository, reset ResetRepository, clock Clock) *UserService {
	return &UserService{repository: repository, reset: reset, clock: clock}
}

// EnsureUser registers the user on first contact and records activity otherwise.
func (s *UserService) EnsureUser(ctx context.Context, userID string) (bool, error) {
	created, err := s.repository.Save(ctx, entities.NewUser(userID, s.clock.Now()))
	if err != nil {
		return false, fmt.Errorf("ensure user: %w", err)
	}

	return created, nil
}

// List returns every registered user.
func (s *UserService) List(ctx context.Context) ([]*entities.User, error) {
	return s.repository.List(ctx)
}

// SetTier changes a user's tier on admin request.
func (s *UserService) SetTier(ctx context.Context, userID string, tier entities.Tier) error {
	if !tier.Valid() {
		return fmt.Errorf("%w: %q", entities.ErrUnknownTier, tier)
	}
	return s.repository.UpdateTier(ctx, userID, tier)
}

// Reset clears a user's learning history.
func (s *UserService) Reset(ctx context.Context, userID string) error {
	if _, err := s.repository.GetByID(ctx, userID); err != nil {
		return err
	}
	return s.reset.ResetUser(ctx, userID)
}
