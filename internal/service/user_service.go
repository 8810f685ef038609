package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/veridian-dev/auth-api/internal/domain"
	"github.com/veridian-dev/auth-api/internal/repository/ports"
)

// UserService covers the authenticated profile surface.
type UserService struct {
	users ports.UserRepository
}

func NewUserService(users ports.UserRepository) *UserService {
	return &UserService{users: users}
}

func (s *UserService) GetProfile(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, asAccountLookupErr(err)
	}
	return user, nil
}

// UpdateUsername enforces username uniqueness excluding the caller before
// writing.
func (s *UserService) UpdateUsername(ctx context.Context, id uuid.UUID, username string) (*domain.User, error) {
	username = strings.TrimSpace(username)

	taken, err := s.users.UsernameTaken(ctx, username, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrUsernameTaken
	}

	user, err := s.users.UpdateUsername(ctx, id, username)
	if err != nil {
		return nil, asAccountLookupErr(err)
	}
	return user, nil
}

func (s *UserService) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	if _, err := s.users.FindByID(ctx, id); err != nil {
		return asAccountLookupErr(err)
	}
	return s.users.Delete(ctx, id)
}
