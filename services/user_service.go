package services

import (
	"context"
	"strings"

	"github.com/fxgate/fxgate/domain"
	serrors "github.com/fxgate/fxgate/errors"
)

// UserService owns account registration and profile reads.
type UserService struct {
	users  domain.UserRepository
	hasher PasswordHasher
}

// NewUserService wires the service.
func NewUserService(users domain.UserRepository, hasher PasswordHasher) *UserService {
	return &UserService{users: users, hasher: hasher}
}

// Register creates a local account. The duplicate check names the clashing
// field so the client can tell the user which one to change.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	email = strings.ToLower(email)

	usernames, emails, err := s.users.CountConflicts(ctx, username, email)
	if err != nil {
		return nil, err
	}
	var field string
	switch {
	case usernames > 0 && emails > 0:
		field = "username and email"
	case usernames > 0:
		field = "username"
	case emails > 0:
		field = "email"
	}
	if field != "" {
		return nil, serrors.UserExists(field)
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:       username,
		Email:          email,
		HashedPassword: hashed,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Profile returns the account for email.
func (s *UserService) Profile(ctx context.Context, email string) (*domain.User, error) {
	return s.users.FindByEmail(ctx, email)
}
