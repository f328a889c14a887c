package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fxgate/fxgate/domain"
	serrors "github.com/fxgate/fxgate/errors"
	"github.com/fxgate/fxgate/internal/auth"
)

func TestRegisterCreatesAccount(t *testing.T) {
	ctx := context.Background()
	users := new(mockUserRepository)
	users.On("CountConflicts", ctx, "alice", "alice@example.com").Return(int64(0), int64(0), nil)
	users.On("Create", ctx, mock.MatchedBy(func(u *domain.User) bool {
		return u.Username == "alice" && u.Email == "alice@example.com" && u.HashedPassword != ""
	})).Return(nil)

	svc := NewUserService(users, auth.NewBcryptPasswordHasher(4))
	user, err := svc.Register(ctx, "alice", "Alice@Example.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEqual(t, "s3cret", user.HashedPassword)
	users.AssertExpectations(t)
}

func TestRegisterNamesClashingField(t *testing.T) {
	tests := []struct {
		name      string
		usernames int64
		emails    int64
		field     string
	}{
		{"username taken", 1, 0, "username"},
		{"email taken", 0, 1, "email"},
		{"both taken", 1, 1, "username and email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			users := new(mockUserRepository)
			users.On("CountConflicts", ctx, "alice", "alice@example.com").
				Return(tt.usernames, tt.emails, nil)

			svc := NewUserService(users, auth.NewBcryptPasswordHasher(4))
			_, err := svc.Register(ctx, "alice", "alice@example.com", "s3cret")
			require.ErrorIs(t, err, serrors.ErrUserExists)

			var authErr *serrors.AuthError
			require.ErrorAs(t, err, &authErr)
			assert.Equal(t,
				"User with such "+tt.field+" is already registered. Try another "+tt.field,
				authErr.Message)
		})
	}
}

func TestProfile(t *testing.T) {
	ctx := context.Background()
	users := new(mockUserRepository)
	users.On("FindByEmail", ctx, "alice@example.com").Return(&domain.User{Email: "alice@example.com"}, nil)

	svc := NewUserService(users, auth.NewBcryptPasswordHasher(4))
	user, err := svc.Profile(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
}
