package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fxgate/fxgate/domain"
	serrors "github.com/fxgate/fxgate/errors"
	"github.com/fxgate/fxgate/internal/auth"
	"github.com/fxgate/fxgate/internal/token"
)

func newAuthTestCodec(t *testing.T, accessTTL time.Duration) *token.Codec {
	t.Helper()
	codec, err := token.NewCodec(token.Options{
		Issuer:     "fxgate-test",
		SecretKey:  "auth-test-secret",
		Algorithm:  "HS256",
		AccessTTL:  accessTTL,
		RefreshTTL: time.Hour,
	})
	require.NoError(t, err)
	return codec
}

func TestLoginRotatesAndValidates(t *testing.T) {
	ctx := context.Background()
	users := new(mockUserRepository)
	ledger := new(mockTokenLedger)
	codec := newAuthTestCodec(t, 5*time.Minute)
	hasher := auth.NewBcryptPasswordHasher(4)

	hashed, err := hasher.Hash("s3cret")
	require.NoError(t, err)
	users.On("FindByUsername", ctx, "alice").Return(&domain.User{
		Username:       "alice",
		Email:          "alice@example.com",
		HashedPassword: hashed,
	}, nil)

	// Revoke-all happens before the new pair is recorded.
	ledger.On("RevokeAll", ctx, "alice@example.com").Return(nil)
	ledger.On("Record", ctx, mock.MatchedBy(func(entries []*domain.LedgerEntry) bool {
		return len(entries) == 2 &&
			entries[0].TokenType == domain.AccessToken &&
			entries[1].TokenType == domain.RefreshToken &&
			entries[0].Email == "alice@example.com"
	})).Return(nil)

	svc := NewAuthService(users, ledger, codec, hasher)
	pair, err := svc.Login(ctx, "alice", "s3cret")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	ledger.On("IsRevoked", ctx, mock.Anything).Return(false, "alice@example.com", nil)
	email, err := svc.Validate(ctx, pair.AccessToken, domain.AccessToken, true)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", email)

	ledger.AssertExpectations(t)
	users.AssertExpectations(t)
}

func TestLoginUnknownUser(t *testing.T) {
	ctx := context.Background()
	users := new(mockUserRepository)
	users.On("FindByUsername", ctx, "ghost").Return(nil, serrors.ErrUserNotFound)

	svc := NewAuthService(users, new(mockTokenLedger), newAuthTestCodec(t, time.Minute), auth.NewBcryptPasswordHasher(4))
	_, err := svc.Login(ctx, "ghost", "whatever")
	assert.ErrorIs(t, err, serrors.ErrUserNotFound)
}

func TestLoginWrongPassword(t *testing.T) {
	ctx := context.Background()
	users := new(mockUserRepository)
	hasher := auth.NewBcryptPasswordHasher(4)
	hashed, err := hasher.Hash("right")
	require.NoError(t, err)
	users.On("FindByUsername", ctx, "alice").Return(&domain.User{
		Username:       "alice",
		Email:          "alice@example.com",
		HashedPassword: hashed,
	}, nil)

	svc := NewAuthService(users, new(mockTokenLedger), newAuthTestCodec(t, time.Minute), hasher)
	_, err = svc.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, serrors.ErrPasswordIncorrect)
}

func TestValidateRejectsWrongType(t *testing.T) {
	ctx := context.Background()
	codec := newAuthTestCodec(t, time.Minute)
	svc := NewAuthService(new(mockUserRepository), new(mockTokenLedger), codec, auth.NewBcryptPasswordHasher(4))

	refresh, _, err := codec.Issue("alice@example.com", domain.RefreshToken)
	require.NoError(t, err)

	_, err = svc.Validate(ctx, refresh, domain.AccessToken, true)
	assert.ErrorIs(t, err, serrors.ErrWrongTokenType)
}

func TestValidateUnknownJTIFailsClosed(t *testing.T) {
	ctx := context.Background()
	codec := newAuthTestCodec(t, time.Minute)
	ledger := new(mockTokenLedger)
	ledger.On("IsRevoked", ctx, mock.Anything).Return(false, "", serrors.ErrLedgerEntryNotFound)

	svc := NewAuthService(new(mockUserRepository), ledger, codec, auth.NewBcryptPasswordHasher(4))
	access, _, err := codec.Issue("alice@example.com", domain.AccessToken)
	require.NoError(t, err)

	_, err = svc.Validate(ctx, access, domain.AccessToken, true)
	assert.ErrorIs(t, err, serrors.ErrTokenRevoked)
}

func TestValidateRevokedRepropagates(t *testing.T) {
	ctx := context.Background()
	codec := newAuthTestCodec(t, time.Minute)
	ledger := new(mockTokenLedger)
	ledger.On("IsRevoked", ctx, mock.Anything).Return(true, "alice@example.com", nil)
	ledger.On("RevokeAll", ctx, "alice@example.com").Return(nil).Once()

	svc := NewAuthService(new(mockUserRepository), ledger, codec, auth.NewBcryptPasswordHasher(4))
	access, _, err := codec.Issue("alice@example.com", domain.AccessToken)
	require.NoError(t, err)

	_, err = svc.Validate(ctx, access, domain.AccessToken, true)
	assert.ErrorIs(t, err, serrors.ErrTokenRevoked)
	ledger.AssertExpectations(t)
}

func TestValidateExpiredAccessHintsRefresh(t *testing.T) {
	ctx := context.Background()
	codec := newAuthTestCodec(t, -time.Minute)
	svc := NewAuthService(new(mockUserRepository), new(mockTokenLedger), codec, auth.NewBcryptPasswordHasher(4))

	access, _, err := codec.Issue("alice@example.com", domain.AccessToken)
	require.NoError(t, err)

	_, err = svc.Validate(ctx, access, domain.AccessToken, true)
	require.ErrorIs(t, err, serrors.ErrTokenExpired)
	var authErr *serrors.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Contains(t, authErr.Message, "/auth/refresh_tokens")
}

func TestRefreshAcceptsExpiredAccess(t *testing.T) {
	ctx := context.Background()
	codec := newAuthTestCodec(t, -time.Minute)
	ledger := new(mockTokenLedger)
	ledger.On("IsRevoked", ctx, mock.Anything).Return(false, "alice@example.com", nil)
	ledger.On("RevokeAll", ctx, "alice@example.com").Return(nil)
	ledger.On("Record", ctx, mock.Anything).Return(nil)

	svc := NewAuthService(new(mockUserRepository), ledger, codec, auth.NewBcryptPasswordHasher(4))
	access, _, err := codec.Issue("alice@example.com", domain.AccessToken)
	require.NoError(t, err)
	refresh, _, err := codec.Issue("alice@example.com", domain.RefreshToken)
	require.NoError(t, err)

	pair, err := svc.Refresh(ctx, access, refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
}

func TestRefreshRejectsSwappedTokens(t *testing.T) {
	ctx := context.Background()
	codec := newAuthTestCodec(t, time.Minute)
	ledger := new(mockTokenLedger)
	ledger.On("IsRevoked", ctx, mock.Anything).Return(false, "alice@example.com", nil).Maybe()

	svc := NewAuthService(new(mockUserRepository), ledger, codec, auth.NewBcryptPasswordHasher(4))
	access, _, err := codec.Issue("alice@example.com", domain.AccessToken)
	require.NoError(t, err)
	refresh, _, err := codec.Issue("alice@example.com", domain.RefreshToken)
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, refresh, access)
	assert.ErrorIs(t, err, serrors.ErrWrongTokenType)
}

func TestLogoutRevokesAll(t *testing.T) {
	ctx := context.Background()
	ledger := new(mockTokenLedger)
	ledger.On("RevokeAll", ctx, "alice@example.com").Return(nil).Once()

	svc := NewAuthService(new(mockUserRepository), ledger, newAuthTestCodec(t, time.Minute), auth.NewBcryptPasswordHasher(4))
	require.NoError(t, svc.Logout(ctx, "alice@example.com"))
	ledger.AssertExpectations(t)
}
