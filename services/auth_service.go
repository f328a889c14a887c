package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fxgate/fxgate/domain"
	serrors "github.com/fxgate/fxgate/errors"
	"github.com/fxgate/fxgate/internal/federation"
	"github.com/fxgate/fxgate/internal/token"
)

// PasswordHasher abstracts the password hash scheme for the auth services.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hashedPassword, password string) error
}

// AuthService coordinates credential verification, OAuth code exchange,
// token issuance and revocation, and token validation against the ledger.
// Every protected operation funnels through Validate, so token-type
// confusion and replay of revoked tokens are rejected in one place.
type AuthService struct {
	users     domain.UserRepository
	ledger    domain.TokenLedger
	codec     *token.Codec
	hasher    PasswordHasher
	providers map[string]federation.Provider
}

// NewAuthService wires the orchestrator.
func NewAuthService(
	users domain.UserRepository,
	ledger domain.TokenLedger,
	codec *token.Codec,
	hasher PasswordHasher,
	providers ...federation.Provider,
) *AuthService {
	byName := make(map[string]federation.Provider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}
	return &AuthService{
		users:     users,
		ledger:    ledger,
		codec:     codec,
		hasher:    hasher,
		providers: byName,
	}
}

// Login verifies the username/password pair and rotates the subject's
// token pair: all previously issued tokens are revoked before the new
// pair is recorded.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.TokenPair, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if serrors.ErrUserNotFound.Is(err) {
			return nil, serrors.ErrUserNotFound.WithMessage("Provide another username")
		}
		return nil, err
	}
	if err := s.hasher.Verify(user.HashedPassword, password); err != nil {
		return nil, serrors.ErrPasswordIncorrect.WithMessage("Try another password")
	}

	return s.rotateTokens(ctx, user.Email)
}

// RedirectURL returns the named provider's authorization URL.
func (s *AuthService) RedirectURL(provider string) (string, error) {
	p, ok := s.providers[provider]
	if !ok {
		return "", fmt.Errorf("unknown identity provider %q", provider)
	}
	return p.RedirectURL(), nil
}

// OAuthLogin exchanges the authorization code with the named provider,
// creates a local account on first sight of the email, and rotates the
// subject's token pair.
func (s *AuthService) OAuthLogin(ctx context.Context, provider, code string) (*domain.TokenPair, error) {
	p, ok := s.providers[provider]
	if !ok {
		return nil, fmt.Errorf("unknown identity provider %q", provider)
	}
	identity, err := p.ExchangeCode(ctx, code)
	if err != nil {
		return nil, err
	}

	email := strings.ToLower(identity.Email)
	if _, err := s.users.FindByEmail(ctx, email); err != nil {
		if !serrors.ErrUserNotFound.Is(err) {
			return nil, err
		}
		newUser := &domain.User{
			Email:     email,
			FirstName: identity.FirstName,
			LastName:  identity.LastName,
		}
		if err := s.users.Create(ctx, newUser); err != nil {
			return nil, err
		}
	}

	return s.rotateTokens(ctx, email)
}

// Refresh rotates a pair. The presented access token is verified without
// expiry enforcement so an expired session can still prove its identity;
// the refresh token is verified in full. Both halves must pass revocation.
func (s *AuthService) Refresh(ctx context.Context, accessToken, refreshToken string) (*domain.TokenPair, error) {
	if _, err := s.Validate(ctx, accessToken, domain.AccessToken, false); err != nil {
		return nil, err
	}
	email, err := s.Validate(ctx, refreshToken, domain.RefreshToken, true)
	if err != nil {
		return nil, err
	}
	return s.rotateTokens(ctx, email)
}

// Logout revokes every live token for email.
func (s *AuthService) Logout(ctx context.Context, email string) error {
	return s.ledger.RevokeAll(ctx, email)
}

// Validate is the single choke point for bearer credentials: it verifies
// signature and (optionally) expiry, checks the declared type, checks the
// ledger for revocation and returns the subject email.
func (s *AuthService) Validate(ctx context.Context, tokenValue string, want domain.TokenType, verifyExp bool) (string, error) {
	claims, err := s.codec.Verify(tokenValue, verifyExp)
	if err != nil {
		return "", err
	}

	if claims.TokenType != string(want) {
		return "", serrors.ErrWrongTokenType.WithMessage("Expected %s token to be received", want)
	}

	revoked, email, err := s.ledger.IsRevoked(ctx, claims.ID)
	if err != nil {
		if serrors.ErrLedgerEntryNotFound.Is(err) {
			// A signed token the ledger never saw cannot be trusted.
			return "", serrors.ErrTokenRevoked.WithMessage("Authentication failed due to revoked token")
		}
		return "", err
	}
	if revoked {
		// Re-assert revocation across the subject's entries; idempotent,
		// and a race with a fresh issue is last-write-wins.
		if err := s.ledger.RevokeAll(ctx, email); err != nil {
			log.Warn().Err(err).Str("email", email).Msg("failed to re-propagate revocation")
		}
		return "", serrors.ErrTokenRevoked.WithMessage("Authentication failed due to revoked token")
	}

	if claims.Subject == "" {
		return "", serrors.ErrUserNotFound.WithMessage("User from token not found")
	}
	return claims.Subject, nil
}

// rotateTokens implements the revoke-all-before-issue policy. A concurrent
// Validate may transiently see a stale still-valid token between the two
// steps; that window is accepted.
func (s *AuthService) rotateTokens(ctx context.Context, email string) (*domain.TokenPair, error) {
	if err := s.ledger.RevokeAll(ctx, email); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	access, accessClaims, err := s.codec.Issue(email, domain.AccessToken)
	if err != nil {
		return nil, err
	}
	refresh, refreshClaims, err := s.codec.Issue(email, domain.RefreshToken)
	if err != nil {
		return nil, err
	}

	err = s.ledger.Record(ctx,
		&domain.LedgerEntry{ID: accessClaims.ID, TokenType: domain.AccessToken, Email: email, IssuedAt: now},
		&domain.LedgerEntry{ID: refreshClaims.ID, TokenType: domain.RefreshToken, Email: email, IssuedAt: now},
	)
	if err != nil {
		return nil, err
	}

	return &domain.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
