// Package federation talks to external identity providers. Each provider
// turns an authorization code into a verified {first name, last name, email}
// triple; everything after that (account creation, token issuance) belongs
// to the auth service.
package federation

import (
	"context"
	"net/http"
	"time"
)

// Identity is the standardized profile retrieved from a provider.
type Identity struct {
	FirstName string
	LastName  string
	Email     string
}

// Provider is one external OAuth2/OIDC identity provider.
type Provider interface {
	// Name returns the provider key ("google", "yandex").
	Name() string

	// RedirectURL returns the provider's authorization endpoint with
	// client id, redirect URI and scopes baked in.
	RedirectURL() string

	// ExchangeCode trades an authorization code for the user's identity.
	ExchangeCode(ctx context.Context, code string) (*Identity, error)
}

// httpClient bounds every provider round trip.
var httpClient = &http.Client{Timeout: 10 * time.Second}
