package federation

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
	googleoauth2 "golang.org/x/oauth2/google"

	serrors "github.com/fxgate/fxgate/errors"
)

// GoogleCertsURL serves Google's current ID-token signing keys.
var GoogleCertsURL = "https://www.googleapis.com/oauth2/v3/certs"

// googleIssuers are the accepted values of the ID token's iss claim.
var googleIssuers = []string{"https://accounts.google.com", "accounts.google.com"}

// GoogleProvider authenticates users through Google's OIDC flow. The
// returned ID token is verified against Google's published signing keys,
// the configured client id (audience) and the known issuer strings.
type GoogleProvider struct {
	oauth *oauth2.Config
}

// NewGoogleProvider creates a GoogleProvider for one registered OAuth client.
func NewGoogleProvider(clientID, clientSecret, redirectURI string) *GoogleProvider {
	return &GoogleProvider{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint:     googleoauth2.Endpoint,
		},
	}
}

func (g *GoogleProvider) Name() string { return "google" }

// RedirectURL returns Google's consent screen URL. Offline access and a
// forced consent prompt match how the gateway registered its client.
func (g *GoogleProvider) RedirectURL() string {
	return g.oauth.AuthCodeURL("",
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

// ExchangeCode trades the authorization code for tokens and extracts the
// user's identity from the verified ID token.
func (g *GoogleProvider) ExchangeCode(ctx context.Context, code string) (*Identity, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
	tok, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("google code exchange failed: %w", err)
	}
	rawIDToken, ok := tok.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, serrors.ErrIdentityToken.WithMessage("Google token response carried no id_token")
	}
	return g.verifyIDToken(ctx, rawIDToken)
}

type googleIDClaims struct {
	jwt.RegisteredClaims
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Email      string `json:"email"`
}

func (g *GoogleProvider) verifyIDToken(ctx context.Context, rawIDToken string) (*Identity, error) {
	keys, err := fetchSigningKeys(ctx, GoogleCertsURL)
	if err != nil {
		return nil, fmt.Errorf("fetching google signing keys: %w", err)
	}

	claims := &googleIDClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithAudience(g.oauth.ClientID),
	)
	_, err = parser.ParseWithClaims(rawIDToken, claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		key, ok := keys[kid]
		if !ok {
			return nil, errors.New("no signing key matches kid")
		}
		return key, nil
	})
	if err != nil {
		return nil, serrors.ErrIdentityToken.WithMessage(
			"Please try again to authenticate with Google or choose another method")
	}

	issuerKnown := false
	for _, iss := range googleIssuers {
		if claims.Issuer == iss {
			issuerKnown = true
			break
		}
	}
	if !issuerKnown {
		return nil, serrors.ErrIdentityToken.WithMessage(
			"Please try again to authenticate with Google or choose another method")
	}

	return &Identity{
		FirstName: claims.GivenName,
		LastName:  claims.FamilyName,
		Email:     claims.Email,
	}, nil
}

// fetchSigningKeys downloads a JWKS document and builds RSA public keys
// indexed by kid.
func fetchSigningKeys(ctx context.Context, url string) (map[string]*rsa.PublicKey, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("JWKS endpoint returned status %d", resp.StatusCode)
	}

	var doc struct {
		Keys []struct {
			Kid string `json:"kid"`
			Kty string `json:"kty"`
			N   string `json:"n"`
			E   string `json:"e"`
		} `json:"keys"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding JWKS document: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(doc.Keys))
	for _, k := range doc.Keys {
		if k.Kty != "RSA" {
			continue
		}
		nBytes, err := base64.RawURLEncoding.DecodeString(k.N)
		if err != nil {
			return nil, fmt.Errorf("decoding modulus for kid %s: %w", k.Kid, err)
		}
		eBytes, err := base64.RawURLEncoding.DecodeString(k.E)
		if err != nil {
			return nil, fmt.Errorf("decoding exponent for kid %s: %w", k.Kid, err)
		}
		keys[k.Kid] = &rsa.PublicKey{
			N: new(big.Int).SetBytes(nBytes),
			E: int(new(big.Int).SetBytes(eBytes).Int64()),
		}
	}
	if len(keys) == 0 {
		return nil, errors.New("JWKS document carried no RSA keys")
	}
	return keys, nil
}
