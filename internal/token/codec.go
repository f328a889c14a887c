// Package token creates and verifies the gateway's signed bearer tokens.
// It knows nothing about revocation; that lives in the ledger and is
// composed by the auth service.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/fxgate/fxgate/domain"
	serrors "github.com/fxgate/fxgate/errors"
)

// Claims is the gateway's token payload: registered claims plus the
// access/refresh discriminator.
type Claims struct {
	jwt.RegisteredClaims
	TokenType string `json:"type"`
}

// Options configures a Codec.
type Options struct {
	Issuer     string
	SecretKey  string
	Algorithm  string // HS256, HS384 or HS512
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Codec signs and verifies tokens with a single configured HMAC algorithm.
type Codec struct {
	issuer     string
	secret     []byte
	method     jwt.SigningMethod
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewCodec builds a Codec, failing closed when the configured algorithm is
// not a supported HMAC variant.
func NewCodec(opts Options) (*Codec, error) {
	method := jwt.GetSigningMethod(opts.Algorithm)
	if method == nil {
		return nil, serrors.ErrUnsupportedAlgorithm.WithMessage("unknown signing algorithm %q", opts.Algorithm)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, serrors.ErrUnsupportedAlgorithm.WithMessage(
			"signing algorithm %q is not supported with a shared secret key", opts.Algorithm)
	}
	return &Codec{
		issuer:     opts.Issuer,
		secret:     []byte(opts.SecretKey),
		method:     method,
		accessTTL:  opts.AccessTTL,
		refreshTTL: opts.RefreshTTL,
	}, nil
}

// Issue builds and signs a token for subject with a fresh jti. The expiry
// depends on the token type.
func (c *Codec) Issue(subject string, tokenType domain.TokenType) (string, *Claims, error) {
	var ttl time.Duration
	switch tokenType {
	case domain.AccessToken:
		ttl = c.accessTTL
	case domain.RefreshToken:
		ttl = c.refreshTTL
	default:
		return "", nil, serrors.ErrWrongTokenType.WithMessage("cannot issue token of type %q", tokenType)
	}

	now := time.Now().UTC()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
		TokenType: string(tokenType),
	}

	signed, err := jwt.NewWithClaims(c.method, claims).SignedString(c.secret)
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

// Verify checks the signature and structure of tokenValue and returns its
// claims. Expiry is enforced only when checkExpiry is true; everything else
// (signature, nbf, algorithm) is always enforced. Expired tokens surface as
// ErrTokenExpired, any other failure as ErrTokenMalformed.
func (c *Codec) Verify(tokenValue string, checkExpiry bool) (*Claims, error) {
	claims := &Claims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{c.method.Alg()}))
	_, err := parser.ParseWithClaims(tokenValue, claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) && !errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			if checkExpiry {
				return nil, serrors.AccessTokenExpired()
			}
			// Expiry is the only failure; the caller asked to ignore it.
			return claims, nil
		}
		return nil, serrors.ErrTokenMalformed.WithMessage("Error raised while decoding token. Please login again")
	}
	return claims, nil
}

// Peek decodes claims without verifying the signature. It exists so error
// paths can recover identifiers for ledger lookups; it must never be used
// to authorize anything.
func (c *Codec) Peek(tokenValue string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenValue, claims); err != nil {
		return nil, serrors.ErrTokenMalformed.WithMessage("Error raised while decoding token. Please login again")
	}
	return claims, nil
}
