package domain

import "time"

// TokenType discriminates the two halves of an issued pair.
type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
)

// Valid reports whether t is one of the two known token types.
func (t TokenType) Valid() bool {
	return t == AccessToken || t == RefreshToken
}

// LedgerEntry is the durable record of one issued token. Entries are
// written once per issue, flipped to revoked on logout or re-login, and
// never deleted so the ledger doubles as an audit trail.
type LedgerEntry struct {
	ID        string    `bson:"_id"        json:"id"` // jti claim of the signed token
	TokenType TokenType `bson:"token_type" json:"token_type"`
	Email     string    `bson:"email"      json:"email"`
	Revoked   bool      `bson:"revoked"    json:"revoked"`
	IssuedAt  time.Time `bson:"issued_at"  json:"issued_at"`
}

// TokenPair is the result of a successful login, refresh or OAuth callback.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
