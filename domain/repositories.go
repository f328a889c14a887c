package domain

import "context"

// UserRepository is the persistent store of local accounts.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	// FindByUsername returns the account holding username, or
	// errors.ErrUserNotFound.
	FindByUsername(ctx context.Context, username string) (*User, error)
	// FindByEmail returns the account holding email (lowercased), or
	// errors.ErrUserNotFound.
	FindByEmail(ctx context.Context, email string) (*User, error)
	// CountConflicts reports how many existing accounts already hold the
	// given username and email respectively.
	CountConflicts(ctx context.Context, username, email string) (usernames, emails int64, err error)
}

// TokenLedger records every issued token and its revocation state.
type TokenLedger interface {
	// Record persists one entry per issued token.
	Record(ctx context.Context, entries ...*LedgerEntry) error
	// IsRevoked looks up the entry for jti and returns its revocation flag
	// together with the subject email. Unknown jtis return
	// errors.ErrLedgerEntryNotFound.
	IsRevoked(ctx context.Context, jti string) (revoked bool, email string, err error)
	// RevokeAll marks every live entry for email as revoked. Idempotent.
	RevokeAll(ctx context.Context, email string) error
}

// RateProvider is the upstream exchange-rate API.
type RateProvider interface {
	// Currencies returns the full catalog of currency code -> display name.
	Currencies(ctx context.Context) (map[string]string, error)
	Convert(ctx context.Context, from, to, amount, date string) (*ConvertResult, error)
	LiveRates(ctx context.Context, source string, targets []string) (*RateInfo, error)
	HistoricalRates(ctx context.Context, source string, targets []string, date string) (*RateInfo, error)
	RateDynamics(ctx context.Context, source string, targets []string, startDate, endDate string) (*RateDynamics, error)
	DailySeries(ctx context.Context, source string, targets []string, startDate, endDate string) (*DailySeries, error)
}
