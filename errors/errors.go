package errors

import "fmt"

// AuthError is the gateway's error envelope. Detail is a stable
// machine-readable kind that clients branch on; Message is the
// human-readable explanation shown to the user. Two values with the same
// Detail match under errors.Is regardless of Message.
type AuthError struct {
	Detail  string `json:"detail"`
	Message string `json:"message"`
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: %s", e.Detail, e.Message)
}

// Is matches on Detail so per-occurrence messages keep sentinel semantics.
func (e *AuthError) Is(target error) bool {
	t, ok := target.(*AuthError)
	return ok && t.Detail == e.Detail
}

// WithMessage returns a copy of e carrying a situation-specific message.
func (e *AuthError) WithMessage(format string, args ...any) *AuthError {
	return &AuthError{Detail: e.Detail, Message: fmt.Sprintf(format, args...)}
}

// Error kinds. The HTTP layer owns the single mapping from Detail to
// response status; nothing here knows about transports.
var (
	ErrUserNotFound         = &AuthError{Detail: "user_not_found", Message: "User not found"}
	ErrPasswordIncorrect    = &AuthError{Detail: "password_incorrect", Message: "Wrong user password"}
	ErrTokenMalformed       = &AuthError{Detail: "token_malformed", Message: "Invalid token"}
	ErrTokenExpired         = &AuthError{Detail: "token_expired", Message: "Token expired"}
	ErrWrongTokenType       = &AuthError{Detail: "wrong_token_type", Message: "Wrong token type"}
	ErrTokenRevoked         = &AuthError{Detail: "token_revoked", Message: "Revoked token"}
	ErrAuthHeader           = &AuthError{Detail: "authorization_header", Message: "Authorization header error"}
	ErrUserExists           = &AuthError{Detail: "user_exists", Message: "User already exists"}
	ErrUnknownCurrency      = &AuthError{Detail: "unknown_currency", Message: "Unknown currency code requested"}
	ErrProviderUnavailable  = &AuthError{Detail: "provider_unavailable", Message: "Upstream provider returned an error"}
	ErrIdentityToken        = &AuthError{Detail: "identity_token_invalid", Message: "Identity token verification failed"}
	ErrInvalidDateRange     = &AuthError{Detail: "invalid_date_range", Message: "Incorrect input for date"}
	ErrUnsupportedAlgorithm = &AuthError{Detail: "unsupported_algorithm", Message: "Unsupported signing algorithm"}
	ErrLedgerEntryNotFound  = &AuthError{Detail: "ledger_entry_not_found", Message: "Issued token record not found"}
)

// UserExists builds the duplicate-registration error naming the clashing
// field(s): "username", "email" or "username and email".
func UserExists(field string) *AuthError {
	return ErrUserExists.WithMessage(
		"User with such %s is already registered. Try another %s", field, field)
}

// AccessTokenExpired hints the caller at the refresh flow.
func AccessTokenExpired() *AuthError {
	return ErrTokenExpired.WithMessage("Please refresh tokens on /auth/refresh_tokens")
}
