package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/fxgate/fxgate/domain"
	serrors "github.com/fxgate/fxgate/errors"
)

// TokenLedger implements domain.TokenLedger on MongoDB. One document per
// issued token, keyed by jti; documents are only ever flipped to revoked,
// never removed. There is deliberately no uniqueness constraint on
// (email, token_type): two logins racing between revoke and issue can
// leave transient duplicates, which the revoke-all-before-issue policy
// cleans up on the next cycle.
type TokenLedger struct {
	coll *mongo.Collection
}

// NewTokenLedger creates the ledger over the issued-tokens collection.
func NewTokenLedger(db *mongo.Database) *TokenLedger {
	return &TokenLedger{coll: db.Collection(TokensCollection)}
}

// Record persists one entry per issued token.
func (l *TokenLedger) Record(ctx context.Context, entries ...*domain.LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}
	docs := make([]any, len(entries))
	for i, entry := range entries {
		docs[i] = entry
	}
	if _, err := l.coll.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("recording issued tokens: %w", err)
	}
	return nil
}

// IsRevoked looks up the ledger entry for jti and returns its revocation
// flag with the subject email. Unknown jtis surface as
// ErrLedgerEntryNotFound so callers can fail closed.
func (l *TokenLedger) IsRevoked(ctx context.Context, jti string) (bool, string, error) {
	var entry domain.LedgerEntry
	err := l.coll.FindOne(ctx, bson.M{"_id": jti}).Decode(&entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, "", serrors.ErrLedgerEntryNotFound
	}
	if err != nil {
		return false, "", fmt.Errorf("looking up ledger entry: %w", err)
	}
	return entry.Revoked, entry.Email, nil
}

// RevokeAll marks every live entry for email as revoked. Idempotent; racing
// with a concurrent issue for the same subject is last-write-wins.
func (l *TokenLedger) RevokeAll(ctx context.Context, email string) error {
	_, err := l.coll.UpdateMany(ctx,
		bson.M{"email": email, "revoked": false},
		bson.M{"$set": bson.M{"revoked": true}},
	)
	if err != nil {
		return fmt.Errorf("revoking tokens for %s: %w", email, err)
	}
	return nil
}

var _ domain.TokenLedger = (*TokenLedger)(nil)
