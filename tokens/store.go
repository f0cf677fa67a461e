// Package tokens keeps track of revoked access tokens until they expire.
package tokens

import (
	"context"
	"time"
)

// RevocationStore remembers revoked token ids (the JWT "jti" claim).
// Entries only need to live until the token would have expired anyway.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
	Close() error
}
