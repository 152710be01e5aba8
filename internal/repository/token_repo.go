package repository

import (
	"context"
	"time"
)

// RevokedTokenStore remembers logged-out token IDs until they would have
// expired anyway.
type RevokedTokenStore interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
