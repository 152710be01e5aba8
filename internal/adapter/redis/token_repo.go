package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/BerenSaglam41/BackendMarket-sub001/internal/repository"
	"github.com/redis/go-redis/v9"
)

const (
	revokedTokenKeyPrefix = "revoked_token:"
)

type revokedTokenStore struct {
	client redis.Cmdable
}

func NewRevokedTokenStore(client redis.Cmdable) repository.RevokedTokenStore {
	return &revokedTokenStore{client: client}
}

func (s *revokedTokenStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, revokedTokenKeyPrefix+tokenID, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token %s: %w", tokenID, err)
	}
	return nil
}

func (s *revokedTokenStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, revokedTokenKeyPrefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token %s: %w", tokenID, err)
	}
	return n > 0, nil
}
