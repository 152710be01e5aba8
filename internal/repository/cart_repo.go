package repository

import (
	"context"

	"github.com/BerenSaglam41/BackendMarket-sub001/internal/domain/entity"
)

// CartRepository persists one cart per user. GetByUserID returns a fresh empty
// cart when the user has none yet.
type CartRepository interface {
	GetByUserID(ctx context.Context, userID string) (*entity.Cart, error)
	Save(ctx context.Context, cart *entity.Cart) error
	DeleteByUserID(ctx context.Context, userID string) error
}
