package repository

import (
	"context"
	"time"

	"github.com/BerenSaglam41/BackendMarket-sub001/internal/domain/entity"
)

type ListingRepository interface {
	FindByID(ctx context.Context, id string) (*entity.Listing, error)
	Search(ctx context.Context, filter entity.ListingFilter) (*entity.ListingPage, error)
}

type CategoryRepository interface {
	FindAll(ctx context.Context) ([]*entity.Category, error)
}

// ListingCache returns ErrNotFound on a miss.
type ListingCache interface {
	Get(ctx context.Context, listingID string) (*entity.Listing, error)
	Set(ctx context.Context, listing *entity.Listing, ttl time.Duration) error
	Delete(ctx context.Context, listingID string) error
}
