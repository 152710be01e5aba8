package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/BerenSaglam41/BackendMarket-sub001/internal/domain/entity"
	"github.com/BerenSaglam41/BackendMarket-sub001/internal/repository"
	"github.com/redis/go-redis/v9"
)

const (
	listingCacheKeyPrefix = "listing:"
)

// cachedListing is the JSON shape kept in redis. It is decoupled from the
// entity so that field renames do not silently invalidate the cache.
type cachedListing struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"product_id"`
	CategoryID  string    `json:"category_id"`
	SellerID    string    `json:"seller_id"`
	SellerName  string    `json:"seller_name"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toCachedListing(l *entity.Listing) cachedListing {
	return cachedListing{
		ID:          l.ID,
		ProductID:   l.ProductID,
		CategoryID:  l.CategoryID,
		SellerID:    l.SellerID,
		SellerName:  l.SellerName,
		Title:       l.Title,
		Description: l.Description,
		ImageURL:    l.ImageURL,
		Price:       l.Price,
		Stock:       l.Stock,
		Status:      string(l.Status),
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}

func (c cachedListing) toEntity() *entity.Listing {
	return &entity.Listing{
		ID:          c.ID,
		ProductID:   c.ProductID,
		CategoryID:  c.CategoryID,
		SellerID:    c.SellerID,
		SellerName:  c.SellerName,
		Title:       c.Title,
		Description: c.Description,
		ImageURL:    c.ImageURL,
		Price:       c.Price,
		Stock:       c.Stock,
		Status:      entity.ListingStatus(c.Status),
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

type listingCacheRepository struct {
	client redis.Cmdable
}

func NewListingCacheRepository(client redis.Cmdable) repository.ListingCache {
	return &listingCacheRepository{client: client}
}

func listingKey(listingID string) string {
	return listingCacheKeyPrefix + listingID
}

func (r *listingCacheRepository) Get(ctx context.Context, listingID string) (*entity.Listing, error) {
	val, err := r.client.Get(ctx, listingKey(listingID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get listing %s from redis: %w", listingID, err)
	}

	var cached cachedListing
	if err := json.Unmarshal(val, &cached); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached listing %s: %w", listingID, err)
	}
	return cached.toEntity(), nil
}

func (r *listingCacheRepository) Set(ctx context.Context, listing *entity.Listing, ttl time.Duration) error {
	if listing == nil || listing.ID == "" {
		return errors.New("cannot cache nil listing or listing with empty ID")
	}

	data, err := json.Marshal(toCachedListing(listing))
	if err != nil {
		return fmt.Errorf("failed to marshal listing %s: %w", listing.ID, err)
	}

	if err := r.client.Set(ctx, listingKey(listing.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache listing %s in redis: %w", listing.ID, err)
	}
	return nil
}

func (r *listingCacheRepository) Delete(ctx context.Context, listingID string) error {
	if err := r.client.Del(ctx, listingKey(listingID)).Err(); err != nil {
		return fmt.Errorf("failed to delete listing %s from redis: %w", listingID, err)
	}
	return nil
}
