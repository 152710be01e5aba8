package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/BerenSaglam41/BackendMarket-sub001/internal/domain/entity"
	"github.com/BerenSaglam41/BackendMarket-sub001/internal/platform/logger"
	"github.com/BerenSaglam41/BackendMarket-sub001/internal/repository"
)

const defaultListingCacheTTL = 5 * time.Minute

type CatalogService interface {
	Categories(ctx context.Context) ([]*entity.Category, error)
	SearchListings(ctx context.Context, filter entity.ListingFilter) (*entity.ListingPage, error)
	GetListing(ctx context.Context, id string) (*entity.Listing, error)
	// GetLiveListing skips the cache read so stock is current. The fresh
	// listing is written back to the cache.
	GetLiveListing(ctx context.Context, id string) (*entity.Listing, error)
}

type catalogService struct {
	listings   repository.ListingRepository
	categories repository.CategoryRepository
	cache      repository.ListingCache
	log        logger.Logger
	cacheTTL   time.Duration
}

func NewCatalogService(
	listings repository.ListingRepository,
	categories repository.CategoryRepository,
	cache repository.ListingCache,
	log logger.Logger,
	cacheTTL time.Duration,
) CatalogService {
	if cacheTTL <= 0 {
		cacheTTL = defaultListingCacheTTL
	}
	return &catalogService{
		listings:   listings,
		categories: categories,
		cache:      cache,
		log:        log,
		cacheTTL:   cacheTTL,
	}
}

func (s *catalogService) Categories(ctx context.Context) ([]*entity.Category, error) {
	flat, err := s.categories.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not load categories: %w", err)
	}
	return entity.BuildCategoryTree(flat), nil
}

func (s *catalogService) SearchListings(ctx context.Context, filter entity.ListingFilter) (*entity.ListingPage, error) {
	if filter.MinPrice < 0 || filter.MaxPrice < 0 {
		return nil, fmt.Errorf("%w: price bounds must not be negative", ErrValidation)
	}
	if filter.MaxPrice > 0 && filter.MinPrice > filter.MaxPrice {
		return nil, fmt.Errorf("%w: minPrice exceeds maxPrice", ErrValidation)
	}
	page, err := s.listings.Search(ctx, filter.Normalize())
	if err != nil {
		return nil, fmt.Errorf("could not search listings: %w", err)
	}
	return page, nil
}

// GetListing reads through the cache. Cache failures are logged and never
// fail the lookup.
func (s *catalogService) GetListing(ctx context.Context, id string) (*entity.Listing, error) {
	cached, err := s.cache.Get(ctx, id)
	if err == nil && cached != nil {
		s.log.Debugf("Listing %s found in cache", id)
		return cached, nil
	}
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.log.Warnf("Error getting listing %s from cache: %v. Fetching from catalog.", id, err)
	}
	return s.GetLiveListing(ctx, id)
}

func (s *catalogService) GetLiveListing(ctx context.Context, id string) (*entity.Listing, error) {
	listing, err := s.listings.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("could not load listing %s: %w", id, err)
	}

	if errSet := s.cache.Set(ctx, listing, s.cacheTTL); errSet != nil {
		s.log.Warnf("Failed to cache listing %s: %v", id, errSet)
	}
	return listing, nil
}
