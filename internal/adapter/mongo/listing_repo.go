package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/BerenSaglam41/BackendMarket-sub001/internal/domain/entity"
	"github.com/BerenSaglam41/BackendMarket-sub001/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type listingRepository struct {
	collection *mongo.Collection
}

func NewListingRepository(db *mongo.Database) repository.ListingRepository {
	return &listingRepository{collection: db.Collection(listingsCollection)}
}

func (r *listingRepository) FindByID(ctx context.Context, id string) (*entity.Listing, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}

	var doc listingDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find listing %s: %w", id, err)
	}
	return toDomainListing(&doc), nil
}

// Search only returns active listings, newest first.
func (r *listingRepository) Search(ctx context.Context, filter entity.ListingFilter) (*entity.ListingPage, error) {
	filter = filter.Normalize()
	query := buildListingQuery(filter)

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count listings: %w", err)
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((filter.Page - 1) * filter.Limit)).
		SetLimit(int64(filter.Limit))

	cursor, err := r.collection.Find(ctx, query, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to search listings: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []*listingDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode listings: %w", err)
	}

	return &entity.ListingPage{
		Listings: toDomainListings(docs),
		Total:    total,
		Page:     filter.Page,
		Limit:    filter.Limit,
	}, nil
}

func buildListingQuery(filter entity.ListingFilter) bson.M {
	query := bson.M{"status": string(entity.ListingStatusActive)}
	if filter.Query != "" {
		query["title"] = primitive.Regex{Pattern: regexp.QuoteMeta(filter.Query), Options: "i"}
	}
	if filter.CategoryID != "" {
		query["category_id"] = filter.CategoryID
	}
	price := bson.M{}
	if filter.MinPrice > 0 {
		price["$gte"] = filter.MinPrice
	}
	if filter.MaxPrice > 0 {
		price["$lte"] = filter.MaxPrice
	}
	if len(price) > 0 {
		query["price"] = price
	}
	return query
}
