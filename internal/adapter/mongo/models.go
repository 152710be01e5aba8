package mongo

import (
	"time"

	"github.com/BerenSaglam41/BackendMarket-sub001/internal/domain/entity"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	listingsCollection   = "listings"
	categoriesCollection = "categories"
)

type listingDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	ProductID   string             `bson:"product_id"`
	CategoryID  string             `bson:"category_id"`
	SellerID    string             `bson:"seller_id"`
	SellerName  string             `bson:"seller_name"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Photos      []string           `bson:"photos,omitempty"`
	Price       float64            `bson:"price"`
	Stock       int                `bson:"stock"`
	Status      string             `bson:"status"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

type categoryDocument struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	Name     string             `bson:"name"`
	Slug     string             `bson:"slug"`
	ParentID string             `bson:"parent_id,omitempty"`
}

// toDomainListing uses the first photo as the listing image.
func toDomainListing(d *listingDocument) *entity.Listing {
	if d == nil {
		return nil
	}
	l := &entity.Listing{
		ID:          d.ID.Hex(),
		ProductID:   d.ProductID,
		CategoryID:  d.CategoryID,
		SellerID:    d.SellerID,
		SellerName:  d.SellerName,
		Title:       d.Title,
		Description: d.Description,
		Price:       d.Price,
		Stock:       d.Stock,
		Status:      entity.ListingStatus(d.Status),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	if len(d.Photos) > 0 {
		l.ImageURL = d.Photos[0]
	}
	if l.ProductID == "" {
		l.ProductID = l.ID
	}
	return l
}

func toDomainListings(docs []*listingDocument) []*entity.Listing {
	listings := make([]*entity.Listing, 0, len(docs))
	for _, doc := range docs {
		listings = append(listings, toDomainListing(doc))
	}
	return listings
}

func toDomainCategory(d *categoryDocument) *entity.Category {
	return &entity.Category{
		ID:       d.ID.Hex(),
		Name:     d.Name,
		Slug:     d.Slug,
		ParentID: d.ParentID,
	}
}
