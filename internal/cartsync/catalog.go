package cartsync

import (
	"context"
	"net/http"
	"net/url"
)

// HTTPCatalog reads listing metadata from the public catalog routes.
type HTTPCatalog struct {
	client *Client
}

func NewHTTPCatalog(client *Client) *HTTPCatalog {
	return &HTTPCatalog{client: client}
}

func (c *HTTPCatalog) GetListing(ctx context.Context, listingID string) (Listing, error) {
	var payload struct {
		ID         string  `json:"id"`
		ProductID  string  `json:"productId"`
		SellerName string  `json:"sellerName"`
		Title      string  `json:"title"`
		ImageURL   string  `json:"imageUrl"`
		Price      float64 `json:"price"`
		Stock      int     `json:"stock"`
	}
	path := "/api/listings/" + url.PathEscape(listingID)
	if err := c.client.Do(ctx, "listing", http.MethodGet, path, nil, &payload); err != nil {
		return Listing{}, err
	}
	return Listing{
		ListingID:       payload.ID,
		ProductID:       payload.ProductID,
		ProductName:     payload.Title,
		ProductImageURL: payload.ImageURL,
		SellerName:      payload.SellerName,
		UnitPrice:       payload.Price,
		Stock:           payload.Stock,
	}, nil
}
