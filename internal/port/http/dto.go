package http

import (
	"time"

	"github.com/BerenSaglam41/BackendMarket-sub001/internal/domain/entity"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type loginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	Profile   userResponse `json:"profile"`
}

func toUserResponse(u *entity.User) userResponse {
	return userResponse{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role}
}

type categoryResponse struct {
	ID       string             `json:"id"`
	Name     string             `json:"name"`
	Slug     string             `json:"slug"`
	ParentID string             `json:"parentId,omitempty"`
	Children []categoryResponse `json:"children"`
}

func toCategoryResponses(cs []*entity.Category) []categoryResponse {
	out := make([]categoryResponse, 0, len(cs))
	for _, c := range cs {
		out = append(out, categoryResponse{
			ID:       c.ID,
			Name:     c.Name,
			Slug:     c.Slug,
			ParentID: c.ParentID,
			Children: toCategoryResponses(c.Children),
		})
	}
	return out
}

type listingResponse struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"productId"`
	CategoryID  string    `json:"categoryId"`
	SellerID    string    `json:"sellerId"`
	SellerName  string    `json:"sellerName"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageURL    string    `json:"imageUrl"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toListingResponse(l *entity.Listing) listingResponse {
	return listingResponse{
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
	}
}

type listingPageResponse struct {
	Listings []listingResponse `json:"listings"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	Limit    int               `json:"limit"`
}

type addToCartRequest struct {
	ListingID string `json:"listingId"`
	Quantity  int    `json:"quantity"`
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type selectionRequest struct {
	Selected *bool `json:"selected"`
}

type cartItemResponse struct {
	CartItemID        string  `json:"cartItemId"`
	ListingID         string  `json:"listingId"`
	ProductID         string  `json:"productId"`
	ProductName       string  `json:"productName"`
	ProductImageURL   string  `json:"productImageUrl"`
	StoreName         string  `json:"storeName"`
	UnitPrice         float64 `json:"unitPrice"`
	Quantity          int     `json:"quantity"`
	TotalPrice        float64 `json:"totalPrice"`
	AvailableStock    int     `json:"availableStock"`
	IsOutOfStock      bool    `json:"isOutOfStock"`
	IsSelected        bool    `json:"isSelectedForCheckout"`
	AppliedCouponCode *string `json:"appliedCouponCode"`
	DiscountApplied   float64 `json:"discountApplied"`
}

type cartSummaryResponse struct {
	ItemCount     int     `json:"itemCount"`
	TotalQuantity int     `json:"totalQuantity"`
	Subtotal      float64 `json:"subtotal"`
	DiscountTotal float64 `json:"discountTotal"`
	Total         float64 `json:"total"`
	SelectedTotal float64 `json:"selectedTotal"`
}

type cartResponse struct {
	Items   []cartItemResponse  `json:"items"`
	Summary cartSummaryResponse `json:"summary"`
}

func toCartResponse(v *entity.CartView) cartResponse {
	items := make([]cartItemResponse, 0, len(v.Lines))
	for _, l := range v.Lines {
		items = append(items, cartItemResponse{
			CartItemID:        l.ID,
			ListingID:         l.ListingID,
			ProductID:         l.ProductID,
			ProductName:       l.ProductName,
			ProductImageURL:   l.ProductImageURL,
			StoreName:         l.StoreName,
			UnitPrice:         l.UnitPrice,
			Quantity:          l.Quantity,
			TotalPrice:        l.TotalPrice(),
			AvailableStock:    l.AvailableStock,
			IsOutOfStock:      l.IsOutOfStock,
			IsSelected:        l.IsSelected,
			AppliedCouponCode: l.AppliedCouponCode,
			DiscountApplied:   l.DiscountApplied,
		})
	}
	return cartResponse{
		Items: items,
		Summary: cartSummaryResponse{
			ItemCount:     v.Summary.ItemCount,
			TotalQuantity: v.Summary.TotalQuantity,
			Subtotal:      v.Summary.Subtotal,
			DiscountTotal: v.Summary.DiscountTotal,
			Total:         v.Summary.Total,
			SelectedTotal: v.Summary.SelectedTotal,
		},
	}
}
