package entity

import (
	"time"

	"github.com/google/uuid"
)

// CartItem is one listing held in a user's server-side cart. UnitPrice is the
// listing price captured when the line was first added.
type CartItem struct {
	ID                string
	ListingID         string
	ProductID         string
	ProductName       string
	ProductImageURL   string
	StoreName         string
	UnitPrice         float64
	Quantity          int
	IsSelected        bool
	AppliedCouponCode *string
	DiscountApplied   float64
	AddedAt           time.Time
}

func (i CartItem) TotalPrice() float64 {
	return i.UnitPrice*float64(i.Quantity) - i.DiscountApplied
}

type Cart struct {
	ID        string
	UserID    string
	Items     []CartItem
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewCart(userID string) *Cart {
	now := time.Now().UTC()
	return &Cart{
		ID:        uuid.NewString(),
		UserID:    userID,
		Items:     make([]CartItem, 0),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (c *Cart) ItemByID(itemID string) (*CartItem, int) {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			return &c.Items[i], i
		}
	}
	return nil, -1
}

func (c *Cart) ItemByListing(listingID string) (*CartItem, int) {
	for i := range c.Items {
		if c.Items[i].ListingID == listingID {
			return &c.Items[i], i
		}
	}
	return nil, -1
}

// AddListing appends the listing or increments its existing line. The
// resulting quantity is clamped to the live stock and to maxQuantity when it
// is positive.
func (c *Cart) AddListing(l *Listing, quantity, maxQuantity int) (*CartItem, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	if !l.IsActive() {
		return nil, ErrListingUnavailable
	}
	if !l.InStock() {
		return nil, ErrOutOfStock
	}

	ceiling := l.Stock
	if maxQuantity > 0 && maxQuantity < ceiling {
		ceiling = maxQuantity
	}

	item, _ := c.ItemByListing(l.ID)
	if item != nil {
		item.Quantity = clamp(item.Quantity+quantity, ceiling)
	} else {
		c.Items = append(c.Items, CartItem{
			ID:              uuid.NewString(),
			ListingID:       l.ID,
			ProductID:       l.ProductID,
			ProductName:     l.Title,
			ProductImageURL: l.ImageURL,
			StoreName:       l.SellerName,
			UnitPrice:       l.Price,
			Quantity:        clamp(quantity, ceiling),
			IsSelected:      true,
			AddedAt:         time.Now().UTC(),
		})
		item = &c.Items[len(c.Items)-1]
	}
	c.touch()
	return item, nil
}

// UpdateItemQuantity sets an exact quantity. Unlike AddListing it rejects a
// quantity above stock instead of clamping it.
func (c *Cart) UpdateItemQuantity(itemID string, quantity, stock int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	item, _ := c.ItemByID(itemID)
	if item == nil {
		return ErrCartItemNotFound
	}
	if quantity > stock {
		return ErrInsufficientStock
	}
	item.Quantity = quantity
	c.touch()
	return nil
}

// RemoveItem reports whether a line was removed. Removing an absent line is
// not an error.
func (c *Cart) RemoveItem(itemID string) bool {
	_, index := c.ItemByID(itemID)
	if index == -1 {
		return false
	}
	c.Items = append(c.Items[:index], c.Items[index+1:]...)
	c.touch()
	return true
}

func (c *Cart) SetSelected(itemID string, selected bool) error {
	item, _ := c.ItemByID(itemID)
	if item == nil {
		return ErrCartItemNotFound
	}
	item.IsSelected = selected
	c.touch()
	return nil
}

func (c *Cart) Clear() {
	c.Items = make([]CartItem, 0)
	c.touch()
}

func (c *Cart) touch() {
	c.UpdatedAt = time.Now().UTC()
}

func clamp(quantity, ceiling int) int {
	if quantity > ceiling {
		return ceiling
	}
	return quantity
}

// CartLine is a cart item joined with the live state of its listing.
type CartLine struct {
	CartItem
	AvailableStock int
	IsOutOfStock   bool
}

type CartSummary struct {
	ItemCount     int
	TotalQuantity int
	Subtotal      float64
	DiscountTotal float64
	Total         float64
	SelectedTotal float64
}

type CartView struct {
	CartID  string
	UserID  string
	Lines   []CartLine
	Summary CartSummary
}

func Summarize(lines []CartLine) CartSummary {
	var s CartSummary
	s.ItemCount = len(lines)
	for _, l := range lines {
		s.TotalQuantity += l.Quantity
		s.Subtotal += l.UnitPrice * float64(l.Quantity)
		s.DiscountTotal += l.DiscountApplied
		if l.IsSelected {
			s.SelectedTotal += l.TotalPrice()
		}
	}
	s.Total = s.Subtotal - s.DiscountTotal
	return s
}
