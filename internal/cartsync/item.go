package cartsync

// LineItem is one listing and quantity held in a cart. CartItemID is empty
// until the server has persisted the line.
type LineItem struct {
	ListingID         string  `json:"listingId"`
	CartItemID        string  `json:"cartItemId,omitempty"`
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

func (li *LineItem) recompute() {
	li.TotalPrice = li.UnitPrice*float64(li.Quantity) - li.DiscountApplied
}

// Summary is the server-computed aggregate returned by a cart fetch.
type Summary struct {
	ItemCount     int     `json:"itemCount"`
	TotalQuantity int     `json:"totalQuantity"`
	Subtotal      float64 `json:"subtotal"`
	DiscountTotal float64 `json:"discountTotal"`
	Total         float64 `json:"total"`
	SelectedTotal float64 `json:"selectedTotal"`
}

// State is the cart as the engine exposes it. Summary is nil until a
// remote fetch has happened.
type State struct {
	Items   []LineItem `json:"items"`
	Summary *Summary   `json:"summary"`
}

// Clone returns a deep copy safe to hand to readers.
func (s State) Clone() State {
	out := State{Items: make([]LineItem, len(s.Items))}
	copy(out.Items, s.Items)
	for i := range out.Items {
		if c := out.Items[i].AppliedCouponCode; c != nil {
			code := *c
			out.Items[i].AppliedCouponCode = &code
		}
	}
	if s.Summary != nil {
		sum := *s.Summary
		out.Summary = &sum
	}
	return out
}

// Listing is the catalog metadata needed to put an offering in a cart.
type Listing struct {
	ListingID       string
	ProductID       string
	ProductName     string
	ProductImageURL string
	SellerName      string
	UnitPrice       float64
	Stock           int
}

func indexOf(items []LineItem, listingID string) int {
	for i := range items {
		if items[i].ListingID == listingID {
			return i
		}
	}
	return -1
}

// TotalQuantity sums quantities over all items, selected or not.
func TotalQuantity(items []LineItem) int {
	total := 0
	for _, it := range items {
		total += it.Quantity
	}
	return total
}

// TotalSelectedPrice sums TotalPrice over items selected for checkout.
func TotalSelectedPrice(items []LineItem) float64 {
	total := 0.0
	for _, it := range items {
		if it.IsSelected {
			total += it.TotalPrice
		}
	}
	return total
}
