package entity

import "errors"

var (
	ErrInvalidQuantity    = errors.New("quantity must be at least 1")
	ErrCartItemNotFound   = errors.New("cart item not found")
	ErrListingUnavailable = errors.New("listing is not available for purchase")
	ErrOutOfStock         = errors.New("listing is out of stock")
	ErrInsufficientStock  = errors.New("requested quantity exceeds available stock")
)
