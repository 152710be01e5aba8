package service

import (
	"errors"

	"github.com/BerenSaglam41/BackendMarket-sub001/internal/domain/entity"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrListingNotFound    = errors.New("listing not found")
	ErrUserNotFound       = errors.New("user not found")

	ErrInvalidQuantity    = entity.ErrInvalidQuantity
	ErrOutOfStock         = entity.ErrOutOfStock
	ErrInsufficientStock  = entity.ErrInsufficientStock
	ErrListingUnavailable = entity.ErrListingUnavailable
	ErrCartItemNotFound   = entity.ErrCartItemNotFound
)
