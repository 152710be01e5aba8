package http

import (
	"errors"
	"net/http"

	"github.com/BerenSaglam41/BackendMarket-sub001/internal/service"
)

// statusFor maps service errors to HTTP statuses. The cart client treats
// 400, 404, 409 and 422 as validation failures.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrUnauthorized), errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, service.ErrListingNotFound),
		errors.Is(err, service.ErrCartItemNotFound),
		errors.Is(err, service.ErrUserNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrOutOfStock),
		errors.Is(err, service.ErrInsufficientStock),
		errors.Is(err, service.ErrListingUnavailable),
		errors.Is(err, service.ErrEmailTaken):
		return http.StatusConflict, "conflict"
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, "validation"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
