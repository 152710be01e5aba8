package http

import (
	"net/http"
	"strings"

	"github.com/BerenSaglam41/BackendMarket-sub001/internal/platform/logger"
	"github.com/BerenSaglam41/BackendMarket-sub001/internal/service"
	"github.com/go-chi/chi/v5"
)

type CartHandler struct {
	carts service.CartService
	log   logger.Logger
}

func NewCartHandler(carts service.CartService, log logger.Logger) *CartHandler {
	return &CartHandler{carts: carts, log: log.With("handler", "cart")}
}

func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := h.userID(r)
	view, err := h.carts.GetCart(r.Context(), userID)
	if err != nil {
		h.fail(w, "get cart", userID, err)
		return
	}
	respondOK(w, http.StatusOK, "", toCartResponse(view))
}

func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req addToCartRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if strings.TrimSpace(req.ListingID) == "" {
		respondError(w, http.StatusBadRequest, "listingId is required")
		return
	}

	userID := h.userID(r)
	if err := h.carts.AddItem(r.Context(), userID, req.ListingID, req.Quantity); err != nil {
		h.fail(w, "add item", userID, err)
		return
	}
	respondOK(w, http.StatusCreated, "item added to cart", nil)
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req updateQuantityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	userID := h.userID(r)
	if err := h.carts.UpdateQuantity(r.Context(), userID, chi.URLParam(r, "cartItemId"), req.Quantity); err != nil {
		h.fail(w, "update quantity", userID, err)
		return
	}
	respondOK(w, http.StatusOK, "cart item updated", nil)
}

func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID := h.userID(r)
	if err := h.carts.RemoveItem(r.Context(), userID, chi.URLParam(r, "cartItemId")); err != nil {
		h.fail(w, "remove item", userID, err)
		return
	}
	respondOK(w, http.StatusOK, "cart item removed", nil)
}

func (h *CartHandler) SetSelection(w http.ResponseWriter, r *http.Request) {
	var req selectionRequest
	if err := decodeJSON(w, r, &req); err != nil || req.Selected == nil {
		respondError(w, http.StatusBadRequest, "invalid request body", "selected is required")
		return
	}

	userID := h.userID(r)
	if err := h.carts.SetSelected(r.Context(), userID, chi.URLParam(r, "cartItemId"), *req.Selected); err != nil {
		h.fail(w, "set selection", userID, err)
		return
	}
	respondOK(w, http.StatusOK, "cart item selection updated", nil)
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	userID := h.userID(r)
	if err := h.carts.ClearCart(r.Context(), userID); err != nil {
		h.fail(w, "clear cart", userID, err)
		return
	}
	respondOK(w, http.StatusOK, "cart cleared", nil)
}

func (h *CartHandler) userID(r *http.Request) string {
	claims, _ := ClaimsFromContext(r.Context())
	return claims.UserID
}

func (h *CartHandler) fail(w http.ResponseWriter, op, userID string, err error) {
	status, _ := statusFor(err)
	if status == http.StatusInternalServerError {
		h.log.Errorf("%s failed for user %s: %v", op, userID, err)
		respondError(w, status, "internal server error")
		return
	}
	respondError(w, status, err.Error())
}
