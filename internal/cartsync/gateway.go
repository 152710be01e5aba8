package cartsync

import (
	"context"
	"errors"
	"net/http"
	"net/url"
)

// Gateway is the server-held cart. Mutations return nothing; callers
// fetch to learn the resulting state.
type Gateway interface {
	Add(ctx context.Context, listingID string, quantity int) error
	Fetch(ctx context.Context) (State, error)
	UpdateQuantity(ctx context.Context, cartItemID string, quantity int) error
	// Remove succeeds when the item is already gone.
	Remove(ctx context.Context, cartItemID string) error
	Clear(ctx context.Context) error
	SetSelected(ctx context.Context, cartItemID string, selected bool) error
}

const cartPath = "/api/cart"

type HTTPGateway struct {
	client *Client
	tokens TokenSource
}

func NewHTTPGateway(client *Client, tokens TokenSource) *HTTPGateway {
	return &HTTPGateway{client: client, tokens: tokens}
}

func (g *HTTPGateway) authorized() error {
	if g.tokens == nil || g.tokens.Token() == "" {
		return ErrUnauthorized
	}
	return nil
}

func itemPath(cartItemID string) string {
	return cartPath + "/" + url.PathEscape(cartItemID)
}

func (g *HTTPGateway) Add(ctx context.Context, listingID string, quantity int) error {
	if quantity < 1 {
		return &ValidationError{Op: "add", StatusCode: http.StatusBadRequest, Message: "quantity must be at least 1"}
	}
	if err := g.authorized(); err != nil {
		return err
	}
	body := struct {
		ListingID string `json:"listingId"`
		Quantity  int    `json:"quantity"`
	}{listingID, quantity}
	return g.client.Do(ctx, "add", http.MethodPost, cartPath, body, nil)
}

func (g *HTTPGateway) Fetch(ctx context.Context) (State, error) {
	if err := g.authorized(); err != nil {
		return State{}, err
	}
	var payload struct {
		Items   []LineItem `json:"items"`
		Summary *Summary   `json:"summary"`
	}
	if err := g.client.Do(ctx, "fetch", http.MethodGet, cartPath, nil, &payload); err != nil {
		return State{}, err
	}
	if payload.Items == nil {
		payload.Items = []LineItem{}
	}
	if payload.Summary == nil {
		payload.Summary = &Summary{}
	}
	return State{Items: payload.Items, Summary: payload.Summary}, nil
}

func (g *HTTPGateway) UpdateQuantity(ctx context.Context, cartItemID string, quantity int) error {
	if quantity < 1 {
		return &ValidationError{Op: "update", StatusCode: http.StatusBadRequest, Message: "quantity must be at least 1"}
	}
	if err := g.authorized(); err != nil {
		return err
	}
	body := struct {
		Quantity int `json:"quantity"`
	}{quantity}
	return g.client.Do(ctx, "update", http.MethodPut, itemPath(cartItemID), body, nil)
}

func (g *HTTPGateway) Remove(ctx context.Context, cartItemID string) error {
	if err := g.authorized(); err != nil {
		return err
	}
	err := g.client.Do(ctx, "remove", http.MethodDelete, itemPath(cartItemID), nil, nil)
	var verr *ValidationError
	if errors.As(err, &verr) && verr.StatusCode == http.StatusNotFound {
		return nil
	}
	return err
}

func (g *HTTPGateway) Clear(ctx context.Context) error {
	if err := g.authorized(); err != nil {
		return err
	}
	return g.client.Do(ctx, "clear", http.MethodDelete, cartPath+"/clear", nil, nil)
}

func (g *HTTPGateway) SetSelected(ctx context.Context, cartItemID string, selected bool) error {
	if err := g.authorized(); err != nil {
		return err
	}
	body := struct {
		Selected bool `json:"selected"`
	}{selected}
	return g.client.Do(ctx, "select", http.MethodPatch, itemPath(cartItemID)+"/selection", body, nil)
}
