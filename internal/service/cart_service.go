package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/BerenSaglam41/BackendMarket-sub001/internal/domain/entity"
	"github.com/BerenSaglam41/BackendMarket-sub001/internal/platform/logger"
	"github.com/BerenSaglam41/BackendMarket-sub001/internal/repository"
	"golang.org/x/sync/singleflight"
)

const (
	defaultMaxLineQuantity = 99
	cartEventSubjectPrefix = "cart."
	sharedReadTimeout      = 10 * time.Second
)

const (
	OpItemAdded       = "item_added"
	OpQuantityUpdated = "quantity_updated"
	OpItemRemoved     = "item_removed"
	OpSelectionSet    = "selection_set"
	OpCleared         = "cleared"
)

type CartService interface {
	AddItem(ctx context.Context, userID, listingID string, quantity int) error
	GetCart(ctx context.Context, userID string) (*entity.CartView, error)
	UpdateQuantity(ctx context.Context, userID, cartItemID string, quantity int) error
	RemoveItem(ctx context.Context, userID, cartItemID string) error
	SetSelected(ctx context.Context, userID, cartItemID string, selected bool) error
	ClearCart(ctx context.Context, userID string) error
}

// ListingLookup is the catalog read the cart needs. CatalogService satisfies it.
// Mutations check stock through GetLiveListing; cart views use the cached
// GetListing.
type ListingLookup interface {
	GetListing(ctx context.Context, id string) (*entity.Listing, error)
	GetLiveListing(ctx context.Context, id string) (*entity.Listing, error)
}

// MutationRecorder counts successful cart mutations by operation.
type MutationRecorder interface {
	CartMutation(operation string)
}

// CartEvent is published on cart.<operation> after every successful mutation.
type CartEvent struct {
	UserID     string    `json:"userId"`
	Operation  string    `json:"operation"`
	ListingID  string    `json:"listingId,omitempty"`
	CartItemID string    `json:"cartItemId,omitempty"`
	Quantity   int       `json:"quantity,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

type CartServiceConfig struct {
	MaxLineQuantity int
}

type cartService struct {
	cartRepo  repository.CartRepository
	listings  ListingLookup
	publisher repository.EventPublisher
	recorder  MutationRecorder
	log       logger.Logger
	maxQty    int

	locks userLocks
	reads singleflight.Group
}

func NewCartService(
	cartRepo repository.CartRepository,
	listings ListingLookup,
	publisher repository.EventPublisher,
	recorder MutationRecorder,
	log logger.Logger,
	cfg CartServiceConfig,
) CartService {
	maxQty := cfg.MaxLineQuantity
	if maxQty <= 0 {
		maxQty = defaultMaxLineQuantity
	}
	return &cartService{
		cartRepo:  cartRepo,
		listings:  listings,
		publisher: publisher,
		recorder:  recorder,
		log:       log,
		maxQty:    maxQty,
		locks:     userLocks{locks: make(map[string]*userLock)},
	}
}

func (s *cartService) AddItem(ctx context.Context, userID, listingID string, quantity int) error {
	s.log.Infof("Adding item to cart: UserID=%s, ListingID=%s, Quantity=%d", userID, listingID, quantity)
	if quantity < 1 {
		return fmt.Errorf("%w: %w", ErrValidation, ErrInvalidQuantity)
	}

	listing, err := s.listings.GetLiveListing(ctx, listingID)
	if err != nil {
		if errors.Is(err, ErrListingNotFound) {
			return err
		}
		return fmt.Errorf("could not load listing %s: %w", listingID, err)
	}

	unlock := s.locks.lock(userID)
	defer unlock()

	cart, err := s.cartRepo.GetByUserID(ctx, userID)
	if err != nil {
		s.log.Errorf("Error getting cart for user %s: %v", userID, err)
		return fmt.Errorf("could not retrieve cart: %w", err)
	}

	item, err := cart.AddListing(listing, quantity, s.maxQty)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if err := s.cartRepo.Save(ctx, cart); err != nil {
		s.log.Errorf("Error saving cart for user %s: %v", userID, err)
		return fmt.Errorf("could not save cart: %w", err)
	}

	s.afterMutation(ctx, CartEvent{
		UserID:     userID,
		Operation:  OpItemAdded,
		ListingID:  listingID,
		CartItemID: item.ID,
		Quantity:   item.Quantity,
	})
	return nil
}

// GetCart joins every line with the live listing. Concurrent reads for the
// same user share one load; a mutation detaches later readers from a load
// that started before it. The shared load runs on its own context so one
// caller giving up does not fail the others.
func (s *cartService) GetCart(ctx context.Context, userID string) (*entity.CartView, error) {
	ch := s.reads.DoChan(userID, func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedReadTimeout)
		defer cancel()
		return s.loadView(loadCtx, userID)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*entity.CartView), nil
	}
}

func (s *cartService) loadView(ctx context.Context, userID string) (*entity.CartView, error) {
	cart, err := s.cartRepo.GetByUserID(ctx, userID)
	if err != nil {
		s.log.Errorf("Error getting cart for user %s: %v", userID, err)
		return nil, fmt.Errorf("could not retrieve cart: %w", err)
	}

	lines := make([]entity.CartLine, 0, len(cart.Items))
	for _, item := range cart.Items {
		line := entity.CartLine{CartItem: item, AvailableStock: item.Quantity}

		listing, err := s.listings.GetListing(ctx, item.ListingID)
		switch {
		case err == nil:
			line.AvailableStock = listing.Stock
			if !listing.IsActive() {
				line.AvailableStock = 0
			}
			line.IsOutOfStock = line.AvailableStock == 0
		case errors.Is(err, ErrListingNotFound):
			line.AvailableStock = 0
			line.IsOutOfStock = true
		default:
			s.log.Warnf("Failed to refresh listing %s for cart of user %s: %v", item.ListingID, userID, err)
		}
		lines = append(lines, line)
	}

	return &entity.CartView{
		CartID:  cart.ID,
		UserID:  cart.UserID,
		Lines:   lines,
		Summary: entity.Summarize(lines),
	}, nil
}

func (s *cartService) UpdateQuantity(ctx context.Context, userID, cartItemID string, quantity int) error {
	s.log.Infof("Updating item quantity: UserID=%s, CartItemID=%s, Quantity=%d", userID, cartItemID, quantity)
	if quantity < 1 {
		return fmt.Errorf("%w: %w", ErrValidation, ErrInvalidQuantity)
	}

	unlock := s.locks.lock(userID)
	defer unlock()

	cart, err := s.cartRepo.GetByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("could not retrieve cart: %w", err)
	}
	item, _ := cart.ItemByID(cartItemID)
	if item == nil {
		return ErrCartItemNotFound
	}

	stock := 0
	listing, err := s.listings.GetLiveListing(ctx, item.ListingID)
	switch {
	case err == nil:
		if listing.IsActive() {
			stock = listing.Stock
		}
	case errors.Is(err, ErrListingNotFound):
	default:
		return fmt.Errorf("could not load listing %s: %w", item.ListingID, err)
	}

	if err := cart.UpdateItemQuantity(cartItemID, quantity, stock); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if err := s.cartRepo.Save(ctx, cart); err != nil {
		s.log.Errorf("Error saving cart for user %s: %v", userID, err)
		return fmt.Errorf("could not save cart: %w", err)
	}

	s.afterMutation(ctx, CartEvent{
		UserID:     userID,
		Operation:  OpQuantityUpdated,
		ListingID:  item.ListingID,
		CartItemID: cartItemID,
		Quantity:   quantity,
	})
	return nil
}

// RemoveItem succeeds when the line is already gone.
func (s *cartService) RemoveItem(ctx context.Context, userID, cartItemID string) error {
	s.log.Infof("Removing item from cart: UserID=%s, CartItemID=%s", userID, cartItemID)

	unlock := s.locks.lock(userID)
	defer unlock()

	cart, err := s.cartRepo.GetByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("could not retrieve cart: %w", err)
	}
	if !cart.RemoveItem(cartItemID) {
		s.log.Debugf("Cart item %s already absent for user %s", cartItemID, userID)
		return nil
	}
	if err := s.cartRepo.Save(ctx, cart); err != nil {
		s.log.Errorf("Error saving cart for user %s: %v", userID, err)
		return fmt.Errorf("could not save cart: %w", err)
	}

	s.afterMutation(ctx, CartEvent{UserID: userID, Operation: OpItemRemoved, CartItemID: cartItemID})
	return nil
}

func (s *cartService) SetSelected(ctx context.Context, userID, cartItemID string, selected bool) error {
	unlock := s.locks.lock(userID)
	defer unlock()

	cart, err := s.cartRepo.GetByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("could not retrieve cart: %w", err)
	}
	if err := cart.SetSelected(cartItemID, selected); err != nil {
		return err
	}
	if err := s.cartRepo.Save(ctx, cart); err != nil {
		s.log.Errorf("Error saving cart for user %s: %v", userID, err)
		return fmt.Errorf("could not save cart: %w", err)
	}

	s.afterMutation(ctx, CartEvent{UserID: userID, Operation: OpSelectionSet, CartItemID: cartItemID})
	return nil
}

func (s *cartService) ClearCart(ctx context.Context, userID string) error {
	s.log.Infof("Clearing cart for user %s", userID)

	unlock := s.locks.lock(userID)
	defer unlock()

	if err := s.cartRepo.DeleteByUserID(ctx, userID); err != nil {
		s.log.Errorf("Error clearing cart for user %s: %v", userID, err)
		return fmt.Errorf("could not clear cart: %w", err)
	}

	s.afterMutation(ctx, CartEvent{UserID: userID, Operation: OpCleared})
	return nil
}

// afterMutation runs under the user lock once the change is stored. A failed
// publish never fails the mutation.
func (s *cartService) afterMutation(ctx context.Context, event CartEvent) {
	s.reads.Forget(event.UserID)
	if s.recorder != nil {
		s.recorder.CartMutation(event.Operation)
	}
	if s.publisher == nil {
		return
	}
	event.OccurredAt = time.Now().UTC()
	if err := s.publisher.Publish(ctx, cartEventSubjectPrefix+event.Operation, event); err != nil {
		s.log.Warnf("Failed to publish %s event for user %s: %v", event.Operation, event.UserID, err)
	}
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

// userLocks hands out one mutex per user and forgets it once no goroutine
// holds or waits on it.
type userLocks struct {
	mu    sync.Mutex
	locks map[string]*userLock
}

func (l *userLocks) lock(userID string) func() {
	l.mu.Lock()
	ul, ok := l.locks[userID]
	if !ok {
		ul = &userLock{}
		l.locks[userID] = ul
	}
	ul.refs++
	l.mu.Unlock()

	ul.mu.Lock()
	return func() {
		ul.mu.Unlock()
		l.mu.Lock()
		ul.refs--
		if ul.refs == 0 {
			delete(l.locks, userID)
		}
		l.mu.Unlock()
	}
}
