package cartsync

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/BerenSaglam41/BackendMarket-sub001/internal/platform/logger"
)

// Engine owns the cart state of one client session. In guest mode the
// local store is the source of truth; once authenticated the server is, and
// every mutation is followed by a fetch.
//
// Lock order is op then mu. op serializes everything that talks to the
// gateway; mu guards the fields below it.
type Engine struct {
	store          LocalStore
	gateway        Gateway
	log            logger.Logger
	onUnauthorized func()

	op sync.Mutex

	mu            sync.RWMutex
	state         State
	authenticated bool
	// generation changes on every mode transition so that a fetch started
	// before a logout cannot overwrite the cleared state.
	generation uint64
}

// errNothingToDo lets a remote mutation finish without a gateway call.
var errNothingToDo = errors.New("nothing to do")

type Option func(*Engine)

// WithUnauthorizedHook registers fn to run after the engine has dropped to
// guest mode because the server rejected the credential.
func WithUnauthorizedHook(fn func()) Option {
	return func(e *Engine) { e.onUnauthorized = fn }
}

// NewEngine builds an engine in guest or authenticated mode. A guest engine
// is hydrated from store; an authenticated one starts empty until
// FetchCartFromBackend.
func NewEngine(store LocalStore, gateway Gateway, log logger.Logger, authenticated bool, opts ...Option) *Engine {
	e := &Engine{
		store:         store,
		gateway:       gateway,
		log:           log,
		authenticated: authenticated,
		state:         State{Items: []LineItem{}},
	}
	for _, opt := range opts {
		opt(e)
	}
	if !authenticated {
		e.state.Items = store.Load()
	}
	return e
}

func (e *Engine) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state.Clone()
}

func (e *Engine) Authenticated() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.authenticated
}

func (e *Engine) TotalQuantity() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return TotalQuantity(e.state.Items)
}

func (e *Engine) TotalSelectedPrice() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return TotalSelectedPrice(e.state.Items)
}

// AddToCart adds quantity of listing. A guest add of a listing with no stock
// is ignored, and a guest quantity is clamped to stock.
func (e *Engine) AddToCart(ctx context.Context, listing Listing, quantity int) error {
	if e.mutateLocal(func(s *State) { addLocal(s, listing, quantity) }) {
		return nil
	}
	return e.mutateRemote(ctx, func(ctx context.Context, _ State) error {
		return e.gateway.Add(ctx, listing.ListingID, quantity)
	})
}

func addLocal(s *State, listing Listing, quantity int) {
	if quantity < 1 {
		quantity = 1
	}
	if listing.Stock <= 0 {
		return
	}
	if i := indexOf(s.Items, listing.ListingID); i >= 0 {
		item := &s.Items[i]
		item.AvailableStock = listing.Stock
		item.Quantity = min(item.Quantity+quantity, listing.Stock)
		item.IsOutOfStock = false
		item.recompute()
		return
	}
	item := LineItem{
		ListingID:       listing.ListingID,
		ProductID:       listing.ProductID,
		ProductName:     listing.ProductName,
		ProductImageURL: listing.ProductImageURL,
		StoreName:       listing.SellerName,
		UnitPrice:       listing.UnitPrice,
		Quantity:        min(quantity, listing.Stock),
		AvailableStock:  listing.Stock,
		IsSelected:      true,
	}
	item.recompute()
	s.Items = append(s.Items, item)
}

// UpdateQuantity addresses the line by listing id. For a guest, a quantity
// below 1 or an unknown listing is a no-op and larger values are clamped.
func (e *Engine) UpdateQuantity(ctx context.Context, listingID string, quantity int) error {
	local := e.mutateLocal(func(s *State) {
		i := indexOf(s.Items, listingID)
		if quantity < 1 || i < 0 {
			return
		}
		item := &s.Items[i]
		item.Quantity = min(quantity, item.AvailableStock)
		item.recompute()
	})
	if local {
		return nil
	}
	return e.mutateRemote(ctx, func(ctx context.Context, s State) error {
		cartItemID, err := cartItemIDFor(s, "update", listingID)
		if err != nil {
			return err
		}
		return e.gateway.UpdateQuantity(ctx, cartItemID, quantity)
	})
}

// RemoveFromCart is idempotent in both modes.
func (e *Engine) RemoveFromCart(ctx context.Context, listingID string) error {
	local := e.mutateLocal(func(s *State) {
		if i := indexOf(s.Items, listingID); i >= 0 {
			s.Items = append(s.Items[:i], s.Items[i+1:]...)
		}
	})
	if local {
		return nil
	}
	return e.mutateRemote(ctx, func(ctx context.Context, s State) error {
		i := indexOf(s.Items, listingID)
		if i < 0 || s.Items[i].CartItemID == "" {
			return errNothingToDo
		}
		return e.gateway.Remove(ctx, s.Items[i].CartItemID)
	})
}

// SetSelected toggles whether the line counts towards checkout.
func (e *Engine) SetSelected(ctx context.Context, listingID string, selected bool) error {
	local := e.mutateLocal(func(s *State) {
		if i := indexOf(s.Items, listingID); i >= 0 {
			s.Items[i].IsSelected = selected
		}
	})
	if local {
		return nil
	}
	return e.mutateRemote(ctx, func(ctx context.Context, s State) error {
		cartItemID, err := cartItemIDFor(s, "select", listingID)
		if err != nil {
			return err
		}
		return e.gateway.SetSelected(ctx, cartItemID, selected)
	})
}

func cartItemIDFor(s State, op, listingID string) (string, error) {
	i := indexOf(s.Items, listingID)
	if i < 0 || s.Items[i].CartItemID == "" {
		return "", &ValidationError{Op: op, StatusCode: http.StatusNotFound, Message: "listing " + listingID + " is not in the cart"}
	}
	return s.Items[i].CartItemID, nil
}

// FetchCartFromBackend replaces the state with the server's cart. It does
// nothing for a guest.
func (e *Engine) FetchCartFromBackend(ctx context.Context) error {
	e.op.Lock()
	defer e.op.Unlock()

	e.mu.RLock()
	authenticated, gen := e.authenticated, e.generation
	e.mu.RUnlock()
	if !authenticated {
		return nil
	}
	return e.refresh(ctx, gen)
}

// SyncLocalCartToBackend switches to authenticated mode and merges the guest
// items into the server cart one add at a time. Rejected items are skipped.
// The local store is cleared afterwards and the state replaced by a fetch.
// If that fetch fails the state is left empty until the next fetch.
// A rejected credential aborts the merge and keeps the guest cart.
func (e *Engine) SyncLocalCartToBackend(ctx context.Context) error {
	e.op.Lock()
	defer e.op.Unlock()

	e.mu.Lock()
	if e.authenticated {
		e.mu.Unlock()
		return nil
	}
	e.authenticated = true
	e.generation++
	gen := e.generation
	guest := e.state.Clone().Items
	e.mu.Unlock()

	e.log.Debugf("cart: merging %d guest items", len(guest))

	for _, item := range guest {
		err := e.gateway.Add(ctx, item.ListingID, item.Quantity)
		if err == nil {
			continue
		}
		if errors.Is(err, ErrUnauthorized) {
			e.mu.Lock()
			if e.generation == gen {
				e.authenticated = false
				e.generation++
			}
			e.mu.Unlock()
			e.log.Debug("cart: merge aborted, credential rejected")
			e.notifyUnauthorized()
			return err
		}
		e.log.Warnf("cart: skipping guest item %s during merge: %v", item.ListingID, err)
	}

	if err := e.store.Clear(); err != nil {
		e.log.Warnf("cart: failed to clear local cart after merge: %v", err)
	}
	if err := e.refresh(ctx, gen); err != nil {
		e.mu.Lock()
		if e.generation == gen {
			e.state = State{Items: []LineItem{}}
		}
		e.mu.Unlock()
		return err
	}
	return nil
}

// ClearCart wipes the in-memory and local cart without touching the server.
func (e *Engine) ClearCart() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.clearLocked()
}

// clearLocked requires e.mu held for writing.
func (e *Engine) clearLocked() {
	e.state = State{Items: []LineItem{}}
	if err := e.store.Clear(); err != nil {
		e.log.Warnf("cart: failed to clear local cart: %v", err)
	}
}

// EmptyCart removes every line: locally for a guest, on the server otherwise.
func (e *Engine) EmptyCart(ctx context.Context) error {
	if e.mutateLocal(func(s *State) { s.Items = []LineItem{} }) {
		return nil
	}
	return e.mutateRemote(ctx, func(ctx context.Context, _ State) error {
		return e.gateway.Clear(ctx)
	})
}

// HandleSessionEvent applies an identity transition. Login merges the guest
// cart. Logout and expiry drop to guest mode with an empty cart and make no
// network call.
func (e *Engine) HandleSessionEvent(ctx context.Context, ev SessionEvent) error {
	switch ev.Kind {
	case SessionLoggedIn:
		return e.SyncLocalCartToBackend(ctx)
	case SessionLoggedOut, SessionExpired:
		e.mu.Lock()
		if !e.authenticated {
			e.mu.Unlock()
			return nil
		}
		e.authenticated = false
		e.generation++
		e.clearLocked()
		e.mu.Unlock()
		e.log.Debugf("cart: session %s, switched to guest", ev.Kind)
	}
	return nil
}

// Run applies session events until ctx is done or events is closed.
func (e *Engine) Run(ctx context.Context, events <-chan SessionEvent) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := e.HandleSessionEvent(ctx, ev); err != nil {
				e.log.Warnf("cart: handling session event %s: %v", ev.Kind, err)
			}
		}
	}
}

// mutateLocal applies fn and persists when in guest mode. It reports
// whether it did.
func (e *Engine) mutateLocal(fn func(*State)) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.authenticated {
		return false
	}
	fn(&e.state)
	if err := e.store.Save(e.state.Items); err != nil {
		e.log.Warnf("cart: failed to persist local cart: %v", err)
	}
	return true
}

// mutateRemote runs call against a snapshot of the current state and then
// refetches. On failure the previous state stays in place.
func (e *Engine) mutateRemote(ctx context.Context, call func(context.Context, State) error) error {
	e.op.Lock()
	defer e.op.Unlock()

	e.mu.RLock()
	authenticated, gen := e.authenticated, e.generation
	snapshot := e.state.Clone()
	e.mu.RUnlock()
	if !authenticated {
		return ErrUnauthorized
	}

	if err := call(ctx, snapshot); err != nil {
		if errors.Is(err, errNothingToDo) {
			return nil
		}
		return e.remoteFailed(gen, err)
	}
	return e.refresh(ctx, gen)
}

func (e *Engine) refresh(ctx context.Context, gen uint64) error {
	st, err := e.gateway.Fetch(ctx)
	if err != nil {
		return e.remoteFailed(gen, err)
	}
	e.mu.Lock()
	if e.generation == gen {
		e.state = st
	}
	e.mu.Unlock()
	return nil
}

func (e *Engine) remoteFailed(gen uint64, err error) error {
	if !errors.Is(err, ErrUnauthorized) {
		return err
	}
	e.mu.Lock()
	if !e.authenticated || e.generation != gen {
		e.mu.Unlock()
		return err
	}
	e.authenticated = false
	e.generation++
	e.state = State{Items: []LineItem{}}
	e.mu.Unlock()

	e.log.Debug("cart: credential rejected, switched to guest")
	e.notifyUnauthorized()
	return err
}

func (e *Engine) notifyUnauthorized() {
	if e.onUnauthorized != nil {
		e.onUnauthorized()
	}
}
