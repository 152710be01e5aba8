package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/BerenSaglam41/BackendMarket-sub001/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type cartFixture struct {
	repo      *MockCartRepository
	listings  *MockListingLookup
	publisher *MockEventPublisher
	recorder  *countingRecorder
	svc       CartService
}

func newCartFixture(maxQty int) *cartFixture {
	f := &cartFixture{
		repo:      new(MockCartRepository),
		listings:  new(MockListingLookup),
		publisher: new(MockEventPublisher),
		recorder:  newCountingRecorder(),
	}
	f.svc = NewCartService(f.repo, f.listings, f.publisher, f.recorder, NewNoOpLogger(), CartServiceConfig{MaxLineQuantity: maxQty})
	return f
}

func testListing(id string, price float64, stock int) *entity.Listing {
	return &entity.Listing{
		ID:         id,
		ProductID:  "p-" + id,
		Title:      "Product " + id,
		SellerName: "Store",
		Price:      price,
		Stock:      stock,
		Status:     entity.ListingStatusActive,
	}
}

func TestCartService_AddItem_Success_NewItem(t *testing.T) {
	f := newCartFixture(0)
	ctx := context.Background()
	cart := entity.NewCart("user1")

	f.listings.On("GetLiveListing", ctx, "5").Return(testListing("5", 100, 3), nil).Once()
	f.repo.On("GetByUserID", ctx, "user1").Return(cart, nil).Once()
	f.repo.On("Save", ctx, mock.MatchedBy(func(c *entity.Cart) bool {
		return len(c.Items) == 1 && c.Items[0].Quantity == 2 && c.Items[0].UnitPrice == 100
	})).Return(nil).Once()
	f.publisher.On("Publish", ctx, "cart.item_added", mock.MatchedBy(func(e CartEvent) bool {
		return e.UserID == "user1" && e.ListingID == "5" && e.Quantity == 2
	})).Return(nil).Once()

	err := f.svc.AddItem(ctx, "user1", "5", 2)

	require.NoError(t, err)
	assert.Equal(t, 1, f.recorder.count(OpItemAdded))
	f.repo.AssertExpectations(t)
	f.listings.AssertExpectations(t)
	f.publisher.AssertExpectations(t)
}

func TestCartService_AddItem_IncrementClampsToStock(t *testing.T) {
	f := newCartFixture(0)
	ctx := context.Background()
	listing := testListing("5", 100, 3)
	cart := entity.NewCart("user1")
	_, err := cart.AddListing(listing, 2, 0)
	require.NoError(t, err)

	f.listings.On("GetLiveListing", ctx, "5").Return(listing, nil)
	f.repo.On("GetByUserID", ctx, "user1").Return(cart, nil)
	f.repo.On("Save", ctx, cart).Return(nil)
	f.publisher.On("Publish", ctx, "cart.item_added", mock.Anything).Return(nil)

	require.NoError(t, f.svc.AddItem(ctx, "user1", "5", 5))

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)
}

func TestCartService_AddItem_ValidationFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("zero quantity", func(t *testing.T) {
		f := newCartFixture(0)
		err := f.svc.AddItem(ctx, "user1", "5", 0)
		assert.ErrorIs(t, err, ErrValidation)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
		f.listings.AssertNotCalled(t, "GetLiveListing", mock.Anything, mock.Anything)
	})

	t.Run("unknown listing", func(t *testing.T) {
		f := newCartFixture(0)
		f.listings.On("GetLiveListing", ctx, "404").Return(nil, ErrListingNotFound)
		err := f.svc.AddItem(ctx, "user1", "404", 1)
		assert.ErrorIs(t, err, ErrListingNotFound)
		f.repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("out of stock", func(t *testing.T) {
		f := newCartFixture(0)
		f.listings.On("GetLiveListing", ctx, "5").Return(testListing("5", 100, 0), nil)
		f.repo.On("GetByUserID", ctx, "user1").Return(entity.NewCart("user1"), nil)
		err := f.svc.AddItem(ctx, "user1", "5", 1)
		assert.ErrorIs(t, err, ErrValidation)
		assert.ErrorIs(t, err, ErrOutOfStock)
		f.repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		assert.Equal(t, 0, f.recorder.count(OpItemAdded))
	})
}

func TestCartService_AddItem_PublishFailureIsNotFatal(t *testing.T) {
	f := newCartFixture(0)
	ctx := context.Background()

	f.listings.On("GetLiveListing", ctx, "5").Return(testListing("5", 100, 3), nil)
	f.repo.On("GetByUserID", ctx, "user1").Return(entity.NewCart("user1"), nil)
	f.repo.On("Save", ctx, mock.Anything).Return(nil)
	f.publisher.On("Publish", ctx, "cart.item_added", mock.Anything).Return(errors.New("nats down"))

	assert.NoError(t, f.svc.AddItem(ctx, "user1", "5", 1))
}

func TestCartService_AddItem_SaveError(t *testing.T) {
	f := newCartFixture(0)
	ctx := context.Background()
	saveErr := errors.New("db down")

	f.listings.On("GetLiveListing", ctx, "5").Return(testListing("5", 100, 3), nil)
	f.repo.On("GetByUserID", ctx, "user1").Return(entity.NewCart("user1"), nil)
	f.repo.On("Save", ctx, mock.Anything).Return(saveErr)

	err := f.svc.AddItem(ctx, "user1", "5", 1)

	assert.ErrorIs(t, err, saveErr)
	f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestCartService_GetCart_RefreshesStock(t *testing.T) {
	f := newCartFixture(0)
	ctx := context.Background()
	cart := entity.NewCart("user1")
	_, _ = cart.AddListing(testListing("1", 100, 5), 2, 0)
	_, _ = cart.AddListing(testListing("2", 25, 5), 2, 0)
	_, _ = cart.AddListing(testListing("3", 10, 5), 1, 0)
	cart.Items[1].IsSelected = false

	live := testListing("1", 150, 4)
	f.repo.On("GetByUserID", mock.Anything, "user1").Return(cart, nil)
	f.listings.On("GetListing", mock.Anything, "1").Return(live, nil)
	f.listings.On("GetListing", mock.Anything, "2").Return(testListing("2", 25, 0), nil)
	f.listings.On("GetListing", mock.Anything, "3").Return(nil, ErrListingNotFound)

	view, err := f.svc.GetCart(ctx, "user1")

	require.NoError(t, err)
	require.Len(t, view.Lines, 3)
	assert.Equal(t, 4, view.Lines[0].AvailableStock)
	assert.False(t, view.Lines[0].IsOutOfStock)
	assert.Equal(t, 100.0, view.Lines[0].UnitPrice, "unit price stays at the snapshot")
	assert.True(t, view.Lines[1].IsOutOfStock)
	assert.True(t, view.Lines[2].IsOutOfStock)
	assert.Equal(t, 3, view.Summary.ItemCount)
	assert.Equal(t, 5, view.Summary.TotalQuantity)
	assert.Equal(t, 210.0, view.Summary.SelectedTotal)
}

func TestCartService_GetCart_ListingLookupErrorKeepsLine(t *testing.T) {
	f := newCartFixture(0)
	ctx := context.Background()
	cart := entity.NewCart("user1")
	_, _ = cart.AddListing(testListing("1", 100, 5), 2, 0)

	f.repo.On("GetByUserID", mock.Anything, "user1").Return(cart, nil)
	f.listings.On("GetListing", mock.Anything, "1").Return(nil, errors.New("catalog timeout"))

	view, err := f.svc.GetCart(ctx, "user1")

	require.NoError(t, err)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, 2, view.Lines[0].AvailableStock)
	assert.False(t, view.Lines[0].IsOutOfStock)
}

func TestCartService_GetCart_SeesMutationDuringInFlightLoad(t *testing.T) {
	f := newCartFixture(0)
	ctx := context.Background()

	before := entity.NewCart("user1")
	_, _ = before.AddListing(testListing("1", 10, 5), 1, 0)
	after := entity.NewCart("user1")
	_, _ = after.AddListing(testListing("1", 10, 5), 1, 0)

	started := make(chan struct{})
	release := make(chan struct{})
	f.repo.On("GetByUserID", mock.Anything, "user1").Return(before, nil).Once()
	f.repo.On("GetByUserID", mock.Anything, "user1").Return(after, nil)
	f.listings.On("GetListing", mock.Anything, "1").Run(func(mock.Arguments) {
		close(started)
		<-release
	}).Return(testListing("1", 10, 5), nil).Once()
	f.listings.On("GetListing", mock.Anything, "1").Return(testListing("1", 10, 5), nil)
	f.listings.On("GetListing", mock.Anything, "2").Return(testListing("2", 20, 5), nil)
	f.listings.On("GetLiveListing", ctx, "2").Return(testListing("2", 20, 5), nil)
	f.repo.On("Save", ctx, after).Return(nil)
	f.publisher.On("Publish", ctx, "cart.item_added", mock.Anything).Return(nil)

	stale := make(chan *entity.CartView, 1)
	go func() {
		view, _ := f.svc.GetCart(ctx, "user1")
		stale <- view
	}()
	<-started

	require.NoError(t, f.svc.AddItem(ctx, "user1", "2", 1))

	fresh := make(chan *entity.CartView, 1)
	go func() {
		view, err := f.svc.GetCart(ctx, "user1")
		assert.NoError(t, err)
		fresh <- view
	}()

	select {
	case view := <-fresh:
		require.NotNil(t, view)
		assert.Len(t, view.Lines, 2)
	case <-time.After(2 * time.Second):
		t.Fatal("read after a mutation waited on the earlier load")
	}

	close(release)
	view := <-stale
	require.NotNil(t, view)
	assert.Len(t, view.Lines, 1)
}

func TestCartService_GetCart_CallerCancelDoesNotFailSharedLoad(t *testing.T) {
	f := newCartFixture(0)
	cart := entity.NewCart("user1")
	_, _ = cart.AddListing(testListing("1", 10, 5), 1, 0)

	started := make(chan struct{})
	release := make(chan struct{})
	var loadErr error
	f.repo.On("GetByUserID", mock.Anything, "user1").Return(cart, nil)
	f.listings.On("GetListing", mock.Anything, "1").Run(func(args mock.Arguments) {
		close(started)
		<-release
		loadErr = args.Get(0).(context.Context).Err()
	}).Return(testListing("1", 10, 5), nil).Once()
	f.listings.On("GetListing", mock.Anything, "1").Return(testListing("1", 10, 5), nil).Maybe()

	first, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := f.svc.GetCart(first, "user1")
		firstErr <- err
	}()
	<-started
	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	second := make(chan error, 1)
	go func() {
		view, err := f.svc.GetCart(context.Background(), "user1")
		if err == nil && len(view.Lines) != 1 {
			err = errors.New("unexpected line count")
		}
		second <- err
	}()
	close(release)

	assert.NoError(t, <-second)
	assert.NoError(t, loadErr)
}

func TestCartService_UpdateQuantity(t *testing.T) {
	ctx := context.Background()

	setup := func() (*cartFixture, *entity.Cart, string) {
		f := newCartFixture(0)
		cart := entity.NewCart("user1")
		item, _ := cart.AddListing(testListing("1", 10, 5), 1, 0)
		f.repo.On("GetByUserID", ctx, "user1").Return(cart, nil)
		f.listings.On("GetLiveListing", ctx, "1").Return(testListing("1", 10, 5), nil)
		return f, cart, item.ID
	}

	t.Run("within stock", func(t *testing.T) {
		f, cart, id := setup()
		f.repo.On("Save", ctx, cart).Return(nil)
		f.publisher.On("Publish", ctx, "cart.quantity_updated", mock.Anything).Return(nil)

		require.NoError(t, f.svc.UpdateQuantity(ctx, "user1", id, 4))
		assert.Equal(t, 4, cart.Items[0].Quantity)
		assert.Equal(t, 1, f.recorder.count(OpQuantityUpdated))
	})

	t.Run("above stock is rejected", func(t *testing.T) {
		f, cart, id := setup()
		err := f.svc.UpdateQuantity(ctx, "user1", id, 6)
		assert.ErrorIs(t, err, ErrValidation)
		assert.ErrorIs(t, err, ErrInsufficientStock)
		assert.Equal(t, 1, cart.Items[0].Quantity)
		f.repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("unknown item", func(t *testing.T) {
		f, _, _ := setup()
		err := f.svc.UpdateQuantity(ctx, "user1", "missing", 1)
		assert.ErrorIs(t, err, ErrCartItemNotFound)
	})

	t.Run("zero quantity", func(t *testing.T) {
		f := newCartFixture(0)
		err := f.svc.UpdateQuantity(ctx, "user1", "any", 0)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	})
}

func TestCartService_RemoveItem_IsIdempotent(t *testing.T) {
	f := newCartFixture(0)
	ctx := context.Background()
	cart := entity.NewCart("user1")
	item, _ := cart.AddListing(testListing("1", 10, 5), 1, 0)
	id := item.ID

	f.repo.On("GetByUserID", ctx, "user1").Return(cart, nil)
	f.repo.On("Save", ctx, cart).Return(nil).Once()
	f.publisher.On("Publish", ctx, "cart.item_removed", mock.Anything).Return(nil).Once()

	require.NoError(t, f.svc.RemoveItem(ctx, "user1", id))
	require.NoError(t, f.svc.RemoveItem(ctx, "user1", id))

	assert.Empty(t, cart.Items)
	assert.Equal(t, 1, f.recorder.count(OpItemRemoved))
	f.repo.AssertNumberOfCalls(t, "Save", 1)
}

func TestCartService_SetSelectedAndClear(t *testing.T) {
	f := newCartFixture(0)
	ctx := context.Background()
	cart := entity.NewCart("user1")
	item, _ := cart.AddListing(testListing("1", 10, 5), 1, 0)

	f.repo.On("GetByUserID", ctx, "user1").Return(cart, nil)
	f.repo.On("Save", ctx, cart).Return(nil)
	f.repo.On("DeleteByUserID", ctx, "user1").Return(nil)
	f.publisher.On("Publish", ctx, mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, f.svc.SetSelected(ctx, "user1", item.ID, false))
	assert.False(t, cart.Items[0].IsSelected)
	assert.ErrorIs(t, f.svc.SetSelected(ctx, "user1", "missing", true), ErrCartItemNotFound)

	require.NoError(t, f.svc.ClearCart(ctx, "user1"))
	f.publisher.AssertCalled(t, "Publish", ctx, "cart.cleared", mock.Anything)
	assert.Equal(t, 1, f.recorder.count(OpCleared))
}

func TestUserLocks_SerializesAndForgets(t *testing.T) {
	locks := userLocks{locks: make(map[string]*userLock)}
	counter := 0
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.lock("user1")
			v := counter
			counter = v + 1
			unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
	assert.Empty(t, locks.locks)
}
