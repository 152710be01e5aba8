package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/BerenSaglam41/BackendMarket-sub001/internal/domain/entity"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestCartRepository_GetByUserID_NoCartReturnsEmpty(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCartRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(selectCartQuery)).
		WithArgs("user1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "created_at", "updated_at"}))

	cart, err := repo.GetByUserID(context.Background(), "user1")

	require.NoError(t, err)
	assert.Equal(t, "user1", cart.UserID)
	assert.NotEmpty(t, cart.ID)
	assert.Empty(t, cart.Items)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartRepository_GetByUserID_LoadsItemsInOrder(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCartRepository(db)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(selectCartQuery)).
		WithArgs("user1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "created_at", "updated_at"}).
			AddRow("cart1", "user1", now, now))

	itemCols := []string{"id", "listing_id", "product_id", "product_name", "product_image_url", "store_name",
		"unit_price", "quantity", "is_selected", "applied_coupon_code", "discount_applied", "added_at"}
	mock.ExpectQuery(regexp.QuoteMeta(selectCartItemsQuery)).
		WithArgs("cart1").
		WillReturnRows(sqlmock.NewRows(itemCols).
			AddRow("i1", "5", "p5", "Phone", "", "Store", 100.0, 2, true, nil, 0.0, now).
			AddRow("i2", "7", "p7", "Case", "", "Store", 10.0, 1, false, "SAVE10", 1.0, now))

	cart, err := repo.GetByUserID(context.Background(), "user1")

	require.NoError(t, err)
	require.Len(t, cart.Items, 2)
	assert.Equal(t, "5", cart.Items[0].ListingID)
	assert.Nil(t, cart.Items[0].AppliedCouponCode)
	require.NotNil(t, cart.Items[1].AppliedCouponCode)
	assert.Equal(t, "SAVE10", *cart.Items[1].AppliedCouponCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartRepository_Save_ReplacesItemsInTransaction(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCartRepository(db)

	cart := entity.NewCart("user1")
	cart.Items = []entity.CartItem{
		{ID: "i1", ListingID: "5", Quantity: 2, UnitPrice: 100, IsSelected: true},
		{ID: "i2", ListingID: "7", Quantity: 1, UnitPrice: 10, IsSelected: true},
	}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(upsertCartQuery)).
		WithArgs(cart.ID, "user1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("existing-cart"))
	mock.ExpectExec(regexp.QuoteMeta(deleteCartItemsQuery)).
		WithArgs("existing-cart").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta(insertCartItemQuery)).
		WithArgs("i1", "existing-cart", "5", "", "", "", "", 100.0, 2, true, nil, 0.0, 0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(insertCartItemQuery)).
		WithArgs("i2", "existing-cart", "7", "", "", "", "", 10.0, 1, true, nil, 0.0, 1, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Save(context.Background(), cart)

	require.NoError(t, err)
	assert.Equal(t, "existing-cart", cart.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartRepository_Save_RollsBackOnItemFailure(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCartRepository(db)

	cart := entity.NewCart("user1")
	cart.Items = []entity.CartItem{{ID: "i1", ListingID: "5", Quantity: 1}}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(upsertCartQuery)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(cart.ID))
	mock.ExpectExec(regexp.QuoteMeta(deleteCartItemsQuery)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(insertCartItemQuery)).
		WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	err := repo.Save(context.Background(), cart)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "constraint violation")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartRepository_Save_RejectsNilCart(t *testing.T) {
	db, _ := newMockDB(t)
	repo := NewCartRepository(db)

	assert.Error(t, repo.Save(context.Background(), nil))
	assert.Error(t, repo.Save(context.Background(), &entity.Cart{}))
}

func TestCartRepository_DeleteByUserID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCartRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(deleteCartQuery)).
		WithArgs("user1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.DeleteByUserID(context.Background(), "user1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
