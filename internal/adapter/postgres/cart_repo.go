package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/BerenSaglam41/BackendMarket-sub001/internal/domain/entity"
	"github.com/BerenSaglam41/BackendMarket-sub001/internal/repository"
	"github.com/jmoiron/sqlx"
)

type cartRow struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type cartItemRow struct {
	ID                string         `db:"id"`
	ListingID         string         `db:"listing_id"`
	ProductID         string         `db:"product_id"`
	ProductName       string         `db:"product_name"`
	ProductImageURL   string         `db:"product_image_url"`
	StoreName         string         `db:"store_name"`
	UnitPrice         float64        `db:"unit_price"`
	Quantity          int            `db:"quantity"`
	IsSelected        bool           `db:"is_selected"`
	AppliedCouponCode sql.NullString `db:"applied_coupon_code"`
	DiscountApplied   float64        `db:"discount_applied"`
	AddedAt           time.Time      `db:"added_at"`
}

func (r cartItemRow) toEntity() entity.CartItem {
	item := entity.CartItem{
		ID:              r.ID,
		ListingID:       r.ListingID,
		ProductID:       r.ProductID,
		ProductName:     r.ProductName,
		ProductImageURL: r.ProductImageURL,
		StoreName:       r.StoreName,
		UnitPrice:       r.UnitPrice,
		Quantity:        r.Quantity,
		IsSelected:      r.IsSelected,
		DiscountApplied: r.DiscountApplied,
		AddedAt:         r.AddedAt,
	}
	if r.AppliedCouponCode.Valid {
		code := r.AppliedCouponCode.String
		item.AppliedCouponCode = &code
	}
	return item
}

const (
	selectCartQuery = `SELECT id, user_id, created_at, updated_at FROM carts WHERE user_id = $1`

	selectCartItemsQuery = `SELECT id, listing_id, product_id, product_name, product_image_url, store_name,
       unit_price, quantity, is_selected, applied_coupon_code, discount_applied, added_at
FROM cart_items WHERE cart_id = $1 ORDER BY position`

	upsertCartQuery = `INSERT INTO carts (id, user_id, created_at, updated_at) VALUES ($1, $2, $3, $4)
ON CONFLICT (user_id) DO UPDATE SET updated_at = EXCLUDED.updated_at
RETURNING id`

	deleteCartItemsQuery = `DELETE FROM cart_items WHERE cart_id = $1`

	insertCartItemQuery = `INSERT INTO cart_items (id, cart_id, listing_id, product_id, product_name, product_image_url,
       store_name, unit_price, quantity, is_selected, applied_coupon_code, discount_applied, position, added_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	deleteCartQuery = `DELETE FROM carts WHERE user_id = $1`
)

type cartRepository struct {
	db *sqlx.DB
}

func NewCartRepository(db *sqlx.DB) repository.CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) GetByUserID(ctx context.Context, userID string) (*entity.Cart, error) {
	var row cartRow
	if err := r.db.GetContext(ctx, &row, selectCartQuery, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.NewCart(userID), nil
		}
		return nil, fmt.Errorf("failed to load cart for user %s: %w", userID, err)
	}

	var itemRows []cartItemRow
	if err := r.db.SelectContext(ctx, &itemRows, selectCartItemsQuery, row.ID); err != nil {
		return nil, fmt.Errorf("failed to load items of cart %s: %w", row.ID, err)
	}

	cart := &entity.Cart{
		ID:        row.ID,
		UserID:    row.UserID,
		Items:     make([]entity.CartItem, 0, len(itemRows)),
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
	for _, ir := range itemRows {
		cart.Items = append(cart.Items, ir.toEntity())
	}
	return cart, nil
}

// Save replaces the stored lines of the cart with cart.Items in one
// transaction. Line order is kept through the position column.
func (r *cartRepository) Save(ctx context.Context, cart *entity.Cart) (err error) {
	if cart == nil || cart.UserID == "" {
		return errors.New("cannot save nil cart or cart with empty userID")
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin cart transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var cartID string
	if err = tx.QueryRowxContext(ctx, upsertCartQuery, cart.ID, cart.UserID, cart.CreatedAt, cart.UpdatedAt).Scan(&cartID); err != nil {
		return fmt.Errorf("failed to upsert cart for user %s: %w", cart.UserID, err)
	}
	cart.ID = cartID

	if _, err = tx.ExecContext(ctx, deleteCartItemsQuery, cartID); err != nil {
		return fmt.Errorf("failed to reset items of cart %s: %w", cartID, err)
	}

	for i, item := range cart.Items {
		var coupon sql.NullString
		if item.AppliedCouponCode != nil {
			coupon = sql.NullString{String: *item.AppliedCouponCode, Valid: true}
		}
		_, err = tx.ExecContext(ctx, insertCartItemQuery,
			item.ID, cartID, item.ListingID, item.ProductID, item.ProductName, item.ProductImageURL,
			item.StoreName, item.UnitPrice, item.Quantity, item.IsSelected, coupon, item.DiscountApplied,
			i, item.AddedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert item %s of cart %s: %w", item.ID, cartID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit cart %s: %w", cartID, err)
	}
	return nil
}

func (r *cartRepository) DeleteByUserID(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, deleteCartQuery, userID); err != nil {
		return fmt.Errorf("failed to delete cart for user %s: %w", userID, err)
	}
	return nil
}
