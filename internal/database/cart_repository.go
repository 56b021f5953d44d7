package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/DanieleMarcon/lasoluzione-backend/internal/models"
)

// CartRepository handles database operations for carts and cart_items
type CartRepository struct {
	db DB
}

// NewCartRepository creates a new CartRepository
func NewCartRepository(db DB) *CartRepository {
	return &CartRepository{db: db}
}

// Create inserts an empty cart with the given opaque token
func (r *CartRepository) Create(token string) (*models.Cart, error) {
	query := `
		INSERT INTO carts (token, total_cents)
		VALUES ($1, 0)
		RETURNING id, token, total_cents, created_at, updated_at
	`

	var cart models.Cart
	err := r.db.QueryRow(query, token).Scan(
		&cart.ID, &cart.Token, &cart.TotalCents, &cart.CreatedAt, &cart.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}
	return &cart, nil
}

// GetByToken retrieves a cart by its opaque token
func (r *CartRepository) GetByToken(token string) (*models.Cart, error) {
	query := `SELECT id, token, total_cents, created_at, updated_at FROM carts WHERE token = $1`

	var cart models.Cart
	err := r.db.QueryRow(query, token).Scan(
		&cart.ID, &cart.Token, &cart.TotalCents, &cart.CreatedAt, &cart.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch cart: %w", err)
	}
	return &cart, nil
}

// GetByID retrieves a cart by id
func (r *CartRepository) GetByID(id int64) (*models.Cart, error) {
	query := `SELECT id, token, total_cents, created_at, updated_at FROM carts WHERE id = $1`

	var cart models.Cart
	err := r.db.QueryRow(query, id).Scan(
		&cart.ID, &cart.Token, &cart.TotalCents, &cart.CreatedAt, &cart.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch cart: %w", err)
	}
	return &cart, nil
}

// GetItems retrieves all line items for a cart
func (r *CartRepository) GetItems(cartID int64) ([]models.CartItem, error) {
	query := `
		SELECT id, cart_id, product_id, name_snapshot, price_cents_snapshot, quantity
		FROM cart_items
		WHERE cart_id = $1
		ORDER BY id
	`

	rows, err := r.db.Query(query, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cart items: %w", err)
	}
	defer rows.Close()

	items := []models.CartItem{}
	for rows.Next() {
		var item models.CartItem
		err := rows.Scan(
			&item.ID, &item.CartID, &item.ProductID,
			&item.NameSnapshot, &item.PriceCentsSnapshot, &item.Quantity,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// AddItem inserts a line item carrying the product snapshot. If the
// product is already in the cart the quantity is bumped instead.
func (r *CartRepository) AddItem(item *models.CartItem) error {
	query := `
		INSERT INTO cart_items (cart_id, product_id, name_snapshot, price_cents_snapshot, quantity)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (cart_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
	`

	_, err := r.db.Exec(query,
		item.CartID, item.ProductID, item.NameSnapshot, item.PriceCentsSnapshot, item.Quantity,
	)
	if err != nil {
		return fmt.Errorf("failed to add cart item: %w", err)
	}
	return nil
}

// UpdateItemQuantity changes a line quantity
func (r *CartRepository) UpdateItemQuantity(cartID, itemID int64, quantity int) error {
	query := `UPDATE cart_items SET quantity = $1 WHERE id = $2 AND cart_id = $3`

	result, err := r.db.Exec(query, quantity, itemID, cartID)
	if err != nil {
		return fmt.Errorf("failed to update cart item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteItem removes a line item
func (r *CartRepository) DeleteItem(cartID, itemID int64) error {
	result, err := r.db.Exec(`DELETE FROM cart_items WHERE id = $1 AND cart_id = $2`, itemID, cartID)
	if err != nil {
		return fmt.Errorf("failed to delete cart item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateTotal stores the recomputed cart total
func (r *CartRepository) UpdateTotal(cartID int64, totalCents int64) error {
	query := `UPDATE carts SET total_cents = $1, updated_at = $2 WHERE id = $3`

	_, err := r.db.Exec(query, totalCents, time.Now(), cartID)
	if err != nil {
		return fmt.Errorf("failed to update cart total: %w", err)
	}
	return nil
}

// EmptyTx removes all items and zeroes the total inside a transaction
func (r *CartRepository) EmptyTx(tx *sql.Tx, cartID int64) error {
	if _, err := tx.Exec(`DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return fmt.Errorf("failed to empty cart: %w", err)
	}
	if _, err := tx.Exec(`UPDATE carts SET total_cents = 0, updated_at = $1 WHERE id = $2`, time.Now(), cartID); err != nil {
		return fmt.Errorf("failed to zero cart total: %w", err)
	}
	return nil
}
