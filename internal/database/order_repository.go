package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/DanieleMarcon/lasoluzione-backend/internal/models"
)

// OrderRepository handles database operations for the orders table
type OrderRepository struct {
	db DB
}

// NewOrderRepository creates a new OrderRepository
func NewOrderRepository(db DB) *OrderRepository {
	return &OrderRepository{db: db}
}

const orderColumns = `id, cart_id, total_cents, status, payment_ref, provider_ref, email, name, phone, notes, created_at, updated_at`

func scanOrder(row interface {
	Scan(dest ...interface{}) error
}) (*models.Order, error) {
	var o models.Order
	err := row.Scan(
		&o.ID, &o.CartID, &o.TotalCents, &o.Status, &o.PaymentRef, &o.ProviderRef,
		&o.Email, &o.Name, &o.Phone, &o.Notes, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Create inserts an order and returns the stored row
func (r *OrderRepository) Create(o *models.Order) (*models.Order, error) {
	query := `
		INSERT INTO orders (cart_id, total_cents, status, payment_ref, provider_ref, email, name, phone, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + orderColumns

	created, err := scanOrder(r.db.QueryRow(query,
		o.CartID, o.TotalCents, o.Status, o.PaymentRef, o.ProviderRef,
		o.Email, o.Name, o.Phone, o.Notes,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	return created, nil
}

// GetByID retrieves an order by id
func (r *OrderRepository) GetByID(id int64) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	o, err := scanOrder(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch order: %w", err)
	}
	return o, nil
}

// GetByProviderRef retrieves an order by the gateway's session reference
func (r *OrderRepository) GetByProviderRef(ref string) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE provider_ref = $1`

	o, err := scanOrder(r.db.QueryRow(query, ref))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch order by provider ref: %w", err)
	}
	return o, nil
}

// GetByPaymentRef retrieves an order by its invoice reference
func (r *OrderRepository) GetByPaymentRef(ref string) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE payment_ref = $1`

	o, err := scanOrder(r.db.QueryRow(query, ref))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch order by payment ref: %w", err)
	}
	return o, nil
}

// UpdateStatus transitions an order's payment status
func (r *OrderRepository) UpdateStatus(id int64, status string) error {
	query := `UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.Exec(query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
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

// SetProviderRef records the gateway session reference after initiation
func (r *OrderRepository) SetProviderRef(id int64, providerRef string) error {
	query := `UPDATE orders SET provider_ref = $1, updated_at = $2 WHERE id = $3`

	_, err := r.db.Exec(query, providerRef, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to set provider ref: %w", err)
	}
	return nil
}
