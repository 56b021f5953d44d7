package models

import "time"

// Order statuses
const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusFailed    = "failed"
	OrderStatusCancelled = "cancelled"
)

// FreeOrderRef is the payment reference recorded for zero-cost orders,
// which never touch the payment gateway.
const FreeOrderRef = "free-order"

// Order is a checkout record derived from a cart, tracked through payment
// to fulfillment. Totals are in minor currency units.
type Order struct {
	ID          int64     `db:"id" json:"id"`
	CartID      int64     `db:"cart_id" json:"cart_id"`
	TotalCents  int64     `db:"total_cents" json:"total_cents"`
	Status      string    `db:"status" json:"status"`
	PaymentRef  string    `db:"payment_ref" json:"payment_ref"`
	ProviderRef *string   `db:"provider_ref" json:"provider_ref,omitempty"`
	Email       string    `db:"email" json:"email"`
	Name        string    `db:"name" json:"name"`
	Phone       string    `db:"phone" json:"phone"`
	Notes       *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// CheckoutRequest converts a cart into an order
type CheckoutRequest struct {
	CartToken string `json:"cart_token" binding:"required"`
	Name      string `json:"name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Phone     string `json:"phone"`
	Notes     string `json:"notes"`
}

// CheckoutResponse carries the hosted checkout URL when payment is due
type CheckoutResponse struct {
	OrderID     int64  `json:"order_id"`
	Status      string `json:"status"`
	TotalCents  int64  `json:"total_cents"`
	PaymentRef  string `json:"payment_ref"`
	CheckoutURL string `json:"checkout_url,omitempty"`
}
