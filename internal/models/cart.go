package models

import "time"

// Cart is an ephemeral shopping cart identified by an opaque token
type Cart struct {
	ID         int64     `db:"id" json:"id"`
	Token      string    `db:"token" json:"token"`
	TotalCents int64     `db:"total_cents" json:"total_cents"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// CartItem snapshots product name and price at add time. The snapshot is
// never recomputed from the live product record.
type CartItem struct {
	ID                 int64  `db:"id" json:"id"`
	CartID             int64  `db:"cart_id" json:"cart_id"`
	ProductID          int64  `db:"product_id" json:"product_id"`
	NameSnapshot       string `db:"name_snapshot" json:"name"`
	PriceCentsSnapshot int64  `db:"price_cents_snapshot" json:"price_cents"`
	Quantity           int    `db:"quantity" json:"quantity"`
}

// Subtotal returns the snapshot line total in minor units
func (i CartItem) Subtotal() int64 {
	return i.PriceCentsSnapshot * int64(i.Quantity)
}

// AddCartItemRequest adds a product to a cart
type AddCartItemRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required,min=1"`
}

// UpdateCartItemRequest changes a line quantity
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

// CartResponse is the cart payload returned to clients
type CartResponse struct {
	Token      string     `json:"token"`
	Items      []CartItem `json:"items"`
	TotalCents int64      `json:"total_cents"`
}
