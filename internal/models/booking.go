package models

import "time"

// Booking types accepted by the public intake endpoint
const (
	BookingTypePranzo = "pranzo"
	BookingTypeCena   = "cena"
	BookingTypeEvento = "evento"
)

// Booking statuses
const (
	BookingStatusPending        = "pending"
	BookingStatusPendingPayment = "pending_payment"
	BookingStatusConfirmed      = "confirmed"
	BookingStatusCancelled      = "cancelled"
	BookingStatusFailed         = "failed"
)

// Booking represents a reservation request for a table, meal service, or event slot
type Booking struct {
	ID          int64     `db:"id" json:"id"`
	Date        time.Time `db:"date" json:"date"`
	People      int       `db:"people" json:"people"`
	Type        string    `db:"type" json:"type"`
	Name        string    `db:"name" json:"name"`
	Email       string    `db:"email" json:"email"`
	Phone       string    `db:"phone" json:"phone"`
	Notes       *string   `db:"notes" json:"notes,omitempty"`
	Status      string    `db:"status" json:"status"`
	PrepayToken *string   `db:"prepay_token" json:"prepay_token,omitempty"`
	OrderID     *int64    `db:"order_id" json:"order_id,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// CreateBookingRequest is the public booking intake payload
type CreateBookingRequest struct {
	Date   string `json:"date" binding:"required"`
	Time   string `json:"time"`
	People int    `json:"people" binding:"required,min=1"`
	Type   string `json:"type" binding:"required"`
	Name   string `json:"name" binding:"required"`
	Email  string `json:"email" binding:"required,email"`
	Phone  string `json:"phone"`
	Notes  string `json:"notes"`
}

// UpdateBookingStatusRequest is the admin status transition payload
type UpdateBookingStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// BookingFilter narrows admin booking listings
type BookingFilter struct {
	Status   string
	Type     string
	DateFrom *time.Time
	DateTo   *time.Time
	Limit    int
	Offset   int
}
