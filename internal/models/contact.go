package models

import "time"

// Contact is an address-book row built from booking and checkout intake
type Contact struct {
	ID             int64      `db:"id" json:"id"`
	Email          string     `db:"email" json:"email"`
	Name           string     `db:"name" json:"name"`
	Phone          string     `db:"phone" json:"phone"`
	AgreePrivacy   bool       `db:"agree_privacy" json:"agree_privacy"`
	AgreeMarketing bool       `db:"agree_marketing" json:"agree_marketing"`
	LastBookingAt  *time.Time `db:"last_booking_at" json:"last_booking_at,omitempty"`
	TotalBookings  int        `db:"total_bookings" json:"total_bookings"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}

// MergeContactsRequest merges a duplicate contact into a survivor
type MergeContactsRequest struct {
	SurvivorID  int64 `json:"survivor_id" binding:"required"`
	DuplicateID int64 `json:"duplicate_id" binding:"required"`
}
