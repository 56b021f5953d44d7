package models

import "time"

// BookingVerification is a single-use, time-limited token proving control
// of an email address before a pending booking is confirmed.
type BookingVerification struct {
	ID        int64      `db:"id" json:"id"`
	BookingID int64      `db:"booking_id" json:"booking_id"`
	Email     string     `db:"email" json:"email"`
	Token     string     `db:"token" json:"-"`
	Nonce     string     `db:"nonce" json:"-"`
	ExpiresAt time.Time  `db:"expires_at" json:"expires_at"`
	UsedAt    *time.Time `db:"used_at" json:"used_at,omitempty"`
	IPAddress *string    `db:"ip_address" json:"-"`
	UserAgent *string    `db:"user_agent" json:"-"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}
