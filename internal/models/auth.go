package models

import "time"

// AuthToken is a magic-link sign-in token. Only the bcrypt hash is stored.
type AuthToken struct {
	ID        int64      `db:"id" json:"id"`
	Email     string     `db:"email" json:"email"`
	TokenHash string     `db:"token_hash" json:"-"`
	ExpiresAt time.Time  `db:"expires_at" json:"expires_at"`
	UsedAt    *time.Time `db:"used_at" json:"used_at,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

// MagicLinkRequest asks for a sign-in email
type MagicLinkRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// MagicLinkCallbackRequest redeems a sign-in token
type MagicLinkCallbackRequest struct {
	Email string `json:"email" binding:"required,email"`
	Token string `json:"token" binding:"required"`
}
