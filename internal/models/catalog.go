package models

import "time"

// Product is a sellable catalog item exposed through admin CRUD and
// public read-only endpoints.
type Product struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Slug        string    `db:"slug" json:"slug"`
	Description string    `db:"description" json:"description"`
	PriceCents  int64     `db:"price_cents" json:"price_cents"`
	Active      bool      `db:"active" json:"active"`
	OrderIndex  int       `db:"order_index" json:"order_index"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// EventInstance is a dated event with optional capacity and price
type EventInstance struct {
	ID                    int64     `db:"id" json:"id"`
	Title                 string    `db:"title" json:"title"`
	Slug                  string    `db:"slug" json:"slug"`
	StartsAt              time.Time `db:"starts_at" json:"starts_at"`
	Capacity              *int      `db:"capacity" json:"capacity,omitempty"`
	PriceCents            int64     `db:"price_cents" json:"price_cents"`
	Active                bool      `db:"active" json:"active"`
	AllowEmailOnlyBooking bool      `db:"allow_email_only_booking" json:"allow_email_only_booking"`
	CreatedAt             time.Time `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time `db:"updated_at" json:"updated_at"`
}

// MenuDish is a menu entry with lunch/dinner visibility flags
type MenuDish struct {
	ID               int64     `db:"id" json:"id"`
	Name             string    `db:"name" json:"name"`
	Slug             string    `db:"slug" json:"slug"`
	Description      string    `db:"description" json:"description"`
	PriceCents       int64     `db:"price_cents" json:"price_cents"`
	Category         string    `db:"category" json:"category"`
	Active           bool      `db:"active" json:"active"`
	OrderIndex       int       `db:"order_index" json:"order_index"`
	VisibleAtLunch   bool      `db:"visible_at_lunch" json:"visible_at_lunch"`
	VisibleAtDinner  bool      `db:"visible_at_dinner" json:"visible_at_dinner"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// CatalogSection groups catalog content on the public site
type CatalogSection struct {
	ID             int64     `db:"id" json:"id"`
	Key            string    `db:"key" json:"key"`
	Title          string    `db:"title" json:"title"`
	Description    string    `db:"description" json:"description"`
	EnableDateTime bool      `db:"enable_date_time" json:"enable_date_time"`
	Active         bool      `db:"active" json:"active"`
	DisplayOrder   int       `db:"display_order" json:"display_order"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// UpsertProductRequest covers admin create and update
type UpsertProductRequest struct {
	Name        string `json:"name" binding:"required"`
	Slug        string `json:"slug" binding:"required"`
	Description string `json:"description"`
	PriceCents  int64  `json:"price_cents" binding:"min=0"`
	Active      *bool  `json:"active"`
	OrderIndex  int    `json:"order_index"`
}

// UpsertEventRequest covers admin create and update
type UpsertEventRequest struct {
	Title                 string `json:"title" binding:"required"`
	Slug                  string `json:"slug" binding:"required"`
	StartsAt              string `json:"starts_at" binding:"required"`
	Capacity              *int   `json:"capacity"`
	PriceCents            int64  `json:"price_cents" binding:"min=0"`
	Active                *bool  `json:"active"`
	AllowEmailOnlyBooking bool   `json:"allow_email_only_booking"`
}

// UpsertMenuDishRequest covers admin create and update
type UpsertMenuDishRequest struct {
	Name            string `json:"name" binding:"required"`
	Slug            string `json:"slug" binding:"required"`
	Description     string `json:"description"`
	PriceCents      int64  `json:"price_cents" binding:"min=0"`
	Category        string `json:"category"`
	Active          *bool  `json:"active"`
	OrderIndex      int    `json:"order_index"`
	VisibleAtLunch  bool   `json:"visible_at_lunch"`
	VisibleAtDinner bool   `json:"visible_at_dinner"`
}

// UpsertSectionRequest covers admin create and update
type UpsertSectionRequest struct {
	Key            string `json:"key" binding:"required"`
	Title          string `json:"title" binding:"required"`
	Description    string `json:"description"`
	EnableDateTime bool   `json:"enable_date_time"`
	Active         *bool  `json:"active"`
	DisplayOrder   int    `json:"display_order"`
}
