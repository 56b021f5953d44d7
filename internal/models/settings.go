package models

import "time"

// BookingSettings is the singleton configuration row (id fixed at 1)
// governing which booking types are enabled, which require prepayment,
// and fixed-vs-flexible scheduling.
type BookingSettings struct {
	ID                  int64       `db:"id" json:"id"`
	EnabledTypes        StringArray `db:"enabled_types" json:"enabled_types"`
	PrepayTypes         StringArray `db:"prepay_types" json:"prepay_types"`
	EnableDateTimeStep  bool        `db:"enable_date_time_step" json:"enable_date_time_step"`
	FixedDate           *string     `db:"fixed_date" json:"fixed_date,omitempty"`
	FixedTime           *string     `db:"fixed_time" json:"fixed_time,omitempty"`
	LunchRequiresPrepay bool        `db:"lunch_requires_prepay" json:"lunch_requires_prepay"`
	DinnerRequiresPrepay bool       `db:"dinner_requires_prepay" json:"dinner_requires_prepay"`
	CoverCents          int64       `db:"cover_cents" json:"cover_cents"`
	HeroTitle           string      `db:"hero_title" json:"hero_title"`
	HeroImageURL        string      `db:"hero_image_url" json:"hero_image_url"`
	MenuTitle           string      `db:"menu_title" json:"menu_title"`
	MenuImageURL        string      `db:"menu_image_url" json:"menu_image_url"`
	EventsTitle         string      `db:"events_title" json:"events_title"`
	EventsImageURL      string      `db:"events_image_url" json:"events_image_url"`
	UpdatedAt           time.Time   `db:"updated_at" json:"updated_at"`
}

// UpdateBookingSettingsRequest is the admin settings payload
type UpdateBookingSettingsRequest struct {
	EnabledTypes         []string `json:"enabled_types" binding:"required"`
	PrepayTypes          []string `json:"prepay_types"`
	EnableDateTimeStep   bool     `json:"enable_date_time_step"`
	FixedDate            *string  `json:"fixed_date"`
	FixedTime            *string  `json:"fixed_time"`
	LunchRequiresPrepay  bool     `json:"lunch_requires_prepay"`
	DinnerRequiresPrepay bool     `json:"dinner_requires_prepay"`
	CoverCents           int64    `json:"cover_cents"`
	HeroTitle            string   `json:"hero_title"`
	HeroImageURL         string   `json:"hero_image_url"`
	MenuTitle            string   `json:"menu_title"`
	MenuImageURL         string   `json:"menu_image_url"`
	EventsTitle          string   `json:"events_title"`
	EventsImageURL       string   `json:"events_image_url"`
}
