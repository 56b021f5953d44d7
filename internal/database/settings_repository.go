package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/DanieleMarcon/lasoluzione-backend/internal/models"
)

// SettingsRepository handles the singleton booking_settings row (id = 1)
type SettingsRepository struct {
	db DB
}

// NewSettingsRepository creates a new SettingsRepository
func NewSettingsRepository(db DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

const settingsColumns = `id, enabled_types, prepay_types, enable_date_time_step, fixed_date, fixed_time,
	lunch_requires_prepay, dinner_requires_prepay, cover_cents,
	hero_title, hero_image_url, menu_title, menu_image_url, events_title, events_image_url, updated_at`

func scanSettings(row interface {
	Scan(dest ...interface{}) error
}) (*models.BookingSettings, error) {
	var s models.BookingSettings
	err := row.Scan(
		&s.ID, &s.EnabledTypes, &s.PrepayTypes, &s.EnableDateTimeStep, &s.FixedDate, &s.FixedTime,
		&s.LunchRequiresPrepay, &s.DinnerRequiresPrepay, &s.CoverCents,
		&s.HeroTitle, &s.HeroImageURL, &s.MenuTitle, &s.MenuImageURL, &s.EventsTitle, &s.EventsImageURL,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Get retrieves the settings row. Returns ErrNotFound when the row has
// never been written; callers fall back to defaults.
func (r *SettingsRepository) Get() (*models.BookingSettings, error) {
	query := `SELECT ` + settingsColumns + ` FROM booking_settings WHERE id = 1`

	s, err := scanSettings(r.db.QueryRow(query))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch booking settings: %w", err)
	}
	return s, nil
}

// Upsert writes the singleton row, creating it on first save
func (r *SettingsRepository) Upsert(s *models.BookingSettings) (*models.BookingSettings, error) {
	query := `
		INSERT INTO booking_settings (
			id, enabled_types, prepay_types, enable_date_time_step, fixed_date, fixed_time,
			lunch_requires_prepay, dinner_requires_prepay, cover_cents,
			hero_title, hero_image_url, menu_title, menu_image_url, events_title, events_image_url, updated_at
		)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO UPDATE SET
			enabled_types = EXCLUDED.enabled_types,
			prepay_types = EXCLUDED.prepay_types,
			enable_date_time_step = EXCLUDED.enable_date_time_step,
			fixed_date = EXCLUDED.fixed_date,
			fixed_time = EXCLUDED.fixed_time,
			lunch_requires_prepay = EXCLUDED.lunch_requires_prepay,
			dinner_requires_prepay = EXCLUDED.dinner_requires_prepay,
			cover_cents = EXCLUDED.cover_cents,
			hero_title = EXCLUDED.hero_title,
			hero_image_url = EXCLUDED.hero_image_url,
			menu_title = EXCLUDED.menu_title,
			menu_image_url = EXCLUDED.menu_image_url,
			events_title = EXCLUDED.events_title,
			events_image_url = EXCLUDED.events_image_url,
			updated_at = EXCLUDED.updated_at
		RETURNING ` + settingsColumns

	saved, err := scanSettings(r.db.QueryRow(query,
		s.EnabledTypes, s.PrepayTypes, s.EnableDateTimeStep, s.FixedDate, s.FixedTime,
		s.LunchRequiresPrepay, s.DinnerRequiresPrepay, s.CoverCents,
		s.HeroTitle, s.HeroImageURL, s.MenuTitle, s.MenuImageURL, s.EventsTitle, s.EventsImageURL,
		time.Now(),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to save booking settings: %w", err)
	}
	return saved, nil
}
