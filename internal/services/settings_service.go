package services

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/DanieleMarcon/lasoluzione-backend/internal/database"
	"github.com/DanieleMarcon/lasoluzione-backend/internal/models"
)

// ErrTypeNotEnabled is returned when a booking type is not currently accepted
var ErrTypeNotEnabled = fmt.Errorf("booking type is not enabled")

// SettingsService reads and writes the singleton booking configuration.
// Reads never fail: a missing row or an unreachable settings table
// yields safe defaults so booking intake stays available.
type SettingsService struct {
	repo   *database.SettingsRepository
	logger *logrus.Logger
}

// NewSettingsService creates a new settings service
func NewSettingsService(db database.DB, logger *logrus.Logger) *SettingsService {
	return &SettingsService{
		repo:   database.NewSettingsRepository(db),
		logger: logger,
	}
}

// DefaultSettings returns the configuration used before the first admin save
func DefaultSettings() *models.BookingSettings {
	return &models.BookingSettings{
		ID:                 1,
		EnabledTypes:       models.StringArray{models.BookingTypePranzo, models.BookingTypeCena, models.BookingTypeEvento},
		PrepayTypes:        models.StringArray{models.BookingTypeEvento},
		EnableDateTimeStep: true,
	}
}

// Get retrieves the current settings. Any read failure, not just a
// missing row, falls back to the defaults: a flaky settings table must
// not take booking intake offline.
func (s *SettingsService) Get() (*models.BookingSettings, error) {
	settings, err := s.repo.Get()
	if err != nil {
		if err != database.ErrNotFound {
			s.logger.WithError(err).Warn("Failed to load booking settings, using defaults")
		}
		return DefaultSettings(), nil
	}
	return settings, nil
}

// Update writes the settings row from an admin payload
func (s *SettingsService) Update(req *models.UpdateBookingSettingsRequest) (*models.BookingSettings, error) {
	settings := &models.BookingSettings{
		ID:                   1,
		EnabledTypes:         models.StringArray(req.EnabledTypes),
		PrepayTypes:          models.StringArray(req.PrepayTypes),
		EnableDateTimeStep:   req.EnableDateTimeStep,
		FixedDate:            req.FixedDate,
		FixedTime:            req.FixedTime,
		LunchRequiresPrepay:  req.LunchRequiresPrepay,
		DinnerRequiresPrepay: req.DinnerRequiresPrepay,
		CoverCents:           req.CoverCents,
		HeroTitle:            req.HeroTitle,
		HeroImageURL:         req.HeroImageURL,
		MenuTitle:            req.MenuTitle,
		MenuImageURL:         req.MenuImageURL,
		EventsTitle:          req.EventsTitle,
		EventsImageURL:       req.EventsImageURL,
	}
	return s.repo.Upsert(settings)
}

// TypeIsEnabled reports whether the given booking type is accepted
func (s *SettingsService) TypeIsEnabled(settings *models.BookingSettings, bookingType string) bool {
	return settings.EnabledTypes.Contains(bookingType)
}

// TypeRequiresPrepay reports whether a booking of the given type must be
// paid before confirmation. Legacy per-meal flags are honored alongside
// the prepay type list.
func (s *SettingsService) TypeRequiresPrepay(settings *models.BookingSettings, bookingType string) bool {
	switch bookingType {
	case models.BookingTypePranzo:
		if settings.LunchRequiresPrepay {
			return true
		}
	case models.BookingTypeCena:
		if settings.DinnerRequiresPrepay {
			return true
		}
	}
	return settings.PrepayTypes.Contains(bookingType)
}

// ResolveBookingDate combines the requested date and time into a single
// timestamp. When the date/time step is disabled, the configured fixed
// date and time override whatever the client sent.
func (s *SettingsService) ResolveBookingDate(settings *models.BookingSettings, date, timeOfDay string) (time.Time, error) {
	if !settings.EnableDateTimeStep {
		if settings.FixedDate != nil {
			date = *settings.FixedDate
		}
		if settings.FixedTime != nil {
			timeOfDay = *settings.FixedTime
		}
	}

	if timeOfDay == "" {
		timeOfDay = "00:00"
	}

	resolved, err := time.Parse("2006-01-02 15:04", date+" "+timeOfDay)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid booking date %q %q: %w", date, timeOfDay, err)
	}
	return resolved, nil
}
