package services

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DanieleMarcon/lasoluzione-backend/internal/models"
)

func TestSettingsGet_FallsBackToDefaults(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := &mockDatabase{db: db}
	service := NewSettingsService(mockDB, testLogger())

	mock.ExpectQuery("SELECT (.+) FROM booking_settings").
		WillReturnError(sql.ErrNoRows)

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, int64(1), settings.ID)
	assert.True(t, settings.EnableDateTimeStep)
	assert.True(t, settings.EnabledTypes.Contains(models.BookingTypePranzo))
	assert.True(t, settings.EnabledTypes.Contains(models.BookingTypeCena))
	assert.True(t, settings.EnabledTypes.Contains(models.BookingTypeEvento))
	assert.True(t, settings.PrepayTypes.Contains(models.BookingTypeEvento))
	assert.False(t, settings.PrepayTypes.Contains(models.BookingTypePranzo))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsGet_FallsBackOnQueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := &mockDatabase{db: db}
	service := NewSettingsService(mockDB, testLogger())

	// A transient failure must not bubble up and take intake offline
	mock.ExpectQuery("SELECT (.+) FROM booking_settings").
		WillReturnError(errors.New("connection refused"))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, int64(1), settings.ID)
	assert.True(t, settings.EnableDateTimeStep)
	assert.True(t, settings.EnabledTypes.Contains(models.BookingTypePranzo))
	assert.True(t, settings.PrepayTypes.Contains(models.BookingTypeEvento))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsGet_ReturnsStoredRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := &mockDatabase{db: db}
	service := NewSettingsService(mockDB, testLogger())

	mock.ExpectQuery("SELECT (.+) FROM booking_settings").
		WillReturnRows(settingsRows().AddRow(
			1, []byte(`{cena}`), []byte(`{}`), false, "2026-12-31", "20:30",
			false, true, int64(1500),
			"Titolo", "", "", "", "", "", time.Now(),
		))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.False(t, settings.EnableDateTimeStep)
	assert.True(t, settings.EnabledTypes.Contains(models.BookingTypeCena))
	assert.False(t, settings.EnabledTypes.Contains(models.BookingTypePranzo))
	require.NotNil(t, settings.FixedDate)
	assert.Equal(t, "2026-12-31", *settings.FixedDate)
	assert.Equal(t, int64(1500), settings.CoverCents)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsUpdate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := &mockDatabase{db: db}
	service := NewSettingsService(mockDB, testLogger())

	mock.ExpectQuery("INSERT INTO booking_settings").
		WillReturnRows(settingsRows().AddRow(
			1, []byte(`{pranzo,cena}`), []byte(`{evento}`), true, nil, nil,
			false, false, int64(0),
			"", "", "", "", "", "", time.Now(),
		))

	saved, err := service.Update(&models.UpdateBookingSettingsRequest{
		EnabledTypes:       []string{models.BookingTypePranzo, models.BookingTypeCena},
		PrepayTypes:        []string{models.BookingTypeEvento},
		EnableDateTimeStep: true,
	})
	require.NoError(t, err)
	assert.True(t, saved.EnabledTypes.Contains(models.BookingTypePranzo))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTypeIsEnabled(t *testing.T) {
	service := &SettingsService{}
	settings := &models.BookingSettings{
		EnabledTypes: models.StringArray{models.BookingTypePranzo, models.BookingTypeCena},
	}

	assert.True(t, service.TypeIsEnabled(settings, models.BookingTypePranzo))
	assert.True(t, service.TypeIsEnabled(settings, models.BookingTypeCena))
	assert.False(t, service.TypeIsEnabled(settings, models.BookingTypeEvento))
	assert.False(t, service.TypeIsEnabled(settings, "colazione"))
}

func TestTypeRequiresPrepay(t *testing.T) {
	service := &SettingsService{}

	tests := []struct {
		name        string
		settings    *models.BookingSettings
		bookingType string
		expected    bool
	}{
		{
			name:        "Event in prepay list",
			settings:    &models.BookingSettings{PrepayTypes: models.StringArray{models.BookingTypeEvento}},
			bookingType: models.BookingTypeEvento,
			expected:    true,
		},
		{
			name:        "Lunch not in prepay list",
			settings:    &models.BookingSettings{PrepayTypes: models.StringArray{models.BookingTypeEvento}},
			bookingType: models.BookingTypePranzo,
			expected:    false,
		},
		{
			name:        "Legacy lunch flag",
			settings:    &models.BookingSettings{LunchRequiresPrepay: true},
			bookingType: models.BookingTypePranzo,
			expected:    true,
		},
		{
			name:        "Legacy dinner flag",
			settings:    &models.BookingSettings{DinnerRequiresPrepay: true},
			bookingType: models.BookingTypeCena,
			expected:    true,
		},
		{
			name:        "Legacy lunch flag does not affect dinner",
			settings:    &models.BookingSettings{LunchRequiresPrepay: true},
			bookingType: models.BookingTypeCena,
			expected:    false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, service.TypeRequiresPrepay(tc.settings, tc.bookingType))
		})
	}
}

func TestResolveBookingDate(t *testing.T) {
	service := &SettingsService{}

	t.Run("Client date and time", func(t *testing.T) {
		settings := &models.BookingSettings{EnableDateTimeStep: true}

		resolved, err := service.ResolveBookingDate(settings, "2026-10-02", "20:30")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 10, 2, 20, 30, 0, 0, time.UTC), resolved)
	})

	t.Run("Missing time defaults to midnight", func(t *testing.T) {
		settings := &models.BookingSettings{EnableDateTimeStep: true}

		resolved, err := service.ResolveBookingDate(settings, "2026-10-02", "")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 10, 2, 0, 0, 0, 0, time.UTC), resolved)
	})

	t.Run("Fixed values override when step is disabled", func(t *testing.T) {
		fixedDate := "2026-12-31"
		fixedTime := "21:00"
		settings := &models.BookingSettings{
			EnableDateTimeStep: false,
			FixedDate:          &fixedDate,
			FixedTime:          &fixedTime,
		}

		resolved, err := service.ResolveBookingDate(settings, "2026-01-01", "12:00")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 12, 31, 21, 0, 0, 0, time.UTC), resolved)
	})

	t.Run("Client values kept when step is enabled", func(t *testing.T) {
		fixedDate := "2026-12-31"
		settings := &models.BookingSettings{
			EnableDateTimeStep: true,
			FixedDate:          &fixedDate,
		}

		resolved, err := service.ResolveBookingDate(settings, "2026-01-01", "12:00")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC), resolved)
	})

	t.Run("Invalid date", func(t *testing.T) {
		settings := &models.BookingSettings{EnableDateTimeStep: true}

		_, err := service.ResolveBookingDate(settings, "not-a-date", "20:00")
		assert.Error(t, err)
	})
}

func settingsRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "enabled_types", "prepay_types", "enable_date_time_step", "fixed_date", "fixed_time",
		"lunch_requires_prepay", "dinner_requires_prepay", "cover_cents",
		"hero_title", "hero_image_url", "menu_title", "menu_image_url", "events_title", "events_image_url", "updated_at",
	})
}
