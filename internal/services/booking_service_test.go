package services

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DanieleMarcon/lasoluzione-backend/internal/config"
	"github.com/DanieleMarcon/lasoluzione-backend/internal/models"
)

func newBookingService(db *mockDatabase) *BookingService {
	logger := testLogger()
	settings := NewSettingsService(db, logger)
	verification := NewVerificationService(db, time.Hour, logger)
	payment := NewPaymentService(&config.PaymentConfig{
		Environment:    "sandbox",
		MerchantKey:    "merchant-key",
		MerchantSecret: "merchant-secret",
		Currency:       "EUR",
	}, logger)
	email := NewEmailService(&config.SMTPConfig{Mode: "dev"}, "http://localhost:3000", logger)
	return NewBookingService(db, settings, verification, payment, email, logger)
}

func TestBookingCreate_TypeNotEnabled(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := newBookingService(&mockDatabase{db: db})

	// Only lunch is enabled
	mock.ExpectQuery("SELECT (.+) FROM booking_settings").
		WillReturnRows(settingsRows().AddRow(
			1, []byte(`{pranzo}`), []byte(`{}`), true, nil, nil,
			false, false, int64(0),
			"", "", "", "", "", "", time.Now(),
		))

	_, err = service.Create(&models.CreateBookingRequest{
		Type:   models.BookingTypeCena,
		Date:   "2026-10-02",
		Time:   "20:30",
		People: 2,
		Name:   "Mario Rossi",
		Email:  "guest@example.com",
	}, "", "")
	assert.Equal(t, ErrTypeNotEnabled, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingCreate_InvalidDate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := newBookingService(&mockDatabase{db: db})

	mock.ExpectQuery("SELECT (.+) FROM booking_settings").
		WillReturnRows(settingsRows().AddRow(
			1, []byte(`{pranzo,cena,evento}`), []byte(`{}`), true, nil, nil,
			false, false, int64(0),
			"", "", "", "", "", "", time.Now(),
		))

	_, err = service.Create(&models.CreateBookingRequest{
		Type:   models.BookingTypeCena,
		Date:   "02/10/2026",
		Time:   "20:30",
		People: 2,
		Name:   "Mario Rossi",
		Email:  "guest@example.com",
	}, "", "")
	assert.True(t, errors.Is(err, ErrInvalidBookingDate))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingCreate_PendingWithVerification(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := newBookingService(&mockDatabase{db: db})

	// Defaults apply: dinner needs no prepayment
	mock.ExpectQuery("SELECT (.+) FROM booking_settings").
		WillReturnError(sql.ErrNoRows)

	mock.ExpectQuery("INSERT INTO contacts").
		WillReturnRows(contactRows().AddRow(
			1, "guest@example.com", "Mario Rossi", "", true, false, time.Now(), 1, time.Now(),
		))

	mock.ExpectQuery("INSERT INTO bookings").
		WillReturnRows(bookingRows().AddRow(
			1, time.Date(2026, 10, 2, 20, 30, 0, 0, time.UTC), 2, models.BookingTypeCena,
			"Mario Rossi", "guest@example.com", "",
			nil, models.BookingStatusPending, nil, nil, time.Now(), time.Now(),
		))

	// Verification issuance
	mock.ExpectExec("DELETE FROM booking_verifications").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("INSERT INTO booking_verifications").
		WillReturnRows(verificationRows().AddRow(
			1, 1, "guest@example.com", "tok", "non", time.Now().Add(time.Hour),
			nil, nil, nil, time.Now(),
		))

	result, err := service.Create(&models.CreateBookingRequest{
		Type:   models.BookingTypeCena,
		Date:   "2026-10-02",
		Time:   "20:30",
		People: 2,
		Name:   "Mario Rossi",
		Email:  "guest@example.com",
	}, "203.0.113.9", "Mozilla/5.0")
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusPending, result.Booking.Status)
	assert.Empty(t, result.CheckoutURL)
	assert.False(t, result.EmailFailed)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingCreate_ZeroCoverSkipsPrepay(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := newBookingService(&mockDatabase{db: db})

	// Events are in the prepay list, but a zero cover charge means there
	// is nothing to collect and the booking falls back to verification.
	mock.ExpectQuery("SELECT (.+) FROM booking_settings").
		WillReturnRows(settingsRows().AddRow(
			1, []byte(`{pranzo,cena,evento}`), []byte(`{evento}`), true, nil, nil,
			false, false, int64(0),
			"", "", "", "", "", "", time.Now(),
		))

	mock.ExpectQuery("INSERT INTO contacts").
		WillReturnRows(contactRows().AddRow(
			1, "guest@example.com", "Mario Rossi", "", true, false, time.Now(), 1, time.Now(),
		))
	mock.ExpectQuery("INSERT INTO bookings").
		WillReturnRows(bookingRows().AddRow(
			1, time.Date(2026, 10, 2, 21, 0, 0, 0, time.UTC), 3, models.BookingTypeEvento,
			"Mario Rossi", "guest@example.com", "",
			nil, models.BookingStatusPending, nil, nil, time.Now(), time.Now(),
		))
	mock.ExpectExec("DELETE FROM booking_verifications").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("INSERT INTO booking_verifications").
		WillReturnRows(verificationRows().AddRow(
			1, 1, "guest@example.com", "tok", "non", time.Now().Add(time.Hour),
			nil, nil, nil, time.Now(),
		))

	result, err := service.Create(&models.CreateBookingRequest{
		Type:   models.BookingTypeEvento,
		Date:   "2026-10-02",
		Time:   "21:00",
		People: 3,
		Name:   "Mario Rossi",
		Email:  "guest@example.com",
	}, "", "")
	require.NoError(t, err)
	assert.Empty(t, result.CheckoutURL)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingUpdateStatus_Validation(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := newBookingService(&mockDatabase{db: db})

	err = service.UpdateStatus(1, "archived")
	assert.True(t, errors.Is(err, ErrInvalidBookingStatus))

	mock.ExpectExec("UPDATE bookings SET status").
		WithArgs(models.BookingStatusCancelled, sqlmock.AnyArg(), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = service.UpdateStatus(1, models.BookingStatusCancelled)
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}
