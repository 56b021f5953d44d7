package services

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DanieleMarcon/lasoluzione-backend/internal/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestNewVerificationService_DefaultTTL(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := &mockDatabase{db: db}
	service := NewVerificationService(mockDB, 0, testLogger())

	assert.Equal(t, DefaultVerificationTTL, service.ttl)
}

func TestIssueVerification(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := &mockDatabase{db: db}
	service := NewVerificationService(mockDB, 48*time.Hour, testLogger())

	// Expect opportunistic cleanup
	mock.ExpectExec("DELETE FROM booking_verifications").
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	mock.ExpectQuery("INSERT INTO booking_verifications").
		WithArgs(int64(7), "guest@example.com", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(verificationRows().AddRow(
			1, 7, "guest@example.com", "tok", "non", time.Now().Add(48*time.Hour),
			nil, nil, nil, time.Now(),
		))

	raw, err := service.Issue(7, "guest@example.com", "203.0.113.9", "Mozilla/5.0 (X11; Linux x86_64) Firefox/121.0")
	require.NoError(t, err)
	// token and nonce are hex, joined by a dot
	assert.Regexp(t, "^[0-9a-f]{48}\\.[0-9a-f]{24}$", raw)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIssueVerification_RetriesOnCollision(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := &mockDatabase{db: db}
	service := NewVerificationService(mockDB, time.Hour, testLogger())

	mock.ExpectExec("DELETE FROM booking_verifications").
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	// First insert hits the unique constraint, second succeeds
	mock.ExpectQuery("INSERT INTO booking_verifications").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "booking_verifications_token_key"})
	mock.ExpectQuery("INSERT INTO booking_verifications").
		WillReturnRows(verificationRows().AddRow(
			2, 7, "guest@example.com", "tok", "non", time.Now().Add(time.Hour),
			nil, nil, nil, time.Now(),
		))

	raw, err := service.Issue(7, "guest@example.com", "", "")
	require.NoError(t, err)
	assert.NotEmpty(t, raw)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIssueVerification_CleanupFailureDoesNotBlock(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := &mockDatabase{db: db}
	service := NewVerificationService(mockDB, time.Hour, testLogger())

	mock.ExpectExec("DELETE FROM booking_verifications").
		WillReturnError(fmt.Errorf("database error"))
	mock.ExpectQuery("INSERT INTO booking_verifications").
		WillReturnRows(verificationRows().AddRow(
			3, 7, "guest@example.com", "tok", "non", time.Now().Add(time.Hour),
			nil, nil, nil, time.Now(),
		))

	raw, err := service.Issue(7, "guest@example.com", "", "")
	require.NoError(t, err)
	assert.NotEmpty(t, raw)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConsume_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := &mockDatabase{db: db}
	service := NewVerificationService(mockDB, time.Hour, testLogger())

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM booking_verifications WHERE token").
		WithArgs("abc").
		WillReturnRows(verificationRows().AddRow(
			1, 7, "guest@example.com", "abc", "def", time.Now().Add(time.Hour),
			nil, nil, nil, time.Now(),
		))
	mock.ExpectExec("UPDATE booking_verifications").
		WithArgs(sqlmock.AnyArg(), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE bookings SET status").
		WithArgs(models.BookingStatusConfirmed, sqlmock.AnyArg(), int64(7), models.BookingStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id").
		WithArgs(int64(7)).
		WillReturnRows(bookingRows().AddRow(
			7, time.Now(), 2, models.BookingTypeCena, "Mario Rossi", "guest@example.com", "+390551234567",
			nil, models.BookingStatusConfirmed, nil, nil, time.Now(), time.Now(),
		))

	result, err := service.Consume("abc.def")
	require.NoError(t, err)
	assert.Equal(t, VerifyStatusOK, result.Status)
	require.NotNil(t, result.Booking)
	assert.Equal(t, models.BookingStatusConfirmed, result.Booking.Status)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConsume_MalformedToken(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := &mockDatabase{db: db}
	service := NewVerificationService(mockDB, time.Hour, testLogger())

	for _, raw := range []string{"", "no-dot", ".nonce", "token."} {
		result, err := service.Consume(raw)
		require.NoError(t, err)
		assert.Equal(t, VerifyStatusInvalid, result.Status)
	}
}

func TestConsume_UnknownToken(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := &mockDatabase{db: db}
	service := NewVerificationService(mockDB, time.Hour, testLogger())

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM booking_verifications WHERE token").
		WithArgs("abc").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	result, err := service.Consume("abc.def")
	require.NoError(t, err)
	assert.Equal(t, VerifyStatusInvalid, result.Status)
	assert.Nil(t, result.Booking)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConsume_WrongNonce(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := &mockDatabase{db: db}
	service := NewVerificationService(mockDB, time.Hour, testLogger())

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM booking_verifications WHERE token").
		WithArgs("abc").
		WillReturnRows(verificationRows().AddRow(
			1, 7, "guest@example.com", "abc", "expected-nonce", time.Now().Add(time.Hour),
			nil, nil, nil, time.Now(),
		))
	mock.ExpectRollback()

	result, err := service.Consume("abc.wrong-nonce")
	require.NoError(t, err)
	assert.Equal(t, VerifyStatusInvalid, result.Status)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConsume_AlreadyUsed(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := &mockDatabase{db: db}
	service := NewVerificationService(mockDB, time.Hour, testLogger())

	usedAt := time.Now().Add(-time.Minute)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM booking_verifications WHERE token").
		WithArgs("abc").
		WillReturnRows(verificationRows().AddRow(
			1, 7, "guest@example.com", "abc", "def", time.Now().Add(time.Hour),
			usedAt, nil, nil, time.Now(),
		))
	mock.ExpectRollback()

	result, err := service.Consume("abc.def")
	require.NoError(t, err)
	assert.Equal(t, VerifyStatusUsed, result.Status)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConsume_Expired(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := &mockDatabase{db: db}
	service := NewVerificationService(mockDB, time.Hour, testLogger())

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM booking_verifications WHERE token").
		WithArgs("abc").
		WillReturnRows(verificationRows().AddRow(
			1, 7, "guest@example.com", "abc", "def", time.Now().Add(-time.Minute),
			nil, nil, nil, time.Now(),
		))
	mock.ExpectRollback()

	result, err := service.Consume("abc.def")
	require.NoError(t, err)
	assert.Equal(t, VerifyStatusExpired, result.Status)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConsume_LostRace(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := &mockDatabase{db: db}
	service := NewVerificationService(mockDB, time.Hour, testLogger())

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM booking_verifications WHERE token").
		WithArgs("abc").
		WillReturnRows(verificationRows().AddRow(
			1, 7, "guest@example.com", "abc", "def", time.Now().Add(time.Hour),
			nil, nil, nil, time.Now(),
		))
	// The guarded update touches no row: a concurrent consumer won
	mock.ExpectExec("UPDATE booking_verifications").
		WithArgs(sqlmock.AnyArg(), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	result, err := service.Consume("abc.def")
	require.NoError(t, err)
	assert.Equal(t, VerifyStatusUsed, result.Status)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSplitToken(t *testing.T) {
	token, nonce, ok := splitToken("abc.def")
	assert.True(t, ok)
	assert.Equal(t, "abc", token)
	assert.Equal(t, "def", nonce)

	// Only the first dot separates token and nonce
	token, nonce, ok = splitToken("abc.def.ghi")
	assert.True(t, ok)
	assert.Equal(t, "abc", token)
	assert.Equal(t, "def.ghi", nonce)

	_, _, ok = splitToken("no-dot")
	assert.False(t, ok)
}

func TestRandomHex(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		s, err := randomHex(24)
		require.NoError(t, err)
		assert.Len(t, s, 48)
		seen[s] = true
	}
	assert.Len(t, seen, 100)
}

func verificationRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "booking_id", "email", "token", "nonce", "expires_at",
		"used_at", "ip_address", "user_agent", "created_at",
	})
}

func bookingRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "date", "people", "type", "name", "email", "phone",
		"notes", "status", "prepay_token", "order_id", "created_at", "updated_at",
	})
}

// mockDatabase implements the database.DB interface for testing
type mockDatabase struct {
	db *sql.DB
}

func (m *mockDatabase) Get(dest interface{}, query string, args ...interface{}) error {
	return fmt.Errorf("Get not implemented in mock")
}

func (m *mockDatabase) Select(dest interface{}, query string, args ...interface{}) error {
	return fmt.Errorf("Select not implemented in mock")
}

func (m *mockDatabase) Exec(query string, args ...interface{}) (sql.Result, error) {
	return m.db.Exec(query, args...)
}

func (m *mockDatabase) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return m.db.Query(query, args...)
}

func (m *mockDatabase) QueryRow(query string, args ...interface{}) *sql.Row {
	return m.db.QueryRow(query, args...)
}

func (m *mockDatabase) Begin() (*sql.Tx, error) {
	return m.db.Begin()
}

func (m *mockDatabase) Close() error {
	return m.db.Close()
}

func (m *mockDatabase) Ping() error {
	return m.db.Ping()
}
