package services

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/DanieleMarcon/lasoluzione-backend/internal/config"
	"github.com/DanieleMarcon/lasoluzione-backend/pkg/jwt"
)

func newAuthService(db *mockDatabase, allowedEmails []string) *AuthService {
	logger := testLogger()
	jwtService := jwt.NewService("test-secret", time.Hour)
	email := NewEmailService(&config.SMTPConfig{Mode: "dev"}, "http://localhost:3000", logger)
	return NewAuthService(db, jwtService, email, allowedEmails, 15*time.Minute, logger)
}

func TestIsAllowed(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := newAuthService(&mockDatabase{db: db}, []string{"Admin@lasoluzione.eu"})

	assert.True(t, service.IsAllowed("admin@lasoluzione.eu"))
	assert.True(t, service.IsAllowed("  ADMIN@lasoluzione.eu  "))
	assert.False(t, service.IsAllowed("intruso@example.com"))
	assert.False(t, service.IsAllowed(""))
}

func TestRequestMagicLink(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := newAuthService(&mockDatabase{db: db}, []string{"admin@lasoluzione.eu"})

	mock.ExpectQuery("INSERT INTO auth_tokens").
		WithArgs("admin@lasoluzione.eu", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(authTokenRows().AddRow(
			1, "admin@lasoluzione.eu", "hash", time.Now().Add(15*time.Minute), nil, time.Now(),
		))

	err = service.RequestMagicLink("admin@lasoluzione.eu")
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestMagicLink_NotAllowed(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := newAuthService(&mockDatabase{db: db}, []string{"admin@lasoluzione.eu"})

	// Nothing touches the database or the mailer
	err = service.RequestMagicLink("intruso@example.com")
	assert.Equal(t, ErrNotAllowed, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedeem_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := newAuthService(&mockDatabase{db: db}, []string{"admin@lasoluzione.eu"})

	token := "raw-sign-in-token"
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.MinCost)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT (.+) FROM auth_tokens").
		WithArgs("admin@lasoluzione.eu", sqlmock.AnyArg()).
		WillReturnRows(authTokenRows().AddRow(
			1, "admin@lasoluzione.eu", string(hash), time.Now().Add(10*time.Minute), nil, time.Now(),
		))
	mock.ExpectExec("UPDATE auth_tokens").
		WithArgs(sqlmock.AnyArg(), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	accessToken, err := service.Redeem("admin@lasoluzione.eu", token)
	require.NoError(t, err)
	assert.NotEmpty(t, accessToken)

	claims, err := jwt.NewService("test-secret", time.Hour).ValidateAccessToken(accessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin@lasoluzione.eu", claims.Email)
	assert.Equal(t, "admin", claims.Role)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedeem_WrongToken(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := newAuthService(&mockDatabase{db: db}, []string{"admin@lasoluzione.eu"})

	hash, err := bcrypt.GenerateFromPassword([]byte("the-real-token"), bcrypt.MinCost)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT (.+) FROM auth_tokens").
		WithArgs("admin@lasoluzione.eu", sqlmock.AnyArg()).
		WillReturnRows(authTokenRows().AddRow(
			1, "admin@lasoluzione.eu", string(hash), time.Now().Add(10*time.Minute), nil, time.Now(),
		))

	_, err = service.Redeem("admin@lasoluzione.eu", "guessed-token")
	assert.Equal(t, ErrInvalidMagicLink, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedeem_NoActiveTokens(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := newAuthService(&mockDatabase{db: db}, []string{"admin@lasoluzione.eu"})

	mock.ExpectQuery("SELECT (.+) FROM auth_tokens").
		WithArgs("admin@lasoluzione.eu", sqlmock.AnyArg()).
		WillReturnRows(authTokenRows())

	_, err = service.Redeem("admin@lasoluzione.eu", "whatever")
	assert.Equal(t, ErrInvalidMagicLink, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedeem_ConsumedConcurrently(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := newAuthService(&mockDatabase{db: db}, []string{"admin@lasoluzione.eu"})

	token := "raw-sign-in-token"
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.MinCost)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT (.+) FROM auth_tokens").
		WithArgs("admin@lasoluzione.eu", sqlmock.AnyArg()).
		WillReturnRows(authTokenRows().AddRow(
			1, "admin@lasoluzione.eu", string(hash), time.Now().Add(10*time.Minute), nil, time.Now(),
		))
	// The guarded update touches no row: another redeem won
	mock.ExpectExec("UPDATE auth_tokens").
		WithArgs(sqlmock.AnyArg(), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err = service.Redeem("admin@lasoluzione.eu", token)
	assert.Equal(t, ErrInvalidMagicLink, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedeem_NotAllowed(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := newAuthService(&mockDatabase{db: db}, []string{"admin@lasoluzione.eu"})

	_, err = service.Redeem("intruso@example.com", "token")
	assert.Equal(t, ErrNotAllowed, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func authTokenRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "email", "token_hash", "expires_at", "used_at", "created_at"})
}
