package database

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contactTestRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "email", "name", "phone", "agree_privacy", "agree_marketing",
		"last_booking_at", "total_bookings", "created_at",
	})
}

func TestUpsertContact(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := &mockDatabase{db: db}
	repo := NewContactRepository(mockDB)

	bookedAt := time.Now()
	mock.ExpectQuery(`INSERT INTO contacts`).
		WithArgs("guest@example.com", "Mario Rossi", "+390551234567", true, false, bookedAt).
		WillReturnRows(contactTestRows().AddRow(
			1, "guest@example.com", "Mario Rossi", "+390551234567", true, false, bookedAt, 3, time.Now(),
		))

	contact, err := repo.Upsert("guest@example.com", "Mario Rossi", "+390551234567", true, false, bookedAt)
	require.NoError(t, err)
	assert.Equal(t, "guest@example.com", contact.Email)
	assert.Equal(t, 3, contact.TotalBookings)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListContacts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := &mockDatabase{db: db}
	repo := NewContactRepository(mockDB)

	t.Run("With Search Term", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM contacts WHERE email ILIKE \$1 OR name ILIKE \$1 OR phone ILIKE \$1`).
			WithArgs("%mario%", 50, 0).
			WillReturnRows(contactTestRows().AddRow(
				1, "mario@example.com", "Mario Rossi", "", true, false, time.Now(), 2, time.Now(),
			))

		contacts, err := repo.List("mario", 50, 0)
		require.NoError(t, err)
		assert.Len(t, contacts, 1)
		assert.Equal(t, "mario@example.com", contacts[0].Email)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Search Matches Phone", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM contacts WHERE email ILIKE \$1 OR name ILIKE \$1 OR phone ILIKE \$1`).
			WithArgs("%3905512%", 50, 0).
			WillReturnRows(contactTestRows().AddRow(
				3, "telefono@example.com", "Luca Verdi", "+390551234567", true, false, time.Now(), 1, time.Now(),
			))

		contacts, err := repo.List("3905512", 50, 0)
		require.NoError(t, err)
		assert.Len(t, contacts, 1)
		assert.Equal(t, "+390551234567", contacts[0].Phone)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Without Search Term", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM contacts ORDER BY last_booking_at DESC NULLS LAST`).
			WithArgs(50, 0).
			WillReturnRows(contactTestRows())

		contacts, err := repo.List("", 0, 0)
		require.NoError(t, err)
		assert.Len(t, contacts, 0)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMergeContacts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := &mockDatabase{db: db}
	repo := NewContactRepository(mockDB)

	t.Run("Success", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE contacts AS s`).
			WithArgs(int64(1), int64(2)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`DELETE FROM contacts`).
			WithArgs(int64(2)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`SELECT (.+) FROM contacts WHERE id`).
			WithArgs(int64(1)).
			WillReturnRows(contactTestRows().AddRow(
				1, "guest@example.com", "Mario Rossi", "", true, true, time.Now(), 5, time.Now(),
			))
		mock.ExpectCommit()

		merged, err := repo.Merge(1, 2)
		require.NoError(t, err)
		assert.Equal(t, int64(1), merged.ID)
		assert.True(t, merged.AgreeMarketing)
		assert.Equal(t, 5, merged.TotalBookings)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Missing Contact", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE contacts AS s`).
			WithArgs(int64(1), int64(99)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		merged, err := repo.Merge(1, 99)
		assert.Nil(t, merged)
		assert.Equal(t, ErrNotFound, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
