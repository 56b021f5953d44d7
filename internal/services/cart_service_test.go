package services

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DanieleMarcon/lasoluzione-backend/internal/models"
)

func TestCartGetOrCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := &mockDatabase{db: db}
	service := NewCartService(mockDB)

	t.Run("Empty token creates a cart", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO carts").
			WithArgs(sqlmock.AnyArg()).
			WillReturnRows(cartRows().AddRow(1, "new-token", 0, time.Now(), time.Now()))

		cart, err := service.GetOrCreate("")
		require.NoError(t, err)
		assert.Equal(t, int64(1), cart.ID)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Known token resolves the cart", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM carts WHERE token").
			WithArgs("known").
			WillReturnRows(cartRows().AddRow(2, "known", 1500, time.Now(), time.Now()))

		cart, err := service.GetOrCreate("known")
		require.NoError(t, err)
		assert.Equal(t, int64(2), cart.ID)
		assert.Equal(t, int64(1500), cart.TotalCents)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unknown token creates a fresh cart", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM carts WHERE token").
			WithArgs("stale").
			WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery("INSERT INTO carts").
			WithArgs(sqlmock.AnyArg()).
			WillReturnRows(cartRows().AddRow(3, "fresh", 0, time.Now(), time.Now()))

		cart, err := service.GetOrCreate("stale")
		require.NoError(t, err)
		assert.Equal(t, int64(3), cart.ID)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCartAddItem(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := &mockDatabase{db: db}
	service := NewCartService(mockDB)

	t.Run("Success snapshots product and recomputes total", func(t *testing.T) {
		cart := &models.Cart{ID: 1, Token: "tok"}

		mock.ExpectQuery("SELECT (.+) FROM products WHERE id").
			WithArgs(int64(5)).
			WillReturnRows(productRows().AddRow(
				5, "Aperitivo", "aperitivo", "", int64(800), true, 0, time.Now(), time.Now(),
			))
		mock.ExpectExec("INSERT INTO cart_items").
			WithArgs(int64(1), int64(5), "Aperitivo", int64(800), 2).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectQuery("SELECT (.+) FROM cart_items").
			WithArgs(int64(1)).
			WillReturnRows(cartItemRows().AddRow(1, 1, 5, "Aperitivo", int64(800), 2))
		mock.ExpectExec("UPDATE carts SET total_cents").
			WithArgs(int64(1600), sqlmock.AnyArg(), int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := service.AddItem(cart, 5, 2)
		require.NoError(t, err)
		assert.Equal(t, int64(1600), cart.TotalCents)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Inactive product", func(t *testing.T) {
		cart := &models.Cart{ID: 1}

		mock.ExpectQuery("SELECT (.+) FROM products WHERE id").
			WithArgs(int64(6)).
			WillReturnRows(productRows().AddRow(
				6, "Fuori menu", "fuori-menu", "", int64(500), false, 0, time.Now(), time.Now(),
			))

		err := service.AddItem(cart, 6, 1)
		assert.Equal(t, ErrProductUnavailable, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unknown product", func(t *testing.T) {
		cart := &models.Cart{ID: 1}

		mock.ExpectQuery("SELECT (.+) FROM products WHERE id").
			WithArgs(int64(99)).
			WillReturnError(sql.ErrNoRows)

		err := service.AddItem(cart, 99, 1)
		assert.Equal(t, ErrProductUnavailable, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCartRemoveItem(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := &mockDatabase{db: db}
	service := NewCartService(mockDB)
	cart := &models.Cart{ID: 1, TotalCents: 1600}

	mock.ExpectExec("DELETE FROM cart_items").
		WithArgs(int64(10), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT (.+) FROM cart_items").
		WithArgs(int64(1)).
		WillReturnRows(cartItemRows())
	mock.ExpectExec("UPDATE carts SET total_cents").
		WithArgs(int64(0), sqlmock.AnyArg(), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = service.RemoveItem(cart, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), cart.TotalCents)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartResponse(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := &mockDatabase{db: db}
	service := NewCartService(mockDB)
	cart := &models.Cart{ID: 1, Token: "tok", TotalCents: 2400}

	mock.ExpectQuery("SELECT (.+) FROM cart_items").
		WithArgs(int64(1)).
		WillReturnRows(cartItemRows().
			AddRow(1, 1, 5, "Aperitivo", int64(800), 3))

	resp, err := service.Response(cart)
	require.NoError(t, err)
	assert.Equal(t, "tok", resp.Token)
	assert.Equal(t, int64(2400), resp.TotalCents)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, int64(2400), resp.Items[0].Subtotal())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func cartRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "token", "total_cents", "created_at", "updated_at"})
}

func cartItemRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "cart_id", "product_id", "name_snapshot", "price_cents_snapshot", "quantity"})
}

func productRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "slug", "description", "price_cents", "active", "order_index", "created_at", "updated_at"})
}
