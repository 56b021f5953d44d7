package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/DanieleMarcon/lasoluzione-backend/internal/models"
)

// BookingRepository handles database operations for the bookings table
type BookingRepository struct {
	db DB
}

// NewBookingRepository creates a new BookingRepository
func NewBookingRepository(db DB) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingColumns = `id, date, people, type, name, email, phone, notes, status, prepay_token, order_id, created_at, updated_at`

func scanBooking(row interface {
	Scan(dest ...interface{}) error
}) (*models.Booking, error) {
	var b models.Booking
	err := row.Scan(
		&b.ID, &b.Date, &b.People, &b.Type, &b.Name, &b.Email, &b.Phone,
		&b.Notes, &b.Status, &b.PrepayToken, &b.OrderID, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Create inserts a booking and returns the stored row
func (r *BookingRepository) Create(b *models.Booking) (*models.Booking, error) {
	query := `
		INSERT INTO bookings (date, people, type, name, email, phone, notes, status, prepay_token, order_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + bookingColumns

	created, err := scanBooking(r.db.QueryRow(query,
		b.Date, b.People, b.Type, b.Name, b.Email, b.Phone,
		b.Notes, b.Status, b.PrepayToken, b.OrderID,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}
	return created, nil
}

// CreateTx inserts a booking inside an existing transaction
func (r *BookingRepository) CreateTx(tx *sql.Tx, b *models.Booking) (*models.Booking, error) {
	query := `
		INSERT INTO bookings (date, people, type, name, email, phone, notes, status, prepay_token, order_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + bookingColumns

	created, err := scanBooking(tx.QueryRow(query,
		b.Date, b.People, b.Type, b.Name, b.Email, b.Phone,
		b.Notes, b.Status, b.PrepayToken, b.OrderID,
	))
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetByID retrieves a booking by id
func (r *BookingRepository) GetByID(id int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	b, err := scanBooking(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch booking: %w", err)
	}
	return b, nil
}

// GetByOrderID retrieves the booking linked to an order, if any
func (r *BookingRepository) GetByOrderID(orderID int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE order_id = $1`

	b, err := scanBooking(r.db.QueryRow(query, orderID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch booking by order: %w", err)
	}
	return b, nil
}

// List retrieves bookings matching the filter, newest first
func (r *BookingRepository) List(filter models.BookingFilter) ([]models.Booking, error) {
	conditions := []string{}
	args := []interface{}{}
	idx := 1

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", idx))
		args = append(args, filter.Status)
		idx++
	}
	if filter.Type != "" {
		conditions = append(conditions, fmt.Sprintf("type = $%d", idx))
		args = append(args, filter.Type)
		idx++
	}
	if filter.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("date >= $%d", idx))
		args = append(args, *filter.DateFrom)
		idx++
	}
	if filter.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("date <= $%d", idx))
		args = append(args, *filter.DateTo)
		idx++
	}

	query := `SELECT ` + bookingColumns + ` FROM bookings`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY date DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, limit, filter.Offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	bookings := []models.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

// UpdateStatus transitions a booking's status
func (r *BookingRepository) UpdateStatus(id int64, status string) error {
	query := `UPDATE bookings SET status = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.Exec(query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateStatusTx transitions a booking's status inside an existing transaction
func (r *BookingRepository) UpdateStatusTx(tx *sql.Tx, id int64, status string) error {
	query := `UPDATE bookings SET status = $1, updated_at = $2 WHERE id = $3`

	result, err := tx.Exec(query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a booking
func (r *BookingRepository) Delete(id int64) error {
	result, err := r.db.Exec(`DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
