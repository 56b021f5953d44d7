package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/DanieleMarcon/lasoluzione-backend/internal/models"
)

// ContactRepository handles database operations for the contacts table
type ContactRepository struct {
	db DB
}

// NewContactRepository creates a new ContactRepository
func NewContactRepository(db DB) *ContactRepository {
	return &ContactRepository{db: db}
}

const contactColumns = `id, email, name, phone, agree_privacy, agree_marketing, last_booking_at, total_bookings, created_at`

func scanContact(row interface {
	Scan(dest ...interface{}) error
}) (*models.Contact, error) {
	var c models.Contact
	err := row.Scan(
		&c.ID, &c.Email, &c.Name, &c.Phone, &c.AgreePrivacy, &c.AgreeMarketing,
		&c.LastBookingAt, &c.TotalBookings, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Upsert records booking or checkout intake for an email address. An
// existing contact keeps its row; name and phone are refreshed, consent
// flags only ever widen, and the booking counter is bumped.
func (r *ContactRepository) Upsert(email, name, phone string, agreePrivacy, agreeMarketing bool, bookedAt time.Time) (*models.Contact, error) {
	query := `
		INSERT INTO contacts (email, name, phone, agree_privacy, agree_marketing, last_booking_at, total_bookings)
		VALUES ($1, $2, $3, $4, $5, $6, 1)
		ON CONFLICT (email) DO UPDATE SET
			name = EXCLUDED.name,
			phone = EXCLUDED.phone,
			agree_privacy = contacts.agree_privacy OR EXCLUDED.agree_privacy,
			agree_marketing = contacts.agree_marketing OR EXCLUDED.agree_marketing,
			last_booking_at = EXCLUDED.last_booking_at,
			total_bookings = contacts.total_bookings + 1
		RETURNING ` + contactColumns

	c, err := scanContact(r.db.QueryRow(query, email, name, phone, agreePrivacy, agreeMarketing, bookedAt))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert contact: %w", err)
	}
	return c, nil
}

// GetByID retrieves a contact by id
func (r *ContactRepository) GetByID(id int64) (*models.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE id = $1`

	c, err := scanContact(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch contact: %w", err)
	}
	return c, nil
}

// List retrieves contacts, optionally filtered by a search term matched
// against email, name and phone.
func (r *ContactRepository) List(search string, limit, offset int) ([]models.Contact, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT ` + contactColumns + ` FROM contacts`
	args := []interface{}{}
	if search != "" {
		query += ` WHERE email ILIKE $1 OR name ILIKE $1 OR phone ILIKE $1`
		args = append(args, "%"+search+"%")
	}
	query += fmt.Sprintf(` ORDER BY last_booking_at DESC NULLS LAST, id DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	contacts := []models.Contact{}
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, *c)
	}
	return contacts, rows.Err()
}

// Merge folds the duplicate contact into the survivor in one transaction.
// The survivor keeps the wider consent flags, the most recent booking
// timestamp and the combined booking count; the duplicate row is removed.
func (r *ContactRepository) Merge(survivorID, duplicateID int64) (*models.Contact, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	mergeQuery := `
		UPDATE contacts AS s
		SET agree_privacy = s.agree_privacy OR d.agree_privacy,
		    agree_marketing = s.agree_marketing OR d.agree_marketing,
		    last_booking_at = GREATEST(s.last_booking_at, d.last_booking_at),
		    total_bookings = s.total_bookings + d.total_bookings
		FROM contacts AS d
		WHERE s.id = $1 AND d.id = $2
	`

	result, err := tx.Exec(mergeQuery, survivorID, duplicateID)
	if err != nil {
		return nil, fmt.Errorf("failed to merge contacts: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrNotFound
	}

	if _, err := tx.Exec(`DELETE FROM contacts WHERE id = $1`, duplicateID); err != nil {
		return nil, fmt.Errorf("failed to remove duplicate contact: %w", err)
	}

	merged, err := scanContact(tx.QueryRow(`SELECT `+contactColumns+` FROM contacts WHERE id = $1`, survivorID))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch merged contact: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit merge: %w", err)
	}
	return merged, nil
}
