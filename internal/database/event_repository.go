package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/DanieleMarcon/lasoluzione-backend/internal/models"
)

// EventRepository handles database operations for the event_instances table
type EventRepository struct {
	db DB
}

// NewEventRepository creates a new EventRepository
func NewEventRepository(db DB) *EventRepository {
	return &EventRepository{db: db}
}

const eventColumns = `id, title, slug, starts_at, capacity, price_cents, active, allow_email_only_booking, created_at, updated_at`

func scanEvent(row interface {
	Scan(dest ...interface{}) error
}) (*models.EventInstance, error) {
	var e models.EventInstance
	err := row.Scan(
		&e.ID, &e.Title, &e.Slug, &e.StartsAt, &e.Capacity, &e.PriceCents,
		&e.Active, &e.AllowEmailOnlyBooking, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Create inserts an event instance
func (r *EventRepository) Create(e *models.EventInstance) (*models.EventInstance, error) {
	query := `
		INSERT INTO event_instances (title, slug, starts_at, capacity, price_cents, active, allow_email_only_booking)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + eventColumns

	created, err := scanEvent(r.db.QueryRow(query,
		e.Title, e.Slug, e.StartsAt, e.Capacity, e.PriceCents, e.Active, e.AllowEmailOnlyBooking,
	))
	if err != nil {
		if IsUniqueViolation(err, "") {
			return nil, ErrSlugConflict
		}
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return created, nil
}

// GetByID retrieves an event by id
func (r *EventRepository) GetByID(id int64) (*models.EventInstance, error) {
	query := `SELECT ` + eventColumns + ` FROM event_instances WHERE id = $1`

	e, err := scanEvent(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch event: %w", err)
	}
	return e, nil
}

// List retrieves events, soonest first; activeOnly limits to published rows
func (r *EventRepository) List(activeOnly bool) ([]models.EventInstance, error) {
	query := `SELECT ` + eventColumns + ` FROM event_instances`
	if activeOnly {
		query += ` WHERE active = true`
	}
	query += ` ORDER BY starts_at`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	events := []models.EventInstance{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// Update rewrites an event row
func (r *EventRepository) Update(id int64, e *models.EventInstance) error {
	query := `
		UPDATE event_instances
		SET title = $1, slug = $2, starts_at = $3, capacity = $4, price_cents = $5,
		    active = $6, allow_email_only_booking = $7, updated_at = $8
		WHERE id = $9
	`

	result, err := r.db.Exec(query,
		e.Title, e.Slug, e.StartsAt, e.Capacity, e.PriceCents,
		e.Active, e.AllowEmailOnlyBooking, time.Now(), id,
	)
	if err != nil {
		if IsUniqueViolation(err, "") {
			return ErrSlugConflict
		}
		return fmt.Errorf("failed to update event: %w", err)
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

// Delete removes an event
func (r *EventRepository) Delete(id int64) error {
	result, err := r.db.Exec(`DELETE FROM event_instances WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
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
