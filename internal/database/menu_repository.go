package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/DanieleMarcon/lasoluzione-backend/internal/models"
)

// MenuRepository handles database operations for the menu_dishes table
type MenuRepository struct {
	db DB
}

// NewMenuRepository creates a new MenuRepository
func NewMenuRepository(db DB) *MenuRepository {
	return &MenuRepository{db: db}
}

const dishColumns = `id, name, slug, description, price_cents, category, active, order_index, visible_at_lunch, visible_at_dinner, created_at, updated_at`

func scanDish(row interface {
	Scan(dest ...interface{}) error
}) (*models.MenuDish, error) {
	var d models.MenuDish
	err := row.Scan(
		&d.ID, &d.Name, &d.Slug, &d.Description, &d.PriceCents, &d.Category,
		&d.Active, &d.OrderIndex, &d.VisibleAtLunch, &d.VisibleAtDinner,
		&d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Create inserts a menu dish
func (r *MenuRepository) Create(d *models.MenuDish) (*models.MenuDish, error) {
	query := `
		INSERT INTO menu_dishes (name, slug, description, price_cents, category, active, order_index, visible_at_lunch, visible_at_dinner)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + dishColumns

	created, err := scanDish(r.db.QueryRow(query,
		d.Name, d.Slug, d.Description, d.PriceCents, d.Category,
		d.Active, d.OrderIndex, d.VisibleAtLunch, d.VisibleAtDinner,
	))
	if err != nil {
		if IsUniqueViolation(err, "") {
			return nil, ErrSlugConflict
		}
		return nil, fmt.Errorf("failed to create dish: %w", err)
	}
	return created, nil
}

// GetByID retrieves a dish by id
func (r *MenuRepository) GetByID(id int64) (*models.MenuDish, error) {
	query := `SELECT ` + dishColumns + ` FROM menu_dishes WHERE id = $1`

	d, err := scanDish(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch dish: %w", err)
	}
	return d, nil
}

// List retrieves dishes grouped by category order
func (r *MenuRepository) List(activeOnly bool) ([]models.MenuDish, error) {
	query := `SELECT ` + dishColumns + ` FROM menu_dishes`
	if activeOnly {
		query += ` WHERE active = true`
	}
	query += ` ORDER BY category, order_index, id`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list dishes: %w", err)
	}
	defer rows.Close()

	dishes := []models.MenuDish{}
	for rows.Next() {
		d, err := scanDish(rows)
		if err != nil {
			return nil, err
		}
		dishes = append(dishes, *d)
	}
	return dishes, rows.Err()
}

// Update rewrites a dish row
func (r *MenuRepository) Update(id int64, d *models.MenuDish) error {
	query := `
		UPDATE menu_dishes
		SET name = $1, slug = $2, description = $3, price_cents = $4, category = $5,
		    active = $6, order_index = $7, visible_at_lunch = $8, visible_at_dinner = $9, updated_at = $10
		WHERE id = $11
	`

	result, err := r.db.Exec(query,
		d.Name, d.Slug, d.Description, d.PriceCents, d.Category,
		d.Active, d.OrderIndex, d.VisibleAtLunch, d.VisibleAtDinner, time.Now(), id,
	)
	if err != nil {
		if IsUniqueViolation(err, "") {
			return ErrSlugConflict
		}
		return fmt.Errorf("failed to update dish: %w", err)
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

// Delete removes a dish
func (r *MenuRepository) Delete(id int64) error {
	result, err := r.db.Exec(`DELETE FROM menu_dishes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete dish: %w", err)
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
