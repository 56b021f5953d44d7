package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/DanieleMarcon/lasoluzione-backend/internal/models"
)

// ErrSlugConflict is returned when a slug or key collides with an existing row
var ErrSlugConflict = fmt.Errorf("slug already in use")

// ProductRepository handles database operations for the products table
type ProductRepository struct {
	db DB
}

// NewProductRepository creates a new ProductRepository
func NewProductRepository(db DB) *ProductRepository {
	return &ProductRepository{db: db}
}

const productColumns = `id, name, slug, description, price_cents, active, order_index, created_at, updated_at`

func scanProduct(row interface {
	Scan(dest ...interface{}) error
}) (*models.Product, error) {
	var p models.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Slug, &p.Description, &p.PriceCents,
		&p.Active, &p.OrderIndex, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a product
func (r *ProductRepository) Create(p *models.Product) (*models.Product, error) {
	query := `
		INSERT INTO products (name, slug, description, price_cents, active, order_index)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + productColumns

	created, err := scanProduct(r.db.QueryRow(query,
		p.Name, p.Slug, p.Description, p.PriceCents, p.Active, p.OrderIndex,
	))
	if err != nil {
		if IsUniqueViolation(err, "") {
			return nil, ErrSlugConflict
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return created, nil
}

// GetByID retrieves a product by id
func (r *ProductRepository) GetByID(id int64) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	p, err := scanProduct(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch product: %w", err)
	}
	return p, nil
}

// List retrieves products; activeOnly limits to purchasable rows
func (r *ProductRepository) List(activeOnly bool) ([]models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	if activeOnly {
		query += ` WHERE active = true`
	}
	query += ` ORDER BY order_index, id`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

// Update rewrites a product row
func (r *ProductRepository) Update(id int64, p *models.Product) error {
	query := `
		UPDATE products
		SET name = $1, slug = $2, description = $3, price_cents = $4, active = $5, order_index = $6, updated_at = $7
		WHERE id = $8
	`

	result, err := r.db.Exec(query,
		p.Name, p.Slug, p.Description, p.PriceCents, p.Active, p.OrderIndex, time.Now(), id,
	)
	if err != nil {
		if IsUniqueViolation(err, "") {
			return ErrSlugConflict
		}
		return fmt.Errorf("failed to update product: %w", err)
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

// Deactivate soft-deletes a product. Products are referenced by cart item
// snapshots, so rows are never hard-deleted.
func (r *ProductRepository) Deactivate(id int64) error {
	result, err := r.db.Exec(`UPDATE products SET active = false, updated_at = $1 WHERE id = $2`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to deactivate product: %w", err)
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
