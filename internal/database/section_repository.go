package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/DanieleMarcon/lasoluzione-backend/internal/models"
)

// SectionRepository handles database operations for the catalog_sections table
type SectionRepository struct {
	db DB
}

// NewSectionRepository creates a new SectionRepository
func NewSectionRepository(db DB) *SectionRepository {
	return &SectionRepository{db: db}
}

const sectionColumns = `id, key, title, description, enable_date_time, active, display_order, created_at, updated_at`

func scanSection(row interface {
	Scan(dest ...interface{}) error
}) (*models.CatalogSection, error) {
	var s models.CatalogSection
	err := row.Scan(
		&s.ID, &s.Key, &s.Title, &s.Description, &s.EnableDateTime,
		&s.Active, &s.DisplayOrder, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create inserts a catalog section
func (r *SectionRepository) Create(s *models.CatalogSection) (*models.CatalogSection, error) {
	query := `
		INSERT INTO catalog_sections (key, title, description, enable_date_time, active, display_order)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + sectionColumns

	created, err := scanSection(r.db.QueryRow(query,
		s.Key, s.Title, s.Description, s.EnableDateTime, s.Active, s.DisplayOrder,
	))
	if err != nil {
		if IsUniqueViolation(err, "") {
			return nil, ErrSlugConflict
		}
		return nil, fmt.Errorf("failed to create section: %w", err)
	}
	return created, nil
}

// GetByID retrieves a section by id
func (r *SectionRepository) GetByID(id int64) (*models.CatalogSection, error) {
	query := `SELECT ` + sectionColumns + ` FROM catalog_sections WHERE id = $1`

	s, err := scanSection(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch section: %w", err)
	}
	return s, nil
}

// List retrieves sections in display order
func (r *SectionRepository) List(activeOnly bool) ([]models.CatalogSection, error) {
	query := `SELECT ` + sectionColumns + ` FROM catalog_sections`
	if activeOnly {
		query += ` WHERE active = true`
	}
	query += ` ORDER BY display_order, id`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sections: %w", err)
	}
	defer rows.Close()

	sections := []models.CatalogSection{}
	for rows.Next() {
		s, err := scanSection(rows)
		if err != nil {
			return nil, err
		}
		sections = append(sections, *s)
	}
	return sections, rows.Err()
}

// Update rewrites a section row
func (r *SectionRepository) Update(id int64, s *models.CatalogSection) error {
	query := `
		UPDATE catalog_sections
		SET key = $1, title = $2, description = $3, enable_date_time = $4, active = $5, display_order = $6, updated_at = $7
		WHERE id = $8
	`

	result, err := r.db.Exec(query,
		s.Key, s.Title, s.Description, s.EnableDateTime, s.Active, s.DisplayOrder, time.Now(), id,
	)
	if err != nil {
		if IsUniqueViolation(err, "") {
			return ErrSlugConflict
		}
		return fmt.Errorf("failed to update section: %w", err)
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

// Delete removes a section
func (r *SectionRepository) Delete(id int64) error {
	result, err := r.db.Exec(`DELETE FROM catalog_sections WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete section: %w", err)
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
