package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/DanieleMarcon/lasoluzione-backend/internal/models"
)

// VerificationRepository handles database operations for the
// booking_verifications table
type VerificationRepository struct {
	db DB
}

// NewVerificationRepository creates a new VerificationRepository
func NewVerificationRepository(db DB) *VerificationRepository {
	return &VerificationRepository{db: db}
}

const verificationColumns = `id, booking_id, email, token, nonce, expires_at, used_at, ip_address, user_agent, created_at`

func scanVerification(row interface {
	Scan(dest ...interface{}) error
}) (*models.BookingVerification, error) {
	var v models.BookingVerification
	err := row.Scan(
		&v.ID, &v.BookingID, &v.Email, &v.Token, &v.Nonce, &v.ExpiresAt,
		&v.UsedAt, &v.IPAddress, &v.UserAgent, &v.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Create stores a verification token. The token column carries a UNIQUE
// constraint; callers retry on collision.
func (r *VerificationRepository) Create(v *models.BookingVerification) (*models.BookingVerification, error) {
	query := `
		INSERT INTO booking_verifications (booking_id, email, token, nonce, expires_at, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + verificationColumns

	created, err := scanVerification(r.db.QueryRow(query,
		v.BookingID, v.Email, v.Token, v.Nonce, v.ExpiresAt, v.IPAddress, v.UserAgent,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create verification: %w", err)
	}
	return created, nil
}

// GetByTokenTx retrieves a verification row inside an open transaction
func (r *VerificationRepository) GetByTokenTx(tx *sql.Tx, token string) (*models.BookingVerification, error) {
	query := `SELECT ` + verificationColumns + ` FROM booking_verifications WHERE token = $1`

	v, err := scanVerification(tx.QueryRow(query, token))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch verification: %w", err)
	}
	return v, nil
}

// ConsumeTx marks a verification used, guarded so only one caller can
// ever win: the row must still be unused and unexpired.
func (r *VerificationRepository) ConsumeTx(tx *sql.Tx, id int64, now time.Time) (bool, error) {
	query := `
		UPDATE booking_verifications
		SET used_at = $1
		WHERE id = $2 AND used_at IS NULL AND expires_at > $1
	`

	result, err := tx.Exec(query, now, id)
	if err != nil {
		return false, fmt.Errorf("failed to consume verification: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected == 1, nil
}

// DeleteExpired prunes stale verification rows
func (r *VerificationRepository) DeleteExpired() (int64, error) {
	result, err := r.db.Exec(`DELETE FROM booking_verifications WHERE expires_at < $1 AND used_at IS NULL`, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired verifications: %w", err)
	}
	return result.RowsAffected()
}
