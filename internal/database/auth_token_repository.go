package database

import (
	"fmt"
	"time"

	"github.com/DanieleMarcon/lasoluzione-backend/internal/models"
)

// AuthTokenRepository handles database operations for the auth_tokens table
type AuthTokenRepository struct {
	db DB
}

// NewAuthTokenRepository creates a new AuthTokenRepository
func NewAuthTokenRepository(db DB) *AuthTokenRepository {
	return &AuthTokenRepository{db: db}
}

// Create stores a magic-link token hash
func (r *AuthTokenRepository) Create(email, tokenHash string, expiresAt time.Time) (*models.AuthToken, error) {
	query := `
		INSERT INTO auth_tokens (email, token_hash, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, email, token_hash, expires_at, used_at, created_at
	`

	var t models.AuthToken
	err := r.db.QueryRow(query, email, tokenHash, expiresAt).Scan(
		&t.ID, &t.Email, &t.TokenHash, &t.ExpiresAt, &t.UsedAt, &t.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth token: %w", err)
	}
	return &t, nil
}

// ListActiveByEmail retrieves unused, unexpired tokens for an email
func (r *AuthTokenRepository) ListActiveByEmail(email string) ([]models.AuthToken, error) {
	query := `
		SELECT id, email, token_hash, expires_at, used_at, created_at
		FROM auth_tokens
		WHERE email = $1 AND used_at IS NULL AND expires_at > $2
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(query, email, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to list auth tokens: %w", err)
	}
	defer rows.Close()

	tokens := []models.AuthToken{}
	for rows.Next() {
		var t models.AuthToken
		if err := rows.Scan(&t.ID, &t.Email, &t.TokenHash, &t.ExpiresAt, &t.UsedAt, &t.CreatedAt); err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}

// MarkUsed consumes a token. Returns ErrNotFound when the token was
// already used or has expired; the guard makes each link single-use.
func (r *AuthTokenRepository) MarkUsed(id int64) error {
	query := `
		UPDATE auth_tokens
		SET used_at = $1
		WHERE id = $2 AND used_at IS NULL AND expires_at > $1
	`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to mark auth token used: %w", err)
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

// DeleteExpired prunes stale rows
func (r *AuthTokenRepository) DeleteExpired() (int64, error) {
	result, err := r.db.Exec(`DELETE FROM auth_tokens WHERE expires_at < $1`, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired auth tokens: %w", err)
	}
	return result.RowsAffected()
}
