package services

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/mssola/user_agent"
	"github.com/sirupsen/logrus"

	"github.com/DanieleMarcon/lasoluzione-backend/internal/database"
	"github.com/DanieleMarcon/lasoluzione-backend/internal/models"
)

const (
	// DefaultVerificationTTL applies when no positive TTL is configured
	DefaultVerificationTTL = 48 * time.Hour

	// MaxTokenRetries bounds retries on token unique-constraint collisions
	MaxTokenRetries = 5

	tokenBytes = 24
	nonceBytes = 12
)

// Verification outcomes returned by Consume
const (
	VerifyStatusOK      = "ok"
	VerifyStatusInvalid = "invalid"
	VerifyStatusUsed    = "used"
	VerifyStatusExpired = "expired"
)

// VerifyResult reports the outcome of a token consumption attempt
type VerifyResult struct {
	Status  string
	Booking *models.Booking
}

// VerificationService issues and consumes single-use booking verification
// tokens. A token proves control of the email address attached to a
// pending booking; consuming it confirms the booking.
type VerificationService struct {
	db            database.DB
	verifications *database.VerificationRepository
	bookings      *database.BookingRepository
	ttl           time.Duration
	logger        *logrus.Logger
}

// NewVerificationService creates a new verification service. A zero or
// negative ttl falls back to DefaultVerificationTTL.
func NewVerificationService(db database.DB, ttl time.Duration, logger *logrus.Logger) *VerificationService {
	if ttl <= 0 {
		ttl = DefaultVerificationTTL
	}
	return &VerificationService{
		db:            db,
		verifications: database.NewVerificationRepository(db),
		bookings:      database.NewBookingRepository(db),
		ttl:           ttl,
		logger:        logger,
	}
}

// Issue creates a verification token for a pending booking. The stored
// record carries the requester's IP and a parsed user agent for audit.
// Returns the raw token to embed in the verification link; it is never
// logged.
func (s *VerificationService) Issue(bookingID int64, email, ipAddress, rawUserAgent string) (string, error) {
	var uaSummary *string
	if rawUserAgent != "" {
		ua := user_agent.New(rawUserAgent)
		browser, version := ua.Browser()
		summary := fmt.Sprintf("%s %s (%s)", browser, version, ua.OS())
		uaSummary = &summary
	}

	var ip *string
	if ipAddress != "" {
		ip = &ipAddress
	}

	// Opportunistic cleanup; a failure never blocks issuance
	if _, err := s.verifications.DeleteExpired(); err != nil {
		s.logger.WithError(err).Warn("Failed to cleanup expired verifications")
	}

	expiresAt := time.Now().Add(s.ttl)

	for attempt := 0; attempt < MaxTokenRetries; attempt++ {
		token, err := randomHex(tokenBytes)
		if err != nil {
			return "", fmt.Errorf("failed to generate token: %w", err)
		}
		nonce, err := randomHex(nonceBytes)
		if err != nil {
			return "", fmt.Errorf("failed to generate nonce: %w", err)
		}

		_, err = s.verifications.Create(&models.BookingVerification{
			BookingID: bookingID,
			Email:     email,
			Token:     token,
			Nonce:     nonce,
			ExpiresAt: expiresAt,
			IPAddress: ip,
			UserAgent: uaSummary,
		})
		if err != nil {
			if database.IsUniqueViolation(err, "") {
				continue
			}
			return "", err
		}

		s.logger.WithFields(logrus.Fields{
			"booking_id": bookingID,
			"expires_at": expiresAt,
		}).Info("Verification token issued")

		return token + "." + nonce, nil
	}

	return "", fmt.Errorf("failed to generate a unique verification token after %d attempts", MaxTokenRetries)
}

// Consume redeems a verification token. Exactly one caller can ever win
// a given token: the used_at column is set by a guarded update and the
// caller only proceeds when that update touched a row. The booking is
// confirmed in the same transaction.
func (s *VerificationService) Consume(rawToken string) (*VerifyResult, error) {
	token, nonce, ok := splitToken(rawToken)
	if !ok {
		return &VerifyResult{Status: VerifyStatusInvalid}, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	v, err := s.verifications.GetByTokenTx(tx, token)
	if err != nil {
		if err == database.ErrNotFound {
			return &VerifyResult{Status: VerifyStatusInvalid}, nil
		}
		return nil, err
	}

	if subtle.ConstantTimeCompare([]byte(v.Nonce), []byte(nonce)) != 1 {
		return &VerifyResult{Status: VerifyStatusInvalid}, nil
	}

	now := time.Now()
	if v.UsedAt != nil {
		return &VerifyResult{Status: VerifyStatusUsed}, nil
	}
	if now.After(v.ExpiresAt) {
		return &VerifyResult{Status: VerifyStatusExpired}, nil
	}

	won, err := s.verifications.ConsumeTx(tx, v.ID, now)
	if err != nil {
		return nil, err
	}
	if !won {
		// Lost the race to a concurrent consumer
		return &VerifyResult{Status: VerifyStatusUsed}, nil
	}

	if _, err := tx.Exec(
		`UPDATE bookings SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`,
		models.BookingStatusConfirmed, now, v.BookingID, models.BookingStatusPending,
	); err != nil {
		return nil, fmt.Errorf("failed to confirm booking: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit verification: %w", err)
	}

	booking, err := s.bookings.GetByID(v.BookingID)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"status":     booking.Status,
	}).Info("Booking verified")

	return &VerifyResult{Status: VerifyStatusOK, Booking: booking}, nil
}

// CleanupExpired removes expired, never-used verification rows
func (s *VerificationService) CleanupExpired() (int64, error) {
	return s.verifications.DeleteExpired()
}

func splitToken(raw string) (token, nonce string, ok bool) {
	parts := strings.SplitN(raw, ".", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// randomHex returns n cryptographically random bytes hex-encoded
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
