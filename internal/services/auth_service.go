package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/DanieleMarcon/lasoluzione-backend/internal/database"
	"github.com/DanieleMarcon/lasoluzione-backend/pkg/jwt"
)

var (
	// ErrNotAllowed indicates the email is not on the admin allow-list
	ErrNotAllowed = fmt.Errorf("email is not authorized")

	// ErrInvalidMagicLink indicates a missing, expired, or already-used token
	ErrInvalidMagicLink = fmt.Errorf("invalid or expired sign-in link")
)

const magicLinkTokenBytes = 24

// AuthService implements passwordless back-office sign-in. A magic link
// carries a random token whose bcrypt hash is stored server-side; the
// link is single-use and short-lived. Redeeming it mints a JWT.
type AuthService struct {
	tokens        *database.AuthTokenRepository
	jwtService    *jwt.Service
	email         *EmailService
	allowedEmails []string
	ttl           time.Duration
	logger        *logrus.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(db database.DB, jwtService *jwt.Service, email *EmailService, allowedEmails []string, ttl time.Duration, logger *logrus.Logger) *AuthService {
	return &AuthService{
		tokens:        database.NewAuthTokenRepository(db),
		jwtService:    jwtService,
		email:         email,
		allowedEmails: allowedEmails,
		ttl:           ttl,
		logger:        logger,
	}
}

// IsAllowed reports whether an email is on the admin allow-list
func (s *AuthService) IsAllowed(email string) bool {
	normalized := strings.ToLower(strings.TrimSpace(email))
	for _, allowed := range s.allowedEmails {
		if strings.ToLower(allowed) == normalized {
			return true
		}
	}
	return false
}

// RequestMagicLink generates a sign-in token and mails the link. Only
// the bcrypt hash touches the database.
func (s *AuthService) RequestMagicLink(email string) error {
	if !s.IsAllowed(email) {
		return ErrNotAllowed
	}

	token, err := randomHex(magicLinkTokenBytes)
	if err != nil {
		return fmt.Errorf("failed to generate sign-in token: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash sign-in token: %w", err)
	}

	if _, err := s.tokens.Create(email, string(hash), time.Now().Add(s.ttl)); err != nil {
		return err
	}

	if err := s.email.SendMagicLink(email, token); err != nil {
		return err
	}

	s.logger.WithField("email", email).Info("Magic link issued")
	return nil
}

// Redeem validates a magic-link token and returns a signed access token.
// Each stored hash is compared with bcrypt; the winning row is consumed
// so the link cannot be replayed.
func (s *AuthService) Redeem(email, token string) (string, error) {
	if !s.IsAllowed(email) {
		return "", ErrNotAllowed
	}

	candidates, err := s.tokens.ListActiveByEmail(email)
	if err != nil {
		return "", err
	}

	for _, candidate := range candidates {
		if bcrypt.CompareHashAndPassword([]byte(candidate.TokenHash), []byte(token)) != nil {
			continue
		}
		if err := s.tokens.MarkUsed(candidate.ID); err != nil {
			if err == database.ErrNotFound {
				// Consumed by a concurrent redeem
				return "", ErrInvalidMagicLink
			}
			return "", err
		}

		accessToken, err := s.jwtService.GenerateAccessToken(email)
		if err != nil {
			return "", err
		}

		s.logger.WithField("email", email).Info("Admin signed in")
		return accessToken, nil
	}

	return "", ErrInvalidMagicLink
}

// CleanupExpired prunes stale sign-in tokens
func (s *AuthService) CleanupExpired() (int64, error) {
	return s.tokens.DeleteExpired()
}
