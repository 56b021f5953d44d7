package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/DanieleMarcon/lasoluzione-backend/internal/models"
	"github.com/DanieleMarcon/lasoluzione-backend/internal/services"
)

// AuthHandler serves magic-link sign-in for the back-office
type AuthHandler struct {
	auth      *services.AuthService
	rateLimit *services.RateLimitService
	logger    *logrus.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth *services.AuthService, rateLimit *services.RateLimitService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		auth:      auth,
		rateLimit: rateLimit,
		logger:    logger,
	}
}

// MagicLink handles POST /api/auth/magic-link. The response never
// reveals whether the email is on the allow-list.
func (h *AuthHandler) MagicLink(c *gin.Context) {
	var req models.MagicLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	if err := h.rateLimit.Check(req.Email, c.ClientIP()); err != nil {
		var rateErr *services.RateLimitError
		if errors.As(err, &rateErr) {
			respondError(c, http.StatusTooManyRequests, "rate_limited", rateErr.Message)
			return
		}
		h.logger.WithError(err).Error("Rate limit check failed")
		respondError(c, http.StatusInternalServerError, "internal_error", "Something went wrong")
		return
	}
	if err := h.rateLimit.Record(req.Email, c.ClientIP()); err != nil {
		h.logger.WithError(err).Warn("Failed to record rate limit entry")
	}

	if err := h.auth.RequestMagicLink(req.Email); err != nil {
		if errors.Is(err, services.ErrNotAllowed) {
			// Same response as success: no allow-list probing
			respondOK(c, gin.H{"sent": true})
			return
		}
		h.logger.WithError(err).Error("Failed to issue magic link")
		respondError(c, http.StatusInternalServerError, "internal_error", "Something went wrong")
		return
	}
	respondOK(c, gin.H{"sent": true})
}

// Callback handles POST /api/auth/callback
func (h *AuthHandler) Callback(c *gin.Context) {
	var req models.MagicLinkCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	accessToken, err := h.auth.Redeem(req.Email, req.Token)
	if err != nil {
		if errors.Is(err, services.ErrNotAllowed) || errors.Is(err, services.ErrInvalidMagicLink) {
			respondError(c, http.StatusUnauthorized, "unauthorized", "Invalid or expired sign-in link")
			return
		}
		h.logger.WithError(err).Error("Magic link redemption failed")
		respondError(c, http.StatusInternalServerError, "internal_error", "Something went wrong")
		return
	}
	respondOK(c, gin.H{"access_token": accessToken})
}
