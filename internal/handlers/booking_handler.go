package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/DanieleMarcon/lasoluzione-backend/internal/models"
	"github.com/DanieleMarcon/lasoluzione-backend/internal/services"
)

// BookingHandler serves the public booking flow
type BookingHandler struct {
	bookings    *services.BookingService
	rateLimit   *services.RateLimitService
	notifyEmail string
	logger      *logrus.Logger
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(bookings *services.BookingService, rateLimit *services.RateLimitService, notifyEmail string, logger *logrus.Logger) *BookingHandler {
	return &BookingHandler{
		bookings:    bookings,
		rateLimit:   rateLimit,
		notifyEmail: notifyEmail,
		logger:      logger,
	}
}

// Create handles POST /api/bookings
func (h *BookingHandler) Create(c *gin.Context) {
	var req models.CreateBookingRequest
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

	result, err := h.bookings.Create(&req, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTypeNotEnabled):
			respondError(c, http.StatusBadRequest, "type_not_enabled", "This booking type is not currently available")
		case errors.Is(err, services.ErrInvalidBookingDate):
			respondError(c, http.StatusBadRequest, "validation_error", "Invalid booking date or time")
		default:
			h.logger.WithError(err).Error("Booking intake failed")
			respondError(c, http.StatusInternalServerError, "internal_error", "Something went wrong")
		}
		return
	}

	data := gin.H{"booking": result.Booking}
	if result.CheckoutURL != "" {
		data["checkout_url"] = result.CheckoutURL
	}

	if result.EmailFailed {
		respondWarning(c, data, "email_failed")
		return
	}
	respondCreated(c, data)
}

// Verify handles GET /api/bookings/verify?token=...
func (h *BookingHandler) Verify(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		respondError(c, http.StatusBadRequest, "validation_error", "token is required")
		return
	}

	result, err := h.bookings.Verify(token, h.notifyEmail)
	if err != nil {
		h.logger.WithError(err).Error("Verification failed")
		respondError(c, http.StatusInternalServerError, "internal_error", "Something went wrong")
		return
	}

	data := gin.H{"status": result.Status}
	if result.Booking != nil {
		data["booking"] = result.Booking
	}
	respondOK(c, data)
}
