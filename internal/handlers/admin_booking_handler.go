package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/DanieleMarcon/lasoluzione-backend/internal/database"
	"github.com/DanieleMarcon/lasoluzione-backend/internal/export"
	"github.com/DanieleMarcon/lasoluzione-backend/internal/models"
	"github.com/DanieleMarcon/lasoluzione-backend/internal/services"
)

// AdminBookingHandler serves the back-office booking endpoints
type AdminBookingHandler struct {
	bookings *services.BookingService
	csvLimit int
	logger   *logrus.Logger
}

// NewAdminBookingHandler creates a new admin booking handler
func NewAdminBookingHandler(bookings *services.BookingService, csvLimit int, logger *logrus.Logger) *AdminBookingHandler {
	return &AdminBookingHandler{
		bookings: bookings,
		csvLimit: csvLimit,
		logger:   logger,
	}
}

// List handles GET /api/admin/bookings
func (h *AdminBookingHandler) List(c *gin.Context) {
	filter, ok := h.parseFilter(c)
	if !ok {
		return
	}

	bookings, err := h.bookings.List(filter)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list bookings")
		respondError(c, http.StatusInternalServerError, "internal_error", "Something went wrong")
		return
	}
	respondOK(c, bookings)
}

// Get handles GET /api/admin/bookings/:id
func (h *AdminBookingHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	booking, err := h.bookings.Get(id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(c, http.StatusNotFound, "not_found", "Booking not found")
			return
		}
		h.logger.WithError(err).Error("Failed to fetch booking")
		respondError(c, http.StatusInternalServerError, "internal_error", "Something went wrong")
		return
	}
	respondOK(c, booking)
}

// UpdateStatus handles PATCH /api/admin/bookings/:id/status
func (h *AdminBookingHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req models.UpdateBookingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	if err := h.bookings.UpdateStatus(id, req.Status); err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidBookingStatus):
			respondError(c, http.StatusBadRequest, "validation_error", err.Error())
		case errors.Is(err, database.ErrNotFound):
			respondError(c, http.StatusNotFound, "not_found", "Booking not found")
		default:
			h.logger.WithError(err).Error("Failed to update booking status")
			respondError(c, http.StatusInternalServerError, "internal_error", "Something went wrong")
		}
		return
	}
	respondOK(c, gin.H{"id": id, "status": req.Status})
}

// Delete handles DELETE /api/admin/bookings/:id
func (h *AdminBookingHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.bookings.Delete(id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(c, http.StatusNotFound, "not_found", "Booking not found")
			return
		}
		h.logger.WithError(err).Error("Failed to delete booking")
		respondError(c, http.StatusInternalServerError, "internal_error", "Something went wrong")
		return
	}
	respondOK(c, gin.H{"deleted": true})
}

// ExportCSV handles GET /api/admin/bookings/export
func (h *AdminBookingHandler) ExportCSV(c *gin.Context) {
	filter, ok := h.parseFilter(c)
	if !ok {
		return
	}
	// Export ignores pagination; the writer enforces its own cap
	filter.Limit = h.csvLimit + 1
	filter.Offset = 0

	bookings, err := h.bookings.List(filter)
	if err != nil {
		h.logger.WithError(err).Error("Failed to export bookings")
		respondError(c, http.StatusInternalServerError, "internal_error", "Something went wrong")
		return
	}

	filename := fmt.Sprintf("prenotazioni-%s.csv", time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := export.BookingsCSV(c.Writer, bookings, h.csvLimit); err != nil {
		h.logger.WithError(err).Error("Failed to write bookings CSV")
	}
}

func (h *AdminBookingHandler) parseFilter(c *gin.Context) (models.BookingFilter, bool) {
	filter := models.BookingFilter{
		Status: c.Query("status"),
		Type:   c.Query("type"),
	}

	if from := c.Query("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			respondError(c, http.StatusBadRequest, "validation_error", "invalid from date")
			return filter, false
		}
		filter.DateFrom = &t
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			respondError(c, http.StatusBadRequest, "validation_error", "invalid to date")
			return filter, false
		}
		filter.DateTo = &t
	}

	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	filter.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	return filter, true
}

func parseID(c *gin.Context, param string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "invalid id")
		return 0, false
	}
	return id, true
}
