package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/DanieleMarcon/lasoluzione-backend/internal/database"
	"github.com/DanieleMarcon/lasoluzione-backend/internal/models"
	"github.com/DanieleMarcon/lasoluzione-backend/internal/services"
)

// PaymentHandler serves checkout and payment notification endpoints
type PaymentHandler struct {
	orders  *services.OrderService
	payment *services.PaymentService
	logger  *logrus.Logger
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(orders *services.OrderService, payment *services.PaymentService, logger *logrus.Logger) *PaymentHandler {
	return &PaymentHandler{
		orders:  orders,
		payment: payment,
		logger:  logger,
	}
}

// Checkout handles POST /api/checkout
func (h *PaymentHandler) Checkout(c *gin.Context) {
	var req models.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	resp, err := h.orders.Checkout(&req)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrNotFound):
			respondError(c, http.StatusNotFound, "not_found", "Cart not found")
		case errors.Is(err, services.ErrEmptyCart):
			respondError(c, http.StatusBadRequest, "validation_error", "Cart is empty")
		default:
			h.logger.WithError(err).Error("Checkout failed")
			respondError(c, http.StatusInternalServerError, "internal_error", "Something went wrong")
		}
		return
	}
	respondCreated(c, resp)
}

// Webhook handles POST /api/payments/webhook. The gateway retries on
// non-2xx, so unknown orders are acknowledged to stop redelivery.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "unreadable body")
		return
	}

	payload, err := h.payment.VerifyWebhook(body)
	if err != nil {
		h.logger.WithError(err).Warn("Rejected payment webhook")
		respondError(c, http.StatusBadRequest, "validation_error", "invalid webhook payload")
		return
	}

	if err := h.orders.HandleWebhook(payload); err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			h.logger.WithField("invoice_id", payload.InvoiceID).Warn("Webhook for unknown order")
			respondOK(c, gin.H{"handled": false})
			return
		}
		h.logger.WithError(err).Error("Webhook processing failed")
		respondError(c, http.StatusInternalServerError, "internal_error", "Something went wrong")
		return
	}
	respondOK(c, gin.H{"handled": true})
}

// Status handles GET /api/payments/:ref/status
func (h *PaymentHandler) Status(c *gin.Context) {
	order, err := h.orders.PollStatus(c.Param("ref"))
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			respondError(c, http.StatusNotFound, "order_not_found", "Order not found")
			return
		}
		h.logger.WithError(err).Error("Payment status poll failed")
		respondError(c, http.StatusInternalServerError, "internal_error", "Something went wrong")
		return
	}
	respondOK(c, gin.H{
		"order_id":    order.ID,
		"status":      order.Status,
		"total_cents": order.TotalCents,
		"payment_ref": order.PaymentRef,
	})
}
