package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/DanieleMarcon/lasoluzione-backend/internal/database"
	"github.com/DanieleMarcon/lasoluzione-backend/internal/models"
)

// ErrEmptyCart is returned when checkout is attempted on a cart with no items
var ErrEmptyCart = fmt.Errorf("cart is empty")

// OrderService converts carts into orders and tracks them through
// payment. Zero-cost orders skip the gateway entirely; everything else
// goes through a hosted-checkout session.
type OrderService struct {
	orders   *database.OrderRepository
	carts    *database.CartRepository
	payment  *PaymentService
	finalize *FinalizeService
	logger   *logrus.Logger
}

// NewOrderService creates a new order service
func NewOrderService(db database.DB, payment *PaymentService, finalize *FinalizeService, logger *logrus.Logger) *OrderService {
	return &OrderService{
		orders:   database.NewOrderRepository(db),
		carts:    database.NewCartRepository(db),
		payment:  payment,
		finalize: finalize,
		logger:   logger,
	}
}

// Checkout creates an order from a cart. The total is recomputed from
// line snapshots, never trusted from the client.
func (s *OrderService) Checkout(req *models.CheckoutRequest) (*models.CheckoutResponse, error) {
	cart, err := s.carts.GetByToken(req.CartToken)
	if err != nil {
		return nil, err
	}

	items, err := s.carts.GetItems(cart.ID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	var total int64
	for _, item := range items {
		total += item.Subtotal()
	}

	var notes *string
	if req.Notes != "" {
		notes = &req.Notes
	}

	if total == 0 {
		order, err := s.orders.Create(&models.Order{
			CartID:     cart.ID,
			TotalCents: 0,
			Status:     models.OrderStatusPaid,
			PaymentRef: models.FreeOrderRef,
			Email:      req.Email,
			Name:       req.Name,
			Phone:      req.Phone,
			Notes:      notes,
		})
		if err != nil {
			return nil, err
		}
		if _, err := s.finalize.FinalizeOrder(order); err != nil {
			return nil, err
		}
		return &models.CheckoutResponse{
			OrderID:    order.ID,
			Status:     order.Status,
			TotalCents: order.TotalCents,
			PaymentRef: order.PaymentRef,
		}, nil
	}

	paymentRef := "ord-" + uuid.New().String()
	order, err := s.orders.Create(&models.Order{
		CartID:     cart.ID,
		TotalCents: total,
		Status:     models.OrderStatusPending,
		PaymentRef: paymentRef,
		Email:      req.Email,
		Name:       req.Name,
		Phone:      req.Phone,
		Notes:      notes,
	})
	if err != nil {
		return nil, err
	}

	session, err := s.payment.CreateSession(&CreateSessionParams{
		InvoiceID:     paymentRef,
		AmountCents:   total,
		Description:   fmt.Sprintf("Ordine #%d", order.ID),
		CustomerName:  req.Name,
		CustomerEmail: req.Email,
		CustomerPhone: req.Phone,
	})
	if err != nil {
		return nil, err
	}

	if err := s.orders.SetProviderRef(order.ID, session.SessionID); err != nil {
		return nil, err
	}

	return &models.CheckoutResponse{
		OrderID:     order.ID,
		Status:      order.Status,
		TotalCents:  order.TotalCents,
		PaymentRef:  order.PaymentRef,
		CheckoutURL: session.CheckoutURL,
	}, nil
}

// HandleWebhook applies a gateway notification to the matching order.
// Duplicate deliveries are harmless: finalization is idempotent and a
// settled order never regresses.
func (s *OrderService) HandleWebhook(payload *GatewayWebhookPayload) error {
	order, err := s.resolveOrder(payload.SessionID, payload.InvoiceID)
	if err != nil {
		return err
	}

	if order.Status == models.OrderStatusPaid {
		_, err := s.finalize.FinalizeOrder(order)
		return err
	}

	switch {
	case isPaidState(payload.PaymentStatus):
		if err := s.orders.UpdateStatus(order.ID, models.OrderStatusPaid); err != nil {
			return err
		}
		order.Status = models.OrderStatusPaid
		_, err := s.finalize.FinalizeOrder(order)
		return err
	case strings.EqualFold(payload.PaymentStatus, "FAILED"):
		return s.orders.UpdateStatus(order.ID, models.OrderStatusFailed)
	case strings.EqualFold(payload.PaymentStatus, "CANCELLED"):
		return s.orders.UpdateStatus(order.ID, models.OrderStatusCancelled)
	default:
		s.logger.WithFields(logrus.Fields{
			"order_id":       order.ID,
			"payment_status": payload.PaymentStatus,
		}).Warn("Unhandled webhook payment status")
		return nil
	}
}

// PollStatus asks the gateway for the current state of an order's
// session and finalizes when it settled. Client retry path; idempotent.
func (s *OrderService) PollStatus(paymentRef string) (*models.Order, error) {
	order, err := s.orders.GetByPaymentRef(paymentRef)
	if err != nil {
		if err == database.ErrNotFound {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	if order.Status == models.OrderStatusPaid {
		if _, err := s.finalize.FinalizeOrder(order); err != nil {
			return nil, err
		}
		return order, nil
	}
	if order.ProviderRef == nil {
		return order, nil
	}

	status, err := s.payment.CheckStatus(*order.ProviderRef)
	if err != nil {
		return nil, err
	}

	if isPaidState(status.PaymentStatus) {
		if err := s.orders.UpdateStatus(order.ID, models.OrderStatusPaid); err != nil {
			return nil, err
		}
		order.Status = models.OrderStatusPaid
		if _, err := s.finalize.FinalizeOrder(order); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// resolveOrder matches an order by exact provider reference first, then
// exact payment reference.
func (s *OrderService) resolveOrder(providerRef, paymentRef string) (*models.Order, error) {
	if providerRef != "" {
		order, err := s.orders.GetByProviderRef(providerRef)
		if err == nil {
			return order, nil
		}
		if err != database.ErrNotFound {
			return nil, err
		}
	}
	if paymentRef != "" {
		order, err := s.orders.GetByPaymentRef(paymentRef)
		if err == nil {
			return order, nil
		}
		if err != database.ErrNotFound {
			return nil, err
		}
	}
	return nil, ErrOrderNotFound
}

// isPaidState maps the gateway's settled states
func isPaidState(status string) bool {
	switch strings.ToUpper(status) {
	case "SUCCESS", "COMPLETED", "PAID":
		return true
	}
	return false
}
