package services

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/DanieleMarcon/lasoluzione-backend/internal/database"
	"github.com/DanieleMarcon/lasoluzione-backend/internal/models"
)

var (
	// ErrOrderNotFound indicates no order matches the given reference
	ErrOrderNotFound = fmt.Errorf("order not found")

	// ErrOrderNotPaid indicates the order has not settled yet
	ErrOrderNotPaid = fmt.Errorf("order is not paid")
)

// FinalizeService turns paid orders into confirmed bookings. The
// operation is idempotent: a unique constraint on bookings.order_id
// guarantees at most one booking per order, and repeated calls return
// the same booking.
type FinalizeService struct {
	db          database.DB
	orders      *database.OrderRepository
	bookings    *database.BookingRepository
	carts       *database.CartRepository
	contacts    *database.ContactRepository
	email       *EmailService
	notifyEmail string
	logger      *logrus.Logger
}

// NewFinalizeService creates a new finalize service
func NewFinalizeService(db database.DB, email *EmailService, notifyEmail string, logger *logrus.Logger) *FinalizeService {
	return &FinalizeService{
		db:          db,
		orders:      database.NewOrderRepository(db),
		bookings:    database.NewBookingRepository(db),
		carts:       database.NewCartRepository(db),
		contacts:    database.NewContactRepository(db),
		email:       email,
		notifyEmail: notifyEmail,
		logger:      logger,
	}
}

// FinalizePaidOrder resolves an order by exact provider reference, then
// exact payment reference, and finalizes it.
func (s *FinalizeService) FinalizePaidOrder(ref string) (*models.Booking, *models.Order, error) {
	order, err := s.orders.GetByProviderRef(ref)
	if err != nil {
		if err != database.ErrNotFound {
			return nil, nil, err
		}
		order, err = s.orders.GetByPaymentRef(ref)
		if err != nil {
			if err == database.ErrNotFound {
				return nil, nil, ErrOrderNotFound
			}
			return nil, nil, err
		}
	}

	booking, err := s.FinalizeOrder(order)
	if err != nil {
		return nil, nil, err
	}
	return booking, order, nil
}

// FinalizeOrder confirms the booking behind a paid order, creating it if
// checkout did not pre-create one. The cart is emptied in the same
// transaction. Confirmation emails are best-effort.
func (s *FinalizeService) FinalizeOrder(order *models.Order) (*models.Booking, error) {
	if order.Status != models.OrderStatusPaid {
		return nil, ErrOrderNotPaid
	}

	booking, created, err := s.ensureBooking(order)
	if err != nil {
		return nil, err
	}

	if created {
		s.notify(booking)
		s.recordContact(order)
	}

	return booking, nil
}

// ensureBooking returns the booking linked to the order, confirming or
// creating it as needed. The second return value reports whether this
// call performed the transition.
func (s *FinalizeService) ensureBooking(order *models.Order) (*models.Booking, bool, error) {
	existing, err := s.bookings.GetByOrderID(order.ID)
	if err == nil {
		if existing.Status == models.BookingStatusPendingPayment {
			return s.confirmPrepayBooking(existing.ID, order.CartID)
		}
		return existing, false, nil
	}
	if err != database.ErrNotFound {
		return nil, false, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	orderID := order.ID
	booking, err := s.bookings.CreateTx(tx, &models.Booking{
		Date:    order.CreatedAt,
		People:  1,
		Type:    models.BookingTypeEvento,
		Name:    order.Name,
		Email:   order.Email,
		Phone:   order.Phone,
		Notes:   order.Notes,
		Status:  models.BookingStatusConfirmed,
		OrderID: &orderID,
	})
	if err != nil {
		// A concurrent finalization won the unique order_id slot;
		// its booking is the canonical one.
		if database.IsUniqueViolation(err, "") {
			existing, getErr := s.bookings.GetByOrderID(order.ID)
			if getErr != nil {
				return nil, false, getErr
			}
			return existing, false, nil
		}
		return nil, false, fmt.Errorf("failed to create booking: %w", err)
	}

	if err := s.carts.EmptyTx(tx, order.CartID); err != nil {
		return nil, false, err
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("failed to commit finalization: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"order_id":   order.ID,
		"booking_id": booking.ID,
	}).Info("Order finalized")

	return booking, true, nil
}

// confirmPrepayBooking transitions a checkout-created booking out of
// pending_payment. The status update and the cart cleanup share one
// transaction: a partial failure rolls both back and leaves the
// booking retryable.
func (s *FinalizeService) confirmPrepayBooking(bookingID, cartID int64) (*models.Booking, bool, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.bookings.UpdateStatusTx(tx, bookingID, models.BookingStatusConfirmed); err != nil {
		return nil, false, err
	}
	if err := s.carts.EmptyTx(tx, cartID); err != nil {
		return nil, false, err
	}
	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("failed to commit finalization: %w", err)
	}

	confirmed, err := s.bookings.GetByID(bookingID)
	if err != nil {
		return nil, false, err
	}
	return confirmed, true, nil
}

// notify sends confirmation emails; failures are logged and swallowed
func (s *FinalizeService) notify(booking *models.Booking) {
	if err := s.email.SendBookingConfirmed(booking); err != nil {
		s.logger.WithError(err).WithField("booking_id", booking.ID).Warn("Failed to send confirmation email")
	}
	if err := s.email.SendAdminNotification(s.notifyEmail, booking); err != nil {
		s.logger.WithError(err).WithField("booking_id", booking.ID).Warn("Failed to send admin notification")
	}
}

// recordContact updates the address book; failures are logged and swallowed
func (s *FinalizeService) recordContact(order *models.Order) {
	if _, err := s.contacts.Upsert(order.Email, order.Name, order.Phone, true, false, time.Now()); err != nil {
		s.logger.WithError(err).WithField("order_id", order.ID).Warn("Failed to record contact")
	}
}
