package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/DanieleMarcon/lasoluzione-backend/internal/database"
	"github.com/DanieleMarcon/lasoluzione-backend/internal/models"
)

var (
	// ErrInvalidBookingDate indicates a date or time the intake could not parse
	ErrInvalidBookingDate = fmt.Errorf("invalid booking date")

	// ErrInvalidBookingStatus indicates an unknown status in an admin update
	ErrInvalidBookingStatus = fmt.Errorf("invalid booking status")
)

// BookingResult is the outcome of booking intake. Prepay bookings carry
// a hosted-checkout URL; free bookings get a verification email, and
// EmailFailed marks a delivery failure that should surface as a warning.
type BookingResult struct {
	Booking     *models.Booking
	CheckoutURL string
	EmailFailed bool
}

// BookingService runs the public booking intake and the admin booking
// operations.
type BookingService struct {
	bookings     *database.BookingRepository
	orders       *database.OrderRepository
	carts        *database.CartRepository
	contacts     *database.ContactRepository
	settings     *SettingsService
	verification *VerificationService
	payment      *PaymentService
	email        *EmailService
	logger       *logrus.Logger
}

// NewBookingService creates a new booking service
func NewBookingService(
	db database.DB,
	settings *SettingsService,
	verification *VerificationService,
	payment *PaymentService,
	email *EmailService,
	logger *logrus.Logger,
) *BookingService {
	return &BookingService{
		bookings:     database.NewBookingRepository(db),
		orders:       database.NewOrderRepository(db),
		carts:        database.NewCartRepository(db),
		contacts:     database.NewContactRepository(db),
		settings:     settings,
		verification: verification,
		payment:      payment,
		email:        email,
		logger:       logger,
	}
}

// Create handles public booking intake. Enabled-type and date checks run
// against the current settings; prepay types go through checkout, all
// others get a pending booking plus a verification email.
func (s *BookingService) Create(req *models.CreateBookingRequest, ipAddress, userAgent string) (*BookingResult, error) {
	settings, err := s.settings.Get()
	if err != nil {
		return nil, err
	}

	if !s.settings.TypeIsEnabled(settings, req.Type) {
		return nil, ErrTypeNotEnabled
	}

	date, err := s.settings.ResolveBookingDate(settings, req.Date, req.Time)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBookingDate, err)
	}

	var notes *string
	if req.Notes != "" {
		notes = &req.Notes
	}

	if _, err := s.contacts.Upsert(req.Email, req.Name, req.Phone, true, false, time.Now()); err != nil {
		s.logger.WithError(err).Warn("Failed to record contact")
	}

	prepayCents := settings.CoverCents * int64(req.People)
	if s.settings.TypeRequiresPrepay(settings, req.Type) && prepayCents > 0 {
		return s.createPrepayBooking(req, date, notes, prepayCents)
	}

	booking, err := s.bookings.Create(&models.Booking{
		Date:   date,
		People: req.People,
		Type:   req.Type,
		Name:   req.Name,
		Email:  req.Email,
		Phone:  req.Phone,
		Notes:  notes,
		Status: models.BookingStatusPending,
	})
	if err != nil {
		return nil, err
	}

	token, err := s.verification.Issue(booking.ID, booking.Email, ipAddress, userAgent)
	if err != nil {
		return nil, err
	}

	result := &BookingResult{Booking: booking}
	if err := s.email.SendVerification(booking, token); err != nil {
		s.logger.WithError(err).WithField("booking_id", booking.ID).Warn("Failed to send verification email")
		result.EmailFailed = true
	}
	return result, nil
}

// createPrepayBooking builds the cart/order pair for a booking that must
// be paid upfront and opens a gateway session for the cover charge.
func (s *BookingService) createPrepayBooking(req *models.CreateBookingRequest, date time.Time, notes *string, amountCents int64) (*BookingResult, error) {
	cart, err := s.carts.Create(uuid.New().String())
	if err != nil {
		return nil, err
	}
	if err := s.carts.UpdateTotal(cart.ID, amountCents); err != nil {
		return nil, err
	}

	paymentRef := "ord-" + uuid.New().String()
	order, err := s.orders.Create(&models.Order{
		CartID:     cart.ID,
		TotalCents: amountCents,
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

	orderID := order.ID
	booking, err := s.bookings.Create(&models.Booking{
		Date:        date,
		People:      req.People,
		Type:        req.Type,
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Notes:       notes,
		Status:      models.BookingStatusPendingPayment,
		PrepayToken: &paymentRef,
		OrderID:     &orderID,
	})
	if err != nil {
		return nil, err
	}

	session, err := s.payment.CreateSession(&CreateSessionParams{
		InvoiceID:     paymentRef,
		AmountCents:   amountCents,
		Description:   fmt.Sprintf("Prenotazione #%d", booking.ID),
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

	s.logger.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"order_id":   order.ID,
		"amount":     amountCents,
	}).Info("Prepay booking created")

	return &BookingResult{Booking: booking, CheckoutURL: session.CheckoutURL}, nil
}

// Verify consumes a verification token and sends confirmation emails on
// success. Email failures never undo the confirmation.
func (s *BookingService) Verify(token string, notifyEmail string) (*VerifyResult, error) {
	result, err := s.verification.Consume(token)
	if err != nil {
		return nil, err
	}

	if result.Status == VerifyStatusOK && result.Booking != nil {
		if err := s.email.SendBookingConfirmed(result.Booking); err != nil {
			s.logger.WithError(err).WithField("booking_id", result.Booking.ID).Warn("Failed to send confirmation email")
		}
		if err := s.email.SendAdminNotification(notifyEmail, result.Booking); err != nil {
			s.logger.WithError(err).WithField("booking_id", result.Booking.ID).Warn("Failed to send admin notification")
		}
	}
	return result, nil
}

// List returns bookings matching the filter
func (s *BookingService) List(filter models.BookingFilter) ([]models.Booking, error) {
	return s.bookings.List(filter)
}

// Get returns one booking
func (s *BookingService) Get(id int64) (*models.Booking, error) {
	return s.bookings.GetByID(id)
}

// UpdateStatus transitions a booking after validating the target status
func (s *BookingService) UpdateStatus(id int64, status string) error {
	switch status {
	case models.BookingStatusPending, models.BookingStatusPendingPayment,
		models.BookingStatusConfirmed, models.BookingStatusCancelled, models.BookingStatusFailed:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidBookingStatus, status)
	}
	return s.bookings.UpdateStatus(id, status)
}

// Delete removes a booking
func (s *BookingService) Delete(id int64) error {
	return s.bookings.Delete(id)
}
