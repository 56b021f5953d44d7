package services

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/DanieleMarcon/lasoluzione-backend/internal/config"
	"github.com/DanieleMarcon/lasoluzione-backend/internal/models"
)

// EmailService sends transactional mail over SMTP. In dev mode messages
// are logged instead of sent so the flow can be exercised without a
// mail account.
type EmailService struct {
	config  *config.SMTPConfig
	baseURL string
	logger  *logrus.Logger
}

// NewEmailService creates a new email service
func NewEmailService(cfg *config.SMTPConfig, baseURL string, logger *logrus.Logger) *EmailService {
	return &EmailService{
		config:  cfg,
		baseURL: baseURL,
		logger:  logger,
	}
}

// SendVerification mails the booking verification link
func (s *EmailService) SendVerification(booking *models.Booking, token string) error {
	link := fmt.Sprintf("%s/prenota/verifica?token=%s", s.baseURL, token)
	subject := "Conferma la tua prenotazione"
	body := fmt.Sprintf(
		"Ciao %s,\n\n"+
			"abbiamo ricevuto la tua richiesta di prenotazione (%s, %d persone, %s).\n"+
			"Per confermarla clicca sul link qui sotto:\n\n%s\n\n"+
			"Il link è valido per un solo utilizzo e scade automaticamente.\n",
		booking.Name, booking.Type, booking.People, booking.Date.Format("02/01/2006 15:04"), link,
	)
	return s.send(booking.Email, subject, body)
}

// SendBookingConfirmed mails the customer after a booking is confirmed
func (s *EmailService) SendBookingConfirmed(booking *models.Booking) error {
	subject := "Prenotazione confermata"
	body := fmt.Sprintf(
		"Ciao %s,\n\n"+
			"la tua prenotazione per il %s (%d persone, %s) è confermata.\n"+
			"Ti aspettiamo!\n",
		booking.Name, booking.Date.Format("02/01/2006 15:04"), booking.People, booking.Type,
	)
	return s.send(booking.Email, subject, body)
}

// SendAdminNotification mails the back-office about a new confirmed booking
func (s *EmailService) SendAdminNotification(notifyEmail string, booking *models.Booking) error {
	if notifyEmail == "" {
		return nil
	}
	subject := fmt.Sprintf("Nuova prenotazione #%d", booking.ID)
	body := fmt.Sprintf(
		"Prenotazione #%d\nData: %s\nPersone: %d\nTipo: %s\nNome: %s\nEmail: %s\nTelefono: %s\n",
		booking.ID, booking.Date.Format("02/01/2006 15:04"), booking.People,
		booking.Type, booking.Name, booking.Email, booking.Phone,
	)
	return s.send(notifyEmail, subject, body)
}

// SendMagicLink mails a back-office sign-in link
func (s *EmailService) SendMagicLink(email, token string) error {
	link := fmt.Sprintf("%s/admin/login?email=%s&token=%s", s.baseURL, email, token)
	subject := "Accesso area riservata"
	body := fmt.Sprintf(
		"Per accedere all'area riservata clicca sul link qui sotto:\n\n%s\n\n"+
			"Il link scade tra 15 minuti e può essere usato una sola volta.\n",
		link,
	)
	return s.send(email, subject, body)
}

// send delivers a plain-text message, or logs it in dev mode
func (s *EmailService) send(to, subject, body string) error {
	if s.config.Mode != "production" {
		s.logger.WithFields(logrus.Fields{
			"to":      to,
			"subject": subject,
			"body":    body,
		}).Info("Email (dev mode, not sent)")
		return nil
	}

	msg := strings.Join([]string{
		"From: " + s.config.From,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		body,
	}, "\r\n")

	addr := s.config.Host + ":" + s.config.Port
	auth := smtp.PlainAuth("", s.config.From, s.config.Password, s.config.Host)

	if err := smtp.SendMail(addr, auth, s.config.From, []string{to}, []byte(msg)); err != nil {
		s.logger.WithError(err).WithField("to", to).Error("Failed to send email")
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
