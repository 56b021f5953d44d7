package services

import (
	"bytes"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/DanieleMarcon/lasoluzione-backend/internal/config"
)

// GatewayEnvironmentURLs maps environment names to hosted-checkout endpoints
var GatewayEnvironmentURLs = map[string]string{
	"sandbox":    "https://sandbox.checkout.example-psp.eu/api/v1",
	"production": "https://checkout.example-psp.eu/api/v1",
}

// PaymentService integrates the hosted-checkout payment gateway. The
// merchant secret never leaves the server; it only feeds the checkValue
// signature.
type PaymentService struct {
	config *config.PaymentConfig
	logger *logrus.Logger
	client *http.Client
}

// GatewaySessionRequest is the session-creation payload sent to the gateway
type GatewaySessionRequest struct {
	MerchantKey   string `json:"merchantKey"`
	InvoiceID     string `json:"invoiceId"`
	Amount        string `json:"amount"`
	CurrencyCode  string `json:"currencyCode"`
	Description   string `json:"description,omitempty"`
	CustomerName  string `json:"customerName"`
	CustomerEmail string `json:"customerEmail"`
	CustomerPhone string `json:"customerPhone,omitempty"`
	ReturnURL     string `json:"returnUrl"`
	WebhookURL    string `json:"webhookUrl,omitempty"`
	CheckValue    string `json:"checkValue"`
}

// GatewaySessionResponse is the gateway's reply to session creation
type GatewaySessionResponse struct {
	Status      string `json:"status"` // "success" or "error"
	SessionID   string `json:"sessionId"`
	CheckoutURL string `json:"checkoutUrl"`
	Message     string `json:"message,omitempty"`
}

// GatewayStatusResponse is the gateway's reply to a status poll
type GatewayStatusResponse struct {
	Status        string `json:"status"`
	PaymentStatus string `json:"paymentStatus"` // "pending", "success", "failed", "cancelled"
	InvoiceID     string `json:"invoiceId"`
	Amount        string `json:"amount"`
	Message       string `json:"message,omitempty"`
}

// GatewayWebhookPayload is the notification the gateway posts on payment events
type GatewayWebhookPayload struct {
	SessionID     string `json:"sessionId"`
	InvoiceID     string `json:"invoiceId"`
	Amount        string `json:"amount"`
	CurrencyCode  string `json:"currencyCode"`
	PaymentStatus string `json:"paymentStatus"` // "SUCCESS", "FAILED", "CANCELLED"
	TransactionID string `json:"transactionId,omitempty"`
	CheckValue    string `json:"checkValue"`
}

// NewPaymentService creates a new payment service
func NewPaymentService(cfg *config.PaymentConfig, logger *logrus.Logger) *PaymentService {
	return &PaymentService{
		config: cfg,
		logger: logger,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// IsConfigured reports whether merchant credentials are present
func (s *PaymentService) IsConfigured() bool {
	return s.config.MerchantKey != "" && s.config.MerchantSecret != ""
}

// GenerateCheckValue signs a request with the merchant secret.
// hash1 = SHA512(merchantSecret) uppercase hex
// hash2 = SHA512("merchantKey|invoiceId|amount|currencyCode|hash1") uppercase hex
func (s *PaymentService) GenerateCheckValue(invoiceID, amount, currencyCode string) string {
	hash1 := sha512.Sum512([]byte(s.config.MerchantSecret))
	hash1Hex := strings.ToUpper(hex.EncodeToString(hash1[:]))

	data := fmt.Sprintf("%s|%s|%s|%s|%s",
		s.config.MerchantKey, invoiceID, amount, currencyCode, hash1Hex,
	)
	hash2 := sha512.Sum512([]byte(data))
	return strings.ToUpper(hex.EncodeToString(hash2[:]))
}

// FormatAmount renders minor units as the gateway's decimal string
func FormatAmount(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}

// CreateSessionParams carries the order fields the gateway needs
type CreateSessionParams struct {
	InvoiceID     string
	AmountCents   int64
	Description   string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
}

// CreateSession opens a hosted-checkout session and returns the session
// id and the URL to redirect the customer to.
func (s *PaymentService) CreateSession(params *CreateSessionParams) (*GatewaySessionResponse, error) {
	if !s.IsConfigured() {
		return nil, fmt.Errorf("payment gateway not configured: missing merchant credentials")
	}

	amount := FormatAmount(params.AmountCents)
	request := &GatewaySessionRequest{
		MerchantKey:   s.config.MerchantKey,
		InvoiceID:     params.InvoiceID,
		Amount:        amount,
		CurrencyCode:  s.config.Currency,
		Description:   params.Description,
		CustomerName:  params.CustomerName,
		CustomerEmail: params.CustomerEmail,
		CustomerPhone: params.CustomerPhone,
		ReturnURL:     s.config.ReturnURL,
		WebhookURL:    s.config.WebhookURL,
		CheckValue:    s.GenerateCheckValue(params.InvoiceID, amount, s.config.Currency),
	}

	s.logger.WithFields(logrus.Fields{
		"invoice_id": params.InvoiceID,
		"amount":     amount,
		"currency":   s.config.Currency,
	}).Info("Creating payment session")

	endpointURL := s.endpoint() + "/sessions"
	body, err := s.post(endpointURL, request)
	if err != nil {
		return nil, err
	}

	var sessionResp GatewaySessionResponse
	if err := json.Unmarshal(body, &sessionResp); err != nil {
		return nil, fmt.Errorf("failed to parse gateway response: %w", err)
	}

	if sessionResp.Status != "success" {
		msg := sessionResp.Message
		if msg == "" {
			msg = fmt.Sprintf("status=%s", sessionResp.Status)
		}
		return nil, fmt.Errorf("payment session creation failed: %s", msg)
	}
	if sessionResp.CheckoutURL == "" {
		return nil, fmt.Errorf("payment session creation failed: no checkout URL returned")
	}

	s.logger.WithFields(logrus.Fields{
		"session_id": sessionResp.SessionID,
	}).Info("Payment session created")

	return &sessionResp, nil
}

// CheckStatus polls the gateway for the current state of a session
func (s *PaymentService) CheckStatus(sessionID string) (*GatewayStatusResponse, error) {
	statusURL := fmt.Sprintf("%s/sessions/%s/status", s.endpoint(), sessionID)

	resp, err := s.client.Get(statusURL)
	if err != nil {
		return nil, fmt.Errorf("failed to check payment status: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var statusResp GatewayStatusResponse
	if err := json.Unmarshal(body, &statusResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &statusResp, nil
}

// VerifyWebhook parses a webhook payload and checks its signature
// against the merchant secret.
func (s *PaymentService) VerifyWebhook(body []byte) (*GatewayWebhookPayload, error) {
	var payload GatewayWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("invalid webhook payload: %w", err)
	}

	if payload.SessionID == "" || payload.InvoiceID == "" {
		return nil, fmt.Errorf("webhook missing required fields")
	}

	expected := s.GenerateCheckValue(payload.InvoiceID, payload.Amount, payload.CurrencyCode)
	if payload.CheckValue != expected {
		return nil, fmt.Errorf("webhook signature mismatch")
	}

	s.logger.WithFields(logrus.Fields{
		"session_id":     payload.SessionID,
		"invoice_id":     payload.InvoiceID,
		"payment_status": payload.PaymentStatus,
	}).Info("Webhook payload verified")

	return &payload, nil
}

// IsPaymentSuccessful reports whether a webhook marks the payment as settled
func (s *PaymentService) IsPaymentSuccessful(payload *GatewayWebhookPayload) bool {
	return strings.ToUpper(payload.PaymentStatus) == "SUCCESS"
}

func (s *PaymentService) endpoint() string {
	if url, ok := GatewayEnvironmentURLs[s.config.Environment]; ok {
		return url
	}
	return GatewayEnvironmentURLs["sandbox"]
}

func (s *PaymentService) post(url string, payload interface{}) ([]byte, error) {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := s.client.Post(url, "application/json", bytes.NewBuffer(jsonBody))
	if err != nil {
		s.logger.WithError(err).Error("Failed to call payment gateway")
		return nil, fmt.Errorf("failed to call payment gateway: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("payment gateway returned status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
