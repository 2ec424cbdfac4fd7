package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"github.com/suitenest/hotel-backend/internal/config"
)

// GatewayError represents a failure reported by or while reaching the
// payment gateway. Retryable is set for timeouts and transport errors;
// a declined or rejected transaction is never retryable.
type GatewayError struct {
	Message   string
	Retryable bool
}

func (e *GatewayError) Error() string {
	return e.Message
}

// PaymentGateway is the surface the booking flow depends on. The
// concrete client talks to Paystack; tests substitute a fake.
type PaymentGateway interface {
	Initialize(ctx context.Context, req *InitializeRequest) (*InitializeResult, error)
	Verify(ctx context.Context, reference string) (*VerifyResult, error)
}

// InitializeRequest carries the inputs for a hosted-checkout authorization
type InitializeRequest struct {
	Email       string
	AmountMajor float64 // major currency units; converted to minor before sending
	Reference   string  // booking reference, reused as the gateway transaction reference
	Metadata    map[string]string
}

// InitializeResult is the gateway's authorization handle
type InitializeResult struct {
	AuthorizationURL string
	AccessCode       string
	Reference        string
}

// VerifyResult is the gateway's ground-truth view of a transaction
type VerifyResult struct {
	Status      string // "success", "failed", "abandoned"
	AmountMinor int64
	Currency    string
	Raw         json.RawMessage
}

// PaystackService wraps the Paystack transaction API. The secret key
// is server-side only; nothing in this type may ever be reachable from
// an unauthenticated handler.
type PaystackService struct {
	config *config.PaymentConfig
	logger *logrus.Logger
	client *resty.Client
}

type paystackInitRequest struct {
	Email       string            `json:"email"`
	Amount      int64             `json:"amount"` // minor units
	Reference   string            `json:"reference"`
	Currency    string            `json:"currency"`
	CallbackURL string            `json:"callback_url,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type paystackInitResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

type paystackVerifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Status   string `json:"status"`
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
	} `json:"data"`
}

// NewPaystackService creates a new Paystack gateway client
func NewPaystackService(cfg *config.PaymentConfig, logger *logrus.Logger) *PaystackService {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(30 * time.Second).
		SetAuthToken(cfg.SecretKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &PaystackService{
		config: cfg,
		logger: logger,
		client: client,
	}
}

// MinorUnits converts an amount in major currency units to the
// gateway's minor unit (multiply by 100, rounded).
func MinorUnits(amountMajor float64) int64 {
	return int64(math.Round(amountMajor * 100))
}

// Initialize requests a hosted-checkout authorization. The booking
// reference is attached as the transaction reference so the two
// systems stay correlated.
func (s *PaystackService) Initialize(ctx context.Context, req *InitializeRequest) (*InitializeResult, error) {
	if s.config.SecretKey == "" {
		return nil, fmt.Errorf("payment gateway not configured: missing secret key")
	}

	amountMinor := MinorUnits(req.AmountMajor)

	s.logger.WithFields(logrus.Fields{
		"reference":    req.Reference,
		"amount_minor": amountMinor,
		"currency":     s.config.Currency,
	}).Info("Initializing gateway transaction")

	var result paystackInitResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(paystackInitRequest{
			Email:       req.Email,
			Amount:      amountMinor,
			Reference:   req.Reference,
			Currency:    s.config.Currency,
			CallbackURL: s.config.CallbackURL,
			Metadata:    req.Metadata,
		}).
		SetResult(&result).
		SetError(&result).
		Post("/transaction/initialize")

	if err != nil {
		s.logger.WithError(err).Error("Failed to call gateway initialize endpoint")
		return nil, &GatewayError{
			Message:   fmt.Sprintf("failed to reach payment gateway: %v", err),
			Retryable: isTransportError(err),
		}
	}

	if resp.IsError() || !result.Status {
		message := result.Message
		if message == "" {
			message = fmt.Sprintf("gateway returned status %d", resp.StatusCode())
		}
		return nil, &GatewayError{Message: message}
	}

	if result.Data.AuthorizationURL == "" {
		return nil, &GatewayError{Message: "gateway returned no authorization URL"}
	}

	s.logger.WithFields(logrus.Fields{
		"reference":   req.Reference,
		"access_code": result.Data.AccessCode,
	}).Info("Gateway transaction initialized")

	return &InitializeResult{
		AuthorizationURL: result.Data.AuthorizationURL,
		AccessCode:       result.Data.AccessCode,
		Reference:        result.Data.Reference,
	}, nil
}

// Verify queries the gateway for the ground-truth status of a
// transaction. Never auto-retried: verification must stay an explicit,
// operator-re-triggerable step so provider-side inconsistency is
// surfaced rather than masked.
func (s *PaystackService) Verify(ctx context.Context, reference string) (*VerifyResult, error) {
	if s.config.SecretKey == "" {
		return nil, fmt.Errorf("payment gateway not configured: missing secret key")
	}

	var result paystackVerifyResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetResult(&result).
		SetError(&result).
		Get("/transaction/verify/" + reference)

	if err != nil {
		s.logger.WithError(err).WithField("reference", reference).Error("Failed to call gateway verify endpoint")
		return nil, &GatewayError{
			Message:   fmt.Sprintf("failed to reach payment gateway: %v", err),
			Retryable: isTransportError(err),
		}
	}

	if resp.IsError() || !result.Status {
		message := result.Message
		if message == "" {
			message = fmt.Sprintf("gateway returned status %d", resp.StatusCode())
		}
		return nil, &GatewayError{Message: message}
	}

	s.logger.WithFields(logrus.Fields{
		"reference":      reference,
		"gateway_status": result.Data.Status,
		"amount_minor":   result.Data.Amount,
	}).Info("Gateway transaction verified")

	return &VerifyResult{
		Status:      result.Data.Status,
		AmountMinor: result.Data.Amount,
		Currency:    result.Data.Currency,
		Raw:         json.RawMessage(resp.Body()),
	}, nil
}

// VerifyWebhookSignature checks the HMAC-SHA512 signature the gateway
// attaches to server-to-server notifications. The signature is keyed
// with the secret key, so a valid signature is proof the event came
// from the gateway and not from a browser replaying a reference.
func (s *PaystackService) VerifyWebhookSignature(body []byte, signature string) bool {
	mac := hmac.New(sha512.New, []byte(s.config.SecretKey))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// IsConfigured returns true if the gateway credentials are present
func (s *PaystackService) IsConfigured() bool {
	return s.config.SecretKey != ""
}

// isTransportError classifies errors that justify a single retry of
// Initialize. A timeout or connection failure is not a payment
// failure; a response the gateway actually produced is never retried.
func isTransportError(err error) bool {
	if err == nil {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
