package mailer

import (
	"fmt"
	"log"
	"time"

	"github.com/go-resty/resty/v2"
)

// APIConfig holds the hosted email API configuration
type APIConfig struct {
	APIURL    string
	APIKey    string
	FromEmail string
}

// APIMailer sends email through a hosted transactional email API
// (Resend-compatible JSON surface).
type APIMailer struct {
	config APIConfig
	client *resty.Client
}

type apiSendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
	ReplyTo string   `json:"reply_to,omitempty"`
}

type apiSendResponse struct {
	ID      string `json:"id"`
	Message string `json:"message,omitempty"`
}

// NewAPIMailer creates a new hosted-API mailer
func NewAPIMailer(cfg APIConfig) *APIMailer {
	client := resty.New().
		SetTimeout(10 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetAuthToken(cfg.APIKey)

	return &APIMailer{
		config: cfg,
		client: client,
	}
}

// Send delivers a message through the hosted API
func (m *APIMailer) Send(msg Message) error {
	if m.config.APIKey == "" {
		return fmt.Errorf("email API key not configured")
	}

	var result apiSendResponse
	resp, err := m.client.R().
		SetBody(apiSendRequest{
			From:    m.config.FromEmail,
			To:      []string{msg.To},
			Subject: msg.Subject,
			Text:    msg.Body,
			ReplyTo: msg.ReplyTo,
		}).
		SetResult(&result).
		Post(m.config.APIURL)

	if err != nil {
		return fmt.Errorf("failed to call email API: %w", err)
	}

	if resp.IsError() {
		return fmt.Errorf("email API returned status %d: %s", resp.StatusCode(), resp.String())
	}

	return nil
}

// GetName returns the mailer implementation name
func (m *APIMailer) GetName() string {
	return "hosted-api"
}

// ConsoleMailer logs messages instead of sending them. Used in
// development mode so the contact flow works without credentials.
type ConsoleMailer struct{}

// NewConsoleMailer creates a new console mailer
func NewConsoleMailer() *ConsoleMailer {
	return &ConsoleMailer{}
}

// Send logs the message to stdout
func (m *ConsoleMailer) Send(msg Message) error {
	log.Printf("[mail] to=%s subject=%q body=%q", msg.To, msg.Subject, msg.Body)
	return nil
}

// GetName returns the mailer implementation name
func (m *ConsoleMailer) GetName() string {
	return "console"
}
