// Package sms delivers out-of-band messages through the Africa's Talking
// gateway: lesson texts, quiz results, chat history, and answers that missed
// the interactive deadline.
package sms

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/edubotswana/edubot/internal/logging"
)

// Notifier is the out-of-band delivery channel. Implementations own message
// chunking; callers hand over complete messages and treat delivery as
// best-effort.
type Notifier interface {
	Deliver(ctx context.Context, phoneNumber, message string) error
}

// Client sends SMS through the Africa's Talking messaging API. Without an
// API key it runs in debug mode and logs messages instead of sending them.
type Client struct {
	baseURL   string
	username  string
	apiKey    string
	senderID  string
	chunkSize int
	http      *http.Client
	logger    *slog.Logger
}

// ClientConfig configures the SMS client.
type ClientConfig struct {
	BaseURL   string
	Username  string
	APIKey    string
	SenderID  string
	ChunkSize int
}

type ClientOption func(*Client)

// WithLogger configures a logger for delivery diagnostics.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient overrides the HTTP client, for tests.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) {
		c.http = h
	}
}

// NewClient creates an SMS client.
func NewClient(cfg ClientConfig, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:   cfg.BaseURL,
		username:  cfg.Username,
		apiKey:    cfg.APIKey,
		senderID:  cfg.SenderID,
		chunkSize: cfg.ChunkSize,
		http:      &http.Client{Timeout: 30 * time.Second},
		logger:    logging.NewNop(),
	}
	if c.baseURL == "" {
		c.baseURL = "https://api.sandbox.africastalking.com/version1/messaging"
	}
	if c.chunkSize <= 0 {
		c.chunkSize = 153
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Deliver sends a message, splitting it into SMS-safe chunks. A chunk
// failure is logged and the remaining chunks are still attempted; only the
// first error is returned.
func (c *Client) Deliver(ctx context.Context, phoneNumber, message string) error {
	if c.apiKey == "" {
		c.logger.Info("sms debug mode, not sending", "to", phoneNumber, "message", message)
		return nil
	}

	var firstErr error
	for i, chunk := range Chunk(message, c.chunkSize) {
		if err := c.send(ctx, phoneNumber, chunk); err != nil {
			c.logger.Warn("sms chunk delivery failed", "to", phoneNumber, "chunk", i+1, "err", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (c *Client) send(ctx context.Context, phoneNumber, message string) error {
	form := url.Values{
		"username": {c.username},
		"to":       {phoneNumber},
		"message":  {message},
	}
	if c.senderID != "" {
		form.Set("from", c.senderID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build sms request: %w", err)
	}
	req.Header.Set("apiKey", c.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("sms request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sms gateway returned status %d", resp.StatusCode)
	}
	return nil
}

// Chunk splits a message into chunks of at most limit characters, breaking
// at word boundaries where possible. The default limit of 153 (not 160)
// leaves room for UDH concatenation headers.
func Chunk(text string, limit int) []string {
	var chunks []string

	text = strings.TrimSpace(text)
	for len(text) > limit {
		breakPoint := strings.LastIndex(text[:limit], " ")
		if breakPoint <= 0 {
			breakPoint = limit
		}
		chunks = append(chunks, strings.TrimSpace(text[:breakPoint]))
		text = strings.TrimSpace(text[breakPoint:])
	}
	if text != "" {
		chunks = append(chunks, text)
	}
	return chunks
}
