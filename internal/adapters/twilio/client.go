// internal/adapters/twilio/client.go
package twilio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"whatsapp_reviews/internal/adapters/observability"
	"whatsapp_reviews/internal/domain"
)

const DefaultBaseURL = "https://api.twilio.com"

// Client sends WhatsApp messages through the Twilio Messages API.
// It implements domain.Notifier. Each Send is a single attempt.
type Client struct {
	base  string
	sid   string
	token string
	from  string
	hc    *http.Client
	rl    *rate.Limiter
}

type Option func(*Client)

func WithBaseURL(base string) Option {
	return func(c *Client) {
		if b := strings.TrimRight(strings.TrimSpace(base), "/"); b != "" {
			c.base = b
		}
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.hc = hc
		}
	}
}

// New validates credentials up front. rps bounds the outbound send rate.
func New(accountSID, authToken, from string, rps int, opts ...Option) (*Client, error) {
	if strings.TrimSpace(accountSID) == "" || strings.TrimSpace(authToken) == "" {
		return nil, fmt.Errorf("%w: account sid and auth token are required", domain.ErrNotConfigured)
	}
	if strings.TrimSpace(from) == "" {
		return nil, fmt.Errorf("%w: sending number is required", domain.ErrNotConfigured)
	}
	if rps <= 0 {
		rps = 10
	}
	c := &Client{
		base:  DefaultBaseURL,
		sid:   accountSID,
		token: authToken,
		from:  domain.WhatsAppAddress(strings.TrimSpace(from)),
		hc:    &http.Client{Timeout: 10 * time.Second},
		rl:    rate.NewLimiter(rate.Limit(rps), rps),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// StatusError is a non-2xx answer from Twilio.
type StatusError struct {
	StatusCode int
	Code       int    // Twilio error code, when the body carried one
	Message    string // Twilio error message or a truncated body
}

func (e *StatusError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("twilio: status %d (code %d): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("twilio: status %d: %s", e.StatusCode, e.Message)
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type messageResource struct {
	SID    string `json:"sid"`
	Status string `json:"status"`
}

func (c *Client) messagesURL() string {
	return fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", c.base, url.PathEscape(c.sid))
}

// Send delivers text to the sender identifier to (scheme optional).
func (c *Client) Send(ctx context.Context, to, text string) error {
	if strings.TrimSpace(to) == "" {
		return errors.New("twilio: recipient is empty")
	}
	// client-side rate limiting
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	form := url.Values{}
	form.Set("To", domain.WhatsAppAddress(to))
	form.Set("From", c.from)
	form.Set("Body", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.messagesURL(), strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.sid, c.token)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "whatsapp-reviews/1.0")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("twilio", "messages", 0, time.Since(start))
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("twilio: send: %w", err)
	}
	defer resp.Body.Close()
	observability.ObserveExternal("twilio", "messages", resp.StatusCode, time.Since(start))

	// read a small body for diagnostics
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		se := &StatusError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(b))}
		var ae apiError
		if json.Unmarshal(b, &ae) == nil && ae.Message != "" {
			se.Code, se.Message = ae.Code, ae.Message
		}
		return se
	}

	var m messageResource
	if err := json.Unmarshal(b, &m); err != nil {
		return fmt.Errorf("twilio: decode response: %w", err)
	}
	if m.Status == "failed" || m.Status == "undelivered" {
		return fmt.Errorf("twilio: message %s %s", m.SID, m.Status)
	}
	return nil
}
