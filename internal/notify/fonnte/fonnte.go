// Package fonnte sends WhatsApp messages through the Fonnte gateway.
package fonnte

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
)

const (
	// DefaultURL is the gateway send endpoint.
	DefaultURL  = "https://api.fonnte.com/send"
	httpTimeout = 10 * time.Second
	maxBody     = 4096
)

// ErrNoToken is returned by Send when no API token is configured.
var ErrNoToken = errors.New("fonnte: api token not configured")

// Option customises a Client.
type Option func(*Client)

// WithURL points the client at a different endpoint.
func WithURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.url = u
		}
	}
}

// WithCountryCode sets the countryCode form field.
func WithCountryCode(cc string) Option {
	return func(c *Client) {
		if cc != "" {
			c.countryCode = cc
		}
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.client = hc
		}
	}
}

// Client posts messages to the gateway. It satisfies notify.Sender.
type Client struct {
	token       string
	url         string
	countryCode string
	client      *http.Client
}

// New creates a Client. An empty token is allowed; Send then fails with ErrNoToken.
func New(token string, opts ...Option) *Client {
	c := &Client{
		token:       token,
		url:         DefaultURL,
		countryCode: "62",
		client:      &http.Client{Timeout: httpTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type response struct {
	Status bool   `json:"status"`
	Reason string `json:"reason"`
}

// Send delivers text to target, an international phone number without '+'.
func (c *Client) Send(ctx context.Context, target, text string) error {
	if c.token == "" {
		return ErrNoToken
	}

	form := url.Values{}
	form.Set("target", target)
	form.Set("message", text)
	form.Set("countryCode", c.countryCode)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("fonnte: create request: %w", err)
	}
	req.Header.Set("Authorization", c.token)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req) //nolint:gosec // G704: url is from trusted config
	if err != nil {
		return fmt.Errorf("fonnte: post: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return fmt.Errorf("fonnte: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("fonnte: gateway returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var r response
	if err := json.Unmarshal(body, &r); err != nil {
		return fmt.Errorf("fonnte: decode response: %w", err)
	}
	if !r.Status {
		reason := r.Reason
		if reason == "" {
			reason = "rejected"
		}
		return fmt.Errorf("fonnte: %s", reason)
	}
	return nil
}
