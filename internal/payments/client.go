// Package payments integrates the hosted-checkout payment provider.
// Sessions are created server side; the client only ever sees the redirect
// URL, and verification happens on return.
package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/tawreed/tawreed/internal/platform/httpx"
)

// Client wraps the provider's checkout API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient constructs a new client.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Session is a provider checkout session.
type Session struct {
	ID          string  `json:"id"`
	RedirectURL string  `json:"redirect_url"`
	Status      string  `json:"status"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	ReferenceID string  `json:"reference_id"`
}

// SessionPaid is the provider's settled state.
const SessionPaid = "paid"

// CreateSession opens a checkout session for the given amount. ReferenceID
// ties the session back to our shipment or invoice.
func (c *Client) CreateSession(ctx context.Context, amount float64, currency, referenceID, returnURL string) (Session, error) {
	payload, err := json.Marshal(map[string]any{
		"amount":       amount,
		"currency":     currency,
		"reference_id": referenceID,
		"return_url":   returnURL,
	})
	if err != nil {
		return Session{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/v1/checkout/sessions", c.baseURL), bytes.NewReader(payload))
	if err != nil {
		return Session{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", httpx.ErrUpstream, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return Session{}, fmt.Errorf("%w: provider returned status %d", httpx.ErrUpstream, resp.StatusCode)
	}

	var session Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return Session{}, fmt.Errorf("%w: decode session: %v", httpx.ErrUpstream, err)
	}
	return session, nil
}

// GetSession fetches the current state of a session.
func (c *Client) GetSession(ctx context.Context, sessionID string) (Session, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/v1/checkout/sessions/%s", c.baseURL, sessionID), nil)
	if err != nil {
		return Session{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", httpx.ErrUpstream, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return Session{}, fmt.Errorf("%w: provider returned status %d", httpx.ErrUpstream, resp.StatusCode)
	}

	var session Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return Session{}, fmt.Errorf("%w: decode session: %v", httpx.ErrUpstream, err)
	}
	return session, nil
}
