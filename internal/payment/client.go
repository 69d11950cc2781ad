// Package payment wraps the Stripe REST API: hosted checkout session
// creation, payment-intent retrieval, and webhook signature verification.
package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/eventloom/eventloom/internal/monitoring"
)

// ErrGateway is returned when the provider call fails; the booking stays
// pending and the caller may retry session creation.
var ErrGateway = errors.New("payment gateway error")

// Config carries the provider credentials and redirect targets. It is passed
// at construction; nothing is read from ambient process state.
type Config struct {
	SecretKey     string
	WebhookSecret string
	BaseURL       string
	SuccessURL    string
	CancelURL     string
}

// Client is an HTTP client for the provider's REST API.
type Client struct {
	secretKey     string
	webhookSecret string
	baseURL       string
	successURL    string
	cancelURL     string

	hc *http.Client
}

// NewClient creates a new provider client.
func NewClient(cfg Config) *Client {
	return &Client{
		secretKey:     cfg.SecretKey,
		webhookSecret: cfg.WebhookSecret,
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		successURL:    cfg.SuccessURL,
		cancelURL:     cfg.CancelURL,
		hc:            &http.Client{Timeout: 15 * time.Second},
	}
}

// CheckoutSession is the subset of the provider's session object we consume.
type CheckoutSession struct {
	ID            string `json:"id"`
	URL           string `json:"url"`
	PaymentIntent string `json:"payment_intent"`
}

// Intent is the subset of the provider's payment-intent object we consume.
// Metadata carries the booking correlation id set at session creation.
type Intent struct {
	ID       string            `json:"id"`
	Metadata map[string]string `json:"metadata"`
}

// MinorUnits converts a 2-decimal fixed-point amount to the provider's
// integer minor-unit representation (cents).
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).IntPart()
}

// CreateCheckoutSession builds a hosted payment session for a booking and
// returns its redirect URL. The booking id travels as opaque metadata on the
// underlying payment intent so the webhook reconciler can correlate
// notifications back to the booking.
func (c *Client) CreateCheckoutSession(ctx context.Context, bookingID, productName string, total decimal.Decimal) (*CheckoutSession, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", c.successURL)
	form.Set("cancel_url", c.cancelURL)
	form.Set("payment_method_types[0]", "card")
	form.Set("line_items[0][quantity]", "1")
	form.Set("line_items[0][price_data][currency]", "usd")
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(MinorUnits(total), 10))
	form.Set("line_items[0][price_data][product_data][name]", productName)
	form.Set("payment_intent_data[metadata][booking_id]", bookingID)

	var session CheckoutSession
	if err := c.call(ctx, "create_checkout_session", http.MethodPost, "/v1/checkout/sessions", form, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// GetPaymentIntent retrieves a payment intent by id, including its metadata.
func (c *Client) GetPaymentIntent(ctx context.Context, intentID string) (*Intent, error) {
	var intent Intent
	if err := c.call(ctx, "get_payment_intent", http.MethodGet, "/v1/payment_intents/"+url.PathEscape(intentID), nil, &intent); err != nil {
		return nil, err
	}
	return &intent, nil
}

func (c *Client) call(ctx context.Context, operation, method, path string, form url.Values, out any) error {
	start := time.Now()
	err := c.do(ctx, method, path, form, out)

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	monitoring.ObserveGatewayRequest(operation, outcome, time.Since(start).Seconds())
	return err
}

func (c *Client) do(ctx context.Context, method, path string, form url.Values, out any) error {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrGateway, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGateway, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrGateway, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s %s: %s", ErrGateway, method, path, apiErrorMessage(raw, resp.StatusCode))
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrGateway, err)
	}
	return nil
}

// apiErrorMessage extracts the provider's error message, falling back to the
// HTTP status.
func apiErrorMessage(raw []byte, status int) string {
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error.Message != "" {
		return envelope.Error.Message
	}
	return fmt.Sprintf("status %d", status)
}
