package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidSignature is returned when a webhook payload fails
// authentication. No state may be mutated after this error.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// SignatureHeader is the request header carrying the webhook signature.
const SignatureHeader = "Stripe-Signature"

// signatureTolerance bounds how old a signed timestamp may be, limiting
// replay of captured payloads.
const signatureTolerance = 5 * time.Minute

// Webhook event types the reconciler acts on. Anything else is acknowledged
// and ignored.
const (
	EventCheckoutCompleted = "checkout.session.completed"
	EventChargeSucceeded   = "charge.succeeded"
)

// Event is a provider notification. Data.Object is kept raw because its
// shape depends on Type.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// SessionObject is the data object of a checkout.session.completed event.
type SessionObject struct {
	ID            string `json:"id"`
	PaymentIntent string `json:"payment_intent"`
}

// ChargeObject is the data object of a charge.succeeded event.
type ChargeObject struct {
	ID            string `json:"id"`
	PaymentIntent string `json:"payment_intent"`
	ReceiptURL    string `json:"receipt_url"`
}

// ConstructEvent verifies the payload against the signature header using the
// client's webhook secret and unmarshals it.
func (c *Client) ConstructEvent(payload []byte, sigHeader string) (*Event, error) {
	return ConstructEvent(payload, sigHeader, c.webhookSecret)
}

// ConstructEvent verifies the payload against the signature header using the
// shared webhook secret and unmarshals it. The header format is
// "t=<unix>,v1=<hex hmac-sha256 of '<unix>.<payload>'>".
func ConstructEvent(payload []byte, sigHeader, secret string) (*Event, error) {
	if err := verifySignature(payload, sigHeader, secret, time.Now()); err != nil {
		return nil, err
	}

	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("parse webhook payload: %w", err)
	}
	return &event, nil
}

func verifySignature(payload []byte, sigHeader, secret string, now time.Time) error {
	var timestamp string
	var candidates []string

	for _, part := range strings.Split(sigHeader, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch key {
		case "t":
			timestamp = value
		case "v1":
			candidates = append(candidates, value)
		}
	}
	if timestamp == "" || len(candidates) == 0 {
		return ErrInvalidSignature
	}

	unix, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return ErrInvalidSignature
	}
	if age := now.Sub(time.Unix(unix, 0)); age > signatureTolerance || age < -signatureTolerance {
		return ErrInvalidSignature
	}

	expected := computeSignature(timestamp, payload, secret)
	for _, candidate := range candidates {
		decoded, err := hex.DecodeString(candidate)
		if err != nil {
			continue
		}
		if hmac.Equal(decoded, expected) {
			return nil
		}
	}
	return ErrInvalidSignature
}

func computeSignature(timestamp string, payload []byte, secret string) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	return mac.Sum(nil)
}

// SignPayload produces a valid signature header for a payload. Used by tests
// and local tooling to emulate provider deliveries.
func SignPayload(payload []byte, secret string, at time.Time) string {
	timestamp := strconv.FormatInt(at.Unix(), 10)
	signature := computeSignature(timestamp, payload, secret)
	return fmt.Sprintf("t=%s,v1=%s", timestamp, hex.EncodeToString(signature))
}
