package handler

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/eventloom/eventloom/internal/payment"
	"github.com/eventloom/eventloom/internal/service"
)

const webhookSecret = "whsec_handler_test"

// The webhook handler is exercised with the real signature verification
// path; the unknown event type keeps it from touching any repository.
func newWebhookHandler(t *testing.T) *WebhookHandler {
	t.Helper()
	gateway := payment.NewClient(payment.Config{WebhookSecret: webhookSecret})
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.NewPaymentService(nil, nil, gateway, decimal.NewFromInt(10), log)
	return NewWebhookHandler(svc, log)
}

func TestWebhook_InvalidSignatureRejected(t *testing.T) {
	h := newWebhookHandler(t)
	payloadBody := []byte(`{"id":"evt_1","type":"charge.succeeded"}`)

	req := httptest.NewRequest(http.MethodPost, "/payments/webhook", bytes.NewReader(payloadBody))
	req.Header.Set(payment.SignatureHeader, "t=123,v1=deadbeef")
	rec := httptest.NewRecorder()

	h.HandleWebhook(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid signature")
}

func TestWebhook_MissingSignatureRejected(t *testing.T) {
	h := newWebhookHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/payments/webhook", bytes.NewReader([]byte(`{}`)))
	rec := httptest.NewRecorder()

	h.HandleWebhook(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// Any signature-verified event is acknowledged with 200 even when it is not
// a type we act on, so the provider stops redelivering it.
func TestWebhook_UnhandledEventAcknowledged(t *testing.T) {
	h := newWebhookHandler(t)
	payloadBody := []byte(`{"id":"evt_9","type":"invoice.created","data":{"object":{}}}`)

	req := httptest.NewRequest(http.MethodPost, "/payments/webhook", bytes.NewReader(payloadBody))
	req.Header.Set(payment.SignatureHeader, payment.SignPayload(payloadBody, webhookSecret, time.Now()))
	rec := httptest.NewRecorder()

	h.HandleWebhook(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
