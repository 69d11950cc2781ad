package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/eventloom/eventloom/internal/payment"
	"github.com/eventloom/eventloom/internal/service"
)

// maxWebhookBody bounds provider payload size.
const maxWebhookBody = 1 << 20

// WebhookHandler receives payment provider notifications.
type WebhookHandler struct {
	svc *service.PaymentService
	log *slog.Logger
}

// NewWebhookHandler constructs a WebhookHandler.
func NewWebhookHandler(svc *service.PaymentService, log *slog.Logger) *WebhookHandler {
	return &WebhookHandler{svc: svc, log: log}
}

// HandleWebhook handles POST /payments/webhook
//
// Response contract: 200 for any signature-verified event regardless of the
// business outcome (the provider must stop redelivering), 400 only for
// signature failure, 500 for internal failures so the provider retries. No
// internal error detail ever reaches the response body.
func (h *WebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unable to read request body")
		return
	}

	err = h.svc.HandleNotification(r.Context(), body, r.Header.Get(payment.SignatureHeader))
	if err != nil {
		if errors.Is(err, payment.ErrInvalidSignature) {
			writeError(w, http.StatusBadRequest, "invalid signature")
			return
		}
		h.log.Error("webhook processing failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.WriteHeader(http.StatusOK)
}
