package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/eventloom/eventloom/internal/model"
	"github.com/eventloom/eventloom/internal/monitoring"
	"github.com/eventloom/eventloom/internal/payment"
	"github.com/eventloom/eventloom/internal/repository"
)

// PaymentService is the payment event reconciler: it consumes provider
// notifications and drives each booking to its terminal state exactly once.
//
// Notifications may arrive duplicated, late, or out of order. The persisted
// booking status is the idempotency key for the paid transition; the receipt
// URL is informational and last-write-wins.
type PaymentService struct {
	bookings   BookingRepo
	ledger     InventoryLedger
	gateway    PaymentGateway
	feePercent decimal.Decimal
	log        *slog.Logger
}

// NewPaymentService constructs a PaymentService. The platform fee percentage
// is fixed at construction.
func NewPaymentService(
	bookings BookingRepo,
	ledger InventoryLedger,
	gateway PaymentGateway,
	feePercent decimal.Decimal,
	log *slog.Logger,
) *PaymentService {
	return &PaymentService{
		bookings:   bookings,
		ledger:     ledger,
		gateway:    gateway,
		feePercent: feePercent,
		log:        log,
	}
}

// HandleNotification authenticates and processes one provider notification.
//
// Error contract: payment.ErrInvalidSignature means the payload failed
// authentication and nothing was mutated; any other error is an internal
// failure the caller should surface as a server error so the provider
// retries. Permanent business no-ops (unknown booking, missing correlation,
// already paid, unhandled event type) return nil so the provider receives an
// acknowledgment and stops redelivering. Transient failures, like a flaky
// payment-intent lookup, are never acknowledged: the correlation may succeed
// on the next delivery.
func (s *PaymentService) HandleNotification(ctx context.Context, payload []byte, sigHeader string) error {
	event, err := s.gateway.ConstructEvent(payload, sigHeader)
	if err != nil {
		if errors.Is(err, payment.ErrInvalidSignature) {
			monitoring.RecordWebhookEvent("unknown", "rejected")
			return err
		}
		// Syntactically invalid body that still carried a valid signature.
		monitoring.RecordWebhookEvent("unknown", "rejected")
		return fmt.Errorf("%w: %v", payment.ErrInvalidSignature, err)
	}

	switch event.Type {
	case payment.EventCheckoutCompleted:
		return s.handleCheckoutCompleted(ctx, event)
	case payment.EventChargeSucceeded:
		return s.handleChargeSucceeded(ctx, event)
	default:
		monitoring.RecordWebhookEvent(event.Type, "ignored")
		return nil
	}
}

// handleCheckoutCompleted claims the pending→paid transition together with
// the fee/revenue split, then performs the authoritative inventory deduction.
func (s *PaymentService) handleCheckoutCompleted(ctx context.Context, event *payment.Event) error {
	var session payment.SessionObject
	if err := json.Unmarshal(event.Data.Object, &session); err != nil {
		s.log.Warn("malformed checkout session object", slog.String("event_id", event.ID))
		monitoring.RecordWebhookEvent(event.Type, "ignored")
		return nil
	}
	if session.PaymentIntent == "" {
		monitoring.RecordWebhookEvent(event.Type, "ignored")
		return nil
	}

	booking, err := s.resolveBooking(ctx, session.PaymentIntent)
	if err != nil {
		return err
	}
	if booking == nil {
		monitoring.RecordWebhookEvent(event.Type, "unmatched")
		return nil
	}

	// Idempotency guard: a replayed or duplicated notification finds the
	// booking already paid and must change nothing, including inventory.
	if booking.Status == model.BookingStatusPaid {
		s.log.Info("duplicate checkout notification ignored",
			slog.String("booking_id", booking.ID),
			slog.String("event_id", event.ID),
		)
		monitoring.RecordWebhookEvent(event.Type, "duplicate")
		return nil
	}

	fee, revenue := ComputeSplit(booking.TotalAmount, s.feePercent)

	// Claim the pending→paid transition before touching inventory. The
	// status predicate inside MarkPaid is the idempotency key: of two
	// concurrent deliveries exactly one wins the conditional update, so the
	// loser never reaches the deduction below and inventory moves once.
	if err := s.bookings.MarkPaid(ctx, booking.ID, fee, revenue); err != nil {
		if errors.Is(err, repository.ErrBookingNotPending) {
			monitoring.RecordWebhookEvent(event.Type, "duplicate")
			return nil
		}
		return fmt.Errorf("mark booking paid: %w", err)
	}

	s.deductItems(ctx, booking)

	s.log.Info("booking paid",
		slog.String("booking_id", booking.ID),
		slog.String("total", booking.TotalAmount.StringFixed(2)),
		slog.String("platform_fee", fee.StringFixed(2)),
		slog.String("organizer_revenue", revenue.StringFixed(2)),
	)
	monitoring.RecordWebhookEvent(event.Type, "processed")
	monitoring.RecordPaymentCompleted()
	return nil
}

// deductItems runs the best-effort inventory deduction for a booking whose
// paid transition was just claimed. Failures are logged and counted but never
// bounce the delivery: the money has already moved, refusing the booking here
// would strand a charged customer, and a redelivery would be acknowledged as
// a duplicate without retrying the deduction anyway. Shortfalls are an
// operational signal, not a rollback trigger.
func (s *PaymentService) deductItems(ctx context.Context, booking *model.Booking) {
	items, err := s.bookings.ListItems(ctx, booking.ID)
	if err != nil {
		s.log.Error("listing line items failed after paid transition",
			slog.String("booking_id", booking.ID),
			slog.Any("error", err),
		)
		return
	}

	for _, item := range items {
		err := s.ledger.Deduct(ctx, item.TicketTypeID, item.Quantity)
		switch {
		case err == nil:
		case errors.Is(err, repository.ErrInsufficientInventory), errors.Is(err, repository.ErrNotFound):
			monitoring.RecordInventoryShortfall()
			s.log.Warn("inventory shortfall at payment confirmation",
				slog.String("booking_id", booking.ID),
				slog.String("ticket_type_id", item.TicketTypeID),
				slog.Int("quantity", item.Quantity),
				slog.Any("error", err),
			)
		default:
			s.log.Error("inventory deduction failed",
				slog.String("booking_id", booking.ID),
				slog.String("ticket_type_id", item.TicketTypeID),
				slog.Any("error", err),
			)
		}
	}
}

// handleChargeSucceeded stores the receipt URL on the correlated booking.
// It may run before or after checkout completion; it never touches status.
func (s *PaymentService) handleChargeSucceeded(ctx context.Context, event *payment.Event) error {
	var charge payment.ChargeObject
	if err := json.Unmarshal(event.Data.Object, &charge); err != nil {
		s.log.Warn("malformed charge object", slog.String("event_id", event.ID))
		monitoring.RecordWebhookEvent(event.Type, "ignored")
		return nil
	}
	if charge.PaymentIntent == "" || charge.ReceiptURL == "" {
		monitoring.RecordWebhookEvent(event.Type, "ignored")
		return nil
	}

	booking, err := s.resolveBooking(ctx, charge.PaymentIntent)
	if err != nil {
		return err
	}
	if booking == nil {
		monitoring.RecordWebhookEvent(event.Type, "unmatched")
		return nil
	}

	if err := s.bookings.SetReceiptURL(ctx, booking.ID, charge.ReceiptURL); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			monitoring.RecordWebhookEvent(event.Type, "unmatched")
			return nil
		}
		return fmt.Errorf("set receipt url: %w", err)
	}

	s.log.Info("receipt stored",
		slog.String("booking_id", booking.ID),
		slog.String("event_id", event.ID),
	)
	monitoring.RecordWebhookEvent(event.Type, "processed")
	return nil
}

// resolveBooking maps a payment intent to its booking via the correlation id
// embedded in the intent's metadata at session creation. A nil booking with
// nil error means the notification permanently matches no booking and is a
// no-op; an error means the lookup itself failed and the delivery must be
// bounced so the provider retries.
func (s *PaymentService) resolveBooking(ctx context.Context, intentID string) (*model.Booking, error) {
	intent, err := s.gateway.GetPaymentIntent(ctx, intentID)
	if err != nil {
		// A flaky lookup must not be acknowledged as a no-op: the booking
		// would stay pending forever once the provider stops redelivering.
		return nil, fmt.Errorf("get payment intent %s: %w", intentID, err)
	}

	bookingID := intent.Metadata["booking_id"]
	if bookingID == "" {
		s.log.Warn("payment intent carries no booking correlation",
			slog.String("intent_id", intentID),
		)
		return nil, nil
	}

	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.log.Warn("notification references unknown booking",
				slog.String("booking_id", bookingID),
				slog.String("intent_id", intentID),
			)
			return nil, nil
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return booking, nil
}
