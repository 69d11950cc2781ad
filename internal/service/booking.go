package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/eventloom/eventloom/internal/model"
	"github.com/eventloom/eventloom/internal/monitoring"
	"github.com/eventloom/eventloom/internal/payment"
	"github.com/eventloom/eventloom/internal/repository"
)

// BookingService implements the booking creation protocol and the read-side
// booking queries.
type BookingService struct {
	bookings BookingRepo
	events   EventRepo
	ledger   InventoryLedger
	gateway  PaymentGateway
	log      *slog.Logger
}

// NewBookingService constructs a BookingService with its dependencies.
func NewBookingService(
	bookings BookingRepo,
	events EventRepo,
	ledger InventoryLedger,
	gateway PaymentGateway,
	log *slog.Logger,
) *BookingService {
	return &BookingService{
		bookings: bookings,
		events:   events,
		ledger:   ledger,
		gateway:  gateway,
		log:      log,
	}
}

// Create validates a booking request, persists the booking in pending state
// with its total computed once, and returns it together with the provider's
// checkout redirect URL.
//
// No inventory is deducted here. The availability pass is a soft check only;
// the authoritative deduction happens when the payment is confirmed, so
// abandoned checkouts never hold inventory hostage.
func (s *BookingService) Create(ctx context.Context, userID string, req model.CreateBookingRequest) (*model.Booking, string, error) {
	if len(req.Tickets) == 0 {
		return nil, "", fmt.Errorf("%w: at least one ticket must be selected", ErrValidation)
	}
	for _, t := range req.Tickets {
		if t.TicketTypeID == "" {
			return nil, "", fmt.Errorf("%w: each ticket must include 'ticket_type_id'", ErrValidation)
		}
		if t.Quantity <= 0 {
			return nil, "", fmt.Errorf("%w: ticket quantity must be positive", ErrValidation)
		}
	}

	event, err := s.events.GetByID(ctx, req.EventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrUnknownEvent
		}
		return nil, "", fmt.Errorf("check event: %w", err)
	}

	lookup := make(map[string]model.TicketType, len(req.Tickets))
	for _, t := range req.Tickets {
		ticketType, err := s.ledger.GetByID(ctx, t.TicketTypeID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, "", fmt.Errorf("%w: %s", ErrInvalidTicketType, t.TicketTypeID)
			}
			return nil, "", fmt.Errorf("check ticket type: %w", err)
		}
		if ticketType.EventID != event.ID {
			return nil, "", fmt.Errorf("%w: %s", ErrTicketTypeEventMismatch, t.TicketTypeID)
		}

		available, err := s.ledger.CheckAvailability(ctx, t.TicketTypeID, t.Quantity)
		if err != nil {
			return nil, "", fmt.Errorf("check availability: %w", err)
		}
		if !available {
			return nil, "", fmt.Errorf("%w: not enough tickets available for %s",
				repository.ErrInsufficientInventory, ticketType.Name)
		}
		lookup[ticketType.ID] = *ticketType
	}

	total := ComputeTotal(req.Tickets, lookup)

	booking, err := s.bookings.Create(ctx, userID, event.ID, total, req.Tickets)
	if err != nil {
		return nil, "", fmt.Errorf("create booking: %w", err)
	}
	monitoring.RecordBookingCreated()

	s.log.Info("booking created",
		slog.String("booking_id", booking.ID),
		slog.String("event_id", event.ID),
		slog.String("user_id", userID),
		slog.String("total", total.StringFixed(2)),
	)

	session, err := s.gateway.CreateCheckoutSession(ctx, booking.ID, "Tickets for "+event.Title, total)
	if err != nil {
		// The booking stays pending; session creation can be retried without
		// re-validating inventory since nothing was reserved.
		s.log.Error("checkout session creation failed",
			slog.String("booking_id", booking.ID),
			slog.Any("error", err),
		)
		return nil, "", fmt.Errorf("create checkout session: %w", err)
	}

	return booking, session.URL, nil
}

// ListForUser returns the caller's bookings newest-first with line-item
// subtotal breakdowns.
func (s *BookingService) ListForUser(ctx context.Context, userID string) ([]model.BookingView, error) {
	return s.bookings.ListByUser(ctx, userID)
}

// Receipts returns the caller's paid bookings.
func (s *BookingService) Receipts(ctx context.Context, userID string) ([]model.ReceiptView, error) {
	return s.bookings.ListReceipts(ctx, userID)
}

// OrganizerRevenue aggregates paid bookings over the organizer's events.
// Role enforcement happens at the API boundary, not here.
func (s *BookingService) OrganizerRevenue(ctx context.Context, organizerID string) (*model.RevenueSummary, error) {
	return s.bookings.OrganizerRevenue(ctx, organizerID)
}

// compile-time check that the concrete gateway satisfies the port
var _ PaymentGateway = (*payment.Client)(nil)
