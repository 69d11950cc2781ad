package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/eventloom/eventloom/internal/model"
)

// EventService orchestrates event CRUD for organizers and the public
// published-event listing.
type EventService struct {
	events EventRepo
	ledger InventoryLedger
	log    *slog.Logger
}

// NewEventService constructs an EventService.
func NewEventService(events EventRepo, ledger InventoryLedger, log *slog.Logger) *EventService {
	return &EventService{events: events, ledger: ledger, log: log}
}

// Create validates and persists a new event with its ticket types.
func (s *EventService) Create(ctx context.Context, organizerID string, req model.CreateEventRequest) (*model.Event, error) {
	if err := validateEventRequest(&req); err != nil {
		return nil, err
	}

	event, err := s.events.Create(ctx, organizerID, req)
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	s.log.Info("event created",
		slog.String("event_id", event.ID),
		slog.String("organizer_id", organizerID),
		slog.String("title", event.Title),
	)
	return event, nil
}

// List returns published events matching the filter.
func (s *EventService) List(ctx context.Context, filter model.EventFilter) ([]model.Event, error) {
	return s.events.List(ctx, filter)
}

// ListByOrganizer returns the organizer's own events, any status.
func (s *EventService) ListByOrganizer(ctx context.Context, organizerID string) ([]model.Event, error) {
	return s.events.ListByOrganizer(ctx, organizerID)
}

// Get returns one event with its ticket types.
func (s *EventService) Get(ctx context.Context, id string) (*model.Event, error) {
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	types, err := s.ledger.ListByEvent(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list ticket types: %w", err)
	}
	event.TicketTypes = types
	return event, nil
}

// Update rewrites an event's mutable fields; ownership is enforced by the
// repository's organizer predicate.
func (s *EventService) Update(ctx context.Context, id, organizerID string, req model.CreateEventRequest) error {
	if err := validateEventRequest(&req); err != nil {
		return err
	}
	return s.events.Update(ctx, id, organizerID, req)
}

// Delete removes an event unless paid bookings depend on it.
func (s *EventService) Delete(ctx context.Context, id, organizerID string) error {
	return s.events.Delete(ctx, id, organizerID)
}

func validateEventRequest(req *model.CreateEventRequest) error {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return fmt.Errorf("%w: event title is required", ErrValidation)
	}
	if req.StartTime.IsZero() || req.EndTime.IsZero() {
		return fmt.Errorf("%w: start_time and end_time are required", ErrValidation)
	}
	if !req.EndTime.After(req.StartTime) {
		return fmt.Errorf("%w: end_time must be after start_time", ErrValidation)
	}
	switch req.Status {
	case "", string(model.EventStatusDraft), string(model.EventStatusPublished), string(model.EventStatusCancelled):
	default:
		return fmt.Errorf("%w: invalid event status %q", ErrValidation, req.Status)
	}
	for _, tt := range req.TicketTypes {
		if strings.TrimSpace(tt.Name) == "" {
			return fmt.Errorf("%w: ticket type name is required", ErrValidation)
		}
		if tt.Price.IsNegative() {
			return fmt.Errorf("%w: ticket type price cannot be negative", ErrValidation)
		}
		if tt.Quantity < 0 {
			return fmt.Errorf("%w: ticket type quantity cannot be negative", ErrValidation)
		}
	}
	return nil
}
