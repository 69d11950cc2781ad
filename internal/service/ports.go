// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the repository layer.
package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/eventloom/eventloom/internal/model"
	"github.com/eventloom/eventloom/internal/payment"
)

// EventRepo is the persistence port for events.
type EventRepo interface {
	Create(ctx context.Context, organizerID string, req model.CreateEventRequest) (*model.Event, error)
	GetByID(ctx context.Context, id string) (*model.Event, error)
	List(ctx context.Context, filter model.EventFilter) ([]model.Event, error)
	ListByOrganizer(ctx context.Context, organizerID string) ([]model.Event, error)
	Update(ctx context.Context, id, organizerID string, req model.CreateEventRequest) error
	Delete(ctx context.Context, id, organizerID string) error
}

// InventoryLedger is the persistence port for ticket-type inventory.
// CheckAvailability is advisory; Deduct is the sole authoritative mutation of
// remaining quantity.
type InventoryLedger interface {
	GetByID(ctx context.Context, id string) (*model.TicketType, error)
	ListByEvent(ctx context.Context, eventID string) ([]model.TicketType, error)
	CheckAvailability(ctx context.Context, id string, qty int) (bool, error)
	Deduct(ctx context.Context, id string, qty int) error
}

// BookingRepo is the persistence port for bookings and their line items.
type BookingRepo interface {
	Create(ctx context.Context, userID, eventID string, total decimal.Decimal, tickets []model.TicketSelection) (*model.Booking, error)
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	ListItems(ctx context.Context, bookingID string) ([]model.BookedTicket, error)
	MarkPaid(ctx context.Context, id string, fee, revenue decimal.Decimal) error
	SetReceiptURL(ctx context.Context, id, url string) error
	ListByUser(ctx context.Context, userID string) ([]model.BookingView, error)
	ListReceipts(ctx context.Context, userID string) ([]model.ReceiptView, error)
	OrganizerRevenue(ctx context.Context, organizerID string) (*model.RevenueSummary, error)
}

// UserRepo is the persistence port for users and reset tokens.
type UserRepo interface {
	Create(ctx context.Context, username, email, passwordHash string, role model.Role) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	CreateResetToken(ctx context.Context, userID string) (*model.PasswordResetToken, error)
	GetResetToken(ctx context.Context, token string) (*model.PasswordResetToken, error)
	MarkResetTokenUsed(ctx context.Context, token string) error
}

// PaymentGateway is the provider port: checkout session creation, intent
// retrieval for webhook correlation, and payload authentication.
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, bookingID, productName string, total decimal.Decimal) (*payment.CheckoutSession, error)
	GetPaymentIntent(ctx context.Context, intentID string) (*payment.Intent, error)
	ConstructEvent(payload []byte, sigHeader string) (*payment.Event, error)
}
