package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Requests ────────────────────────────────────────────────────────────────

// RegisterRequest is the payload for creating a new account.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// LoginRequest is the payload for obtaining an access token.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// PasswordResetRequest asks for a reset token for the given email.
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// PasswordResetConfirm redeems a reset token for a new password.
type PasswordResetConfirm struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// TicketTypeInput describes one inventory bucket when creating an event.
type TicketTypeInput struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// CreateEventRequest is the organizer payload for publishing a new event.
type CreateEventRequest struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Location    string            `json:"location"`
	Category    string            `json:"category"`
	StartTime   time.Time         `json:"start_time"`
	EndTime     time.Time         `json:"end_time"`
	Status      string            `json:"status"`
	TicketTypes []TicketTypeInput `json:"ticket_types"`
}

// TicketSelection is one (ticket type, quantity) pair in a booking request.
type TicketSelection struct {
	TicketTypeID string `json:"ticket_type_id"`
	Quantity     int    `json:"quantity"`
}

// CreateBookingRequest is the attendee payload for starting a purchase.
type CreateBookingRequest struct {
	EventID string            `json:"event_id"`
	Tickets []TicketSelection `json:"tickets"`
}

// EventFilter narrows the public event listing.
type EventFilter struct {
	Search   string
	Category string
	Location string
}

// ─── Responses ───────────────────────────────────────────────────────────────

// BookedTicketView is one line item with its subtotal breakdown.
type BookedTicketView struct {
	TicketTypeName string          `json:"ticket_type_name"`
	Quantity       int             `json:"quantity"`
	PricePerTicket decimal.Decimal `json:"price_per_ticket"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

// BookingView is a booking with its event title and line-item breakdown.
type BookingView struct {
	ID            string             `json:"id"`
	EventID       string             `json:"event_id"`
	EventTitle    string             `json:"event_title"`
	TotalAmount   decimal.Decimal    `json:"total_amount"`
	Status        BookingStatus      `json:"status"`
	BookedAt      time.Time          `json:"booked_at"`
	BookedTickets []BookedTicketView `json:"booked_tickets"`
}

// ReceiptView is the paid-booking summary returned by the receipts endpoint.
type ReceiptView struct {
	ID          string          `json:"id"`
	EventTitle  string          `json:"event_title"`
	BookedAt    time.Time       `json:"booked_at"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	ReceiptURL  string          `json:"receipt_url,omitempty"`
}

// RevenueSummary aggregates an organizer's paid bookings.
type RevenueSummary struct {
	TotalBookings    int             `json:"total_bookings"`
	TotalRevenue     decimal.Decimal `json:"total_revenue"`
	TotalPlatformFee decimal.Decimal `json:"total_platform_fee"`
}
