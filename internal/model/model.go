// Package model defines the core domain types for the event ticketing platform.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role identifies what a user is allowed to do at the API boundary.
type Role string

const (
	RoleAttendee  Role = "attendee"
	RoleOrganizer Role = "organizer"
)

// User is a registered account. Passwords are stored as bcrypt hashes only.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// EventStatus is the publication state of an event.
type EventStatus string

const (
	EventStatusDraft     EventStatus = "draft"
	EventStatusPublished EventStatus = "published"
	EventStatusCancelled EventStatus = "cancelled"
)

// Event is a bookable event owned by one organizer.
type Event struct {
	ID          string       `json:"id"`
	OrganizerID string       `json:"organizer_id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Location    string       `json:"location"`
	Category    string       `json:"category"`
	StartTime   time.Time    `json:"start_time"`
	EndTime     time.Time    `json:"end_time"`
	Status      EventStatus  `json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	TicketTypes []TicketType `json:"ticket_types,omitempty"`
}

// TicketType is a priced inventory bucket within an event ("VIP", "General").
// Quantity is the remaining inventory; it never goes negative and is only
// ever decremented by the authoritative deduct operation.
type TicketType struct {
	ID       string          `json:"id"`
	EventID  string          `json:"event_id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// BookingStatus is the payment lifecycle state of a booking.
type BookingStatus string

const (
	BookingStatusPending BookingStatus = "pending"
	BookingStatusPaid    BookingStatus = "paid"
	BookingStatusFailed  BookingStatus = "failed"
)

// Booking is one purchase attempt. TotalAmount is computed once at creation
// and never recomputed. PlatformFee and OrganizerRevenue stay zero until the
// booking transitions to paid, at which point fee + revenue == total exactly.
type Booking struct {
	ID               string          `json:"id"`
	UserID           string          `json:"user_id"`
	EventID          string          `json:"event_id"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	PlatformFee      decimal.Decimal `json:"platform_fee"`
	OrganizerRevenue decimal.Decimal `json:"organizer_revenue"`
	Status           BookingStatus   `json:"status"`
	ReceiptURL       string          `json:"receipt_url,omitempty"`
	BookedAt         time.Time       `json:"booked_at"`
}

// BookedTicket is a single line item of a booking. Line items are immutable
// after the booking is created and have no identity outside it.
type BookedTicket struct {
	ID           string `json:"-"`
	BookingID    string `json:"-"`
	TicketTypeID string `json:"ticket_type_id"`
	Quantity     int    `json:"quantity"`
}

// PasswordResetToken is a single-use token valid for a short window.
type PasswordResetToken struct {
	Token     string
	UserID    string
	CreatedAt time.Time
	Used      bool
}

// Valid reports whether the token is still usable.
func (t PasswordResetToken) Valid(now time.Time) bool {
	return !t.Used && now.Sub(t.CreatedAt) <= 15*time.Minute
}
