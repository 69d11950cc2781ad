package service

import "errors"

var (
	// ErrValidation wraps bad input shape or business-rule violations at
	// creation time. Reported to the caller; nothing is persisted.
	ErrValidation = errors.New("validation error")

	// ErrUnknownEvent is returned when a booking references a missing event.
	ErrUnknownEvent = errors.New("unknown event")

	// ErrInvalidTicketType is returned when a line item references a missing
	// ticket type.
	ErrInvalidTicketType = errors.New("invalid ticket type")

	// ErrTicketTypeEventMismatch is returned when a line item's ticket type
	// belongs to a different event than the booking.
	ErrTicketTypeEventMismatch = errors.New("ticket type does not belong to event")
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
)
