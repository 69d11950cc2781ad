// Package repository implements all database access for the ticketing
// platform. It uses pgx directly (no ORM) for transparency and performance.
package repository

import "errors"

var (
	// ErrNotFound is returned when a requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInsufficientInventory is returned when a deduct would drive a
	// ticket type's remaining quantity negative.
	ErrInsufficientInventory = errors.New("insufficient ticket inventory")

	// ErrBookingNotPending is returned when a paid-transition targets a
	// booking that already left the pending state.
	ErrBookingNotPending = errors.New("booking is not pending")

	// ErrEventHasPaidBookings is returned when deleting an event that still
	// has paid bookings attached.
	ErrEventHasPaidBookings = errors.New("event has paid bookings")
)

var (
	ErrEmailTaken    = errors.New("email is already registered")
	ErrUsernameTaken = errors.New("username is already taken")
)
