package handler

import (
	"errors"
	"net/http"

	"github.com/eventloom/eventloom/internal/auth"
	"github.com/eventloom/eventloom/internal/model"
	"github.com/eventloom/eventloom/internal/payment"
	"github.com/eventloom/eventloom/internal/repository"
	"github.com/eventloom/eventloom/internal/service"
)

// BookingHandler holds the booking endpoints.
type BookingHandler struct {
	svc *service.BookingService
}

// NewBookingHandler constructs a BookingHandler.
func NewBookingHandler(svc *service.BookingService) *BookingHandler {
	return &BookingHandler{svc: svc}
}

// Create handles POST /bookings
// Validates the request, persists a pending booking, and returns the
// provider's checkout redirect URL.
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())

	var req model.CreateBookingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	_, checkoutURL, err := h.svc.Create(r.Context(), claims.UserID, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation),
			errors.Is(err, service.ErrUnknownEvent),
			errors.Is(err, service.ErrInvalidTicketType),
			errors.Is(err, service.ErrTicketTypeEventMismatch),
			errors.Is(err, repository.ErrInsufficientInventory):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, payment.ErrGateway):
			writeError(w, http.StatusBadGateway, "payment provider is unavailable, please retry")
		default:
			writeError(w, http.StatusInternalServerError, "failed to create booking")
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"message":      "Booking successful. Proceed to payment.",
		"checkout_url": checkoutURL,
	})
}

// List handles GET /bookings
// Returns the caller's own bookings newest-first with subtotal breakdowns.
func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())

	bookings, err := h.svc.ListForUser(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch bookings")
		return
	}
	if bookings == nil {
		bookings = []model.BookingView{}
	}

	writeSuccess(w, http.StatusOK, "Bookings fetched successfully.", bookings)
}

// Receipts handles GET /bookings/receipts
// Returns only the caller's paid bookings.
func (h *BookingHandler) Receipts(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())

	receipts, err := h.svc.Receipts(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch receipts")
		return
	}
	if receipts == nil {
		receipts = []model.ReceiptView{}
	}

	writeSuccess(w, http.StatusOK, "Receipts fetched successfully.", receipts)
}

// OrganizerRevenue handles GET /organizers/revenue (organizer only)
func (h *BookingHandler) OrganizerRevenue(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())

	summary, err := h.svc.OrganizerRevenue(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch revenue")
		return
	}

	writeSuccess(w, http.StatusOK, "Organizer revenue fetched successfully.", summary)
}
