package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/eventloom/eventloom/internal/auth"
	"github.com/eventloom/eventloom/internal/model"
	"github.com/eventloom/eventloom/internal/repository"
	"github.com/eventloom/eventloom/internal/service"
)

// EventHandler holds the public and organizer event endpoints.
type EventHandler struct {
	svc *service.EventService
}

// NewEventHandler constructs an EventHandler.
func NewEventHandler(svc *service.EventService) *EventHandler {
	return &EventHandler{svc: svc}
}

// Create handles POST /events (organizer only)
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())

	var req model.CreateEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	event, err := h.svc.Create(r.Context(), claims.UserID, req)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create event")
		return
	}

	writeSuccess(w, http.StatusCreated, "Event created successfully.", event)
}

// List handles GET /events (public, published events only)
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := model.EventFilter{
		Search:   r.URL.Query().Get("search"),
		Category: r.URL.Query().Get("category"),
		Location: r.URL.Query().Get("location"),
	}

	events, err := h.svc.List(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list events")
		return
	}
	if events == nil {
		events = []model.Event{}
	}

	writeSuccess(w, http.StatusOK, "Events fetched successfully.", events)
}

// ListMine handles GET /events/mine (organizer only)
func (h *EventHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())

	events, err := h.svc.ListByOrganizer(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list events")
		return
	}
	if events == nil {
		events = []model.Event{}
	}

	writeSuccess(w, http.StatusOK, "Events fetched successfully.", events)
}

// Get handles GET /events/{id} (public)
func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	event, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "event not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get event")
		return
	}

	writeSuccess(w, http.StatusOK, "Event fetched successfully.", event)
}

// Update handles PUT /events/{id} (organizer only, own events)
func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	id := chi.URLParam(r, "id")

	var req model.CreateEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	err := h.svc.Update(r.Context(), id, claims.UserID, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "event not found")
		default:
			writeError(w, http.StatusInternalServerError, "failed to update event")
		}
		return
	}

	writeSuccess(w, http.StatusOK, "Event updated successfully.", nil)
}

// Delete handles DELETE /events/{id} (organizer only, own events)
func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	id := chi.URLParam(r, "id")

	err := h.svc.Delete(r.Context(), id, claims.UserID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "event not found")
		case errors.Is(err, repository.ErrEventHasPaidBookings):
			writeError(w, http.StatusConflict, "event has paid bookings and cannot be deleted")
		default:
			writeError(w, http.StatusInternalServerError, "failed to delete event")
		}
		return
	}

	writeSuccess(w, http.StatusOK, "Event deleted successfully.", nil)
}
