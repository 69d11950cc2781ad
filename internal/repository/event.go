package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventloom/eventloom/internal/model"
)

// EventRepository handles persistence for events and their ticket types.
type EventRepository struct {
	db *pgxpool.Pool
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{db: db}
}

// Create inserts a new event together with its ticket types in one
// transaction, so a half-created event is never visible.
func (r *EventRepository) Create(ctx context.Context, organizerID string, req model.CreateEventRequest) (*model.Event, error) {
	now := time.Now().UTC()
	event := &model.Event{
		ID:          uuid.New().String(),
		OrganizerID: organizerID,
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Category:    req.Category,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Status:      model.EventStatus(req.Status),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if event.Status == "" {
		event.Status = model.EventStatusDraft
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	_, err = tx.Exec(ctx,
		`INSERT INTO events (id, organizer_id, title, description, location, category,
		                     start_time, end_time, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		event.ID, event.OrganizerID, event.Title, event.Description, event.Location,
		event.Category, event.StartTime, event.EndTime, event.Status,
		event.CreatedAt, event.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}

	for _, tt := range req.TicketTypes {
		ticketType := model.TicketType{
			ID:       uuid.New().String(),
			EventID:  event.ID,
			Name:     tt.Name,
			Price:    tt.Price,
			Quantity: tt.Quantity,
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO ticket_types (id, event_id, name, price, quantity)
			 VALUES ($1, $2, $3, $4, $5)`,
			ticketType.ID, ticketType.EventID, ticketType.Name, ticketType.Price, ticketType.Quantity,
		)
		if err != nil {
			return nil, fmt.Errorf("insert ticket type: %w", err)
		}
		event.TicketTypes = append(event.TicketTypes, ticketType)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return event, nil
}

// GetByID returns a single event without ticket types, or ErrNotFound.
func (r *EventRepository) GetByID(ctx context.Context, id string) (*model.Event, error) {
	var e model.Event
	err := r.db.QueryRow(ctx,
		`SELECT id, organizer_id, title, description, location, category,
		        start_time, end_time, status, created_at, updated_at
		 FROM events WHERE id = $1`,
		id,
	).Scan(&e.ID, &e.OrganizerID, &e.Title, &e.Description, &e.Location, &e.Category,
		&e.StartTime, &e.EndTime, &e.Status, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return &e, nil
}

// List returns published events matching the filter, newest first.
func (r *EventRepository) List(ctx context.Context, filter model.EventFilter) ([]model.Event, error) {
	query := `SELECT id, organizer_id, title, description, location, category,
	                 start_time, end_time, status, created_at, updated_at
	          FROM events
	          WHERE status = 'published'`
	args := []any{}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		query += fmt.Sprintf(" AND (title ILIKE $%d OR description ILIKE $%d)", len(args), len(args))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		query += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if filter.Location != "" {
		args = append(args, "%"+filter.Location+"%")
		query += fmt.Sprintf(" AND location ILIKE $%d", len(args))
	}
	query += " ORDER BY start_time ASC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(&e.ID, &e.OrganizerID, &e.Title, &e.Description, &e.Location,
			&e.Category, &e.StartTime, &e.EndTime, &e.Status, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// ListByOrganizer returns all events owned by the given organizer.
func (r *EventRepository) ListByOrganizer(ctx context.Context, organizerID string) ([]model.Event, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, organizer_id, title, description, location, category,
		        start_time, end_time, status, created_at, updated_at
		 FROM events
		 WHERE organizer_id = $1
		 ORDER BY created_at DESC`,
		organizerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list organizer events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(&e.ID, &e.OrganizerID, &e.Title, &e.Description, &e.Location,
			&e.Category, &e.StartTime, &e.EndTime, &e.Status, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Update rewrites the mutable fields of an event owned by the organizer.
// An empty status in the request keeps the current status. Ticket types are
// not touched here: inventory is owned by the ledger.
func (r *EventRepository) Update(ctx context.Context, id, organizerID string, req model.CreateEventRequest) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE events
		 SET title = $3, description = $4, location = $5, category = $6,
		     start_time = $7, end_time = $8,
		     status = COALESCE(NULLIF($9, ''), status), updated_at = now()
		 WHERE id = $1 AND organizer_id = $2`,
		id, organizerID, req.Title, req.Description, req.Location, req.Category,
		req.StartTime, req.EndTime, req.Status,
	)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an event and, through the schema's declared cascades, its
// ticket types, bookings, and line items. Deletion is refused while any paid
// booking exists so financial records are never silently dropped.
func (r *EventRepository) Delete(ctx context.Context, id, organizerID string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var paidCount int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM bookings WHERE event_id = $1 AND status = 'paid'`,
		id,
	).Scan(&paidCount)
	if err != nil {
		return fmt.Errorf("count paid bookings: %w", err)
	}
	if paidCount > 0 {
		err = ErrEventHasPaidBookings
		return err
	}

	tag, err := tx.Exec(ctx,
		`DELETE FROM events WHERE id = $1 AND organizer_id = $2`,
		id, organizerID,
	)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		err = ErrNotFound
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
