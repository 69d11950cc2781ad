package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventloom/eventloom/internal/model"
)

// TicketTypeRepository is the inventory ledger: it owns the remaining
// quantity of every ticket type.
type TicketTypeRepository struct {
	db *pgxpool.Pool
}

// NewTicketTypeRepository constructs a TicketTypeRepository.
func NewTicketTypeRepository(db *pgxpool.Pool) *TicketTypeRepository {
	return &TicketTypeRepository{db: db}
}

// GetByID returns a ticket type or ErrNotFound.
func (r *TicketTypeRepository) GetByID(ctx context.Context, id string) (*model.TicketType, error) {
	var tt model.TicketType
	err := r.db.QueryRow(ctx,
		`SELECT id, event_id, name, price, quantity
		 FROM ticket_types WHERE id = $1`,
		id,
	).Scan(&tt.ID, &tt.EventID, &tt.Name, &tt.Price, &tt.Quantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get ticket type: %w", err)
	}
	return &tt, nil
}

// ListByEvent returns all ticket types of an event.
func (r *TicketTypeRepository) ListByEvent(ctx context.Context, eventID string) ([]model.TicketType, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, event_id, name, price, quantity
		 FROM ticket_types WHERE event_id = $1
		 ORDER BY price ASC`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("list ticket types: %w", err)
	}
	defer rows.Close()

	var types []model.TicketType
	for rows.Next() {
		var tt model.TicketType
		if err := rows.Scan(&tt.ID, &tt.EventID, &tt.Name, &tt.Price, &tt.Quantity); err != nil {
			return nil, fmt.Errorf("scan ticket type: %w", err)
		}
		types = append(types, tt)
	}
	return types, rows.Err()
}

// CheckAvailability reports whether the requested quantity fits the
// remaining inventory at call time. This is a soft check: it takes no lock
// and reserves nothing, so it may be stale by deduction time. The
// authoritative check is Deduct.
func (r *TicketTypeRepository) CheckAvailability(ctx context.Context, id string, qty int) (bool, error) {
	var remaining int
	err := r.db.QueryRow(ctx,
		`SELECT quantity FROM ticket_types WHERE id = $1`,
		id,
	).Scan(&remaining)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, ErrNotFound
		}
		return false, fmt.Errorf("check availability: %w", err)
	}
	return qty <= remaining, nil
}

// Deduct atomically decrements the remaining quantity.
//
// The guard lives inside the UPDATE itself: a plain read-then-write would
// let two concurrent payment confirmations both observe enough inventory
// and jointly oversell. The conditional single-statement UPDATE makes
// Postgres serialise contenders on the row, so exactly one of two racing
// deductions can consume the last tickets; the loser sees zero rows
// affected and gets ErrInsufficientInventory.
func (r *TicketTypeRepository) Deduct(ctx context.Context, id string, qty int) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE ticket_types
		 SET quantity = quantity - $2
		 WHERE id = $1 AND quantity >= $2`,
		id, qty,
	)
	if err != nil {
		return fmt.Errorf("deduct inventory: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Either the ticket type is gone or the remaining quantity is short;
		// distinguish so callers can log the right thing.
		var exists bool
		if err := r.db.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM ticket_types WHERE id = $1)`, id,
		).Scan(&exists); err != nil {
			return fmt.Errorf("deduct inventory: %w", err)
		}
		if !exists {
			return ErrNotFound
		}
		return ErrInsufficientInventory
	}
	return nil
}
