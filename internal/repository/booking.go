package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/eventloom/eventloom/internal/model"
)

// BookingRepository handles persistence for bookings and their line items.
type BookingRepository struct {
	db *pgxpool.Pool
}

// NewBookingRepository constructs a BookingRepository.
func NewBookingRepository(db *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create inserts a pending booking and its line items in one transaction.
// Line items are immutable after this point: no update path exists for them.
func (r *BookingRepository) Create(ctx context.Context, userID, eventID string, total decimal.Decimal, tickets []model.TicketSelection) (*model.Booking, error) {
	booking := &model.Booking{
		ID:               uuid.New().String(),
		UserID:           userID,
		EventID:          eventID,
		TotalAmount:      total,
		PlatformFee:      decimal.Zero,
		OrganizerRevenue: decimal.Zero,
		Status:           model.BookingStatusPending,
		BookedAt:         time.Now().UTC(),
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
		`INSERT INTO bookings (id, user_id, event_id, total_amount, platform_fee,
		                       organizer_revenue, status, booked_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		booking.ID, booking.UserID, booking.EventID, booking.TotalAmount,
		booking.PlatformFee, booking.OrganizerRevenue, booking.Status, booking.BookedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert booking: %w", err)
	}

	for _, t := range tickets {
		_, err = tx.Exec(ctx,
			`INSERT INTO booked_tickets (id, booking_id, ticket_type_id, quantity)
			 VALUES ($1, $2, $3, $4)`,
			uuid.New().String(), booking.ID, t.TicketTypeID, t.Quantity,
		)
		if err != nil {
			return nil, fmt.Errorf("insert booked ticket: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return booking, nil
}

// GetByID returns a booking or ErrNotFound.
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	var b model.Booking
	var receipt *string
	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, event_id, total_amount, platform_fee, organizer_revenue,
		        status, receipt_url, booked_at
		 FROM bookings WHERE id = $1`,
		id,
	).Scan(&b.ID, &b.UserID, &b.EventID, &b.TotalAmount, &b.PlatformFee,
		&b.OrganizerRevenue, &b.Status, &receipt, &b.BookedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if receipt != nil {
		b.ReceiptURL = *receipt
	}
	return &b, nil
}

// ListItems returns the immutable line items of a booking.
func (r *BookingRepository) ListItems(ctx context.Context, bookingID string) ([]model.BookedTicket, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, booking_id, ticket_type_id, quantity
		 FROM booked_tickets WHERE booking_id = $1`,
		bookingID,
	)
	if err != nil {
		return nil, fmt.Errorf("list booked tickets: %w", err)
	}
	defer rows.Close()

	var items []model.BookedTicket
	for rows.Next() {
		var t model.BookedTicket
		if err := rows.Scan(&t.ID, &t.BookingID, &t.TicketTypeID, &t.Quantity); err != nil {
			return nil, fmt.Errorf("scan booked ticket: %w", err)
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

// MarkPaid transitions a pending booking to paid, persisting fee, revenue,
// and status as one atomic update. The status predicate doubles as the
// idempotency key: a concurrent or replayed transition sees zero rows
// affected and gets ErrBookingNotPending.
func (r *BookingRepository) MarkPaid(ctx context.Context, id string, fee, revenue decimal.Decimal) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE bookings
		 SET status = 'paid', platform_fee = $2, organizer_revenue = $3
		 WHERE id = $1 AND status = 'pending'`,
		id, fee, revenue,
	)
	if err != nil {
		return fmt.Errorf("mark booking paid: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrBookingNotPending
	}
	return nil
}

// SetReceiptURL stores the provider's receipt URL. Informational, last write
// wins, independent of payment status.
func (r *BookingRepository) SetReceiptURL(ctx context.Context, id, url string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE bookings SET receipt_url = $2 WHERE id = $1`,
		id, url,
	)
	if err != nil {
		return fmt.Errorf("set receipt url: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByUser returns the caller's bookings newest-first, each with its
// line-item subtotal breakdown. One query; rows are grouped per booking as
// they stream in.
func (r *BookingRepository) ListByUser(ctx context.Context, userID string) ([]model.BookingView, error) {
	rows, err := r.db.Query(ctx,
		`SELECT b.id, b.event_id, e.title, b.total_amount, b.status, b.booked_at,
		        tt.name, bt.quantity, tt.price
		 FROM bookings b
		 JOIN events e ON e.id = b.event_id
		 LEFT JOIN booked_tickets bt ON bt.booking_id = b.id
		 LEFT JOIN ticket_types tt ON tt.id = bt.ticket_type_id
		 WHERE b.user_id = $1
		 ORDER BY b.booked_at DESC, b.id, tt.name`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var views []model.BookingView
	index := make(map[string]int)
	for rows.Next() {
		var v model.BookingView
		var name *string
		var qty *int
		var price *decimal.Decimal
		if err := rows.Scan(&v.ID, &v.EventID, &v.EventTitle, &v.TotalAmount, &v.Status, &v.BookedAt,
			&name, &qty, &price); err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		i, ok := index[v.ID]
		if !ok {
			i = len(views)
			index[v.ID] = i
			views = append(views, v)
		}
		if name != nil && qty != nil && price != nil {
			views[i].BookedTickets = append(views[i].BookedTickets, model.BookedTicketView{
				TicketTypeName: *name,
				Quantity:       *qty,
				PricePerTicket: *price,
				Subtotal:       price.Mul(decimal.NewFromInt(int64(*qty))),
			})
		}
	}
	return views, rows.Err()
}

// ListReceipts returns the caller's paid bookings newest-first.
func (r *BookingRepository) ListReceipts(ctx context.Context, userID string) ([]model.ReceiptView, error) {
	rows, err := r.db.Query(ctx,
		`SELECT b.id, e.title, b.booked_at, b.total_amount, COALESCE(b.receipt_url, '')
		 FROM bookings b
		 JOIN events e ON e.id = b.event_id
		 WHERE b.user_id = $1 AND b.status = 'paid'
		 ORDER BY b.booked_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list receipts: %w", err)
	}
	defer rows.Close()

	var receipts []model.ReceiptView
	for rows.Next() {
		var v model.ReceiptView
		if err := rows.Scan(&v.ID, &v.EventTitle, &v.BookedAt, &v.TotalAmount, &v.ReceiptURL); err != nil {
			return nil, fmt.Errorf("scan receipt: %w", err)
		}
		receipts = append(receipts, v)
	}
	return receipts, rows.Err()
}

// OrganizerRevenue aggregates the paid bookings of all events owned by the
// organizer.
func (r *BookingRepository) OrganizerRevenue(ctx context.Context, organizerID string) (*model.RevenueSummary, error) {
	var s model.RevenueSummary
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(b.organizer_revenue), 0),
		        COALESCE(SUM(b.platform_fee), 0)
		 FROM bookings b
		 JOIN events e ON e.id = b.event_id
		 WHERE e.organizer_id = $1 AND b.status = 'paid'`,
		organizerID,
	).Scan(&s.TotalBookings, &s.TotalRevenue, &s.TotalPlatformFee)
	if err != nil {
		return nil, fmt.Errorf("organizer revenue: %w", err)
	}
	return &s, nil
}
