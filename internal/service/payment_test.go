package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/eventloom/eventloom/internal/model"
	"github.com/eventloom/eventloom/internal/payment"
	"github.com/eventloom/eventloom/internal/repository"
)

func newPaymentFixture(t *testing.T) (*PaymentService, *mockBookingRepo, *mockLedger, *mockGateway) {
	t.Helper()
	bookings := &mockBookingRepo{}
	ledger := &mockLedger{}
	gateway := &mockGateway{}
	svc := NewPaymentService(bookings, ledger, gateway, money("10"), testLogger())
	return svc, bookings, ledger, gateway
}

func checkoutEvent(t *testing.T, intentID string) *payment.Event {
	t.Helper()
	object, err := json.Marshal(payment.SessionObject{ID: "cs_1", PaymentIntent: intentID})
	require.NoError(t, err)
	event := &payment.Event{ID: "evt_1", Type: payment.EventCheckoutCompleted}
	event.Data.Object = object
	return event
}

func chargeEvent(t *testing.T, intentID, receiptURL string) *payment.Event {
	t.Helper()
	object, err := json.Marshal(payment.ChargeObject{ID: "ch_1", PaymentIntent: intentID, ReceiptURL: receiptURL})
	require.NoError(t, err)
	event := &payment.Event{ID: "evt_2", Type: payment.EventChargeSucceeded}
	event.Data.Object = object
	return event
}

func TestHandleNotification_InvalidSignature(t *testing.T) {
	svc, bookings, ledger, gateway := newPaymentFixture(t)

	gateway.On("ConstructEvent", mock.Anything, "bad-header").
		Return(nil, payment.ErrInvalidSignature)

	err := svc.HandleNotification(context.Background(), []byte(`{}`), "bad-header")

	assert.ErrorIs(t, err, payment.ErrInvalidSignature)
	// Nothing may be mutated on signature failure.
	bookings.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	ledger.AssertNotCalled(t, "Deduct", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleCheckoutCompleted_Success(t *testing.T) {
	svc, bookings, ledger, gateway := newPaymentFixture(t)

	gateway.On("ConstructEvent", mock.Anything, "sig").Return(checkoutEvent(t, "pi_1"), nil)
	gateway.On("GetPaymentIntent", mock.Anything, "pi_1").
		Return(&payment.Intent{ID: "pi_1", Metadata: map[string]string{"booking_id": "bk1"}}, nil)

	booking := &model.Booking{ID: "bk1", TotalAmount: money("90.00"), Status: model.BookingStatusPending}
	bookings.On("GetByID", mock.Anything, "bk1").Return(booking, nil)
	bookings.On("ListItems", mock.Anything, "bk1").Return([]model.BookedTicket{
		{TicketTypeID: "tt-general", Quantity: 2},
		{TicketTypeID: "tt-vip", Quantity: 1},
	}, nil)
	ledger.On("Deduct", mock.Anything, "tt-general", 2).Return(nil)
	ledger.On("Deduct", mock.Anything, "tt-vip", 1).Return(nil)
	bookings.On("MarkPaid", mock.Anything, "bk1", mock.Anything, mock.Anything).Return(nil)

	err := svc.HandleNotification(context.Background(), []byte(`{}`), "sig")

	require.NoError(t, err)
	ledger.AssertNumberOfCalls(t, "Deduct", 2)

	var fee, revenue decimal.Decimal
	for _, call := range bookings.Calls {
		if call.Method == "MarkPaid" {
			fee = call.Arguments.Get(2).(decimal.Decimal)
			revenue = call.Arguments.Get(3).(decimal.Decimal)
		}
	}
	assert.True(t, fee.Equal(money("9.00")), "fee %s", fee)
	assert.True(t, revenue.Equal(money("81.00")), "revenue %s", revenue)
}

// A replayed checkout-completed notification finds the booking already paid
// and must change nothing: inventory is deducted once, not twice.
func TestHandleCheckoutCompleted_Idempotent(t *testing.T) {
	svc, bookings, ledger, gateway := newPaymentFixture(t)

	gateway.On("ConstructEvent", mock.Anything, "sig").Return(checkoutEvent(t, "pi_1"), nil)
	gateway.On("GetPaymentIntent", mock.Anything, "pi_1").
		Return(&payment.Intent{ID: "pi_1", Metadata: map[string]string{"booking_id": "bk1"}}, nil)
	bookings.On("GetByID", mock.Anything, "bk1").Return(
		&model.Booking{ID: "bk1", TotalAmount: money("90.00"), Status: model.BookingStatusPaid}, nil)

	err := svc.HandleNotification(context.Background(), []byte(`{}`), "sig")

	require.NoError(t, err)
	ledger.AssertNotCalled(t, "Deduct", mock.Anything, mock.Anything, mock.Anything)
	bookings.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// Documented policy choice: a line item whose deduction falls short does not
// block the paid transition. The charge already settled; the shortfall is an
// operational signal, not a rollback trigger.
func TestHandleCheckoutCompleted_PartialInventoryShortfall(t *testing.T) {
	svc, bookings, ledger, gateway := newPaymentFixture(t)

	gateway.On("ConstructEvent", mock.Anything, "sig").Return(checkoutEvent(t, "pi_1"), nil)
	gateway.On("GetPaymentIntent", mock.Anything, "pi_1").
		Return(&payment.Intent{ID: "pi_1", Metadata: map[string]string{"booking_id": "bk1"}}, nil)
	bookings.On("GetByID", mock.Anything, "bk1").Return(
		&model.Booking{ID: "bk1", TotalAmount: money("90.00"), Status: model.BookingStatusPending}, nil)
	bookings.On("ListItems", mock.Anything, "bk1").Return([]model.BookedTicket{
		{TicketTypeID: "tt-general", Quantity: 2},
		{TicketTypeID: "tt-vip", Quantity: 1},
	}, nil)
	ledger.On("Deduct", mock.Anything, "tt-general", 2).Return(repository.ErrInsufficientInventory)
	ledger.On("Deduct", mock.Anything, "tt-vip", 1).Return(nil)
	bookings.On("MarkPaid", mock.Anything, "bk1", mock.Anything, mock.Anything).Return(nil)

	err := svc.HandleNotification(context.Background(), []byte(`{}`), "sig")

	require.NoError(t, err)
	bookings.AssertCalled(t, "MarkPaid", mock.Anything, "bk1", mock.Anything, mock.Anything)
}

// Once the paid transition is claimed, a hard deduction failure no longer
// bounces the delivery: a redelivery would be acknowledged as a duplicate
// without retrying the deduction, so there is nothing to gain from a retry.
func TestHandleCheckoutCompleted_DeductionErrorAfterClaim(t *testing.T) {
	svc, bookings, ledger, gateway := newPaymentFixture(t)

	gateway.On("ConstructEvent", mock.Anything, "sig").Return(checkoutEvent(t, "pi_1"), nil)
	gateway.On("GetPaymentIntent", mock.Anything, "pi_1").
		Return(&payment.Intent{ID: "pi_1", Metadata: map[string]string{"booking_id": "bk1"}}, nil)
	bookings.On("GetByID", mock.Anything, "bk1").Return(
		&model.Booking{ID: "bk1", TotalAmount: money("90.00"), Status: model.BookingStatusPending}, nil)
	bookings.On("MarkPaid", mock.Anything, "bk1", mock.Anything, mock.Anything).Return(nil)
	bookings.On("ListItems", mock.Anything, "bk1").Return([]model.BookedTicket{
		{TicketTypeID: "tt-general", Quantity: 2},
	}, nil)
	ledger.On("Deduct", mock.Anything, "tt-general", 2).Return(errors.New("connection reset"))

	err := svc.HandleNotification(context.Background(), []byte(`{}`), "sig")

	require.NoError(t, err)
	bookings.AssertCalled(t, "MarkPaid", mock.Anything, "bk1", mock.Anything, mock.Anything)
}

func TestHandleCheckoutCompleted_UnknownBooking(t *testing.T) {
	svc, bookings, ledger, gateway := newPaymentFixture(t)

	gateway.On("ConstructEvent", mock.Anything, "sig").Return(checkoutEvent(t, "pi_1"), nil)
	gateway.On("GetPaymentIntent", mock.Anything, "pi_1").
		Return(&payment.Intent{ID: "pi_1", Metadata: map[string]string{"booking_id": "ghost"}}, nil)
	bookings.On("GetByID", mock.Anything, "ghost").Return(nil, repository.ErrNotFound)

	err := svc.HandleNotification(context.Background(), []byte(`{}`), "sig")

	require.NoError(t, err)
	ledger.AssertNotCalled(t, "Deduct", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleCheckoutCompleted_MissingCorrelation(t *testing.T) {
	svc, bookings, _, gateway := newPaymentFixture(t)

	gateway.On("ConstructEvent", mock.Anything, "sig").Return(checkoutEvent(t, "pi_1"), nil)
	gateway.On("GetPaymentIntent", mock.Anything, "pi_1").
		Return(&payment.Intent{ID: "pi_1", Metadata: map[string]string{}}, nil)

	err := svc.HandleNotification(context.Background(), []byte(`{}`), "sig")

	require.NoError(t, err)
	bookings.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

// A concurrent delivery can slip between the status read and the update. The
// conditional update refuses the second transition before any inventory is
// touched, so the loser deducts nothing and the event is acknowledged as a
// duplicate.
func TestHandleCheckoutCompleted_LostMarkPaidRace(t *testing.T) {
	svc, bookings, ledger, gateway := newPaymentFixture(t)

	gateway.On("ConstructEvent", mock.Anything, "sig").Return(checkoutEvent(t, "pi_1"), nil)
	gateway.On("GetPaymentIntent", mock.Anything, "pi_1").
		Return(&payment.Intent{ID: "pi_1", Metadata: map[string]string{"booking_id": "bk1"}}, nil)
	bookings.On("GetByID", mock.Anything, "bk1").Return(
		&model.Booking{ID: "bk1", TotalAmount: money("90.00"), Status: model.BookingStatusPending}, nil)
	bookings.On("MarkPaid", mock.Anything, "bk1", mock.Anything, mock.Anything).
		Return(repository.ErrBookingNotPending)

	err := svc.HandleNotification(context.Background(), []byte(`{}`), "sig")

	require.NoError(t, err)
	bookings.AssertNotCalled(t, "ListItems", mock.Anything, mock.Anything)
	ledger.AssertNotCalled(t, "Deduct", mock.Anything, mock.Anything, mock.Anything)
}

// The receipt may arrive before checkout completion; it is stored without
// touching the booking status.
func TestHandleChargeSucceeded_BeforeCheckoutCompleted(t *testing.T) {
	svc, bookings, _, gateway := newPaymentFixture(t)

	gateway.On("ConstructEvent", mock.Anything, "sig").
		Return(chargeEvent(t, "pi_1", "https://receipts.example/r1"), nil)
	gateway.On("GetPaymentIntent", mock.Anything, "pi_1").
		Return(&payment.Intent{ID: "pi_1", Metadata: map[string]string{"booking_id": "bk1"}}, nil)
	bookings.On("GetByID", mock.Anything, "bk1").Return(
		&model.Booking{ID: "bk1", Status: model.BookingStatusPending}, nil)
	bookings.On("SetReceiptURL", mock.Anything, "bk1", "https://receipts.example/r1").Return(nil)

	err := svc.HandleNotification(context.Background(), []byte(`{}`), "sig")

	require.NoError(t, err)
	bookings.AssertCalled(t, "SetReceiptURL", mock.Anything, "bk1", "https://receipts.example/r1")
	bookings.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleChargeSucceeded_MissingReceiptURL(t *testing.T) {
	svc, bookings, _, gateway := newPaymentFixture(t)

	gateway.On("ConstructEvent", mock.Anything, "sig").Return(chargeEvent(t, "pi_1", ""), nil)

	err := svc.HandleNotification(context.Background(), []byte(`{}`), "sig")

	require.NoError(t, err)
	bookings.AssertNotCalled(t, "SetReceiptURL", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleNotification_UnknownEventType(t *testing.T) {
	svc, bookings, ledger, gateway := newPaymentFixture(t)

	event := &payment.Event{ID: "evt_9", Type: "invoice.created"}
	gateway.On("ConstructEvent", mock.Anything, "sig").Return(event, nil)

	err := svc.HandleNotification(context.Background(), []byte(`{}`), "sig")

	require.NoError(t, err)
	bookings.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	ledger.AssertNotCalled(t, "Deduct", mock.Anything, mock.Anything, mock.Anything)
}

// A transient provider lookup failure must bounce the delivery so the
// provider redelivers. Acknowledging it would drop the event permanently and
// strand the booking pending forever.
func TestHandleCheckoutCompleted_IntentLookupFailure(t *testing.T) {
	svc, bookings, ledger, gateway := newPaymentFixture(t)

	gateway.On("ConstructEvent", mock.Anything, "sig").Return(checkoutEvent(t, "pi_1"), nil)
	gateway.On("GetPaymentIntent", mock.Anything, "pi_1").Return(nil, payment.ErrGateway)

	err := svc.HandleNotification(context.Background(), []byte(`{}`), "sig")

	assert.ErrorIs(t, err, payment.ErrGateway)
	bookings.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	ledger.AssertNotCalled(t, "Deduct", mock.Anything, mock.Anything, mock.Anything)
}
