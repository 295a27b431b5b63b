package process_webhook

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ReservationCore/internal/domain"
	"github.com/m04kA/SMC-ReservationCore/internal/integrations/dispatch"
	"github.com/m04kA/SMC-ReservationCore/internal/testutil/memstore"
	"github.com/m04kA/SMC-ReservationCore/internal/usecase/confirm_booking"
	"github.com/m04kA/SMC-ReservationCore/pkg/logger"
	"github.com/m04kA/SMC-ReservationCore/pkg/metrics"
	"github.com/m04kA/SMC-ReservationCore/pkg/ptr"
	"github.com/m04kA/SMC-ReservationCore/pkg/webhooksig"
)

const testSecret = "whsec_test"

var travelDate = time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC)

type fixedCapacity int

func (c fixedCapacity) DefaultCapacity(ctx context.Context, tripID, mode string) (int, error) {
	return int(c), nil
}

type fixture struct {
	store     *memstore.Store
	metrics   *metrics.Metrics
	confirm   *confirm_booking.UseCase
	applier   *Applier
	processor *Processor
}

func newFixture(capacity int) *fixture {
	store := memstore.New()
	log := logger.NewNop()
	m := metrics.NewWithRegistry(prometheus.NewRegistry(), "test")
	confirmUC := confirm_booking.NewUseCase(store.Bookings(), store.Slots(), fixedCapacity(capacity),
		dispatch.NewNoopPublisher(log), m, store.TxManager(), log)
	applier := NewApplier(store.Events(), store.Payments(), store.Bookings(), confirmUC, m, store.TxManager(), log)

	return &fixture{
		store:     store,
		metrics:   m,
		confirm:   confirmUC,
		applier:   applier,
		processor: NewProcessor(applier, testSecret, 5*time.Minute, log),
	}
}

func (f *fixture) addBooking(id string, seats int) {
	f.store.Bookings().Put(domain.Booking{
		ID:         id,
		TripID:     "X",
		Mode:       "van",
		TravelDate: travelDate,
		Seats:      seats,
		PriceCents: 5000,
		Currency:   "USD",
		Status:     domain.StatusPending,
		CreatedAt:  time.Now(),
	})
}

func (f *fixture) booking(t *testing.T, id string) *domain.Booking {
	t.Helper()
	b, err := f.store.Bookings().GetByID(context.Background(), id)
	require.NoError(t, err)
	return b
}

func (f *fixture) payment(t *testing.T, pi string) *domain.Payment {
	t.Helper()
	p, err := f.store.Payments().GetPayment(context.Background(), pi)
	require.NoError(t, err)
	return p
}

func (f *fixture) deliver(t *testing.T, payload []byte) (*Result, error) {
	t.Helper()
	return f.processor.HandleSigned(context.Background(), payload, webhooksig.Sign(testSecret, payload, time.Now()))
}

func eventPayload(t *testing.T, eventID, eventType, pi, bookingID string) []byte {
	t.Helper()
	object := map[string]interface{}{
		"id":       pi,
		"amount":   5000,
		"currency": "usd",
		"status":   "succeeded",
	}
	if bookingID != "" {
		object["metadata"] = map[string]string{"booking_id": bookingID}
	}
	payload, err := json.Marshal(map[string]interface{}{
		"id":   eventID,
		"type": eventType,
		"data": map[string]interface{}{"object": object},
	})
	require.NoError(t, err)
	return payload
}

func TestHandleSigned_SucceededConfirmsBooking(t *testing.T) {
	f := newFixture(4)
	f.addBooking("b-1", 2)

	res, err := f.deliver(t, eventPayload(t, "evt_1", domain.EventPaymentIntentSucceeded, "pi_1", "b-1"))
	require.NoError(t, err)
	assert.False(t, res.Duplicate)
	assert.Equal(t, domain.AppliedSucceeded, res.AppliedStatus)

	b := f.booking(t, "b-1")
	assert.Equal(t, domain.StatusConfirmed, b.Status)
	require.NotNil(t, b.PaymentIntentID)
	assert.Equal(t, "pi_1", *b.PaymentIntentID)
	assert.Equal(t, domain.PaymentSucceeded, f.payment(t, "pi_1").Status)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.BookingsConfirmed.WithLabelValues("webhook")))
}

func TestHandleSigned_DuplicateEventAppliedOnce(t *testing.T) {
	f := newFixture(4)
	f.addBooking("b-1", 2)
	payload := eventPayload(t, "evt_1", domain.EventPaymentIntentSucceeded, "pi_1", "b-1")

	_, err := f.deliver(t, payload)
	require.NoError(t, err)

	res, err := f.deliver(t, payload)
	require.NoError(t, err)
	assert.True(t, res.Duplicate)

	assert.Equal(t, 1, f.store.Payments().PaymentsCount())
	assert.Equal(t, 1, f.store.Events().Count())

	slot, err := f.store.Slots().Get(context.Background(), domain.SlotKey{TripID: "X", Date: travelDate, Mode: "van"})
	require.NoError(t, err)
	assert.Equal(t, 2, slot.Taken)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.WebhookEvents.WithLabelValues(domain.EventPaymentIntentSucceeded, "duplicate")))
}

func TestHandleSigned_FailedThenSucceeded(t *testing.T) {
	f := newFixture(4)
	f.addBooking("b-1", 2)

	_, err := f.deliver(t, eventPayload(t, "evt_1", domain.EventPaymentIntentFailed, "pi_1", "b-1"))
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentFailed, f.payment(t, "pi_1").Status)
	assert.Equal(t, domain.StatusPending, f.booking(t, "b-1").Status)

	_, err = f.deliver(t, eventPayload(t, "evt_2", domain.EventPaymentIntentSucceeded, "pi_1", "b-1"))
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentSucceeded, f.payment(t, "pi_1").Status)
	assert.Equal(t, domain.StatusConfirmed, f.booking(t, "b-1").Status)
}

func TestHandleSigned_SucceededThenFailedKeepsBookingConfirmed(t *testing.T) {
	f := newFixture(4)
	f.addBooking("b-1", 2)

	_, err := f.deliver(t, eventPayload(t, "evt_1", domain.EventPaymentIntentSucceeded, "pi_1", "b-1"))
	require.NoError(t, err)
	_, err = f.deliver(t, eventPayload(t, "evt_2", domain.EventPaymentIntentFailed, "pi_1", "b-1"))
	require.NoError(t, err)

	p := f.payment(t, "pi_1")
	assert.Equal(t, domain.PaymentFailed, p.Status)
	require.NotNil(t, p.LastEventID)
	assert.Equal(t, "evt_2", *p.LastEventID)
	assert.Equal(t, domain.StatusConfirmed, f.booking(t, "b-1").Status)
}

func TestHandleSigned_InvalidSignatureChangesNothing(t *testing.T) {
	f := newFixture(4)
	f.addBooking("b-1", 2)
	payload := eventPayload(t, "evt_1", domain.EventPaymentIntentSucceeded, "pi_1", "b-1")
	ctx := context.Background()

	tampered := eventPayload(t, "evt_1", domain.EventPaymentIntentSucceeded, "pi_2", "b-1")

	headers := map[string]string{
		"missing":      "",
		"wrong secret": webhooksig.Sign("other", payload, time.Now()),
		"stale":        webhooksig.Sign(testSecret, payload, time.Now().Add(-time.Hour)),
		"garbage":      "v1=deadbeef",
		"other body":   webhooksig.Sign(testSecret, tampered, time.Now()),
	}

	for name, header := range headers {
		t.Run(name, func(t *testing.T) {
			_, err := f.processor.HandleSigned(ctx, payload, header)
			assert.ErrorIs(t, err, ErrSignatureInvalid)
		})
	}

	assert.Equal(t, 0, f.store.Events().Count())
	assert.Equal(t, 0, f.store.Payments().PaymentsCount())
	assert.Equal(t, domain.StatusPending, f.booking(t, "b-1").Status)
}

func TestHandleSigned_EmptySecretRejectsEverything(t *testing.T) {
	f := newFixture(4)
	processor := NewProcessor(f.applier, "", 5*time.Minute, logger.NewNop())
	payload := eventPayload(t, "evt_1", domain.EventPaymentIntentCreated, "pi_1", "")

	_, err := processor.HandleSigned(context.Background(), payload, webhooksig.Sign("", payload, time.Now()))
	assert.ErrorIs(t, err, ErrSignatureInvalid)
	assert.Equal(t, 0, f.store.Events().Count())
}

func TestHandleSigned_StorageErrorIsTransientAndRedeliverable(t *testing.T) {
	f := newFixture(4)
	f.addBooking("b-1", 2)
	payload := eventPayload(t, "evt_1", domain.EventPaymentIntentSucceeded, "pi_1", "b-1")
	f.store.FailNext("UpsertPaymentStatus", errors.New("connection reset"))

	_, err := f.deliver(t, payload)
	assert.ErrorIs(t, err, ErrTransient)
	assert.Equal(t, 0, f.store.Events().Count())
	assert.Equal(t, domain.StatusPending, f.booking(t, "b-1").Status)

	res, err := f.deliver(t, payload)
	require.NoError(t, err)
	assert.False(t, res.Duplicate)
	assert.Equal(t, domain.StatusConfirmed, f.booking(t, "b-1").Status)
}

func TestHandleSigned_ClaimFailureRollsBackEverything(t *testing.T) {
	f := newFixture(4)
	f.addBooking("b-1", 2)
	f.store.FailNext("Claim", errors.New("connection reset"))

	_, err := f.deliver(t, eventPayload(t, "evt_1", domain.EventPaymentIntentSucceeded, "pi_1", "b-1"))
	assert.ErrorIs(t, err, ErrTransient)
	assert.Equal(t, 0, f.store.Payments().PaymentsCount())
	assert.Equal(t, 0, f.store.Events().Count())
}

func TestHandleSigned_NoCapacityLeavesBookingPending(t *testing.T) {
	f := newFixture(1)
	f.addBooking("b-1", 2)

	res, err := f.deliver(t, eventPayload(t, "evt_1", domain.EventPaymentIntentSucceeded, "pi_1", "b-1"))
	require.NoError(t, err)
	assert.Equal(t, domain.AppliedSucceededUnfulfilled, res.AppliedStatus)

	assert.Equal(t, domain.StatusPending, f.booking(t, "b-1").Status)
	assert.Equal(t, domain.PaymentSucceeded, f.payment(t, "pi_1").Status)

	evt, err := f.store.Events().GetByID(context.Background(), "evt_1")
	require.NoError(t, err)
	assert.Equal(t, domain.AppliedSucceededUnfulfilled, evt.AppliedStatus)
}

func TestHandleSigned_AfterExplicitConfirmIsNoop(t *testing.T) {
	f := newFixture(4)
	f.addBooking("b-1", 2)
	ctx := context.Background()

	_, err := f.confirm.Execute(ctx, "b-1", domain.ConfirmPathExplicit)
	require.NoError(t, err)

	res, err := f.deliver(t, eventPayload(t, "evt_1", domain.EventPaymentIntentSucceeded, "pi_1", "b-1"))
	require.NoError(t, err)
	assert.Equal(t, domain.AppliedSucceeded, res.AppliedStatus)

	slot, err := f.store.Slots().Get(ctx, domain.SlotKey{TripID: "X", Date: travelDate, Mode: "van"})
	require.NoError(t, err)
	assert.Equal(t, 2, slot.Taken)
	assert.Equal(t, 0.0, testutil.ToFloat64(f.metrics.BookingsConfirmed.WithLabelValues("webhook")))
}

func TestHandleSigned_BookingResolvedFromPaymentRow(t *testing.T) {
	f := newFixture(4)
	f.addBooking("b-1", 2)
	_, err := f.store.Payments().CreatePaymentIfAbsent(context.Background(), &domain.Payment{
		PaymentIntentID: "pi_1",
		BookingID:       ptr.Ptr("b-1"),
		AmountCents:     5000,
		Currency:        "USD",
		Status:          domain.PaymentRequiresPaymentMethod,
	})
	require.NoError(t, err)

	_, err = f.deliver(t, eventPayload(t, "evt_1", domain.EventPaymentIntentSucceeded, "pi_1", ""))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, f.booking(t, "b-1").Status)
}

func TestHandleSigned_CreatedNeverOverwrites(t *testing.T) {
	f := newFixture(4)

	_, err := f.deliver(t, eventPayload(t, "evt_1", domain.EventPaymentIntentSucceeded, "pi_1", ""))
	require.NoError(t, err)

	res, err := f.deliver(t, eventPayload(t, "evt_0", domain.EventPaymentIntentCreated, "pi_1", ""))
	require.NoError(t, err)
	assert.Equal(t, domain.AppliedCreated, res.AppliedStatus)
	assert.Equal(t, domain.PaymentSucceeded, f.payment(t, "pi_1").Status)
}

func TestHandleSigned_UnknownTypeIgnored(t *testing.T) {
	f := newFixture(4)

	res, err := f.deliver(t, eventPayload(t, "evt_1", "charge.refunded", "ch_1", ""))
	require.NoError(t, err)
	assert.Equal(t, domain.AppliedIgnored, res.AppliedStatus)
	assert.Equal(t, 0, f.store.Payments().PaymentsCount())
	assert.Equal(t, 1, f.store.Events().Count())
}

func TestHandleSigned_InvalidPayload(t *testing.T) {
	f := newFixture(4)

	for _, payload := range [][]byte{
		[]byte(`not json`),
		[]byte(`{"type":"payment_intent.succeeded"}`),
		[]byte(`{"id":"evt_1","type":"payment_intent.succeeded","data":{"object":{}}}`),
	} {
		_, err := f.deliver(t, payload)
		assert.ErrorIs(t, err, ErrInvalidPayload)
	}
	assert.Equal(t, 0, f.store.Events().Count())
}

func TestNewUnsignedProcessor_Gate(t *testing.T) {
	f := newFixture(4)
	log := logger.NewNop()

	_, err := NewUnsignedProcessor(f.applier, false, "", log)
	assert.ErrorIs(t, err, ErrUnsignedDisabled)

	_, err = NewUnsignedProcessor(f.applier, true, testSecret, log)
	assert.ErrorIs(t, err, ErrUnsignedDisabled)

	unsigned, err := NewUnsignedProcessor(f.applier, true, "", log)
	require.NoError(t, err)

	res, err := unsigned.HandleUnsigned(context.Background(), eventPayload(t, "evt_1", domain.EventPaymentIntentCreated, "pi_1", ""))
	require.NoError(t, err)
	assert.Equal(t, domain.AppliedCreated, res.AppliedStatus)
}
