package confirm_booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ReservationCore/internal/domain"
	"github.com/m04kA/SMC-ReservationCore/internal/integrations/dispatch"
	"github.com/m04kA/SMC-ReservationCore/internal/testutil/memstore"
	"github.com/m04kA/SMC-ReservationCore/pkg/logger"
	"github.com/m04kA/SMC-ReservationCore/pkg/metrics"
)

var travelDate = time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC)

type fixedCapacity int

func (c fixedCapacity) DefaultCapacity(ctx context.Context, tripID, mode string) (int, error) {
	return int(c), nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []dispatch.BookingConfirmed
	err    error
}

func (p *recordingPublisher) PublishBookingConfirmed(ctx context.Context, event dispatch.BookingConfirmed) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

type fixture struct {
	store     *memstore.Store
	publisher *recordingPublisher
	metrics   *metrics.Metrics
	uc        *UseCase
}

func newFixture(defaultCapacity int) *fixture {
	store := memstore.New()
	pub := &recordingPublisher{}
	m := metrics.NewWithRegistry(prometheus.NewRegistry(), "test")
	uc := NewUseCase(store.Bookings(), store.Slots(), fixedCapacity(defaultCapacity), pub, m, store.TxManager(), logger.NewNop())
	return &fixture{store: store, publisher: pub, metrics: m, uc: uc}
}

func (f *fixture) addBooking(id string, seats int, status domain.BookingStatus) {
	f.store.Bookings().Put(domain.Booking{
		ID:         id,
		TripID:     "lake-tour",
		Mode:       "van",
		TravelDate: travelDate,
		Seats:      seats,
		PriceCents: 5000,
		Currency:   "USD",
		Status:     status,
		CreatedAt:  time.Now(),
	})
}

func slotKey() domain.SlotKey {
	return domain.SlotKey{TripID: "lake-tour", Date: travelDate, Mode: "van"}
}

func TestExecute_ConfirmsAndClaims(t *testing.T) {
	f := newFixture(4)
	f.addBooking("b-1", 2, domain.StatusPending)

	res, err := f.uc.Execute(context.Background(), "b-1", domain.ConfirmPathExplicit)
	require.NoError(t, err)
	assert.Equal(t, OutcomeConfirmed, res.Outcome)
	assert.Equal(t, 2, res.Slot.Taken)
	assert.Equal(t, 4, res.Slot.Capacity)

	b, err := f.store.Bookings().GetByID(context.Background(), "b-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, b.Status)

	require.Equal(t, 1, f.publisher.count())
	assert.Equal(t, "2026-11-02", f.publisher.events[0].Date)
	assert.Equal(t, "explicit", f.publisher.events[0].Path)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.BookingsConfirmed.WithLabelValues("explicit")))
}

func TestExecute_RepeatIsNoop(t *testing.T) {
	f := newFixture(4)
	f.addBooking("b-1", 2, domain.StatusPending)
	ctx := context.Background()

	_, err := f.uc.Execute(ctx, "b-1", domain.ConfirmPathExplicit)
	require.NoError(t, err)

	res, err := f.uc.Execute(ctx, "b-1", domain.ConfirmPathExplicit)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyConfirmed, res.Outcome)

	slot, err := f.store.Slots().Get(ctx, slotKey())
	require.NoError(t, err)
	assert.Equal(t, 2, slot.Taken)
	assert.Equal(t, 1, f.publisher.count())
}

func TestExecute_ConcurrentLastSeat(t *testing.T) {
	for i := 0; i < 20; i++ {
		f := newFixture(3)
		ctx := context.Background()

		_, err := f.store.Slots().Provision(ctx, slotKey(), 3)
		require.NoError(t, err)
		_, err = f.store.Slots().Claim(ctx, slotKey(), 2)
		require.NoError(t, err)

		f.addBooking("b-1", 1, domain.StatusPending)
		f.addBooking("b-2", 1, domain.StatusPending)
		// Обе транзакции успевают взять свои бронирования до захвата слота
		f.store.Delay("GetBookingForUpdate", 5*time.Millisecond)

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for j, id := range []string{"b-1", "b-2"} {
			wg.Add(1)
			go func(j int, id string) {
				defer wg.Done()
				_, errs[j] = f.uc.Execute(ctx, id, domain.ConfirmPathExplicit)
			}(j, id)
		}
		wg.Wait()

		succeeded, exceeded := 0, 0
		for _, err := range errs {
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, ErrCapacityExceeded):
				exceeded++
			default:
				t.Fatalf("unexpected error: %v", err)
			}
		}
		assert.Equal(t, 1, succeeded)
		assert.Equal(t, 1, exceeded)

		slot, err := f.store.Slots().Get(ctx, slotKey())
		require.NoError(t, err)
		assert.Equal(t, slot.Capacity, slot.Taken)
	}
}

func TestExecute_ExplicitAndWebhookRaceClaimOnce(t *testing.T) {
	f := newFixture(10)
	f.addBooking("b-1", 3, domain.StatusPending)
	f.store.Delay("GetBookingForUpdate", 20*time.Millisecond)
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make([]*Result, 2)
	for i, path := range []domain.ConfirmPath{domain.ConfirmPathExplicit, domain.ConfirmPathWebhook} {
		wg.Add(1)
		go func(i int, path domain.ConfirmPath) {
			defer wg.Done()
			res, err := f.uc.Execute(ctx, "b-1", path)
			assert.NoError(t, err)
			results[i] = res
		}(i, path)
	}
	wg.Wait()

	outcomes := map[Outcome]int{}
	for _, r := range results {
		require.NotNil(t, r)
		outcomes[r.Outcome]++
	}
	assert.Equal(t, 1, outcomes[OutcomeConfirmed])
	assert.Equal(t, 1, outcomes[OutcomeAlreadyConfirmed])

	slot, err := f.store.Slots().Get(ctx, slotKey())
	require.NoError(t, err)
	assert.Equal(t, 3, slot.Taken)
	assert.Equal(t, 1, f.publisher.count())
}

func TestExecute_CapacityExceededLeavesPending(t *testing.T) {
	f := newFixture(1)
	f.addBooking("b-1", 2, domain.StatusPending)
	ctx := context.Background()

	_, err := f.uc.Execute(ctx, "b-1", domain.ConfirmPathExplicit)
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	b, err := f.store.Bookings().GetByID(ctx, "b-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, b.Status)
	assert.Equal(t, 0, f.publisher.count())
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.CapacityClaims.WithLabelValues("exceeded")))
}

func TestExecute_NotPending(t *testing.T) {
	for _, status := range []domain.BookingStatus{domain.StatusCancelled, domain.StatusExpired} {
		t.Run(string(status), func(t *testing.T) {
			f := newFixture(4)
			f.addBooking("b-1", 1, status)

			_, err := f.uc.Execute(context.Background(), "b-1", domain.ConfirmPathWebhook)
			assert.ErrorIs(t, err, ErrNotPending)

			_, err = f.store.Slots().Get(context.Background(), slotKey())
			assert.Error(t, err, "slot must not be created for a rejected confirm")
		})
	}
}

func TestExecute_NotFoundAndInvalid(t *testing.T) {
	f := newFixture(4)

	_, err := f.uc.Execute(context.Background(), "missing", domain.ConfirmPathExplicit)
	assert.ErrorIs(t, err, ErrBookingNotFound)

	_, err = f.uc.Execute(context.Background(), " ", domain.ConfirmPathExplicit)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestExecute_StorageErrorIsInternal(t *testing.T) {
	f := newFixture(4)
	f.addBooking("b-1", 1, domain.StatusPending)
	f.store.FailNext("Claim", errors.New("connection reset"))

	_, err := f.uc.Execute(context.Background(), "b-1", domain.ConfirmPathExplicit)
	assert.ErrorIs(t, err, ErrInternal)

	b, err := f.store.Bookings().GetByID(context.Background(), "b-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, b.Status)
}

func TestExecute_PublishFailureKeepsConfirmation(t *testing.T) {
	f := newFixture(4)
	f.publisher.err = errors.New("broker down")
	f.addBooking("b-1", 1, domain.StatusPending)

	res, err := f.uc.Execute(context.Background(), "b-1", domain.ConfirmPathExplicit)
	require.NoError(t, err)
	assert.Equal(t, OutcomeConfirmed, res.Outcome)
}
