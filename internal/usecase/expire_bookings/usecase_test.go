package expire_bookings

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ReservationCore/internal/domain"
	"github.com/m04kA/SMC-ReservationCore/internal/testutil/memstore"
	"github.com/m04kA/SMC-ReservationCore/pkg/logger"
	"github.com/m04kA/SMC-ReservationCore/pkg/metrics"
)

type fixedClock time.Time

func (c fixedClock) Now() time.Time { return time.Time(c) }

var now = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

func putBooking(store *memstore.Store, id string, status domain.BookingStatus, age time.Duration) {
	store.Bookings().Put(domain.Booking{
		ID:         id,
		TripID:     "X",
		Mode:       "van",
		TravelDate: now.AddDate(0, 0, 10),
		Seats:      1,
		PriceCents: 5000,
		Currency:   "USD",
		Status:     status,
		CreatedAt:  now.Add(-age),
	})
}

func newUseCase(t *testing.T, store *memstore.Store, batch int) (*UseCase, *metrics.Metrics) {
	t.Helper()
	m := metrics.NewWithRegistry(prometheus.NewRegistry(), "test")
	uc, err := NewUseCase(store.Bookings(), m, 30*time.Minute, batch, logger.NewNop())
	require.NoError(t, err)
	uc.timeProvider = fixedClock(now)
	return uc, m
}

func TestExecute_ExpiresOnlyStalePending(t *testing.T) {
	store := memstore.New()
	putBooking(store, "old-pending", domain.StatusPending, time.Hour)
	putBooking(store, "fresh-pending", domain.StatusPending, time.Minute)
	putBooking(store, "old-confirmed", domain.StatusConfirmed, time.Hour)
	uc, m := newUseCase(t, store, 10)
	ctx := context.Background()

	n, err := uc.Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	expected := map[string]domain.BookingStatus{
		"old-pending":   domain.StatusExpired,
		"fresh-pending": domain.StatusPending,
		"old-confirmed": domain.StatusConfirmed,
	}
	for id, status := range expected {
		b, err := store.Bookings().GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, status, b.Status, id)
	}
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BookingsExpired))
}

func TestExecute_DrainsInBatches(t *testing.T) {
	store := memstore.New()
	for i := 0; i < 7; i++ {
		putBooking(store, fmt.Sprintf("b-%d", i), domain.StatusPending, time.Hour+time.Duration(i)*time.Minute)
	}
	uc, _ := newUseCase(t, store, 3)

	n, err := uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	n, err = uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestExecute_StorageError(t *testing.T) {
	store := memstore.New()
	uc, _ := newUseCase(t, store, 3)
	store.FailNext("ExpirePending", errors.New("connection reset"))

	_, err := uc.Execute(context.Background())
	assert.ErrorIs(t, err, ErrInternal)
}

func TestNewUseCase_InvalidConfig(t *testing.T) {
	_, err := NewUseCase(memstore.New().Bookings(), nil, 0, 10, logger.NewNop())
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewUseCase(memstore.New().Bookings(), nil, time.Minute, 0, logger.NewNop())
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestRun_StopsOnCancel(t *testing.T) {
	store := memstore.New()
	putBooking(store, "old-pending", domain.StatusPending, time.Hour)
	uc, _ := newUseCase(t, store, 10)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		uc.Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool {
		b, err := store.Bookings().GetByID(context.Background(), "old-pending")
		return err == nil && b.Status == domain.StatusExpired
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
