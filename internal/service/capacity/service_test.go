package capacity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ReservationCore/internal/domain"
	"github.com/m04kA/SMC-ReservationCore/internal/infra/catalog"
	"github.com/m04kA/SMC-ReservationCore/internal/service/pricing"
	"github.com/m04kA/SMC-ReservationCore/internal/testutil/memstore"
	"github.com/m04kA/SMC-ReservationCore/pkg/logger"
)

func newService(t *testing.T) (*Service, *memstore.Store) {
	t.Helper()
	cat := &domain.Catalog{Trips: map[string]*domain.Trip{
		"X": {
			ID:          "X",
			Currency:    "USD",
			DefaultMode: "shared",
			Modes: []domain.TripMode{
				{Name: "shared", Pricing: domain.PricingPerSeat, PriceCents: 1500},
				{Name: "van", Pricing: domain.PricingPerVehicle, PriceCents: 5000},
			},
		},
	}}
	store := memstore.New()
	pricingSvc := pricing.NewService(catalog.NewStore(cat), 10, logger.NewNop())
	return NewService(store.Slots(), pricingSvc, logger.NewNop()), store
}

func TestProvisionAndGet(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.GetSlot(ctx, "X", "2026-11-02", "van")
	assert.ErrorIs(t, err, ErrSlotNotFound)

	resp, err := svc.Provision(ctx, "X", "2026-11-02", "van", 6)
	require.NoError(t, err)
	assert.Equal(t, 6, resp.Capacity)
	assert.Equal(t, 6, resp.Available)

	resp, err = svc.GetSlot(ctx, "X", "2026-11-02", "van")
	require.NoError(t, err)
	assert.Equal(t, "2026-11-02", resp.Date)
	assert.Equal(t, 6, resp.Capacity)
}

func TestProvision_BelowTaken(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()
	key := domain.SlotKey{TripID: "X", Date: time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC), Mode: "van"}

	_, err := store.Slots().EnsureSlot(ctx, key, 4)
	require.NoError(t, err)
	_, err = store.Slots().Claim(ctx, key, 3)
	require.NoError(t, err)

	_, err = svc.Provision(ctx, "X", "2026-11-02", "van", 2)
	assert.ErrorIs(t, err, ErrCapacityBelowTaken)

	resp, err := svc.Provision(ctx, "X", "2026-11-02", "van", 3)
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Available)
}

func TestProvision_Validation(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Provision(ctx, "nowhere", "2026-11-02", "van", 5)
	assert.ErrorIs(t, err, ErrTripNotFound)

	_, err = svc.Provision(ctx, "X", "2026-11-02", "boat", 5)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Provision(ctx, "X", "02.11.2026", "van", 5)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Provision(ctx, "X", "2026-11-02", "van", -1)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
