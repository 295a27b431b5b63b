package pricing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ReservationCore/internal/domain"
	"github.com/m04kA/SMC-ReservationCore/pkg/logger"
	"github.com/m04kA/SMC-ReservationCore/pkg/ptr"
)

type staticCatalog struct {
	catalog *domain.Catalog
}

func (s staticCatalog) Snapshot() *domain.Catalog { return s.catalog }

func newTestService() *Service {
	catalog := &domain.Catalog{Trips: map[string]*domain.Trip{
		"lake-tour": {
			ID:          "lake-tour",
			Currency:    "USD",
			DefaultMode: "shared",
			Modes: []domain.TripMode{
				{Name: "shared", Pricing: domain.PricingPerSeat, PriceCents: 1500, DefaultCapacity: ptr.Ptr(12)},
				{Name: "van", Pricing: domain.PricingPerVehicle, PriceCents: 5000, DefaultCapacity: ptr.Ptr(1)},
			},
		},
		"charter": {
			ID:       "charter",
			Currency: "EUR",
			Modes: []domain.TripMode{
				{Name: "private", Pricing: domain.PricingPerVehicle, PriceCents: 20000},
			},
		},
	}}
	return NewService(staticCatalog{catalog}, 8, logger.NewNop())
}

func TestComputePrice(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	tests := []struct {
		name     string
		trip     string
		mode     string
		seats    int
		want     int64
		wantMode string
		fellBack bool
	}{
		{"per seat", "lake-tour", "shared", 3, 4500, "shared", false},
		{"per vehicle ignores seats", "lake-tour", "van", 2, 5000, "van", false},
		{"per vehicle single seat", "lake-tour", "van", 1, 5000, "van", false},
		{"unknown mode falls back to per seat", "lake-tour", "boat", 2, 3000, "shared", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := svc.ComputePrice(ctx, tt.trip, tt.mode, tt.seats)
			require.NoError(t, err)
			assert.Equal(t, tt.want, q.PriceCents)
			assert.Equal(t, tt.wantMode, q.Mode)
			assert.Equal(t, tt.fellBack, q.FellBack)
			assert.Equal(t, "USD", q.Currency)
		})
	}
}

func TestComputePrice_Errors(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.ComputePrice(ctx, "atlantis", "shared", 1)
	assert.ErrorIs(t, err, ErrPricingUnavailable)

	_, err = svc.ComputePrice(ctx, "lake-tour", "shared", 0)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.ComputePrice(ctx, "charter", "bus", 1)
	assert.ErrorIs(t, err, ErrNoPerSeatMode)
}

func TestCheckClientAmount(t *testing.T) {
	svc := newTestService()
	q := &Quote{TripID: "lake-tour", Mode: "van", Seats: 2, PriceCents: 5000}

	assert.NoError(t, svc.CheckClientAmount(q, nil))
	assert.NoError(t, svc.CheckClientAmount(q, ptr.Ptr(int64(5000))))
	assert.ErrorIs(t, svc.CheckClientAmount(q, ptr.Ptr(int64(100))), ErrPriceMismatch)
	assert.ErrorIs(t, svc.CheckClientAmount(q, ptr.Ptr(int64(5001))), ErrPriceMismatch)
}

func TestDefaultCapacity(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	c, err := svc.DefaultCapacity(ctx, "lake-tour", "van")
	require.NoError(t, err)
	assert.Equal(t, 1, c)

	c, err = svc.DefaultCapacity(ctx, "charter", "private")
	require.NoError(t, err)
	assert.Equal(t, 8, c)

	c, err = svc.DefaultCapacity(ctx, "atlantis", "van")
	require.NoError(t, err)
	assert.Equal(t, 8, c)
}

func TestCanonicalMode(t *testing.T) {
	svc := newTestService()

	m, err := svc.CanonicalMode("lake-tour", "boat")
	require.NoError(t, err)
	assert.Equal(t, "shared", m)
}
