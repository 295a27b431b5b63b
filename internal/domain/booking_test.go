package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCapacitySlot_CanFit(t *testing.T) {
	slot := CapacitySlot{Capacity: 4, Taken: 3}

	assert.True(t, slot.CanFit(1))
	assert.False(t, slot.CanFit(2))
	assert.False(t, slot.CanFit(0))
	assert.Equal(t, 1, slot.Available())

	slot.Taken = 4
	assert.True(t, slot.IsFull())
}

func TestBooking_SlotKey(t *testing.T) {
	date := time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC)
	b := Booking{TripID: "lake-tour", Mode: "van", TravelDate: date}

	assert.Equal(t, "lake-tour/2026-11-02/van", b.SlotKey().String())
}

func TestBooking_CanBeCancelled(t *testing.T) {
	assert.True(t, (&Booking{Status: StatusPending}).CanBeCancelled())
	assert.False(t, (&Booking{Status: StatusConfirmed}).CanBeCancelled())
	assert.False(t, (&Booking{Status: StatusExpired}).CanBeCancelled())
}

func TestTrip_DefaultPerSeatMode(t *testing.T) {
	trip := Trip{
		DefaultMode: "private",
		Modes: []TripMode{
			{Name: "private", Pricing: PricingPerVehicle, PriceCents: 9000},
			{Name: "shared", Pricing: PricingPerSeat, PriceCents: 1500},
		},
	}

	m, ok := trip.DefaultPerSeatMode()
	assert.True(t, ok)
	assert.Equal(t, "shared", m.Name)

	trip.Modes = trip.Modes[:1]
	_, ok = trip.DefaultPerSeatMode()
	assert.False(t, ok)
}
