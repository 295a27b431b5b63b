package get_available_slots

import "github.com/m04kA/SMC-ReservationCore/internal/domain"

// buildSlot собирает доступность режима из слота хранилища.
// slot == nil: слот ещё не создан, места не заняты, вместимость по умолчанию.
func buildSlot(mode domain.TripMode, slot *domain.CapacitySlot, defaultCapacity int) Slot {
	result := Slot{
		Mode:       mode.Name,
		Pricing:    mode.Pricing,
		PriceCents: mode.PriceCents,
	}

	if slot == nil {
		result.TotalSpots = defaultCapacity
		result.AvailableSpots = defaultCapacity
		return result
	}

	result.Provisioned = true
	result.TotalSpots = slot.Capacity
	result.TakenSpots = slot.Taken
	result.AvailableSpots = slot.Available()
	return result
}
