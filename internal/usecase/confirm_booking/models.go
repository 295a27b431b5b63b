package confirm_booking

import "github.com/m04kA/SMC-ReservationCore/internal/domain"

// Outcome результат подтверждения
type Outcome string

const (
	// OutcomeConfirmed этот вызов занял вместимость и перевёл бронирование в confirmed
	OutcomeConfirmed Outcome = "confirmed"
	// OutcomeAlreadyConfirmed бронирование уже было подтверждено, ничего не изменено
	OutcomeAlreadyConfirmed Outcome = "already_confirmed"
)

// Result модель результата подтверждения
type Result struct {
	Booking *domain.Booking
	Outcome Outcome
	Slot    *domain.CapacitySlot // nil для OutcomeAlreadyConfirmed
}
