package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-ReservationCore/internal/domain"
)

// Request модель запроса доступности рейса на дату
type Request struct {
	TripID string
	Date   time.Time // Дата поездки (без времени)
}

// Response доступность по всем режимам рейса
type Response struct {
	TripID   string
	Date     time.Time
	Currency string
	Slots    []Slot
}

// Slot состояние вместимости одного режима
type Slot struct {
	Mode           string
	Pricing        domain.PricingKind
	PriceCents     int64
	TotalSpots     int
	TakenSpots     int
	AvailableSpots int
	Provisioned    bool // слот уже создан в хранилище; иначе вместимость по умолчанию
}
