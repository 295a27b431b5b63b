package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-ReservationCore/internal/domain"
	getAvailableSlots "github.com/m04kA/SMC-ReservationCore/internal/usecase/get_available_slots"
)

// AvailableSlotsResponse HTTP response model
type AvailableSlotsResponse struct {
	TripID   string          `json:"tripId"`
	Date     string          `json:"date"`
	Currency string          `json:"currency"`
	Slots    []AvailableSlot `json:"slots"`
}

// AvailableSlot доступность одного режима
type AvailableSlot struct {
	Mode           string `json:"mode"`
	Pricing        string `json:"pricing"`
	PriceCents     int64  `json:"priceCents"`
	AvailableSpots int    `json:"availableSpots"`
	TakenSpots     int    `json:"takenSpots"`
	TotalSpots     int    `json:"totalSpots"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	slots := make([]AvailableSlot, len(resp.Slots))
	for i, slot := range resp.Slots {
		slots[i] = AvailableSlot{
			Mode:           slot.Mode,
			Pricing:        string(slot.Pricing),
			PriceCents:     slot.PriceCents,
			AvailableSpots: slot.AvailableSpots,
			TakenSpots:     slot.TakenSpots,
			TotalSpots:     slot.TotalSpots,
		}
	}

	return &AvailableSlotsResponse{
		TripID:   resp.TripID,
		Date:     resp.Date.Format(domain.DateFormat),
		Currency: resp.Currency,
		Slots:    slots,
	}
}

// ToUseCaseRequest создает запрос use case из параметров запроса
func ToUseCaseRequest(tripID, dateStr string) (*getAvailableSlots.Request, error) {
	date, err := time.Parse(domain.DateFormat, dateStr)
	if err != nil {
		return nil, err
	}

	return &getAvailableSlots.Request{
		TripID: tripID,
		Date:   date,
	}, nil
}
