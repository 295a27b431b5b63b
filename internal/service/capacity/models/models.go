package models

import (
	"time"

	"github.com/m04kA/SMC-ReservationCore/internal/domain"
)

// ProvisionRequest запрос на установку вместимости слота
type ProvisionRequest struct {
	Capacity int `json:"capacity"`
}

// SlotResponse ответ с данными слота вместимости
type SlotResponse struct {
	TripID    string `json:"tripId"`
	Date      string `json:"date"`
	Mode      string `json:"mode"`
	Capacity  int    `json:"capacity"`
	Taken     int    `json:"taken"`
	Available int    `json:"available"`
	UpdatedAt string `json:"updatedAt"`
}

// FromDomainSlot конвертирует domain.CapacitySlot в SlotResponse
func FromDomainSlot(s *domain.CapacitySlot) *SlotResponse {
	return &SlotResponse{
		TripID:    s.Key.TripID,
		Date:      s.Key.DateString(),
		Mode:      s.Key.Mode,
		Capacity:  s.Capacity,
		Taken:     s.Taken,
		Available: s.Available(),
		UpdatedAt: s.UpdatedAt.Format(time.RFC3339),
	}
}
