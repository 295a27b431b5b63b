package get_available_slots

import (
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-ReservationCore/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if strings.TrimSpace(req.TripID) == "" {
		return fmt.Errorf("%w: trip_id is required", ErrInvalidInput)
	}
	if len(req.TripID) > domain.MaxTripIDLength {
		return fmt.Errorf("%w: trip_id is too long", ErrInvalidInput)
	}

	// Проверяем, что дата не является нулевой
	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	return nil
}

// validateDate прошедшие даты не показываем
func validateDate(requestDate, now time.Time) error {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	day := time.Date(requestDate.Year(), requestDate.Month(), requestDate.Day(), 0, 0, 0, 0, time.UTC)

	if day.Before(today) {
		return fmt.Errorf("%w: %s", ErrInvalidDate, requestDate.Format(domain.DateFormat))
	}
	return nil
}
