package create_booking

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

	if strings.TrimSpace(req.Mode) == "" {
		return fmt.Errorf("%w: mode is required", ErrInvalidInput)
	}
	if len(req.Mode) > domain.MaxModeLength {
		return fmt.Errorf("%w: mode is too long", ErrInvalidInput)
	}

	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	if req.Seats < domain.MinSeats || req.Seats > domain.MaxSeatsPerBooking {
		return fmt.Errorf("%w: seats must be between %d and %d", ErrInvalidInput, domain.MinSeats, domain.MaxSeatsPerBooking)
	}

	if req.PriceCents != nil && *req.PriceCents < 0 {
		return fmt.Errorf("%w: price_cents must be non-negative", ErrInvalidInput)
	}

	if !isCurrencyCode(req.Currency) {
		return fmt.Errorf("%w: currency must be a 3-letter code", ErrInvalidInput)
	}

	return nil
}

// validateDate дата поездки не может быть раньше сегодняшней
func validateDate(travelDate, now time.Time) error {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	day := time.Date(travelDate.Year(), travelDate.Month(), travelDate.Day(), 0, 0, 0, 0, time.UTC)

	if day.Before(today) {
		return fmt.Errorf("%w: %s is in the past", ErrInvalidDate, travelDate.Format(domain.DateFormat))
	}
	return nil
}

func isCurrencyCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}
