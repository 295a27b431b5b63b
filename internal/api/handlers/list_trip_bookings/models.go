package list_trip_bookings

import (
	"fmt"
	"strconv"
	"time"

	"github.com/m04kA/SMC-ReservationCore/internal/domain"
	"github.com/m04kA/SMC-ReservationCore/internal/service/bookings/models"
)

// ToServiceRequest формирует запрос к сервису из query параметров
func ToServiceRequest(tripID, dateStr, modeStr, statusStr, limitStr string) (*models.ListTripBookingsRequest, error) {
	req := &models.ListTripBookingsRequest{TripID: tripID}

	if dateStr != "" {
		date, err := time.Parse(domain.DateFormat, dateStr)
		if err != nil {
			return nil, fmt.Errorf("invalid date: %w", err)
		}
		req.Date = &date
	}

	if modeStr != "" {
		req.Mode = &modeStr
	}

	if statusStr != "" {
		req.Status = &statusStr
	}

	if limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return nil, fmt.Errorf("invalid limit: %w", err)
		}
		req.Limit = limit
	}

	return req, nil
}
