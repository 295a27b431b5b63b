package list_trip_bookings

import (
	"context"

	"github.com/m04kA/SMC-ReservationCore/internal/service/bookings/models"
)

type BookingService interface {
	ListTripBookings(ctx context.Context, req *models.ListTripBookingsRequest) (*models.BookingListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
