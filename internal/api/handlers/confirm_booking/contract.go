package confirm_booking

import (
	"context"

	"github.com/m04kA/SMC-ReservationCore/internal/domain"
	confirmBooking "github.com/m04kA/SMC-ReservationCore/internal/usecase/confirm_booking"
)

type ConfirmBookingUseCase interface {
	Execute(ctx context.Context, bookingID string, path domain.ConfirmPath) (*confirmBooking.Result, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
