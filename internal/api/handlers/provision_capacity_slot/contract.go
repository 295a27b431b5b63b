package provision_capacity_slot

import (
	"context"

	"github.com/m04kA/SMC-ReservationCore/internal/service/capacity/models"
)

type CapacityService interface {
	Provision(ctx context.Context, tripID, date, mode string, capacity int) (*models.SlotResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
