package capacity

import (
	"context"

	"github.com/m04kA/SMC-ReservationCore/internal/domain"
)

// CapacityRepository интерфейс репозитория слотов вместимости
type CapacityRepository interface {
	Get(ctx context.Context, key domain.SlotKey) (*domain.CapacitySlot, error)
	Provision(ctx context.Context, key domain.SlotKey, capacity int) (*domain.CapacitySlot, error)
}

// ModeResolver режим, под которым бронирования рейса занимают вместимость
type ModeResolver interface {
	CanonicalMode(tripID, mode string) (string, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
