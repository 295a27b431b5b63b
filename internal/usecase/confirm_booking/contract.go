package confirm_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ReservationCore/internal/domain"
	"github.com/m04kA/SMC-ReservationCore/internal/integrations/dispatch"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByIDForUpdate(ctx context.Context, id string) (*domain.Booking, error)
	MarkConfirmed(ctx context.Context, id string) error
}

// CapacityRepository интерфейс репозитория слотов вместимости
type CapacityRepository interface {
	EnsureSlot(ctx context.Context, key domain.SlotKey, defaultCapacity int) (bool, error)
	Claim(ctx context.Context, key domain.SlotKey, seats int) (*domain.CapacitySlot, error)
}

// CapacityDefaults источник вместимости для лениво создаваемых слотов
type CapacityDefaults interface {
	DefaultCapacity(ctx context.Context, tripID, mode string) (int, error)
}

// Publisher интерфейс уведомления диспетчеризации
type Publisher interface {
	PublishBookingConfirmed(ctx context.Context, event dispatch.BookingConfirmed) error
}

// Metrics интерфейс доменных метрик
type Metrics interface {
	IncBookingConfirmed(path string)
	IncCapacityClaim(result string)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

type realTimeProvider struct{}

func (realTimeProvider) Now() time.Time { return time.Now() }
