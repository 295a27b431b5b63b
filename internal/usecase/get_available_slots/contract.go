package get_available_slots

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ReservationCore/internal/domain"
)

// CatalogSource текущий снимок каталога
type CatalogSource interface {
	Snapshot() *domain.Catalog
}

// CapacityRepository интерфейс репозитория слотов вместимости
type CapacityRepository interface {
	Get(ctx context.Context, key domain.SlotKey) (*domain.CapacitySlot, error)
}

// CapacityDefaults вместимость слота, который ещё не создан
type CapacityDefaults interface {
	DefaultCapacity(ctx context.Context, tripID, mode string) (int, error)
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

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
