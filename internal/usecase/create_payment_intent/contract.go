package create_payment_intent

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ReservationCore/internal/domain"
	"github.com/m04kA/SMC-ReservationCore/internal/integrations/paymentprovider"
	"github.com/m04kA/SMC-ReservationCore/internal/service/pricing"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	AttachPaymentIntent(ctx context.Context, id, paymentIntentID string) error
}

// PaymentRepository интерфейс репозитория ключей идемпотентности и платежей
type PaymentRepository interface {
	ReserveKey(ctx context.Context, key, fingerprint string) (bool, error)
	GetKey(ctx context.Context, key string) (*domain.IdempotencyRecord, error)
	TakeOverStaleKey(ctx context.Context, key string, staleBefore time.Time) (bool, error)
	CompleteKey(ctx context.Context, key, paymentIntentID string, responseBody []byte) error
	ReleaseKey(ctx context.Context, key string) error
	CreatePaymentIfAbsent(ctx context.Context, p *domain.Payment) (bool, error)
}

// PricingService интерфейс авторитетного расчёта цены
type PricingService interface {
	ComputePrice(ctx context.Context, tripID, mode string, seats int) (*pricing.Quote, error)
	CheckClientAmount(quote *pricing.Quote, clientCents *int64) error
}

// Provider интерфейс платёжного провайдера
type Provider interface {
	CreatePaymentIntent(ctx context.Context, req paymentprovider.CreateIntentRequest) (*paymentprovider.Intent, error)
}

// Metrics интерфейс доменных метрик
type Metrics interface {
	IncPaymentIntent(result string)
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
