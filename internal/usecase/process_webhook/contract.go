package process_webhook

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ReservationCore/internal/domain"
	"github.com/m04kA/SMC-ReservationCore/internal/usecase/confirm_booking"
)

// EventRepository интерфейс журнала событий вебхука
type EventRepository interface {
	Record(ctx context.Context, event *domain.WebhookEvent) (bool, error)
	SetAppliedStatus(ctx context.Context, eventID string, status domain.AppliedStatus) error
}

// PaymentRepository интерфейс репозитория платежей
type PaymentRepository interface {
	CreatePaymentIfAbsent(ctx context.Context, p *domain.Payment) (bool, error)
	UpsertPaymentStatus(ctx context.Context, p *domain.Payment) error
	GetPayment(ctx context.Context, paymentIntentID string) (*domain.Payment, error)
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	AttachPaymentIntent(ctx context.Context, id, paymentIntentID string) error
}

// Confirmer подтверждение бронирования внутри транзакции процессора
type Confirmer interface {
	ConfirmInTx(ctx context.Context, bookingID string, path domain.ConfirmPath) (*confirm_booking.Result, error)
	NotifyConfirmed(ctx context.Context, booking *domain.Booking, path domain.ConfirmPath)
}

// Metrics интерфейс доменных метрик
type Metrics interface {
	IncWebhookEvent(eventType, result string)
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
