package domain

import "time"

// Типы событий платёжного провайдера
const (
	EventPaymentIntentCreated   = "payment_intent.created"
	EventPaymentIntentSucceeded = "payment_intent.succeeded"
	EventPaymentIntentFailed    = "payment_intent.payment_failed"
)

// AppliedStatus результат применения события
type AppliedStatus string

const (
	// AppliedReceived событие записано, эффекты ещё применяются в той же транзакции
	AppliedReceived  AppliedStatus = "received"
	AppliedCreated   AppliedStatus = "created"
	AppliedSucceeded AppliedStatus = "succeeded"
	AppliedFailed    AppliedStatus = "failed"
	// AppliedSucceededUnfulfilled оплата прошла, но бронирование не удалось подтвердить
	// (нет мест, бронирование истекло или отменено): нужен ручной возврат
	AppliedSucceededUnfulfilled AppliedStatus = "succeeded_unfulfilled"
	AppliedIgnored              AppliedStatus = "ignored"
)

// WebhookEvent запись об обработанном событии, используется для дедупликации
type WebhookEvent struct {
	EventID         string
	Type            string
	AmountCents     int64
	Currency        string
	PaymentIntentID string
	AppliedStatus   AppliedStatus
	FirstSeenAt     time.Time
}
