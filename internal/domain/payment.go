package domain

import "time"

// PaymentStatus статус платежа по данным провайдера
type PaymentStatus string

const (
	PaymentRequiresPaymentMethod PaymentStatus = "requires_payment_method"
	PaymentSucceeded             PaymentStatus = "succeeded"
	PaymentFailed                PaymentStatus = "failed"
)

// Payment состояние платёжного намерения (одна строка на payment_intent_id)
type Payment struct {
	PaymentIntentID string
	BookingID       *string
	AmountCents     int64
	Currency        string
	Status          PaymentStatus
	LastEventID     *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IdempotencyStatus состояние записи ключа идемпотентности
type IdempotencyStatus string

const (
	IdempotencyInProgress IdempotencyStatus = "in_progress"
	IdempotencyCompleted  IdempotencyStatus = "completed"
)

// IdempotencyRecord запись ключа идемпотентности платёжного намерения.
// Fingerprint: хэш параметров запроса; ResponseBody отдаётся повторно байт в байт.
type IdempotencyRecord struct {
	Key             string
	Fingerprint     string
	Status          IdempotencyStatus
	PaymentIntentID *string
	ResponseBody    []byte
	LockedAt        time.Time
	CreatedAt       time.Time
	CompletedAt     *time.Time
}

// IsCompleted ответ сохранён и может быть отдан повторно
func (r *IdempotencyRecord) IsCompleted() bool {
	return r.Status == IdempotencyCompleted
}

// TripContext контекст рейса, для которого создаётся платёж
type TripContext struct {
	TripID string `json:"trip_id"`
	Mode   string `json:"mode"`
	Seats  int    `json:"seats"`
}
