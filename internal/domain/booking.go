package domain

import "time"

// BookingStatus статус бронирования
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
	StatusExpired   BookingStatus = "expired"
)

// ConfirmPath путь, которым бронирование пришло в confirmed
type ConfirmPath string

const (
	ConfirmPathExplicit ConfirmPath = "explicit"
	ConfirmPathWebhook  ConfirmPath = "webhook"
)

// Booking бронирование мест на рейсе
type Booking struct {
	ID         string
	TripID     string
	Mode       string
	TravelDate time.Time
	Seats      int

	// Цена рассчитана сервером при создании и больше не меняется
	PriceCents int64
	Currency   string

	Status          BookingStatus
	PaymentIntentID *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// SlotKey ключ слота вместимости, на который претендует бронирование
func (b *Booking) SlotKey() SlotKey {
	return SlotKey{TripID: b.TripID, Date: b.TravelDate, Mode: b.Mode}
}

// IsPending бронирование ещё не подтверждено и не занимает вместимость
func (b *Booking) IsPending() bool {
	return b.Status == StatusPending
}

// IsConfirmed бронирование подтверждено и держит вместимость
func (b *Booking) IsConfirmed() bool {
	return b.Status == StatusConfirmed
}

// CanBeCancelled отменить можно только pending.
// Отмена confirmed: отдельный административный процесс.
func (b *Booking) CanBeCancelled() bool {
	return b.Status == StatusPending
}

// ValidBookingStatus проверяет, что строка является известным статусом
func ValidBookingStatus(s string) bool {
	switch BookingStatus(s) {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusExpired:
		return true
	}
	return false
}

// TripBookingsFilter фильтр списка бронирований рейса
type TripBookingsFilter struct {
	TripID string         // Обязательный параметр
	Date   *time.Time     // Дата поездки (опционально)
	Mode   *string        // Режим (опционально)
	Status *BookingStatus // Статус (опционально, по умолчанию все)
	Limit  int
}
