package create_booking

import "time"

// Request модель запроса на создание бронирования
type Request struct {
	TripID     string
	Mode       string
	Date       time.Time // Дата поездки (без времени)
	Seats      int
	PriceCents *int64 // Цена, которую видел клиент (опционально, только для сверки)
	Currency   string
}

// Response модель ответа с созданным бронированием
type Response struct {
	BookingID  string
	TripID     string
	Mode       string // Режим, по которому посчитана цена и занимается вместимость
	Date       time.Time
	Seats      int
	PriceCents int64
	Currency   string
	Status     string
	CreatedAt  time.Time
}
