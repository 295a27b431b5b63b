package dispatch

import "time"

// BookingConfirmed событие для партнёрской диспетчеризации: бронирование подтверждено
type BookingConfirmed struct {
	BookingID   string    `json:"bookingId"`
	TripID      string    `json:"tripId"`
	Mode        string    `json:"mode"`
	Date        string    `json:"date"`
	Seats       int       `json:"seats"`
	Path        string    `json:"path"`
	ConfirmedAt time.Time `json:"confirmedAt"`
}
