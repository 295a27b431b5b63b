package create_booking

import (
	"time"

	"github.com/m04kA/SMC-ReservationCore/internal/domain"
	createBooking "github.com/m04kA/SMC-ReservationCore/internal/usecase/create_booking"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	TripID     string `json:"trip_id"`
	Mode       string `json:"mode"`
	Date       string `json:"date"` // "2026-11-02"
	Seats      int    `json:"seats"`
	PriceCents *int64 `json:"price_cents,omitempty"`
	Currency   string `json:"currency"`
}

// BookingResponse HTTP response model
type BookingResponse struct {
	BookingID  string `json:"bookingId"`
	TripID     string `json:"tripId"`
	Mode       string `json:"mode"`
	Date       string `json:"date"`
	Seats      int    `json:"seats"`
	PriceCents int64  `json:"priceCents"`
	Currency   string `json:"currency"`
	Status     string `json:"status"`
	CreatedAt  string `json:"createdAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest() (*createBooking.Request, error) {
	date, err := time.Parse(domain.DateFormat, r.Date)
	if err != nil {
		return nil, err
	}

	return &createBooking.Request{
		TripID:     r.TripID,
		Mode:       r.Mode,
		Date:       date,
		Seats:      r.Seats,
		PriceCents: r.PriceCents,
		Currency:   r.Currency,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *BookingResponse {
	return &BookingResponse{
		BookingID:  resp.BookingID,
		TripID:     resp.TripID,
		Mode:       resp.Mode,
		Date:       resp.Date.Format(domain.DateFormat),
		Seats:      resp.Seats,
		PriceCents: resp.PriceCents,
		Currency:   resp.Currency,
		Status:     resp.Status,
		CreatedAt:  resp.CreatedAt.Format(time.RFC3339),
	}
}
