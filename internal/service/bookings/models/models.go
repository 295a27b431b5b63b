package models

import (
	"time"

	"github.com/m04kA/SMC-ReservationCore/internal/domain"
)

// Request модели

// ListTripBookingsRequest запрос списка бронирований рейса
type ListTripBookingsRequest struct {
	TripID string
	Date   *time.Time
	Mode   *string
	Status *string
	Limit  int // 0 = значение по умолчанию
}

// Response модели

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID              string  `json:"id"`
	TripID          string  `json:"tripId"`
	Mode            string  `json:"mode"`
	Date            string  `json:"date"` // "2026-11-02"
	Seats           int     `json:"seats"`
	PriceCents      int64   `json:"priceCents"`
	Currency        string  `json:"currency"`
	Status          string  `json:"status"`
	PaymentIntentID *string `json:"paymentIntentId,omitempty"`
	PaymentStatus   *string `json:"paymentStatus,omitempty"` // статус последнего платежа по бронированию
	CreatedAt       string  `json:"createdAt"`
	UpdatedAt       string  `json:"updatedAt"`
}

// BookingListResponse список бронирований рейса
type BookingListResponse struct {
	TripID   string             `json:"tripId"`
	Count    int                `json:"count"`
	Bookings []*BookingResponse `json:"bookings"`
}

// Конвертеры из domain в response

// FromDomainBooking конвертирует domain.Booking в BookingResponse.
// payment может быть nil, если платежей по бронированию ещё не было.
func FromDomainBooking(b *domain.Booking, payment *domain.Payment) *BookingResponse {
	resp := &BookingResponse{
		ID:              b.ID,
		TripID:          b.TripID,
		Mode:            b.Mode,
		Date:            b.TravelDate.Format(domain.DateFormat),
		Seats:           b.Seats,
		PriceCents:      b.PriceCents,
		Currency:        b.Currency,
		Status:          string(b.Status),
		PaymentIntentID: b.PaymentIntentID,
		CreatedAt:       b.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       b.UpdatedAt.Format(time.RFC3339),
	}

	if payment != nil {
		status := string(payment.Status)
		resp.PaymentStatus = &status
	}

	return resp
}
