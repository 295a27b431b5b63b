package paymentprovider

import "github.com/m04kA/SMC-ReservationCore/internal/domain"

// CreateIntentRequest параметры создания платёжного намерения
type CreateIntentRequest struct {
	IdempotencyKey string
	AmountCents    int64
	Currency       string
	BookingID      *string
	TripContext    *domain.TripContext
}

// Intent платёжное намерение на стороне провайдера
type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

// ErrorResponse модель ошибки провайдера
type ErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
