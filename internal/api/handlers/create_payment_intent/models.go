package create_payment_intent

import (
	"github.com/m04kA/SMC-ReservationCore/internal/domain"
	createIntent "github.com/m04kA/SMC-ReservationCore/internal/usecase/create_payment_intent"
)

const (
	headerIdempotencyKey = "Idempotency-Key"
	headerReplayed       = "Idempotent-Replayed"
)

// TripContextRequest контекст рейса
type TripContextRequest struct {
	TripID string `json:"trip_id"`
	Mode   string `json:"mode"`
	Seats  int    `json:"seats"`
}

// CreatePaymentIntentRequest HTTP request model
type CreatePaymentIntentRequest struct {
	AmountCents int64               `json:"amount_cents"`
	Currency    string              `json:"currency"`
	TripContext *TripContextRequest `json:"trip_context,omitempty"`
	BookingID   *string             `json:"booking_id,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreatePaymentIntentRequest) ToUseCaseRequest(idempotencyKey string) *createIntent.Request {
	req := &createIntent.Request{
		IdempotencyKey: idempotencyKey,
		AmountCents:    r.AmountCents,
		Currency:       r.Currency,
		BookingID:      r.BookingID,
	}
	if r.TripContext != nil {
		req.TripContext = &domain.TripContext{
			TripID: r.TripContext.TripID,
			Mode:   r.TripContext.Mode,
			Seats:  r.TripContext.Seats,
		}
	}
	return req
}
