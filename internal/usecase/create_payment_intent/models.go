package create_payment_intent

import "github.com/m04kA/SMC-ReservationCore/internal/domain"

// Request модель запроса на создание платёжного намерения
type Request struct {
	IdempotencyKey string
	AmountCents    int64
	Currency       string
	TripContext    *domain.TripContext // опционально
	BookingID      *string             // опционально
}

// Response модель ответа. Body: ровно те байты, которые отдаются клиенту;
// повтор с тем же ключом возвращает их же без повторной сериализации.
type Response struct {
	ClientSecret    string
	PaymentIntentID string
	Body            []byte
	Replayed        bool
}

// responseBody тело ответа клиенту
type responseBody struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
}

// fingerprintInput определяющие параметры запроса в фиксированном порядке полей
type fingerprintInput struct {
	AmountCents int64               `json:"amount_cents"`
	Currency    string              `json:"currency"`
	BookingID   *string             `json:"booking_id"`
	TripContext *domain.TripContext `json:"trip_context"`
}
