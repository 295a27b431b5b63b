package process_webhook

import "github.com/m04kA/SMC-ReservationCore/internal/domain"

// Result модель результата обработки события
type Result struct {
	EventID       string
	Type          string
	Duplicate     bool
	AppliedStatus domain.AppliedStatus // пусто для дубликата
}

// event событие провайдера в формате payment_intent.*
type event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object intentObject `json:"object"`
	} `json:"data"`
}

type intentObject struct {
	ID       string            `json:"id"`
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Status   string            `json:"status"`
	Metadata map[string]string `json:"metadata"`
}

// bookingID ссылка на бронирование из metadata, nil если её нет
func (o intentObject) bookingID() *string {
	id, ok := o.Metadata["booking_id"]
	if !ok || id == "" {
		return nil
	}
	return &id
}
