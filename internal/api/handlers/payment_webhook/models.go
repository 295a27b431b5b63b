package payment_webhook

import processWebhook "github.com/m04kA/SMC-ReservationCore/internal/usecase/process_webhook"

// HeaderSignature заголовок подписи провайдера: t=<unix>,v1=<hex>
const HeaderSignature = "Payment-Signature"

// WebhookResponse HTTP response model
type WebhookResponse struct {
	Received  bool   `json:"received"`
	EventID   string `json:"eventId"`
	Duplicate bool   `json:"duplicate"`
	Applied   string `json:"applied,omitempty"`
}

// FromResult конвертирует результат обработки в HTTP response
func FromResult(res *processWebhook.Result) WebhookResponse {
	return WebhookResponse{
		Received:  true,
		EventID:   res.EventID,
		Duplicate: res.Duplicate,
		Applied:   string(res.AppliedStatus),
	}
}
