package unsigned_webhook

import (
	"net/http"

	"github.com/m04kA/SMC-ReservationCore/internal/api/handlers"
	"github.com/m04kA/SMC-ReservationCore/internal/api/handlers/payment_webhook"
)

const msgInvalidBody = "некорректное тело запроса"

// Handler тестовый приём событий без подписи.
// Маршрут регистрируется только если неподписанный режим разрешён и секрет не задан.
type Handler struct {
	processor UnsignedProcessor
	logger    Logger
}

func NewHandler(processor UnsignedProcessor, logger Logger) *Handler {
	return &Handler{
		processor: processor,
		logger:    logger,
	}
}

// Handle POST /api/v1/webhooks/payments/test
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	payload, err := handlers.ReadBody(r)
	if err != nil {
		h.logger.Warn("POST /webhooks/payments/test - Failed to read body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBody)
		return
	}

	result, err := h.processor.HandleUnsigned(r.Context(), payload)
	if err != nil {
		payment_webhook.RespondProcessError(w, h.logger, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, payment_webhook.FromResult(result))
}
