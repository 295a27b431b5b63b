package payment_webhook

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-ReservationCore/internal/api/handlers"
	processWebhook "github.com/m04kA/SMC-ReservationCore/internal/usecase/process_webhook"
)

const (
	msgInvalidBody       = "некорректное тело запроса"
	msgInvalidSignature  = "некорректная подпись"
	msgInvalidPayload    = "некорректное событие"
	msgTemporaryFailure  = "временная ошибка, повторите доставку"
	retryAfterTransientS = 10
)

type Handler struct {
	processor SignedProcessor
	logger    Logger
}

func NewHandler(processor SignedProcessor, logger Logger) *Handler {
	return &Handler{
		processor: processor,
		logger:    logger,
	}
}

// Handle POST /api/v1/webhooks/payments
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	payload, err := handlers.ReadBody(r)
	if err != nil {
		h.logger.Warn("POST /webhooks/payments - Failed to read body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBody)
		return
	}

	result, err := h.processor.HandleSigned(r.Context(), payload, r.Header.Get(HeaderSignature))
	if err != nil {
		RespondProcessError(w, h.logger, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, FromResult(result))
}

// RespondProcessError общая для подписанного и тестового входа трансляция ошибок
func RespondProcessError(w http.ResponseWriter, logger Logger, err error) {
	switch {
	case errors.Is(err, processWebhook.ErrSignatureInvalid):
		logger.Warn("POST /webhooks/payments - Rejected: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSignature)

	case errors.Is(err, processWebhook.ErrInvalidPayload):
		logger.Warn("POST /webhooks/payments - Invalid payload: %v", err)
		handlers.RespondBadRequest(w, msgInvalidPayload)

	case errors.Is(err, processWebhook.ErrTransient):
		logger.Error("POST /webhooks/payments - Transient failure: %v", err)
		handlers.RespondRetryLater(w, http.StatusServiceUnavailable, retryAfterTransientS, msgTemporaryFailure)

	default:
		logger.Error("POST /webhooks/payments - Failed to process event: %v", err)
		handlers.RespondInternalError(w)
	}
}
