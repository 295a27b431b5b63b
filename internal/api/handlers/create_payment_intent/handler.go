package create_payment_intent

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-ReservationCore/internal/api/handlers"
	createIntent "github.com/m04kA/SMC-ReservationCore/internal/usecase/create_payment_intent"
)

const (
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgInvalidInput         = "некорректные параметры платежа"
	msgBookingNotFound      = "бронирование не найдено"
	msgBookingNotPayable    = "бронирование отменено или истекло"
	msgInvalidAmount        = "Invalid amount"
	msgIdempotencyConflict  = "ключ идемпотентности уже использован с другими параметрами"
	msgRequestInProgress    = "запрос с этим ключом идемпотентности ещё выполняется"
	msgProviderRejected     = "платёжный провайдер отклонил запрос"
	msgProviderUnavailable  = "платёжный провайдер недоступен"
	retryAfterInProgressSec = 1
	retryAfterProviderSec   = 5
)

type Handler struct {
	useCase CreatePaymentIntentUseCase
	logger  Logger
}

func NewHandler(useCase CreatePaymentIntentUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/payment-intents
// Тело ответа отдаётся ровно теми байтами, что сохранены под ключом идемпотентности.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	key := r.Header.Get(headerIdempotencyKey)

	var req CreatePaymentIntentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /payment-intents - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(key))
	if err != nil {
		switch {
		case errors.Is(err, createIntent.ErrInvalidInput):
			h.logger.Warn("POST /payment-intents - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, createIntent.ErrPriceMismatch):
			h.logger.Warn("POST /payment-intents - Price mismatch: key=%s, amount=%d", key, req.AmountCents)
			handlers.RespondBadRequest(w, msgInvalidAmount)

		case errors.Is(err, createIntent.ErrIdempotencyConflict):
			h.logger.Warn("POST /payment-intents - Idempotency key reused with different body: key=%s", key)
			handlers.RespondBadRequest(w, msgIdempotencyConflict)

		case errors.Is(err, createIntent.ErrBookingNotFound):
			handlers.RespondNotFound(w, msgBookingNotFound)

		case errors.Is(err, createIntent.ErrBookingNotPayable):
			handlers.RespondConflict(w, msgBookingNotPayable)

		case errors.Is(err, createIntent.ErrRequestInProgress):
			h.logger.Warn("POST /payment-intents - Request in progress: key=%s", key)
			handlers.RespondRetryLater(w, http.StatusConflict, retryAfterInProgressSec, msgRequestInProgress)

		case errors.Is(err, createIntent.ErrProviderRejected):
			handlers.RespondError(w, http.StatusUnprocessableEntity, msgProviderRejected)

		case errors.Is(err, createIntent.ErrProviderUnavailable):
			h.logger.Error("POST /payment-intents - Provider unavailable: key=%s, error=%v", key, err)
			handlers.RespondRetryLater(w, http.StatusBadGateway, retryAfterProviderSec, msgProviderUnavailable)

		default:
			h.logger.Error("POST /payment-intents - Failed to create payment intent: key=%s, error=%v", key, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	if result.Replayed {
		w.Header().Set(headerReplayed, "true")
	}

	h.logger.Info("POST /payment-intents - Payment intent ready: key=%s, intent=%s, replayed=%t",
		key, result.PaymentIntentID, result.Replayed)
	handlers.RespondRawJSON(w, http.StatusOK, result.Body)
}
