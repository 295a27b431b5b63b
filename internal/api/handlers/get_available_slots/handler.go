package get_available_slots

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-ReservationCore/internal/api/handlers"
	getAvailableSlots "github.com/m04kA/SMC-ReservationCore/internal/usecase/get_available_slots"
)

const (
	msgMissingDate  = "дата обязательна"
	msgInvalidDate  = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgPastDate     = "дата поездки в прошлом"
	msgInvalidInput = "некорректные параметры запроса"
	msgTripNotFound = "рейс не найден"
)

type Handler struct {
	useCase GetAvailableSlotsUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailableSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/trips/{tripId}/available-slots
// Query params: date (required, YYYY-MM-DD)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	tripID := mux.Vars(r)["tripId"]

	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		h.logger.Warn("GET /trips/{id}/available-slots - Missing date")
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}

	useCaseReq, err := ToUseCaseRequest(tripID, dateStr)
	if err != nil {
		h.logger.Warn("GET /trips/{id}/available-slots - Invalid date format: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, getAvailableSlots.ErrInvalidInput):
			h.logger.Warn("GET /trips/{id}/available-slots - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, getAvailableSlots.ErrInvalidDate):
			h.logger.Warn("GET /trips/{id}/available-slots - Date in the past: trip_id=%s, date=%s", tripID, dateStr)
			handlers.RespondBadRequest(w, msgPastDate)

		case errors.Is(err, getAvailableSlots.ErrTripNotFound):
			h.logger.Warn("GET /trips/{id}/available-slots - Trip not found: trip_id=%s", tripID)
			handlers.RespondNotFound(w, msgTripNotFound)

		default:
			h.logger.Error("GET /trips/{id}/available-slots - Failed to get slots: trip_id=%s, error=%v", tripID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /trips/{id}/available-slots - Slots retrieved successfully: trip_id=%s, date=%s, modes=%d",
		tripID, dateStr, len(result.Slots))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
