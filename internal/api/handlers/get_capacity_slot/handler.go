package get_capacity_slot

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-ReservationCore/internal/api/handlers"
	"github.com/m04kA/SMC-ReservationCore/internal/service/capacity"
)

const (
	msgInvalidParams = "некорректные параметры слота"
	msgNotFound      = "слот ещё не создан"
)

type Handler struct {
	service CapacityService
	logger  Logger
}

func NewHandler(service CapacityService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/admin/slots/{tripId}/{date}/{mode}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	tripID, date, mode := vars["tripId"], vars["date"], vars["mode"]

	slot, err := h.service.GetSlot(r.Context(), tripID, date, mode)
	if err != nil {
		switch {
		case errors.Is(err, capacity.ErrInvalidInput):
			h.logger.Warn("GET /admin/slots - Invalid parameters: %v", err)
			handlers.RespondBadRequest(w, msgInvalidParams)

		case errors.Is(err, capacity.ErrSlotNotFound):
			handlers.RespondNotFound(w, msgNotFound)

		default:
			h.logger.Error("GET /admin/slots - Failed to get slot %s/%s/%s: %v", tripID, date, mode, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, slot)
}
