package provision_capacity_slot

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-ReservationCore/internal/api/handlers"
	"github.com/m04kA/SMC-ReservationCore/internal/service/capacity"
	"github.com/m04kA/SMC-ReservationCore/internal/service/capacity/models"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidParams      = "некорректные параметры слота"
	msgTripNotFound       = "рейс не найден"
	msgBelowTaken         = "вместимость меньше уже занятых мест"
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

// Handle PUT /api/v1/admin/slots/{tripId}/{date}/{mode}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	tripID, date, mode := vars["tripId"], vars["date"], vars["mode"]

	var req models.ProvisionRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /admin/slots - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	slot, err := h.service.Provision(r.Context(), tripID, date, mode, req.Capacity)
	if err != nil {
		switch {
		case errors.Is(err, capacity.ErrInvalidInput):
			h.logger.Warn("PUT /admin/slots - Invalid parameters: %v", err)
			handlers.RespondBadRequest(w, msgInvalidParams)

		case errors.Is(err, capacity.ErrTripNotFound):
			handlers.RespondNotFound(w, msgTripNotFound)

		case errors.Is(err, capacity.ErrCapacityBelowTaken):
			handlers.RespondConflict(w, msgBelowTaken)

		default:
			h.logger.Error("PUT /admin/slots - Failed to provision slot %s/%s/%s: %v", tripID, date, mode, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /admin/slots - Slot %s/%s/%s provisioned: capacity=%d", tripID, date, mode, slot.Capacity)
	handlers.RespondJSON(w, http.StatusOK, slot)
}
