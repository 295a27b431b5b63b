package list_trip_bookings

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-ReservationCore/internal/api/handlers"
	"github.com/m04kA/SMC-ReservationCore/internal/service/bookings"
)

const (
	msgInvalidParams = "некорректные параметры запроса"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/admin/trips/{tripId}/bookings
// Query params: date, mode, status, limit (опционально)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	tripID := mux.Vars(r)["tripId"]
	query := r.URL.Query()

	serviceReq, err := ToServiceRequest(tripID, query.Get("date"), query.Get("mode"), query.Get("status"), query.Get("limit"))
	if err != nil {
		h.logger.Warn("GET /admin/trips/{id}/bookings - Invalid parameters: %v", err)
		handlers.RespondBadRequest(w, msgInvalidParams)
		return
	}

	result, err := h.service.ListTripBookings(r.Context(), serviceReq)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrInvalidInput):
			h.logger.Warn("GET /admin/trips/{id}/bookings - Invalid input: trip_id=%s, error=%v", tripID, err)
			handlers.RespondBadRequest(w, msgInvalidParams)

		default:
			h.logger.Error("GET /admin/trips/{id}/bookings - Failed to list bookings: trip_id=%s, error=%v", tripID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /admin/trips/{id}/bookings - Bookings retrieved successfully: trip_id=%s, count=%d", tripID, result.Count)
	handlers.RespondJSON(w, http.StatusOK, result)
}
