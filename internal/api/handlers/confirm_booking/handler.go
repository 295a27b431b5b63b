package confirm_booking

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-ReservationCore/internal/api/handlers"
	"github.com/m04kA/SMC-ReservationCore/internal/domain"
	confirmBooking "github.com/m04kA/SMC-ReservationCore/internal/usecase/confirm_booking"
)

const (
	msgInvalidBookingID  = "некорректный ID бронирования"
	msgNotFound          = "бронирование не найдено"
	msgNotPending        = "бронирование отменено или истекло"
	msgCapacityExhausted = "на выбранный рейс не осталось мест"
)

type Handler struct {
	useCase ConfirmBookingUseCase
	logger  Logger
}

func NewHandler(useCase ConfirmBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings/{bookingId}/confirm
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID := mux.Vars(r)["bookingId"]

	result, err := h.useCase.Execute(r.Context(), bookingID, domain.ConfirmPathExplicit)
	if err != nil {
		switch {
		case errors.Is(err, confirmBooking.ErrInvalidInput):
			h.logger.Warn("POST /bookings/{id}/confirm - Invalid booking ID: %q", bookingID)
			handlers.RespondBadRequest(w, msgInvalidBookingID)

		case errors.Is(err, confirmBooking.ErrBookingNotFound):
			h.logger.Warn("POST /bookings/{id}/confirm - Booking not found: booking_id=%s", bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, confirmBooking.ErrCapacityExceeded):
			h.logger.Warn("POST /bookings/{id}/confirm - Capacity exhausted: booking_id=%s", bookingID)
			handlers.RespondConflict(w, msgCapacityExhausted)

		case errors.Is(err, confirmBooking.ErrNotPending):
			h.logger.Warn("POST /bookings/{id}/confirm - Not pending: booking_id=%s", bookingID)
			handlers.RespondConflict(w, msgNotPending)

		default:
			h.logger.Error("POST /bookings/{id}/confirm - Failed to confirm booking: booking_id=%s, error=%v", bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings/{id}/confirm - Booking confirmed: booking_id=%s, outcome=%s", bookingID, result.Outcome)
	handlers.RespondJSON(w, http.StatusOK, ConfirmResponse{
		BookingID:        bookingID,
		Status:           string(domain.StatusConfirmed),
		AlreadyConfirmed: result.Outcome == confirmBooking.OutcomeAlreadyConfirmed,
	})
}
