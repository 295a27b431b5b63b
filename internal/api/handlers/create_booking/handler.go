package create_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-ReservationCore/internal/api/handlers"
	createBooking "github.com/m04kA/SMC-ReservationCore/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDate        = "некорректный формат даты поездки, ожидается YYYY-MM-DD"
	msgTripNotFound       = "рейс не найден"
	msgPastDate           = "дата поездки в прошлом"
	msgCurrencyMismatch   = "валюта не совпадает с валютой рейса"
	msgInvalidAmount      = "Invalid amount"
	msgInvalidInput       = "некорректные параметры бронирования"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest()
	if err != nil {
		h.logger.Warn("POST /bookings - Failed to parse date: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createBooking.ErrPriceMismatch):
			h.logger.Warn("POST /bookings - Price mismatch: trip_id=%s, mode=%s", req.TripID, req.Mode)
			handlers.RespondBadRequest(w, msgInvalidAmount)

		case errors.Is(err, createBooking.ErrTripNotFound):
			h.logger.Warn("POST /bookings - Trip not found: trip_id=%s", req.TripID)
			handlers.RespondBadRequest(w, msgTripNotFound)

		case errors.Is(err, createBooking.ErrInvalidDate):
			h.logger.Warn("POST /bookings - Date in the past: trip_id=%s, date=%s", req.TripID, req.Date)
			handlers.RespondBadRequest(w, msgPastDate)

		case errors.Is(err, createBooking.ErrCurrencyMismatch):
			h.logger.Warn("POST /bookings - Currency mismatch: trip_id=%s, currency=%s", req.TripID, req.Currency)
			handlers.RespondBadRequest(w, msgCurrencyMismatch)

		case errors.Is(err, createBooking.ErrInvalidInput):
			h.logger.Warn("POST /bookings - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /bookings - Failed to create booking: trip_id=%s, error=%v", req.TripID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings - Booking created successfully: booking_id=%s, trip_id=%s", result.BookingID, result.TripID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
