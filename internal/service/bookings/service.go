package bookings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/m04kA/SMC-ReservationCore/internal/domain"
	bookingRepo "github.com/m04kA/SMC-ReservationCore/internal/infra/storage/booking"
	paymentRepo "github.com/m04kA/SMC-ReservationCore/internal/infra/storage/payment"
	"github.com/m04kA/SMC-ReservationCore/internal/service/bookings/models"
)

// Service сервис для работы с бронированиями
type Service struct {
	bookingRepo BookingRepository
	paymentRepo PaymentRepository
	logger      Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	paymentRepo PaymentRepository,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo: bookingRepo,
		paymentRepo: paymentRepo,
		logger:      logger,
	}
}

// GetByID получает бронирование по ID вместе со статусом последнего платежа
func (s *Service) GetByID(ctx context.Context, id string) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%s", id)

	booking, err := s.getBooking(ctx, "GetByID", id)
	if err != nil {
		return nil, err
	}

	payment, err := s.paymentRepo.GetLatestByBookingID(ctx, id)
	if err != nil {
		if !errors.Is(err, paymentRepo.ErrPaymentNotFound) {
			// Бронирование отдаём и без статуса платежа
			s.logger.Error("GetByID: failed to get payment for booking id=%s: %v", id, err)
		}
		payment = nil
	}

	return models.FromDomainBooking(booking, payment), nil
}

// Cancel отменяет бронирование.
// Отменить можно только pending: оно не держит вместимость, освобождать нечего.
// Повторная отмена уже отменённого бронирования возвращает его как есть.
func (s *Service) Cancel(ctx context.Context, id string) (*models.BookingResponse, error) {
	s.logger.Info("Cancel: cancelling booking id=%s", id)

	booking, err := s.getBooking(ctx, "Cancel", id)
	if err != nil {
		return nil, err
	}

	if booking.Status == domain.StatusCancelled {
		s.logger.Info("Cancel: booking id=%s already cancelled", id)
		return models.FromDomainBooking(booking, nil), nil
	}

	if !booking.CanBeCancelled() {
		s.logger.Warn("Cancel: booking id=%s cannot be cancelled, status=%s", id, booking.Status)
		return nil, fmt.Errorf("%w: status is %s", ErrCannotCancel, booking.Status)
	}

	if err := s.bookingRepo.UpdateStatus(ctx, id, domain.StatusPending, domain.StatusCancelled); err != nil {
		if errors.Is(err, bookingRepo.ErrStatusConflict) {
			// Между чтением и обновлением бронирование подтвердили или оно истекло
			s.logger.Warn("Cancel: booking id=%s changed status concurrently", id)
			return nil, ErrCannotCancel
		}
		s.logger.Error("Cancel: repository error for booking id=%s: %v", id, err)
		return nil, fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
	}

	booking.Status = domain.StatusCancelled
	s.logger.Info("Cancel: successfully cancelled booking id=%s", id)
	return models.FromDomainBooking(booking, nil), nil
}

// ListTripBookings список бронирований рейса для оператора
func (s *Service) ListTripBookings(ctx context.Context, req *models.ListTripBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("ListTripBookings: trip=%s", req.TripID)

	filter, err := toTripFilter(req)
	if err != nil {
		s.logger.Warn("ListTripBookings: invalid request: %v", err)
		return nil, err
	}

	list, err := s.bookingRepo.ListByTrip(ctx, filter)
	if err != nil {
		s.logger.Error("ListTripBookings: repository error for trip=%s: %v", req.TripID, err)
		return nil, fmt.Errorf("%w: ListTripBookings - repository error: %v", ErrInternal, err)
	}

	resp := &models.BookingListResponse{
		TripID:   req.TripID,
		Count:    len(list),
		Bookings: make([]*models.BookingResponse, 0, len(list)),
	}
	for _, b := range list {
		resp.Bookings = append(resp.Bookings, models.FromDomainBooking(b, nil))
	}

	s.logger.Info("ListTripBookings: trip=%s, found %d bookings", req.TripID, resp.Count)
	return resp, nil
}

func toTripFilter(req *models.ListTripBookingsRequest) (domain.TripBookingsFilter, error) {
	filter := domain.TripBookingsFilter{
		TripID: strings.TrimSpace(req.TripID),
		Date:   req.Date,
		Mode:   req.Mode,
		Limit:  req.Limit,
	}

	if filter.TripID == "" {
		return filter, fmt.Errorf("%w: trip id is required", ErrInvalidInput)
	}

	if req.Status != nil {
		if !domain.ValidBookingStatus(*req.Status) {
			return filter, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, *req.Status)
		}
		status := domain.BookingStatus(*req.Status)
		filter.Status = &status
	}

	switch {
	case filter.Limit == 0:
		filter.Limit = domain.DefaultListLimit
	case filter.Limit < 0 || filter.Limit > domain.MaxListLimit:
		return filter, fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidInput, domain.MaxListLimit)
	}

	return filter, nil
}

func (s *Service) getBooking(ctx context.Context, op, id string) (*domain.Booking, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: booking id is required", ErrInvalidInput)
	}

	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("%s: booking id=%s not found", op, id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("%s: repository error for booking id=%s: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return booking, nil
}
