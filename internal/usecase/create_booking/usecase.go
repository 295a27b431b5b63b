package create_booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-ReservationCore/internal/domain"
	"github.com/m04kA/SMC-ReservationCore/internal/service/pricing"
)

// UseCase use case для создания бронирования
type UseCase struct {
	bookingRepo  BookingRepository
	pricing      PricingService
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	pricing PricingService,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		pricing:      pricing,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute создает бронирование в статусе pending.
// Цена всегда считается сервером; если клиент прислал свою и она не совпала,
// бронирование не создаётся. Вместимость на этом шаге не занимается.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: trip=%s, mode=%s, date=%s, seats=%d",
		req.TripID, req.Mode, req.Date.Format(domain.DateFormat), req.Seats)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Дата не в прошлом
	if err := validateDate(req.Date, uc.timeProvider.Now()); err != nil {
		uc.logger.Warn("CreateBooking: date validation failed: %v", err)
		return nil, err
	}

	// 3. Считаем цену по каталогу
	quote, err := uc.pricing.ComputePrice(ctx, req.TripID, req.Mode, req.Seats)
	if err != nil {
		switch {
		case errors.Is(err, pricing.ErrPricingUnavailable):
			uc.logger.Warn("CreateBooking: trip=%s not found", req.TripID)
			return nil, ErrTripNotFound
		case errors.Is(err, pricing.ErrNoPerSeatMode), errors.Is(err, pricing.ErrInvalidInput):
			uc.logger.Warn("CreateBooking: cannot price trip=%s mode=%s: %v", req.TripID, req.Mode, err)
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		default:
			uc.logger.Error("CreateBooking: failed to compute price: %v", err)
			return nil, fmt.Errorf("%w: failed to compute price: %v", ErrInternal, err)
		}
	}

	// 4. Валюта должна совпадать с валютой рейса
	if !strings.EqualFold(req.Currency, quote.Currency) {
		uc.logger.Warn("CreateBooking: currency %s does not match trip currency %s", req.Currency, quote.Currency)
		return nil, ErrCurrencyMismatch
	}

	// 5. Сверяем сумму клиента, серверная побеждает
	if err := uc.pricing.CheckClientAmount(quote, req.PriceCents); err != nil {
		uc.logger.Warn("CreateBooking: %v", err)
		return nil, ErrPriceMismatch
	}

	// 6. Создаём pending бронирование. Режим сохраняем тот, по которому посчитана цена:
	// по нему же потом занимается вместимость.
	booking := &domain.Booking{
		ID:         uuid.NewString(),
		TripID:     quote.TripID,
		Mode:       quote.Mode,
		TravelDate: time.Date(req.Date.Year(), req.Date.Month(), req.Date.Day(), 0, 0, 0, 0, time.UTC),
		Seats:      req.Seats,
		PriceCents: quote.PriceCents,
		Currency:   quote.Currency,
		Status:     domain.StatusPending,
	}

	created, err := uc.bookingRepo.Create(ctx, booking)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to create booking: %v", err)
		return nil, fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
	}

	uc.logger.Info("CreateBooking: created booking=%s price=%d %s", created.ID, created.PriceCents, created.Currency)

	return &Response{
		BookingID:  created.ID,
		TripID:     created.TripID,
		Mode:       created.Mode,
		Date:       created.TravelDate,
		Seats:      created.Seats,
		PriceCents: created.PriceCents,
		Currency:   created.Currency,
		Status:     string(created.Status),
		CreatedAt:  created.CreatedAt,
	}, nil
}
