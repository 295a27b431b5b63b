package confirm_booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/m04kA/SMC-ReservationCore/internal/domain"
	bookingRepo "github.com/m04kA/SMC-ReservationCore/internal/infra/storage/booking"
	capacityRepo "github.com/m04kA/SMC-ReservationCore/internal/infra/storage/capacity"
	"github.com/m04kA/SMC-ReservationCore/internal/integrations/dispatch"
)

// UseCase подтверждение бронирования: захват вместимости и pending → confirmed
// в одной транзакции. Обслуживает оба пути подтверждения: явный запрос клиента и вебхук.
type UseCase struct {
	bookingRepo  BookingRepository
	capacityRepo CapacityRepository
	defaults     CapacityDefaults
	publisher    Publisher
	metrics      Metrics
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	capacityRepo CapacityRepository,
	defaults CapacityDefaults,
	publisher Publisher,
	metrics Metrics,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		capacityRepo: capacityRepo,
		defaults:     defaults,
		publisher:    publisher,
		metrics:      metrics,
		txManager:    txManager,
		timeProvider: realTimeProvider{},
		logger:       logger,
	}
}

// Execute подтверждает бронирование в собственной транзакции.
// Уведомление диспетчеризации уходит только после коммита и только от вызова,
// который действительно сменил статус.
func (uc *UseCase) Execute(ctx context.Context, bookingID string, path domain.ConfirmPath) (*Result, error) {
	uc.logger.Info("ConfirmBooking: booking=%s path=%s", bookingID, path)

	if strings.TrimSpace(bookingID) == "" {
		return nil, fmt.Errorf("%w: booking id is required", ErrInvalidInput)
	}

	var result *Result
	err := uc.txManager.Do(ctx, func(txCtx context.Context) error {
		result = nil
		res, err := uc.ConfirmInTx(txCtx, bookingID, path)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, uc.mapTxError(bookingID, err)
	}

	if result.Outcome == OutcomeConfirmed {
		uc.NotifyConfirmed(ctx, result.Booking, path)
	}

	return result, nil
}

// ConfirmInTx тело подтверждения для вызывающих, которые уже владеют транзакцией.
// Строка бронирования блокируется до конца транзакции, поэтому явное подтверждение
// и вебхук по одному бронированию никогда не занимают вместимость дважды.
func (uc *UseCase) ConfirmInTx(ctx context.Context, bookingID string, path domain.ConfirmPath) (*Result, error) {
	// 1. Блокируем бронирование
	booking, err := uc.bookingRepo.GetByIDForUpdate(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			uc.logger.Warn("ConfirmBooking: booking=%s not found", bookingID)
			return nil, ErrBookingNotFound
		}
		uc.logger.Error("ConfirmBooking: failed to lock booking=%s: %v", bookingID, err)
		return nil, fmt.Errorf("%w: failed to lock booking: %w", ErrInternal, err)
	}

	// 2. Уже подтверждено: повтор или второй путь, вместимость не трогаем
	if booking.IsConfirmed() {
		uc.logger.Info("ConfirmBooking: booking=%s already confirmed, path=%s is a no-op", bookingID, path)
		return &Result{Booking: booking, Outcome: OutcomeAlreadyConfirmed}, nil
	}

	if !booking.IsPending() {
		uc.logger.Warn("ConfirmBooking: booking=%s is %s, cannot confirm", bookingID, booking.Status)
		return nil, fmt.Errorf("%w: status is %s", ErrNotPending, booking.Status)
	}

	key := booking.SlotKey()

	// 3. Слот создаётся лениво с вместимостью по умолчанию
	defaultCapacity, err := uc.defaults.DefaultCapacity(ctx, booking.TripID, booking.Mode)
	if err != nil {
		uc.logger.Error("ConfirmBooking: failed to resolve default capacity for %s: %v", key, err)
		return nil, fmt.Errorf("%w: failed to resolve default capacity: %v", ErrInternal, err)
	}

	created, err := uc.capacityRepo.EnsureSlot(ctx, key, defaultCapacity)
	if err != nil {
		uc.logger.Error("ConfirmBooking: failed to ensure slot %s: %v", key, err)
		return nil, fmt.Errorf("%w: failed to ensure slot: %w", ErrInternal, err)
	}
	if created {
		uc.logger.Info("ConfirmBooking: created slot %s with capacity=%d", key, defaultCapacity)
	}

	// 4. Атомарный захват мест
	slot, err := uc.capacityRepo.Claim(ctx, key, booking.Seats)
	if err != nil {
		if errors.Is(err, capacityRepo.ErrCapacityExceeded) {
			uc.metrics.IncCapacityClaim("exceeded")
			uc.logger.Warn("ConfirmBooking: booking=%s capacity exceeded in slot %s (seats=%d)", bookingID, key, booking.Seats)
			return nil, ErrCapacityExceeded
		}
		uc.logger.Error("ConfirmBooking: failed to claim slot %s: %v", key, err)
		return nil, fmt.Errorf("%w: failed to claim capacity: %w", ErrInternal, err)
	}
	uc.metrics.IncCapacityClaim("ok")

	// 5. pending → confirmed под той же блокировкой
	if err := uc.bookingRepo.MarkConfirmed(ctx, bookingID); err != nil {
		if errors.Is(err, bookingRepo.ErrStatusConflict) {
			// Строка заблокирована, так что сюда попасть нельзя.
			// Внутренняя ошибка откатывает транзакцию вместе с захватом.
			uc.logger.Error("ConfirmBooking: booking=%s status changed under lock", bookingID)
			return nil, fmt.Errorf("%w: booking status changed under lock", ErrInternal)
		}
		uc.logger.Error("ConfirmBooking: failed to mark booking=%s confirmed: %v", bookingID, err)
		return nil, fmt.Errorf("%w: failed to mark confirmed: %w", ErrInternal, err)
	}

	booking.Status = domain.StatusConfirmed
	uc.logger.Info("ConfirmBooking: booking=%s confirmed via %s, slot %s taken=%d/%d",
		bookingID, path, key, slot.Taken, slot.Capacity)

	return &Result{Booking: booking, Outcome: OutcomeConfirmed, Slot: slot}, nil
}

// NotifyConfirmed вызывается после коммита транзакции, сменившей статус.
// Ошибка публикации не отменяет подтверждение.
func (uc *UseCase) NotifyConfirmed(ctx context.Context, booking *domain.Booking, path domain.ConfirmPath) {
	uc.metrics.IncBookingConfirmed(string(path))

	event := dispatch.BookingConfirmed{
		BookingID:   booking.ID,
		TripID:      booking.TripID,
		Mode:        booking.Mode,
		Date:        booking.TravelDate.Format(domain.DateFormat),
		Seats:       booking.Seats,
		Path:        string(path),
		ConfirmedAt: uc.timeProvider.Now().UTC(),
	}

	if err := uc.publisher.PublishBookingConfirmed(ctx, event); err != nil {
		uc.logger.Error("ConfirmBooking: booking=%s confirmed but dispatch failed: %v", booking.ID, err)
	}
}

func (uc *UseCase) mapTxError(bookingID string, err error) error {
	switch {
	case errors.Is(err, ErrBookingNotFound),
		errors.Is(err, ErrNotPending),
		errors.Is(err, ErrCapacityExceeded),
		errors.Is(err, ErrInternal):
		return err
	default:
		uc.logger.Error("ConfirmBooking: transaction failed for booking=%s: %v", bookingID, err)
		return fmt.Errorf("%w: transaction failed: %w", ErrInternal, err)
	}
}
