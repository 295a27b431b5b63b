package expire_bookings

import (
	"context"
	"fmt"
	"time"
)

// UseCase переводит зависшие pending бронирования в expired.
// Вместимость не освобождается: pending её и не занимал.
type UseCase struct {
	bookingRepo  BookingRepository
	metrics      Metrics
	pendingTTL   time.Duration
	batchSize    int
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(bookingRepo BookingRepository, metrics Metrics, pendingTTL time.Duration, batchSize int, logger Logger) (*UseCase, error) {
	if pendingTTL <= 0 || batchSize <= 0 {
		return nil, fmt.Errorf("%w: ttl=%s batch=%d", ErrInvalidConfig, pendingTTL, batchSize)
	}

	return &UseCase{
		bookingRepo:  bookingRepo,
		metrics:      metrics,
		pendingTTL:   pendingTTL,
		batchSize:    batchSize,
		timeProvider: realTimeProvider{},
		logger:       logger,
	}, nil
}

// Execute один проход: пачками, пока очередная пачка не окажется неполной
func (uc *UseCase) Execute(ctx context.Context) (int, error) {
	cutoff := uc.timeProvider.Now().Add(-uc.pendingTTL)
	total := 0

	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		ids, err := uc.bookingRepo.ExpirePending(ctx, cutoff, uc.batchSize)
		if err != nil {
			uc.logger.Error("ExpireBookings: failed after %d expired: %v", total, err)
			uc.metrics.AddBookingsExpired(total)
			return total, fmt.Errorf("%w: %v", ErrInternal, err)
		}

		total += len(ids)
		if len(ids) < uc.batchSize {
			break
		}
	}

	uc.metrics.AddBookingsExpired(total)
	if total > 0 {
		uc.logger.Info("ExpireBookings: %d pending bookings created before %s expired", total, cutoff.Format(time.RFC3339))
	}

	return total, nil
}

// Run периодически вызывает Execute до отмены контекста
func (uc *UseCase) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	uc.logger.Info("ExpireBookings: sweeper started, interval=%s ttl=%s", interval, uc.pendingTTL)

	for {
		select {
		case <-ctx.Done():
			uc.logger.Info("ExpireBookings: sweeper stopped")
			return
		case <-ticker.C:
			if _, err := uc.Execute(ctx); err != nil && ctx.Err() == nil {
				uc.logger.Warn("ExpireBookings: sweep failed, will retry next tick: %v", err)
			}
		}
	}
}
