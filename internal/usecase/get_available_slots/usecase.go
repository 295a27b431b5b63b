package get_available_slots

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-ReservationCore/internal/domain"
	capacityRepo "github.com/m04kA/SMC-ReservationCore/internal/infra/storage/capacity"
)

// UseCase доступность мест рейса на дату по каждому режиму
type UseCase struct {
	catalog      CatalogSource
	capacityRepo CapacityRepository
	defaults     CapacityDefaults
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	catalog CatalogSource,
	capacityRepo CapacityRepository,
	defaults CapacityDefaults,
	logger Logger,
) *UseCase {
	return &UseCase{
		catalog:      catalog,
		capacityRepo: capacityRepo,
		defaults:     defaults,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет use case получения доступных мест.
// Результат информационный: гарантию даёт только захват при подтверждении.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: trip=%s, date=%s", req.TripID, req.Date.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	if err := validateDate(req.Date, uc.timeProvider.Now()); err != nil {
		uc.logger.Warn("GetAvailableSlots: date validation failed: %v", err)
		return nil, err
	}

	// 2. Рейс из текущего снимка каталога
	trip, ok := uc.catalog.Snapshot().Trip(req.TripID)
	if !ok {
		uc.logger.Warn("GetAvailableSlots: trip=%s not found in catalog", req.TripID)
		return nil, ErrTripNotFound
	}

	// 3. Состояние слота по каждому режиму
	slots := make([]Slot, 0, len(trip.Modes))
	for _, mode := range trip.Modes {
		key := domain.SlotKey{TripID: trip.ID, Date: req.Date, Mode: mode.Name}

		slot, err := uc.capacityRepo.Get(ctx, key)
		if err != nil && !errors.Is(err, capacityRepo.ErrSlotNotFound) {
			uc.logger.Error("GetAvailableSlots: failed to get slot %s: %v", key, err)
			return nil, fmt.Errorf("%w: failed to get slot: %v", ErrInternal, err)
		}

		defaultCapacity := 0
		if slot == nil {
			defaultCapacity, err = uc.defaults.DefaultCapacity(ctx, trip.ID, mode.Name)
			if err != nil {
				uc.logger.Error("GetAvailableSlots: failed to resolve default capacity for %s: %v", key, err)
				return nil, fmt.Errorf("%w: failed to resolve default capacity: %v", ErrInternal, err)
			}
		}

		slots = append(slots, buildSlot(mode, slot, defaultCapacity))
	}

	uc.logger.Info("GetAvailableSlots: trip=%s, date=%s, modes=%d",
		trip.ID, req.Date.Format(domain.DateFormat), len(slots))

	return &Response{
		TripID:   trip.ID,
		Date:     req.Date,
		Currency: trip.Currency,
		Slots:    slots,
	}, nil
}
