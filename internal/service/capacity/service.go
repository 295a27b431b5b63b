package capacity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-ReservationCore/internal/domain"
	capacityRepo "github.com/m04kA/SMC-ReservationCore/internal/infra/storage/capacity"
	"github.com/m04kA/SMC-ReservationCore/internal/service/capacity/models"
	"github.com/m04kA/SMC-ReservationCore/internal/service/pricing"
)

// Service операторский доступ к слотам вместимости
type Service struct {
	capacityRepo CapacityRepository
	modes        ModeResolver
	logger       Logger
}

// NewService создает новый экземпляр сервиса вместимости
func NewService(capacityRepo CapacityRepository, modes ModeResolver, logger Logger) *Service {
	return &Service{
		capacityRepo: capacityRepo,
		modes:        modes,
		logger:       logger,
	}
}

// GetSlot получает слот. Ключ берётся как есть, каталог не проверяется:
// слот мог пережить удаление рейса из каталога.
func (s *Service) GetSlot(ctx context.Context, tripID, date, mode string) (*models.SlotResponse, error) {
	s.logger.Info("GetSlot: fetching slot %s/%s/%s", tripID, date, mode)

	key, err := parseKey(tripID, date, mode)
	if err != nil {
		return nil, err
	}

	slot, err := s.capacityRepo.Get(ctx, key)
	if err != nil {
		if errors.Is(err, capacityRepo.ErrSlotNotFound) {
			s.logger.Warn("GetSlot: slot %s not found", key)
			return nil, ErrSlotNotFound
		}
		s.logger.Error("GetSlot: repository error for slot %s: %v", key, err)
		return nil, fmt.Errorf("%w: GetSlot - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainSlot(slot), nil
}

// Provision задаёт вместимость слота, создавая его при необходимости.
// Режим должен быть тем, под которым бронирования рейса реально занимают места.
func (s *Service) Provision(ctx context.Context, tripID, date, mode string, capacity int) (*models.SlotResponse, error) {
	s.logger.Info("Provision: slot %s/%s/%s capacity=%d", tripID, date, mode, capacity)

	key, err := parseKey(tripID, date, mode)
	if err != nil {
		return nil, err
	}

	if capacity < 0 || capacity > domain.MaxSlotCapacity {
		return nil, fmt.Errorf("%w: capacity must be between 0 and %d", ErrInvalidInput, domain.MaxSlotCapacity)
	}

	canonical, err := s.modes.CanonicalMode(key.TripID, key.Mode)
	if err != nil {
		if errors.Is(err, pricing.ErrPricingUnavailable) {
			s.logger.Warn("Provision: trip=%s not in catalog", key.TripID)
			return nil, ErrTripNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if canonical != key.Mode {
		s.logger.Warn("Provision: trip=%s has no mode=%s (bookings land in mode=%s)", key.TripID, key.Mode, canonical)
		return nil, fmt.Errorf("%w: trip %s has no mode %s", ErrInvalidInput, key.TripID, key.Mode)
	}

	slot, err := s.capacityRepo.Provision(ctx, key, capacity)
	if err != nil {
		if errors.Is(err, capacityRepo.ErrCapacityBelowTaken) {
			s.logger.Warn("Provision: slot %s capacity=%d is below taken seats", key, capacity)
			return nil, ErrCapacityBelowTaken
		}
		s.logger.Error("Provision: repository error for slot %s: %v", key, err)
		return nil, fmt.Errorf("%w: Provision - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Provision: slot %s now capacity=%d taken=%d", key, slot.Capacity, slot.Taken)
	return models.FromDomainSlot(slot), nil
}

func parseKey(tripID, date, mode string) (domain.SlotKey, error) {
	tripID = strings.TrimSpace(tripID)
	mode = strings.TrimSpace(mode)
	if tripID == "" || mode == "" {
		return domain.SlotKey{}, fmt.Errorf("%w: trip id and mode are required", ErrInvalidInput)
	}

	d, err := time.Parse(domain.DateFormat, date)
	if err != nil {
		return domain.SlotKey{}, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidInput)
	}

	return domain.SlotKey{TripID: tripID, Date: d, Mode: mode}, nil
}
