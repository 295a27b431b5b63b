package pricing

import (
	"context"
	"fmt"
	"math"

	"github.com/m04kA/SMC-ReservationCore/internal/domain"
)

// Service авторитетный расчёт цены по серверному каталогу.
// Суммам от клиента не доверяет никогда.
type Service struct {
	catalog         CatalogSource
	defaultCapacity int
	logger          Logger
}

// NewService создает сервис цен. defaultCapacity используется для слотов,
// режим которых не задаёт default_capacity в каталоге.
func NewService(catalog CatalogSource, defaultCapacity int, logger Logger) *Service {
	return &Service{
		catalog:         catalog,
		defaultCapacity: defaultCapacity,
		logger:          logger,
	}
}

// ComputePrice считает цену для (рейс, режим, места).
//
// Поштучный режим: price × seats. Режим за машину: фиксированная цена независимо от мест.
// Неизвестный режим намеренно не считается ошибкой: цена берётся по поштучному режиму
// рейса по умолчанию, чтобы мелкие расхождения каталога не ломали бронирование.
// Рейс, которого нет в каталоге: ErrPricingUnavailable.
func (s *Service) ComputePrice(ctx context.Context, tripID, mode string, seats int) (*Quote, error) {
	if seats < domain.MinSeats {
		return nil, fmt.Errorf("%w: seats must be >= %d", ErrInvalidInput, domain.MinSeats)
	}

	trip, ok := s.catalog.Snapshot().Trip(tripID)
	if !ok {
		s.logger.Warn("ComputePrice: trip=%s not found in catalog", tripID)
		return nil, ErrPricingUnavailable
	}

	tripMode, fellBack, err := s.resolveMode(trip, mode)
	if err != nil {
		return nil, err
	}

	var price int64
	switch tripMode.Pricing {
	case domain.PricingPerVehicle:
		price = tripMode.PriceCents
	default:
		if tripMode.PriceCents > 0 && int64(seats) > math.MaxInt64/tripMode.PriceCents {
			return nil, fmt.Errorf("%w: price overflow", ErrInvalidInput)
		}
		price = tripMode.PriceCents * int64(seats)
	}

	return &Quote{
		TripID:     trip.ID,
		Mode:       tripMode.Name,
		Seats:      seats,
		PriceCents: price,
		Currency:   trip.Currency,
		FellBack:   fellBack,
	}, nil
}

// CheckClientAmount сравнивает сумму клиента с серверной. nil: клиент сумму не прислал.
func (s *Service) CheckClientAmount(quote *Quote, clientCents *int64) error {
	if clientCents == nil {
		return nil
	}
	if *clientCents != quote.PriceCents {
		s.logger.Warn("CheckClientAmount: trip=%s mode=%s seats=%d client=%d server=%d",
			quote.TripID, quote.Mode, quote.Seats, *clientCents, quote.PriceCents)
		return fmt.Errorf("%w: expected %d, got %d", ErrPriceMismatch, quote.PriceCents, *clientCents)
	}
	return nil
}

// DefaultCapacity вместимость по умолчанию для лениво создаваемого слота.
// Рейс могли убрать из каталога после создания бронирования: тогда берётся
// вместимость из конфигурации, подтверждение не блокируется.
func (s *Service) DefaultCapacity(ctx context.Context, tripID, mode string) (int, error) {
	trip, ok := s.catalog.Snapshot().Trip(tripID)
	if !ok {
		s.logger.Warn("DefaultCapacity: trip=%s not in catalog, using configured default=%d", tripID, s.defaultCapacity)
		return s.defaultCapacity, nil
	}

	if m, ok := trip.Mode(mode); ok && m.DefaultCapacity != nil {
		return *m.DefaultCapacity, nil
	}
	return s.defaultCapacity, nil
}

// CanonicalMode режим, под которым бронирование хранится и занимает вместимость
func (s *Service) CanonicalMode(tripID, mode string) (string, error) {
	trip, ok := s.catalog.Snapshot().Trip(tripID)
	if !ok {
		return "", ErrPricingUnavailable
	}
	m, _, err := s.resolveMode(trip, mode)
	if err != nil {
		return "", err
	}
	return m.Name, nil
}

func (s *Service) resolveMode(trip *domain.Trip, mode string) (domain.TripMode, bool, error) {
	if m, ok := trip.Mode(mode); ok {
		return m, false, nil
	}

	fallback, ok := trip.DefaultPerSeatMode()
	if !ok {
		s.logger.Warn("ComputePrice: trip=%s unknown mode=%s and no per-seat mode to fall back to", trip.ID, mode)
		return domain.TripMode{}, false, ErrNoPerSeatMode
	}

	s.logger.Warn("ComputePrice: trip=%s unknown mode=%s, priced as default per-seat mode=%s",
		trip.ID, mode, fallback.Name)
	return fallback, true, nil
}
