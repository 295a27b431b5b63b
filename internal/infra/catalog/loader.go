package catalog

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"gopkg.in/yaml.v3"

	"github.com/m04kA/SMC-ReservationCore/internal/domain"
)

var (
	// ErrReadFile не удалось прочитать файл каталога
	ErrReadFile = errors.New("catalog: failed to read file")

	// ErrParse файл каталога не разбирается
	ErrParse = errors.New("catalog: failed to parse file")

	// ErrInvalidCatalog каталог не прошёл валидацию
	ErrInvalidCatalog = errors.New("catalog: invalid catalog")
)

// fileCatalog формат YAML файла каталога
type fileCatalog struct {
	Trips []fileTrip `yaml:"trips"`
}

type fileTrip struct {
	ID          string     `yaml:"id"`
	Currency    string     `yaml:"currency"`
	DefaultMode string     `yaml:"default_mode"`
	Modes       []fileMode `yaml:"modes"`
}

type fileMode struct {
	Name            string `yaml:"name"`
	Pricing         string `yaml:"pricing"`
	PriceCents      int64  `yaml:"price_cents"`
	DefaultCapacity *int   `yaml:"default_capacity"`
}

// LoadFile читает и валидирует каталог из YAML файла
func LoadFile(path string) (*domain.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrReadFile, path, err)
	}
	return Parse(data)
}

// Parse разбирает и валидирует каталог
func Parse(data []byte) (*domain.Catalog, error) {
	var raw fileCatalog
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	catalog := &domain.Catalog{Trips: make(map[string]*domain.Trip, len(raw.Trips))}

	for i, t := range raw.Trips {
		if t.ID == "" {
			return nil, fmt.Errorf("%w: trips[%d]: id is required", ErrInvalidCatalog, i)
		}
		if _, dup := catalog.Trips[t.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate trip id %q", ErrInvalidCatalog, t.ID)
		}
		if len(t.Currency) != 3 {
			return nil, fmt.Errorf("%w: trip %q: currency must be a 3-letter code", ErrInvalidCatalog, t.ID)
		}
		if len(t.Modes) == 0 {
			return nil, fmt.Errorf("%w: trip %q: at least one mode is required", ErrInvalidCatalog, t.ID)
		}

		trip := &domain.Trip{
			ID:          t.ID,
			Currency:    strings.ToUpper(t.Currency),
			DefaultMode: t.DefaultMode,
			Modes:       make([]domain.TripMode, 0, len(t.Modes)),
		}

		seen := make(map[string]struct{}, len(t.Modes))
		for _, m := range t.Modes {
			mode, err := toDomainMode(t.ID, m)
			if err != nil {
				return nil, err
			}
			if _, dup := seen[mode.Name]; dup {
				return nil, fmt.Errorf("%w: trip %q: duplicate mode %q", ErrInvalidCatalog, t.ID, mode.Name)
			}
			seen[mode.Name] = struct{}{}
			trip.Modes = append(trip.Modes, mode)
		}

		if trip.DefaultMode != "" {
			if _, ok := trip.Mode(trip.DefaultMode); !ok {
				return nil, fmt.Errorf("%w: trip %q: default_mode %q is not defined", ErrInvalidCatalog, t.ID, trip.DefaultMode)
			}
		}

		catalog.Trips[trip.ID] = trip
	}

	return catalog, nil
}

func toDomainMode(tripID string, m fileMode) (domain.TripMode, error) {
	if m.Name == "" {
		return domain.TripMode{}, fmt.Errorf("%w: trip %q: mode name is required", ErrInvalidCatalog, tripID)
	}
	kind := domain.PricingKind(m.Pricing)
	if kind != domain.PricingPerSeat && kind != domain.PricingPerVehicle {
		return domain.TripMode{}, fmt.Errorf("%w: trip %q mode %q: unknown pricing %q", ErrInvalidCatalog, tripID, m.Name, m.Pricing)
	}
	if m.PriceCents < 0 {
		return domain.TripMode{}, fmt.Errorf("%w: trip %q mode %q: price_cents must be >= 0", ErrInvalidCatalog, tripID, m.Name)
	}
	if m.DefaultCapacity != nil && *m.DefaultCapacity < 0 {
		return domain.TripMode{}, fmt.Errorf("%w: trip %q mode %q: default_capacity must be >= 0", ErrInvalidCatalog, tripID, m.Name)
	}
	return domain.TripMode{
		Name:            m.Name,
		Pricing:         kind,
		PriceCents:      m.PriceCents,
		DefaultCapacity: m.DefaultCapacity,
	}, nil
}

// Store хранит текущий снимок каталога; снимок заменяется атомарно целиком
type Store struct {
	current atomic.Pointer[domain.Catalog]
}

// NewStore создает хранилище с начальным снимком
func NewStore(initial *domain.Catalog) *Store {
	s := &Store{}
	s.current.Store(initial)
	return s
}

// Snapshot текущий снимок каталога
func (s *Store) Snapshot() *domain.Catalog {
	return s.current.Load()
}

// Reload перечитывает файл; при ошибке старый снимок остаётся в силе
func (s *Store) Reload(path string) error {
	c, err := LoadFile(path)
	if err != nil {
		return err
	}
	s.current.Store(c)
	return nil
}
