package domain

// PricingKind способ расчёта цены режима
type PricingKind string

const (
	PricingPerSeat    PricingKind = "per_seat"
	PricingPerVehicle PricingKind = "per_vehicle"
)

// Catalog снимок каталога рейсов (только то, что нужно для цены и вместимости)
type Catalog struct {
	Trips map[string]*Trip
}

// Trip рейс каталога
type Trip struct {
	ID          string
	Currency    string
	DefaultMode string
	Modes       []TripMode
}

// TripMode режим поездки (например, shared: место в общем авто, van: весь минивэн)
type TripMode struct {
	Name            string
	Pricing         PricingKind
	PriceCents      int64
	DefaultCapacity *int
}

// Trip возвращает рейс по id
func (c *Catalog) Trip(id string) (*Trip, bool) {
	if c == nil {
		return nil, false
	}
	t, ok := c.Trips[id]
	return t, ok
}

// Mode возвращает режим по имени
func (t *Trip) Mode(name string) (TripMode, bool) {
	for _, m := range t.Modes {
		if m.Name == name {
			return m, true
		}
	}
	return TripMode{}, false
}

// DefaultPerSeatMode режим по умолчанию для неизвестных режимов:
// явно заданный default_mode, если он поштучный, иначе первый поштучный режим
func (t *Trip) DefaultPerSeatMode() (TripMode, bool) {
	if t.DefaultMode != "" {
		if m, ok := t.Mode(t.DefaultMode); ok && m.Pricing == PricingPerSeat {
			return m, true
		}
	}
	for _, m := range t.Modes {
		if m.Pricing == PricingPerSeat {
			return m, true
		}
	}
	return TripMode{}, false
}
