package domain

import "time"

// SlotKey составной ключ слота вместимости: рейс, дата, режим
type SlotKey struct {
	TripID string
	Date   time.Time
	Mode   string
}

// DateString дата слота в формате YYYY-MM-DD
func (k SlotKey) DateString() string {
	return k.Date.Format(DateFormat)
}

// String человекочитаемое представление для логов
func (k SlotKey) String() string {
	return k.TripID + "/" + k.DateString() + "/" + k.Mode
}

// CapacitySlot счётчик занятой и общей вместимости слота.
// Инвариант: 0 <= Taken <= Capacity
type CapacitySlot struct {
	Key       SlotKey
	Capacity  int
	Taken     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Available количество свободных мест
func (s *CapacitySlot) Available() int {
	if s.Taken >= s.Capacity {
		return 0
	}
	return s.Capacity - s.Taken
}

// IsFull в слоте не осталось мест
func (s *CapacitySlot) IsFull() bool {
	return s.Available() == 0
}

// CanFit поместится ли seats мест
func (s *CapacitySlot) CanFit(seats int) bool {
	return seats > 0 && s.Taken+seats <= s.Capacity
}
