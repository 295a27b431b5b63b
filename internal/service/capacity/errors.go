package capacity

import "errors"

var (
	// ErrSlotNotFound возвращается, когда слот ещё не создан
	ErrSlotNotFound = errors.New("capacity slot not found")

	// ErrTripNotFound возвращается, когда рейса нет в каталоге
	ErrTripNotFound = errors.New("trip not found")

	// ErrCapacityBelowTaken новая вместимость меньше уже занятых мест
	ErrCapacityBelowTaken = errors.New("capacity below taken seats")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
