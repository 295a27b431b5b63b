package get_available_slots

import "errors"

var (
	// ErrTripNotFound рейса нет в каталоге
	ErrTripNotFound = errors.New("trip not found")

	// ErrInvalidDate дата в прошлом
	ErrInvalidDate = errors.New("invalid date: cannot check availability in the past")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках
	ErrInternal = errors.New("internal error")
)
