package capacity

import "errors"

var (
	// ErrSlotNotFound слот вместимости ещё не создан
	ErrSlotNotFound = errors.New("capacity.repository: slot not found")

	// ErrCapacityExceeded в слоте не хватает мест для захвата
	ErrCapacityExceeded = errors.New("capacity.repository: capacity exceeded")

	// ErrCapacityBelowTaken новая вместимость меньше уже занятого
	ErrCapacityBelowTaken = errors.New("capacity.repository: capacity below taken")

	// ErrInvalidSeats количество мест для захвата должно быть положительным
	ErrInvalidSeats = errors.New("capacity.repository: seats must be positive")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("capacity.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("capacity.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("capacity.repository: failed to scan row")
)
