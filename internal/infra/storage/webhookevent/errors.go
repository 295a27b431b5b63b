package webhookevent

import "errors"

var (
	// ErrEventNotFound событие не найдено
	ErrEventNotFound = errors.New("webhookevent.repository: event not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("webhookevent.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("webhookevent.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("webhookevent.repository: failed to scan row")
)
