package payment

import "errors"

var (
	// ErrKeyNotFound ключ идемпотентности не найден
	ErrKeyNotFound = errors.New("payment.repository: idempotency key not found")

	// ErrKeyNotInProgress ключ уже завершён или освобождён другим запросом
	ErrKeyNotInProgress = errors.New("payment.repository: idempotency key is not in progress")

	// ErrPaymentNotFound платёж не найден
	ErrPaymentNotFound = errors.New("payment.repository: payment not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("payment.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("payment.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("payment.repository: failed to scan row")
)
