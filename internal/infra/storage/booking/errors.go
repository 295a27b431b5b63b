package booking

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking.repository: booking not found")

	// ErrStatusConflict бронирование не в том статусе, из которого разрешён переход
	ErrStatusConflict = errors.New("booking.repository: booking status changed concurrently")

	// ErrPaymentIntentConflict к бронированию уже привязано другое платёжное намерение
	ErrPaymentIntentConflict = errors.New("booking.repository: another payment intent already attached")

	// ErrDuplicateBooking бронирование с таким ID уже существует
	ErrDuplicateBooking = errors.New("booking.repository: duplicate booking id")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("booking.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("booking.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("booking.repository: failed to scan row")
)
