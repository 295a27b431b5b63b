package confirm_booking

import "errors"

var (
	// ErrBookingNotFound бронирование не найдено
	ErrBookingNotFound = errors.New("confirm_booking: booking not found")

	// ErrNotPending бронирование отменено или истекло, подтверждать нельзя
	ErrNotPending = errors.New("confirm_booking: booking is not pending")

	// ErrCapacityExceeded в слоте не хватает мест, бронирование остаётся pending
	ErrCapacityExceeded = errors.New("confirm_booking: capacity exceeded")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("confirm_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("confirm_booking: internal error")
)
