package create_payment_intent

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_payment_intent: invalid input data")

	// ErrBookingNotFound указанное бронирование не найдено
	ErrBookingNotFound = errors.New("create_payment_intent: booking not found")

	// ErrBookingNotPayable бронирование отменено или истекло
	ErrBookingNotPayable = errors.New("create_payment_intent: booking cannot be paid")

	// ErrPriceMismatch сумма не совпадает с серверной ценой
	ErrPriceMismatch = errors.New("create_payment_intent: invalid amount")

	// ErrIdempotencyConflict ключ уже использован с другими параметрами
	ErrIdempotencyConflict = errors.New("create_payment_intent: idempotency key reused with different parameters")

	// ErrRequestInProgress запрос с этим ключом ещё выполняется
	ErrRequestInProgress = errors.New("create_payment_intent: request with this idempotency key is in progress")

	// ErrProviderRejected провайдер отклонил запрос
	ErrProviderRejected = errors.New("create_payment_intent: provider rejected request")

	// ErrProviderUnavailable провайдер недоступен, запрос можно повторить с тем же ключом
	ErrProviderUnavailable = errors.New("create_payment_intent: provider unavailable")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_payment_intent: internal error")
)
