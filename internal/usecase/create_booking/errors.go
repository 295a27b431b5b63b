package create_booking

import "errors"

var (
	// ErrTripNotFound рейса нет в каталоге
	ErrTripNotFound = errors.New("create_booking: trip not found")

	// ErrInvalidDate дата поездки в прошлом
	ErrInvalidDate = errors.New("create_booking: invalid travel date")

	// ErrCurrencyMismatch валюта запроса не совпадает с валютой рейса
	ErrCurrencyMismatch = errors.New("create_booking: currency does not match trip currency")

	// ErrPriceMismatch цена клиента не совпадает с серверной, бронирование не создаётся
	ErrPriceMismatch = errors.New("create_booking: invalid amount")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
