package pricing

import "errors"

var (
	// ErrPricingUnavailable рейса нет в каталоге: цену не угадываем
	ErrPricingUnavailable = errors.New("pricing: trip is not in the catalog")

	// ErrNoPerSeatMode неизвестный режим, а поштучного режима для подстановки нет
	ErrNoPerSeatMode = errors.New("pricing: unknown mode and trip has no per-seat mode")

	// ErrInvalidInput некорректные входные данные
	ErrInvalidInput = errors.New("pricing: invalid input")

	// ErrPriceMismatch сумма клиента не совпадает с серверной
	ErrPriceMismatch = errors.New("pricing: client amount does not match server price")
)
