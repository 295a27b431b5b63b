package expire_bookings

import "errors"

var (
	// ErrInvalidConfig нулевой TTL или размер пачки
	ErrInvalidConfig = errors.New("expire_bookings: invalid configuration")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("expire_bookings: internal error")
)
