package domain

// Значения по умолчанию
const (
	DefaultSlotCapacity      = 10
	DefaultPendingTTLMinutes = 30
	DefaultSweepBatchSize    = 100
)

// Ограничения бизнес-валидации
const (
	MinSeats                = 1
	MaxSeatsPerBooking      = 60
	MaxIdempotencyKeyLength = 255
	MaxTripIDLength         = 64
	MaxModeLength           = 32
	MaxSlotCapacity         = 10000
	DefaultListLimit        = 100
	MaxListLimit            = 500
)

// Форматы
const (
	DateFormat = "2006-01-02" // YYYY-MM-DD
)
