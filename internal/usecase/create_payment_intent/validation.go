package create_payment_intent

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/m04kA/SMC-ReservationCore/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if strings.TrimSpace(req.IdempotencyKey) == "" {
		return fmt.Errorf("%w: Idempotency-Key is required", ErrInvalidInput)
	}
	if len(req.IdempotencyKey) > domain.MaxIdempotencyKeyLength {
		return fmt.Errorf("%w: Idempotency-Key is too long", ErrInvalidInput)
	}

	if req.AmountCents <= 0 {
		return fmt.Errorf("%w: amount_cents must be positive", ErrInvalidInput)
	}

	if len(req.Currency) != 3 {
		return fmt.Errorf("%w: currency must be a 3-letter code", ErrInvalidInput)
	}

	if req.BookingID != nil && strings.TrimSpace(*req.BookingID) == "" {
		return fmt.Errorf("%w: booking_id must not be empty", ErrInvalidInput)
	}

	if tc := req.TripContext; tc != nil {
		if strings.TrimSpace(tc.TripID) == "" {
			return fmt.Errorf("%w: trip_context.trip_id is required", ErrInvalidInput)
		}
		if tc.Seats < domain.MinSeats {
			return fmt.Errorf("%w: trip_context.seats must be >= %d", ErrInvalidInput, domain.MinSeats)
		}
	}

	return nil
}

// fingerprint SHA-256 канонического JSON определяющих параметров
func fingerprint(req *Request) (string, error) {
	data, err := json.Marshal(fingerprintInput{
		AmountCents: req.AmountCents,
		Currency:    strings.ToUpper(req.Currency),
		BookingID:   req.BookingID,
		TripContext: req.TripContext,
	})
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
