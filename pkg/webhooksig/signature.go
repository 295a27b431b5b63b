// Package webhooksig подписывает и проверяет тела вебхуков платёжного провайдера.
//
// Формат заголовка: "t=<unix>,v1=<hex>", где hex = HMAC-SHA256(secret, "<t>.<payload>").
// Заголовок может содержать несколько v1 (ротация секрета): достаточно совпадения одной.
package webhooksig

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultTolerance допустимое расхождение времени подписи
const DefaultTolerance = 5 * time.Minute

var (
	// ErrMissingHeader заголовок подписи отсутствует
	ErrMissingHeader = errors.New("webhooksig: missing signature header")

	// ErrMalformedHeader заголовок не разбирается
	ErrMalformedHeader = errors.New("webhooksig: malformed signature header")

	// ErrTimestampOutOfRange подпись слишком старая или из будущего
	ErrTimestampOutOfRange = errors.New("webhooksig: timestamp outside tolerance")

	// ErrNoValidSignature ни одна подпись не совпала
	ErrNoValidSignature = errors.New("webhooksig: no valid signature")

	// ErrEmptySecret секрет не задан
	ErrEmptySecret = errors.New("webhooksig: empty secret")
)

// Sign формирует значение заголовка подписи
func Sign(secret string, payload []byte, ts time.Time) string {
	t := ts.Unix()
	return fmt.Sprintf("t=%d,v1=%s", t, computeSignature(secret, t, payload))
}

// Verify проверяет заголовок подписи для payload
func Verify(secret string, payload []byte, header string, tolerance time.Duration, now time.Time) error {
	if secret == "" {
		return ErrEmptySecret
	}
	if strings.TrimSpace(header) == "" {
		return ErrMissingHeader
	}

	ts, signatures, err := parseHeader(header)
	if err != nil {
		return err
	}

	if tolerance > 0 {
		diff := now.Sub(time.Unix(ts, 0))
		if diff < 0 {
			diff = -diff
		}
		if diff > tolerance {
			return ErrTimestampOutOfRange
		}
	}

	expected := computeSignature(secret, ts, payload)
	for _, sig := range signatures {
		if hmac.Equal([]byte(sig), []byte(expected)) {
			return nil
		}
	}
	return ErrNoValidSignature
}

func parseHeader(header string) (int64, []string, error) {
	var (
		ts         int64
		hasTS      bool
		signatures []string
	)

	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			return 0, nil, ErrMalformedHeader
		}
		switch kv[0] {
		case "t":
			v, err := strconv.ParseInt(kv[1], 10, 64)
			if err != nil {
				return 0, nil, fmt.Errorf("%w: bad timestamp", ErrMalformedHeader)
			}
			ts, hasTS = v, true
		case "v1":
			signatures = append(signatures, kv[1])
		}
	}

	if !hasTS || len(signatures) == 0 {
		return 0, nil, ErrMalformedHeader
	}
	return ts, signatures, nil
}

func computeSignature(secret string, ts int64, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(ts, 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
