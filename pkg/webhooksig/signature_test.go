package webhooksig

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const secret = "whsec_test"

func TestVerify_RoundTrip(t *testing.T) {
	now := time.Unix(1_760_000_000, 0)
	payload := []byte(`{"id":"evt_1"}`)

	header := Sign(secret, payload, now)

	assert.NoError(t, Verify(secret, payload, header, DefaultTolerance, now.Add(time.Minute)))
}

func TestVerify_Failures(t *testing.T) {
	now := time.Unix(1_760_000_000, 0)
	payload := []byte(`{"id":"evt_1"}`)
	header := Sign(secret, payload, now)

	tests := []struct {
		name    string
		secret  string
		payload []byte
		header  string
		now     time.Time
		want    error
	}{
		{"missing header", secret, payload, "", now, ErrMissingHeader},
		{"empty secret", "", payload, header, now, ErrEmptySecret},
		{"garbage", secret, payload, "nonsense", now, ErrMalformedHeader},
		{"no signature", secret, payload, "t=1760000000", now, ErrMalformedHeader},
		{"tampered payload", secret, []byte(`{"id":"evt_2"}`), header, now, ErrNoValidSignature},
		{"wrong secret", "other", payload, header, now, ErrNoValidSignature},
		{"stale", secret, payload, header, now.Add(time.Hour), ErrTimestampOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Verify(tt.secret, tt.payload, tt.header, DefaultTolerance, tt.now)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestVerify_AcceptsAnyOfSeveralSignatures(t *testing.T) {
	now := time.Unix(1_760_000_000, 0)
	payload := []byte(`{}`)
	good := Sign(secret, payload, now)

	header := "t=1760000000,v1=deadbeef," + good[len("t=1760000000,"):]

	assert.NoError(t, Verify(secret, payload, header, DefaultTolerance, now))
}
