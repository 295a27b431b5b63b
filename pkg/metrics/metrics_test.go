package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_DomainCounters(t *testing.T) {
	m := NewWithRegistry(prometheus.NewRegistry(), "reservation-core")

	m.IncBookingConfirmed("explicit")
	m.IncBookingConfirmed("webhook")
	m.IncBookingConfirmed("webhook")
	m.IncCapacityClaim("exceeded")
	m.IncWebhookEvent("payment_intent.succeeded", "duplicate")
	m.AddBookingsExpired(3)
	m.AddBookingsExpired(0)
	m.SetDispatchConnected(true)
	m.SetDispatchConnected(false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.BookingsConfirmed.WithLabelValues("explicit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.BookingsConfirmed.WithLabelValues("webhook")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CapacityClaims.WithLabelValues("exceeded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WebhookEvents.WithLabelValues("payment_intent.succeeded", "duplicate")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.BookingsExpired))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.DispatchConnected))
}

func TestMetrics_NilReceiverIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.IncBookingConfirmed("explicit")
		m.IncCapacityClaim("ok")
		m.IncPaymentIntent("created")
		m.IncWebhookEvent("x", "y")
		m.AddBookingsExpired(1)
		m.SetDispatchConnected(true)
		m.ObserveHTTP("GET", "/", "200", 0.1)
		m.ObserveDBQuery("exec", 0.1)
	})
}
