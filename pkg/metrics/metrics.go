package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics набор метрик сервиса.
// Все методы безопасны для вызова на nil-получателе: если метрики выключены,
// в слои передаётся nil и вызовы превращаются в no-op.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	DBQueryDuration     *prometheus.HistogramVec
	DBOpenConnections   prometheus.Gauge
	DBInUseConnections  prometheus.Gauge
	DBIdleConnections   prometheus.Gauge
	DBWaitCount         prometheus.Gauge
	DBWaitDurationTotal prometheus.Gauge

	BookingsConfirmed *prometheus.CounterVec
	CapacityClaims    *prometheus.CounterVec
	PaymentIntents    *prometheus.CounterVec
	WebhookEvents     *prometheus.CounterVec
	BookingsExpired   prometheus.Counter

	DispatchConnected prometheus.Gauge
}

// New создает метрики и регистрирует их в глобальном registry
func New(serviceName string) *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer, serviceName)
}

// NewWithRegistry создает метрики и регистрирует их в переданном registry
func NewWithRegistry(reg prometheus.Registerer, serviceName string) *Metrics {
	constLabels := prometheus.Labels{"service": serviceName}

	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: constLabels,
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "route"}),

		DBQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Database query duration in seconds",
			ConstLabels: constLabels,
			Buckets:     []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),
		DBOpenConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "db_open_connections",
			Help:        "Number of established connections",
			ConstLabels: constLabels,
		}),
		DBInUseConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "db_in_use_connections",
			Help:        "Number of connections currently in use",
			ConstLabels: constLabels,
		}),
		DBIdleConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "db_idle_connections",
			Help:        "Number of idle connections",
			ConstLabels: constLabels,
		}),
		DBWaitCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "db_wait_count",
			Help:        "Total number of connections waited for",
			ConstLabels: constLabels,
		}),
		DBWaitDurationTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "db_wait_duration_seconds_total",
			Help:        "Total time blocked waiting for a new connection",
			ConstLabels: constLabels,
		}),

		BookingsConfirmed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "bookings_confirmed_total",
			Help:        "Bookings moved to confirmed, by confirmation path",
			ConstLabels: constLabels,
		}, []string{"path"}),
		CapacityClaims: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "capacity_claims_total",
			Help:        "Capacity slot claim attempts, by result",
			ConstLabels: constLabels,
		}, []string{"result"}),
		PaymentIntents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "payment_intents_total",
			Help:        "Payment intent requests, by result",
			ConstLabels: constLabels,
		}, []string{"result"}),
		WebhookEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "webhook_events_total",
			Help:        "Payment provider webhook events, by type and result",
			ConstLabels: constLabels,
		}, []string{"type", "result"}),
		BookingsExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "bookings_expired_total",
			Help:        "Pending bookings moved to expired",
			ConstLabels: constLabels,
		}),

		DispatchConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "dispatch_broker_connected",
			Help:        "1 if the dispatch publisher holds a live broker channel",
			ConstLabels: constLabels,
		}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.DBQueryDuration,
		m.DBOpenConnections,
		m.DBInUseConnections,
		m.DBIdleConnections,
		m.DBWaitCount,
		m.DBWaitDurationTotal,
		m.BookingsConfirmed,
		m.CapacityClaims,
		m.PaymentIntents,
		m.WebhookEvents,
		m.BookingsExpired,
		m.DispatchConnected,
	)

	return m
}

// IncBookingConfirmed учитывает подтверждение бронирования (path: explicit | webhook)
func (m *Metrics) IncBookingConfirmed(path string) {
	if m == nil {
		return
	}
	m.BookingsConfirmed.WithLabelValues(path).Inc()
}

// IncCapacityClaim учитывает попытку захвата вместимости (result: ok | exceeded)
func (m *Metrics) IncCapacityClaim(result string) {
	if m == nil {
		return
	}
	m.CapacityClaims.WithLabelValues(result).Inc()
}

// IncPaymentIntent учитывает результат запроса платёжного намерения
func (m *Metrics) IncPaymentIntent(result string) {
	if m == nil {
		return
	}
	m.PaymentIntents.WithLabelValues(result).Inc()
}

// IncWebhookEvent учитывает обработку события вебхука
func (m *Metrics) IncWebhookEvent(eventType, result string) {
	if m == nil {
		return
	}
	m.WebhookEvents.WithLabelValues(eventType, result).Inc()
}

// AddBookingsExpired учитывает истёкшие бронирования
func (m *Metrics) AddBookingsExpired(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.BookingsExpired.Add(float64(n))
}

// SetDispatchConnected состояние соединения публикатора с брокером
func (m *Metrics) SetDispatchConnected(up bool) {
	if m == nil {
		return
	}
	if up {
		m.DispatchConnected.Set(1)
		return
	}
	m.DispatchConnected.Set(0)
}

// ObserveHTTP записывает метрики HTTP запроса
func (m *Metrics) ObserveHTTP(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(seconds)
}

// ObserveDBQuery записывает длительность запроса к БД
func (m *Metrics) ObserveDBQuery(operation string, seconds float64) {
	if m == nil {
		return
	}
	m.DBQueryDuration.WithLabelValues(operation).Observe(seconds)
}
