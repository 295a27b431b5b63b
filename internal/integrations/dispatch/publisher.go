package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	exchangeKind = "topic"

	dialTimeout           = 5 * time.Second
	heartbeat             = 10 * time.Second
	defaultRedialInterval = 5 * time.Second
	publishAttempts       = 2
)

// ErrPublish ошибка публикации события
var ErrPublish = errors.New("dispatch: failed to publish event")

// session соединение и канал; closed закрывается или получает ошибку,
// когда брокер рвёт канал
type session struct {
	conn   io.Closer
	ch     channel
	closed <-chan *amqp.Error
}

func (s *session) isClosed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

func (s *session) close() {
	_ = s.ch.Close()
	_ = s.conn.Close()
}

type dialFunc func() (*session, error)

// Publisher публикует события подтверждения в topic exchange RabbitMQ.
// Потерянное соединение восстанавливается при следующей публикации;
// после неудачного дозвона новый пробуется не чаще redialInterval.
type Publisher struct {
	mu             sync.Mutex
	dial           dialFunc
	sess           *session
	lastDialFail   time.Time
	redialInterval time.Duration
	now            func() time.Time

	exchange   string
	routingKey string
	metrics    Metrics
	log        Logger
}

// NewPublisher подключается к брокеру и объявляет durable topic exchange
func NewPublisher(url, exchange, routingKey string, metrics Metrics, log Logger) (*Publisher, error) {
	dial := func() (*session, error) {
		return dialSession(url, exchange)
	}

	p := newPublisher(dial, exchange, routingKey, metrics, log)

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, err := p.ensureSession(); err != nil {
		return nil, err
	}
	return p, nil
}

func newPublisher(dial dialFunc, exchange, routingKey string, metrics Metrics, log Logger) *Publisher {
	return &Publisher{
		dial:           dial,
		redialInterval: defaultRedialInterval,
		now:            time.Now,
		exchange:       exchange,
		routingKey:     routingKey,
		metrics:        metrics,
		log:            log,
	}
}

func dialSession(url, exchange string) (*session, error) {
	conn, err := amqp.DialConfig(url, amqp.Config{
		Heartbeat: heartbeat,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(dialTimeout),
	})
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, exchangeKind, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}

	closed := ch.NotifyClose(make(chan *amqp.Error, 1))
	return &session{conn: conn, ch: ch, closed: closed}, nil
}

// ensureSession вызывается под p.mu
func (p *Publisher) ensureSession() (*session, error) {
	if p.sess != nil && !p.sess.isClosed() {
		return p.sess, nil
	}
	if p.sess != nil {
		p.log.Warn("Dispatch: broker channel closed, reconnecting")
		p.dropSession()
	}

	if !p.lastDialFail.IsZero() && p.now().Sub(p.lastDialFail) < p.redialInterval {
		return nil, fmt.Errorf("%w: broker unavailable, last dial failed at %s", ErrPublish, p.lastDialFail.Format(time.RFC3339))
	}

	sess, err := p.dial()
	if err != nil {
		p.lastDialFail = p.now()
		p.metrics.SetDispatchConnected(false)
		p.log.Error("Dispatch: failed to connect to broker: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrPublish, err)
	}

	p.lastDialFail = time.Time{}
	p.sess = sess
	p.metrics.SetDispatchConnected(true)
	p.log.Info("Dispatch: connected to broker, exchange=%s", p.exchange)
	return sess, nil
}

// dropSession вызывается под p.mu
func (p *Publisher) dropSession() {
	if p.sess == nil {
		return
	}
	p.sess.close()
	p.sess = nil
	p.metrics.SetDispatchConnected(false)
}

// PublishBookingConfirmed публикует событие. MessageId = ID бронирования,
// чтобы потребитель мог отбросить повтор.
func (p *Publisher) PublishBookingConfirmed(ctx context.Context, event BookingConfirmed) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%w: marshal event: %v", ErrPublish, err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.BookingID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	// amqp.Channel нельзя использовать конкурентно
	p.mu.Lock()
	defer p.mu.Unlock()

	var lastErr error
	for attempt := 1; attempt <= publishAttempts; attempt++ {
		sess, err := p.ensureSession()
		if err != nil {
			lastErr = err
			break
		}

		err = sess.ch.PublishWithContext(ctx, p.exchange, p.routingKey, false, false, msg)
		if err == nil {
			p.log.Info("PublishBookingConfirmed: published booking=%s to %s/%s", event.BookingID, p.exchange, p.routingKey)
			return nil
		}

		// Канал после ошибки публикации не переиспользуем
		lastErr = fmt.Errorf("%w: %v", ErrPublish, err)
		p.log.Warn("PublishBookingConfirmed: booking=%s attempt %d failed: %v", event.BookingID, attempt, err)
		p.dropSession()
	}

	p.log.Error("PublishBookingConfirmed: booking=%s: %v", event.BookingID, lastErr)
	return lastErr
}

// Close закрывает канал и соединение
func (p *Publisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dropSession()
}

// NoopPublisher используется, когда диспетчеризация выключена
type NoopPublisher struct {
	log Logger
}

// NewNoopPublisher создает публикатор, который только пишет в лог
func NewNoopPublisher(log Logger) *NoopPublisher {
	return &NoopPublisher{log: log}
}

// PublishBookingConfirmed пишет событие в лог
func (p *NoopPublisher) PublishBookingConfirmed(ctx context.Context, event BookingConfirmed) error {
	p.log.Info("PublishBookingConfirmed: dispatch disabled, booking=%s path=%s", event.BookingID, event.Path)
	return nil
}
