package process_webhook

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SMC-ReservationCore/pkg/webhooksig"
)

// Processor вход для подписанных событий провайдера
type Processor struct {
	applier      *Applier
	secret       string
	tolerance    time.Duration
	timeProvider TimeProvider
	logger       Logger
}

// NewProcessor создает обработчик подписанных событий.
// С пустым секретом любое событие отклоняется как неподписанное.
func NewProcessor(applier *Applier, secret string, tolerance time.Duration, logger Logger) *Processor {
	return &Processor{
		applier:      applier,
		secret:       secret,
		tolerance:    tolerance,
		timeProvider: realTimeProvider{},
		logger:       logger,
	}
}

// HandleSigned проверяет подпись и применяет событие.
// До успешной проверки ни одна таблица не читается и не пишется.
func (p *Processor) HandleSigned(ctx context.Context, payload []byte, signatureHeader string) (*Result, error) {
	if err := webhooksig.Verify(p.secret, payload, signatureHeader, p.tolerance, p.timeProvider.Now()); err != nil {
		p.logger.Warn("ProcessWebhook: rejected event with bad signature: %v", err)
		p.applier.metrics.IncWebhookEvent("unknown", "rejected")
		return nil, fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
	}

	return p.applier.apply(ctx, payload)
}

// UnsignedProcessor вход для локальной разработки: события без подписи.
// Существует только при явном разрешении и пустом секрете.
type UnsignedProcessor struct {
	applier *Applier
	logger  Logger
}

// NewUnsignedProcessor возвращает ErrUnsignedDisabled, если неподписанный приём
// не разрешён или секрет подписи задан.
func NewUnsignedProcessor(applier *Applier, allowUnsigned bool, secret string, logger Logger) (*UnsignedProcessor, error) {
	if !allowUnsigned || secret != "" {
		return nil, ErrUnsignedDisabled
	}
	return &UnsignedProcessor{applier: applier, logger: logger}, nil
}

// HandleUnsigned применяет событие без проверки подписи
func (p *UnsignedProcessor) HandleUnsigned(ctx context.Context, payload []byte) (*Result, error) {
	p.logger.Warn("ProcessWebhook: accepting UNSIGNED event (development mode)")
	return p.applier.apply(ctx, payload)
}
