package process_webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/m04kA/SMC-ReservationCore/internal/domain"
	bookingRepo "github.com/m04kA/SMC-ReservationCore/internal/infra/storage/booking"
	paymentRepo "github.com/m04kA/SMC-ReservationCore/internal/infra/storage/payment"
	"github.com/m04kA/SMC-ReservationCore/internal/usecase/confirm_booking"
)

// Applier применяет уже проверенное событие. Общий для подписанного и
// неподписанного входов; сам подпись не проверяет и наружу не отдаётся.
type Applier struct {
	events    EventRepository
	payments  PaymentRepository
	bookings  BookingRepository
	confirmer Confirmer
	metrics   Metrics
	txManager TransactionManager
	logger    Logger
}

// NewApplier создает применитель событий
func NewApplier(
	events EventRepository,
	payments PaymentRepository,
	bookings BookingRepository,
	confirmer Confirmer,
	metrics Metrics,
	txManager TransactionManager,
	logger Logger,
) *Applier {
	return &Applier{
		events:    events,
		payments:  payments,
		bookings:  bookings,
		confirmer: confirmer,
		metrics:   metrics,
		txManager: txManager,
		logger:    logger,
	}
}

func parseEvent(payload []byte) (*event, error) {
	var evt event
	if err := json.Unmarshal(payload, &evt); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if strings.TrimSpace(evt.ID) == "" {
		return nil, fmt.Errorf("%w: event id is required", ErrInvalidPayload)
	}
	if strings.TrimSpace(evt.Type) == "" {
		return nil, fmt.Errorf("%w: event type is required", ErrInvalidPayload)
	}
	if isPaymentIntentEvent(evt.Type) && strings.TrimSpace(evt.Data.Object.ID) == "" {
		return nil, fmt.Errorf("%w: data.object.id is required for %s", ErrInvalidPayload, evt.Type)
	}
	return &evt, nil
}

func isPaymentIntentEvent(eventType string) bool {
	switch eventType {
	case domain.EventPaymentIntentCreated, domain.EventPaymentIntentSucceeded, domain.EventPaymentIntentFailed:
		return true
	}
	return false
}

// apply дедупликация и эффекты события одной транзакцией
func (a *Applier) apply(ctx context.Context, payload []byte) (*Result, error) {
	evt, err := parseEvent(payload)
	if err != nil {
		a.logger.Warn("ProcessWebhook: %v", err)
		a.metrics.IncWebhookEvent("unknown", "invalid")
		return nil, err
	}

	obj := evt.Data.Object
	a.logger.Info("ProcessWebhook: event=%s type=%s intent=%s", evt.ID, evt.Type, obj.ID)

	var (
		result    *Result
		confirmed *confirm_booking.Result
	)
	err = a.txManager.Do(ctx, func(txCtx context.Context) error {
		// Транзакция может повторяться, результат прошлой попытки не переносим
		result = &Result{EventID: evt.ID, Type: evt.Type}
		confirmed = nil

		recorded, err := a.events.Record(txCtx, &domain.WebhookEvent{
			EventID:         evt.ID,
			Type:            evt.Type,
			AmountCents:     obj.Amount,
			Currency:        strings.ToUpper(obj.Currency),
			PaymentIntentID: obj.ID,
			AppliedStatus:   domain.AppliedReceived,
		})
		if err != nil {
			return err
		}
		if !recorded {
			result.Duplicate = true
			return nil
		}

		status, res, err := a.applyEffects(txCtx, evt)
		if err != nil {
			return err
		}
		result.AppliedStatus = status
		confirmed = res

		return a.events.SetAppliedStatus(txCtx, evt.ID, status)
	})
	if err != nil {
		a.logger.Error("ProcessWebhook: event=%s not applied, awaiting redelivery: %v", evt.ID, err)
		a.metrics.IncWebhookEvent(metricType(evt.Type), "error")
		return nil, fmt.Errorf("%w: %v", ErrTransient, err)
	}

	if result.Duplicate {
		a.logger.Info("ProcessWebhook: event=%s already processed, skipping", evt.ID)
		a.metrics.IncWebhookEvent(metricType(evt.Type), "duplicate")
		return result, nil
	}

	if confirmed != nil && confirmed.Outcome == confirm_booking.OutcomeConfirmed {
		a.confirmer.NotifyConfirmed(ctx, confirmed.Booking, domain.ConfirmPathWebhook)
	}

	a.metrics.IncWebhookEvent(metricType(evt.Type), string(result.AppliedStatus))
	return result, nil
}

func (a *Applier) applyEffects(ctx context.Context, evt *event) (domain.AppliedStatus, *confirm_booking.Result, error) {
	obj := evt.Data.Object
	eventID := evt.ID

	payment := &domain.Payment{
		PaymentIntentID: obj.ID,
		BookingID:       obj.bookingID(),
		AmountCents:     obj.Amount,
		Currency:        strings.ToUpper(obj.Currency),
		LastEventID:     &eventID,
	}

	switch evt.Type {
	case domain.EventPaymentIntentCreated:
		// Намерение в процессе: только фиксируем, существующую строку не трогаем
		payment.Status = domain.PaymentRequiresPaymentMethod
		if _, err := a.payments.CreatePaymentIfAbsent(ctx, payment); err != nil {
			return "", nil, err
		}
		return domain.AppliedCreated, nil, nil

	case domain.EventPaymentIntentFailed:
		payment.Status = domain.PaymentFailed
		if err := a.payments.UpsertPaymentStatus(ctx, payment); err != nil {
			return "", nil, err
		}
		a.logger.Info("ProcessWebhook: intent=%s failed", obj.ID)
		return domain.AppliedFailed, nil, nil

	case domain.EventPaymentIntentSucceeded:
		payment.Status = domain.PaymentSucceeded
		if err := a.payments.UpsertPaymentStatus(ctx, payment); err != nil {
			return "", nil, err
		}
		return a.confirmLinkedBooking(ctx, obj)

	default:
		a.logger.Info("ProcessWebhook: event=%s of type %s ignored", evt.ID, evt.Type)
		return domain.AppliedIgnored, nil, nil
	}
}

// confirmLinkedBooking подтверждает бронирование, оплаченное этим намерением
func (a *Applier) confirmLinkedBooking(ctx context.Context, obj intentObject) (domain.AppliedStatus, *confirm_booking.Result, error) {
	bookingID := obj.bookingID()
	if bookingID == nil {
		stored, err := a.payments.GetPayment(ctx, obj.ID)
		if err != nil && !errors.Is(err, paymentRepo.ErrPaymentNotFound) {
			return "", nil, err
		}
		if stored != nil {
			bookingID = stored.BookingID
		}
	}
	if bookingID == nil {
		a.logger.Warn("ProcessWebhook: intent=%s succeeded without a linked booking", obj.ID)
		return domain.AppliedSucceeded, nil, nil
	}

	res, err := a.confirmer.ConfirmInTx(ctx, *bookingID, domain.ConfirmPathWebhook)
	if err != nil {
		switch {
		case errors.Is(err, confirm_booking.ErrCapacityExceeded),
			errors.Is(err, confirm_booking.ErrNotPending),
			errors.Is(err, confirm_booking.ErrBookingNotFound):
			// Деньги получены, места нет: бронирование остаётся как есть, нужен возврат
			a.logger.Warn("ProcessWebhook: intent=%s succeeded but booking=%s cannot be confirmed: %v", obj.ID, *bookingID, err)
			return domain.AppliedSucceededUnfulfilled, nil, nil
		default:
			return "", nil, err
		}
	}

	if err := a.bookings.AttachPaymentIntent(ctx, *bookingID, obj.ID); err != nil {
		if !errors.Is(err, bookingRepo.ErrPaymentIntentConflict) {
			return "", nil, err
		}
		a.logger.Warn("ProcessWebhook: booking=%s is linked to another intent, intent=%s not attached", *bookingID, obj.ID)
	}

	return domain.AppliedSucceeded, res, nil
}

// metricType ограничивает кардинальность метки типа события
func metricType(eventType string) string {
	if isPaymentIntentEvent(eventType) {
		return eventType
	}
	return "other"
}
