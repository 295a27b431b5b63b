package create_payment_intent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-ReservationCore/internal/domain"
	bookingRepo "github.com/m04kA/SMC-ReservationCore/internal/infra/storage/booking"
	paymentRepo "github.com/m04kA/SMC-ReservationCore/internal/infra/storage/payment"
	"github.com/m04kA/SMC-ReservationCore/internal/integrations/paymentprovider"
	"github.com/m04kA/SMC-ReservationCore/internal/service/pricing"
)

// maxKeyAttempts сколько раз пробуем занять ключ, если его освобождают у нас на глазах
const maxKeyAttempts = 3

// UseCase создание платёжного намерения за ключом идемпотентности.
// Один ключ всегда соответствует одному намерению и одному телу ответа.
type UseCase struct {
	bookingRepo  BookingRepository
	paymentRepo  PaymentRepository
	pricing      PricingService
	provider     Provider
	metrics      Metrics
	txManager    TransactionManager
	lockTTL      time.Duration
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case.
// lockTTL: через сколько незавершённый ключ считается брошенным и может быть перехвачен.
func NewUseCase(
	bookingRepo BookingRepository,
	paymentRepo PaymentRepository,
	pricing PricingService,
	provider Provider,
	metrics Metrics,
	txManager TransactionManager,
	lockTTL time.Duration,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		paymentRepo:  paymentRepo,
		pricing:      pricing,
		provider:     provider,
		metrics:      metrics,
		txManager:    txManager,
		lockTTL:      lockTTL,
		timeProvider: realTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет use case создания платёжного намерения
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreatePaymentIntent: key=%s amount=%d %s", req.IdempotencyKey, req.AmountCents, req.Currency)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreatePaymentIntent: validation failed: %v", err)
		uc.metrics.IncPaymentIntent("invalid")
		return nil, err
	}

	fp, err := fingerprint(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to compute fingerprint: %v", ErrInternal, err)
	}

	// 2. Занимаем ключ или отдаём сохранённый ответ
	replay, err := uc.acquireKey(ctx, req.IdempotencyKey, fp)
	if err != nil {
		uc.metrics.IncPaymentIntent(resultLabel(err))
		return nil, err
	}
	if replay != nil {
		uc.logger.Info("CreatePaymentIntent: key=%s replayed stored response", req.IdempotencyKey)
		uc.metrics.IncPaymentIntent("replayed")
		return replay, nil
	}

	// С этого момента ключ наш: при любой ошибке до сохранения ответа его нужно освободить
	resp, err := uc.createOwned(ctx, req, fp)
	if err != nil {
		uc.metrics.IncPaymentIntent(resultLabel(err))
		return nil, err
	}

	uc.metrics.IncPaymentIntent("created")
	return resp, nil
}

func (uc *UseCase) createOwned(ctx context.Context, req *Request, fp string) (*Response, error) {
	// 3. Сверяем сумму с сервером
	if err := uc.checkAmount(ctx, req); err != nil {
		uc.releaseKey(ctx, req.IdempotencyKey)
		return nil, err
	}

	// 4. Провайдер получает тот же ключ: повтор после сбоя вернёт то же намерение
	intent, err := uc.provider.CreatePaymentIntent(ctx, paymentprovider.CreateIntentRequest{
		IdempotencyKey: req.IdempotencyKey,
		AmountCents:    req.AmountCents,
		Currency:       req.Currency,
		BookingID:      req.BookingID,
		TripContext:    req.TripContext,
	})
	if err != nil {
		uc.releaseKey(ctx, req.IdempotencyKey)
		if errors.Is(err, paymentprovider.ErrRejected) {
			uc.logger.Warn("CreatePaymentIntent: key=%s rejected by provider: %v", req.IdempotencyKey, err)
			return nil, fmt.Errorf("%w: %v", ErrProviderRejected, err)
		}
		uc.logger.Error("CreatePaymentIntent: key=%s provider failed: %v", req.IdempotencyKey, err)
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	body, err := json.Marshal(responseBody{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
	})
	if err != nil {
		uc.releaseKey(ctx, req.IdempotencyKey)
		return nil, fmt.Errorf("%w: failed to marshal response: %v", ErrInternal, err)
	}

	// 5. Ответ, платёж и привязка к бронированию сохраняются одной транзакцией
	err = uc.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := uc.paymentRepo.CompleteKey(txCtx, req.IdempotencyKey, intent.ID, body); err != nil {
			return err
		}

		_, err := uc.paymentRepo.CreatePaymentIfAbsent(txCtx, &domain.Payment{
			PaymentIntentID: intent.ID,
			BookingID:       req.BookingID,
			AmountCents:     req.AmountCents,
			Currency:        strings.ToUpper(req.Currency),
			Status:          domain.PaymentRequiresPaymentMethod,
		})
		if err != nil {
			return err
		}

		if req.BookingID != nil {
			err := uc.bookingRepo.AttachPaymentIntent(txCtx, *req.BookingID, intent.ID)
			if errors.Is(err, bookingRepo.ErrPaymentIntentConflict) {
				// У бронирования уже есть другое намерение; строка payments всё равно ссылается на бронирование
				uc.logger.Warn("CreatePaymentIntent: booking=%s already has another payment intent, keeping it", *req.BookingID)
				return nil
			}
			return err
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, paymentRepo.ErrKeyNotInProgress) {
			// Ключ перехватили и завершили, пока мы ждали провайдера: отдаём их ответ
			if replay, replayErr := uc.replayCompleted(ctx, req.IdempotencyKey, fp); replayErr == nil {
				return replay, nil
			}
		}
		uc.releaseKey(ctx, req.IdempotencyKey)
		uc.logger.Error("CreatePaymentIntent: key=%s failed to store response: %v", req.IdempotencyKey, err)
		return nil, fmt.Errorf("%w: failed to store response: %v", ErrInternal, err)
	}

	uc.logger.Info("CreatePaymentIntent: key=%s created intent=%s", req.IdempotencyKey, intent.ID)

	return &Response{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
		Body:            body,
	}, nil
}

// acquireKey занимает ключ. Возвращает сохранённый ответ, если ключ уже завершён
// с тем же отпечатком; nil, nil: ключ занят этим запросом.
func (uc *UseCase) acquireKey(ctx context.Context, key, fp string) (*Response, error) {
	for attempt := 0; attempt < maxKeyAttempts; attempt++ {
		reserved, err := uc.paymentRepo.ReserveKey(ctx, key, fp)
		if err != nil {
			uc.logger.Error("CreatePaymentIntent: failed to reserve key=%s: %v", key, err)
			return nil, fmt.Errorf("%w: failed to reserve key: %v", ErrInternal, err)
		}
		if reserved {
			return nil, nil
		}

		rec, err := uc.paymentRepo.GetKey(ctx, key)
		if errors.Is(err, paymentRepo.ErrKeyNotFound) {
			// Владелец освободил ключ между нашей вставкой и чтением
			continue
		}
		if err != nil {
			uc.logger.Error("CreatePaymentIntent: failed to read key=%s: %v", key, err)
			return nil, fmt.Errorf("%w: failed to read key: %v", ErrInternal, err)
		}

		if rec.Fingerprint != fp {
			uc.logger.Warn("CreatePaymentIntent: key=%s reused with different parameters", key)
			return nil, ErrIdempotencyConflict
		}

		if rec.IsCompleted() {
			return toReplay(rec)
		}

		staleBefore := uc.timeProvider.Now().Add(-uc.lockTTL)
		took, err := uc.paymentRepo.TakeOverStaleKey(ctx, key, staleBefore)
		if err != nil {
			uc.logger.Error("CreatePaymentIntent: failed to take over key=%s: %v", key, err)
			return nil, fmt.Errorf("%w: failed to take over key: %v", ErrInternal, err)
		}
		if took {
			uc.logger.Warn("CreatePaymentIntent: key=%s was abandoned since %s, taking over", key, rec.LockedAt.Format(time.RFC3339))
			return nil, nil
		}

		return nil, ErrRequestInProgress
	}

	return nil, ErrRequestInProgress
}

func (uc *UseCase) replayCompleted(ctx context.Context, key, fp string) (*Response, error) {
	rec, err := uc.paymentRepo.GetKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if rec.Fingerprint != fp || !rec.IsCompleted() {
		return nil, ErrRequestInProgress
	}
	return toReplay(rec)
}

func toReplay(rec *domain.IdempotencyRecord) (*Response, error) {
	var body responseBody
	if err := json.Unmarshal(rec.ResponseBody, &body); err != nil {
		return nil, fmt.Errorf("%w: stored response for key=%s is corrupted: %v", ErrInternal, rec.Key, err)
	}

	return &Response{
		ClientSecret:    body.ClientSecret,
		PaymentIntentID: body.PaymentIntentID,
		Body:            rec.ResponseBody,
		Replayed:        true,
	}, nil
}

// checkAmount сумма должна совпадать с ценой бронирования или, без бронирования,
// с ценой каталога для trip_context. Намерения без контекста принимаются как есть.
func (uc *UseCase) checkAmount(ctx context.Context, req *Request) error {
	if req.BookingID != nil {
		booking, err := uc.bookingRepo.GetByID(ctx, *req.BookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				uc.logger.Warn("CreatePaymentIntent: booking=%s not found", *req.BookingID)
				return ErrBookingNotFound
			}
			uc.logger.Error("CreatePaymentIntent: failed to get booking=%s: %v", *req.BookingID, err)
			return fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
		}

		if booking.Status == domain.StatusCancelled || booking.Status == domain.StatusExpired {
			uc.logger.Warn("CreatePaymentIntent: booking=%s is %s", booking.ID, booking.Status)
			return fmt.Errorf("%w: status is %s", ErrBookingNotPayable, booking.Status)
		}

		if booking.PriceCents != req.AmountCents || !strings.EqualFold(booking.Currency, req.Currency) {
			uc.logger.Warn("CreatePaymentIntent: booking=%s price %d %s, request %d %s",
				booking.ID, booking.PriceCents, booking.Currency, req.AmountCents, req.Currency)
			return ErrPriceMismatch
		}
		return nil
	}

	if tc := req.TripContext; tc != nil {
		quote, err := uc.pricing.ComputePrice(ctx, tc.TripID, tc.Mode, tc.Seats)
		if err != nil {
			if errors.Is(err, pricing.ErrPricingUnavailable) ||
				errors.Is(err, pricing.ErrNoPerSeatMode) ||
				errors.Is(err, pricing.ErrInvalidInput) {
				uc.logger.Warn("CreatePaymentIntent: cannot price trip_context %s/%s: %v", tc.TripID, tc.Mode, err)
				return fmt.Errorf("%w: %v", ErrInvalidInput, err)
			}
			return fmt.Errorf("%w: failed to compute price: %v", ErrInternal, err)
		}

		if !strings.EqualFold(quote.Currency, req.Currency) {
			return ErrPriceMismatch
		}
		amount := req.AmountCents
		if err := uc.pricing.CheckClientAmount(quote, &amount); err != nil {
			return ErrPriceMismatch
		}
	}

	return nil
}

func (uc *UseCase) releaseKey(ctx context.Context, key string) {
	if err := uc.paymentRepo.ReleaseKey(context.WithoutCancel(ctx), key); err != nil {
		// Ключ освободится сам по истечении lockTTL
		uc.logger.Error("CreatePaymentIntent: failed to release key=%s: %v", key, err)
	}
}

func resultLabel(err error) string {
	switch {
	case errors.Is(err, ErrIdempotencyConflict):
		return "conflict"
	case errors.Is(err, ErrRequestInProgress):
		return "in_progress"
	case errors.Is(err, ErrPriceMismatch):
		return "price_mismatch"
	case errors.Is(err, ErrProviderRejected), errors.Is(err, ErrProviderUnavailable):
		return "provider_error"
	case errors.Is(err, ErrInternal):
		return "error"
	default:
		return "invalid"
	}
}
