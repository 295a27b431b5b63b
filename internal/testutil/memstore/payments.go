package memstore

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ReservationCore/internal/domain"
	paymentRepo "github.com/m04kA/SMC-ReservationCore/internal/infra/storage/payment"
)

func keyRow(key string) string { return "keys:" + key }
func paymentRow(id string) string { return "payments:" + id }

// PaymentRepo таблицы idempotency_keys и payments
type PaymentRepo struct {
	store *Store
}

// Payments репозиторий платежей
func (s *Store) Payments() *PaymentRepo {
	return &PaymentRepo{store: s}
}

// PutKey кладёт запись ключа как есть (подготовка данных в тестах)
func (r *PaymentRepo) PutKey(rec domain.IdempotencyRecord) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.keys[rec.Key] = rec
}

// PaymentsCount количество строк в payments
func (r *PaymentRepo) PaymentsCount() int {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return len(r.store.payments)
}

// ReserveKey insert-if-absent
func (r *PaymentRepo) ReserveKey(ctx context.Context, key, fingerprint string) (bool, error) {
	unlock := r.store.lockRow(ctx, keyRow(key))
	defer unlock()

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err := r.store.failure("ReserveKey"); err != nil {
		return false, err
	}
	if _, ok := r.store.keys[key]; ok {
		return false, nil
	}
	now := time.Now()
	putRow(ctx, r.store.keys, key, domain.IdempotencyRecord{
		Key:         key,
		Fingerprint: fingerprint,
		Status:      domain.IdempotencyInProgress,
		LockedAt:    now,
		CreatedAt:   now,
	})
	return true, nil
}

// GetKey запись ключа
func (r *PaymentRepo) GetKey(ctx context.Context, key string) (*domain.IdempotencyRecord, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	rec, ok := r.store.keys[key]
	if !ok {
		return nil, paymentRepo.ErrKeyNotFound
	}
	rec.ResponseBody = append([]byte(nil), rec.ResponseBody...)
	return &rec, nil
}

// TakeOverStaleKey перехват зависшего ключа
func (r *PaymentRepo) TakeOverStaleKey(ctx context.Context, key string, staleBefore time.Time) (bool, error) {
	unlock := r.store.lockRow(ctx, keyRow(key))
	defer unlock()

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	rec, ok := r.store.keys[key]
	if !ok || rec.Status != domain.IdempotencyInProgress || !rec.LockedAt.Before(staleBefore) {
		return false, nil
	}
	rec.LockedAt = time.Now()
	putRow(ctx, r.store.keys, key, rec)
	return true, nil
}

// CompleteKey сохраняет ответ
func (r *PaymentRepo) CompleteKey(ctx context.Context, key, paymentIntentID string, responseBody []byte) error {
	unlock := r.store.lockRow(ctx, keyRow(key))
	defer unlock()

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err := r.store.failure("CompleteKey"); err != nil {
		return err
	}
	rec, ok := r.store.keys[key]
	if !ok || rec.Status != domain.IdempotencyInProgress {
		return paymentRepo.ErrKeyNotInProgress
	}
	now := time.Now()
	pi := paymentIntentID
	rec.Status = domain.IdempotencyCompleted
	rec.PaymentIntentID = &pi
	rec.ResponseBody = append([]byte(nil), responseBody...)
	rec.CompletedAt = &now
	putRow(ctx, r.store.keys, key, rec)
	return nil
}

// ReleaseKey удаляет незавершённый ключ
func (r *PaymentRepo) ReleaseKey(ctx context.Context, key string) error {
	unlock := r.store.lockRow(ctx, keyRow(key))
	defer unlock()

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if rec, ok := r.store.keys[key]; ok && rec.Status == domain.IdempotencyInProgress {
		deleteRow(ctx, r.store.keys, key)
	}
	return nil
}

// CreatePaymentIfAbsent insert-if-absent
func (r *PaymentRepo) CreatePaymentIfAbsent(ctx context.Context, p *domain.Payment) (bool, error) {
	unlock := r.store.lockRow(ctx, paymentRow(p.PaymentIntentID))
	defer unlock()

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err := r.store.failure("CreatePaymentIfAbsent"); err != nil {
		return false, err
	}
	if _, ok := r.store.payments[p.PaymentIntentID]; ok {
		return false, nil
	}
	now := time.Now()
	row := *p
	row.CreatedAt = now
	row.UpdatedAt = now
	putRow(ctx, r.store.payments, p.PaymentIntentID, row)
	return true, nil
}

// UpsertPaymentStatus последний записавший побеждает
func (r *PaymentRepo) UpsertPaymentStatus(ctx context.Context, p *domain.Payment) error {
	unlock := r.store.lockRow(ctx, paymentRow(p.PaymentIntentID))
	defer unlock()

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err := r.store.failure("UpsertPaymentStatus"); err != nil {
		return err
	}
	now := time.Now()
	row, ok := r.store.payments[p.PaymentIntentID]
	if !ok {
		row = *p
		row.CreatedAt = now
	} else {
		row.Status = p.Status
		row.LastEventID = p.LastEventID
		if row.BookingID == nil {
			row.BookingID = p.BookingID
		}
	}
	row.UpdatedAt = now
	putRow(ctx, r.store.payments, p.PaymentIntentID, row)
	return nil
}

// GetPayment платёж по ID намерения
func (r *PaymentRepo) GetPayment(ctx context.Context, paymentIntentID string) (*domain.Payment, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	p, ok := r.store.payments[paymentIntentID]
	if !ok {
		return nil, paymentRepo.ErrPaymentNotFound
	}
	return &p, nil
}

// GetLatestByBookingID последний обновлённый платёж бронирования
func (r *PaymentRepo) GetLatestByBookingID(ctx context.Context, bookingID string) (*domain.Payment, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var latest *domain.Payment
	for _, p := range r.store.payments {
		if p.BookingID == nil || *p.BookingID != bookingID {
			continue
		}
		if latest == nil || p.UpdatedAt.After(latest.UpdatedAt) {
			copied := p
			latest = &copied
		}
	}
	if latest == nil {
		return nil, paymentRepo.ErrPaymentNotFound
	}
	return latest, nil
}
