package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/m04kA/SMC-ReservationCore/internal/domain"
	bookingRepo "github.com/m04kA/SMC-ReservationCore/internal/infra/storage/booking"
)

func bookingRow(id string) string { return "bookings:" + id }

// BookingRepo таблица bookings
type BookingRepo struct {
	store *Store
}

// Bookings репозиторий бронирований
func (s *Store) Bookings() *BookingRepo {
	return &BookingRepo{store: s}
}

// Put кладёт бронирование как есть (подготовка данных в тестах)
func (r *BookingRepo) Put(b domain.Booking) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.bookings[b.ID] = b
}

// Count количество бронирований
func (r *BookingRepo) Count() int {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return len(r.store.bookings)
}

// Create создает бронирование
func (r *BookingRepo) Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	unlock := r.store.lockRow(ctx, bookingRow(b.ID))
	defer unlock()

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err := r.store.failure("CreateBooking"); err != nil {
		return nil, err
	}
	if _, ok := r.store.bookings[b.ID]; ok {
		return nil, bookingRepo.ErrDuplicateBooking
	}

	now := time.Now()
	b.CreatedAt = now
	b.UpdatedAt = now
	putRow(ctx, r.store.bookings, b.ID, *b)

	created := *b
	return &created, nil
}

// GetByID получает бронирование
func (r *BookingRepo) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err := r.store.failure("GetBooking"); err != nil {
		return nil, err
	}
	b, ok := r.store.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	return &b, nil
}

// GetByIDForUpdate блокирует строку до конца транзакции и читает её
func (r *BookingRepo) GetByIDForUpdate(ctx context.Context, id string) (*domain.Booking, error) {
	unlock := r.store.lockRow(ctx, bookingRow(id))
	defer unlock()

	b, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.store.pause("GetBookingForUpdate")
	return b, nil
}

// MarkConfirmed pending → confirmed
func (r *BookingRepo) MarkConfirmed(ctx context.Context, id string) error {
	return r.UpdateStatus(ctx, id, domain.StatusPending, domain.StatusConfirmed)
}

// UpdateStatus условный переход статуса
func (r *BookingRepo) UpdateStatus(ctx context.Context, id string, from, to domain.BookingStatus) error {
	unlock := r.store.lockRow(ctx, bookingRow(id))
	defer unlock()

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err := r.store.failure("UpdateStatus"); err != nil {
		return err
	}
	b, ok := r.store.bookings[id]
	if !ok || b.Status != from {
		return bookingRepo.ErrStatusConflict
	}
	b.Status = to
	b.UpdatedAt = time.Now()
	putRow(ctx, r.store.bookings, id, b)
	return nil
}

// AttachPaymentIntent однократная привязка намерения
func (r *BookingRepo) AttachPaymentIntent(ctx context.Context, id, paymentIntentID string) error {
	unlock := r.store.lockRow(ctx, bookingRow(id))
	defer unlock()

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	b, ok := r.store.bookings[id]
	if !ok {
		return bookingRepo.ErrBookingNotFound
	}
	if b.PaymentIntentID != nil && *b.PaymentIntentID != paymentIntentID {
		return bookingRepo.ErrPaymentIntentConflict
	}
	pi := paymentIntentID
	b.PaymentIntentID = &pi
	putRow(ctx, r.store.bookings, id, b)
	return nil
}

// ExpirePending pending старше cutoff → expired. Строки, заблокированные
// другими транзакциями, пропускаются (FOR UPDATE SKIP LOCKED).
func (r *BookingRepo) ExpirePending(ctx context.Context, cutoff time.Time, limit int) ([]string, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err := r.store.failure("ExpirePending"); err != nil {
		return nil, err
	}

	candidates := make([]domain.Booking, 0)
	for _, b := range r.store.bookings {
		if b.Status == domain.StatusPending && b.CreatedAt.Before(cutoff) {
			candidates = append(candidates, b)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].CreatedAt.Before(candidates[j].CreatedAt)
	})

	ids := make([]string, 0)
	for _, b := range candidates {
		if len(ids) >= limit {
			break
		}
		locked, unlock := r.store.tryLockRow(ctx, bookingRow(b.ID))
		if !locked {
			continue
		}
		b.Status = domain.StatusExpired
		b.UpdatedAt = time.Now()
		putRow(ctx, r.store.bookings, b.ID, b)
		if unlock != nil {
			unlock()
		}
		ids = append(ids, b.ID)
	}
	return ids, nil
}

// ListByTrip бронирования рейса по фильтру
func (r *BookingRepo) ListByTrip(ctx context.Context, filter domain.TripBookingsFilter) ([]*domain.Booking, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err := r.store.failure("ListByTrip"); err != nil {
		return nil, err
	}

	result := make([]*domain.Booking, 0)
	for _, b := range r.store.bookings {
		if b.TripID != filter.TripID {
			continue
		}
		if filter.Date != nil && !b.TravelDate.Equal(*filter.Date) {
			continue
		}
		if filter.Mode != nil && b.Mode != *filter.Mode {
			continue
		}
		if filter.Status != nil && b.Status != *filter.Status {
			continue
		}
		booking := b
		result = append(result, &booking)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].TravelDate.Equal(result[j].TravelDate) {
			return result[i].TravelDate.Before(result[j].TravelDate)
		}
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})

	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}
