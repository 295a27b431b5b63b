package memstore

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ReservationCore/internal/domain"
	eventRepo "github.com/m04kA/SMC-ReservationCore/internal/infra/storage/webhookevent"
)

func eventRow(id string) string { return "events:" + id }

// EventRepo таблица webhook_events
type EventRepo struct {
	store *Store
}

// Events репозиторий событий вебхука
func (s *Store) Events() *EventRepo {
	return &EventRepo{store: s}
}

// Count количество записанных событий
func (r *EventRepo) Count() int {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return len(r.store.events)
}

// Record insert-if-absent по event_id
func (r *EventRepo) Record(ctx context.Context, event *domain.WebhookEvent) (bool, error) {
	unlock := r.store.lockRow(ctx, eventRow(event.EventID))
	defer unlock()

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err := r.store.failure("RecordEvent"); err != nil {
		return false, err
	}
	if _, ok := r.store.events[event.EventID]; ok {
		return false, nil
	}
	event.FirstSeenAt = time.Now()
	putRow(ctx, r.store.events, event.EventID, *event)
	return true, nil
}

// SetAppliedStatus результат применения события
func (r *EventRepo) SetAppliedStatus(ctx context.Context, eventID string, status domain.AppliedStatus) error {
	unlock := r.store.lockRow(ctx, eventRow(eventID))
	defer unlock()

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err := r.store.failure("SetAppliedStatus"); err != nil {
		return err
	}
	ev, ok := r.store.events[eventID]
	if !ok {
		return eventRepo.ErrEventNotFound
	}
	ev.AppliedStatus = status
	putRow(ctx, r.store.events, eventID, ev)
	return nil
}

// GetByID событие по event_id
func (r *EventRepo) GetByID(ctx context.Context, eventID string) (*domain.WebhookEvent, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	ev, ok := r.store.events[eventID]
	if !ok {
		return nil, eventRepo.ErrEventNotFound
	}
	return &ev, nil
}
