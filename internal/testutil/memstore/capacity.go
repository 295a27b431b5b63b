package memstore

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ReservationCore/internal/domain"
	capacityRepo "github.com/m04kA/SMC-ReservationCore/internal/infra/storage/capacity"
)

func slotRow(key domain.SlotKey) string { return "slots:" + key.String() }

// CapacityRepo таблица capacity_slots
type CapacityRepo struct {
	store *Store
}

// Slots репозиторий слотов вместимости
func (s *Store) Slots() *CapacityRepo {
	return &CapacityRepo{store: s}
}

// EnsureSlot создает слот, если его нет
func (r *CapacityRepo) EnsureSlot(ctx context.Context, key domain.SlotKey, defaultCapacity int) (bool, error) {
	unlock := r.store.lockRow(ctx, slotRow(key))
	defer unlock()

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err := r.store.failure("EnsureSlot"); err != nil {
		return false, err
	}
	if _, ok := r.store.slots[key.String()]; ok {
		return false, nil
	}
	now := time.Now()
	putRow(ctx, r.store.slots, key.String(), domain.CapacitySlot{Key: key, Capacity: defaultCapacity, CreatedAt: now, UpdatedAt: now})
	return true, nil
}

// Claim условный захват мест
func (r *CapacityRepo) Claim(ctx context.Context, key domain.SlotKey, seats int) (*domain.CapacitySlot, error) {
	if seats <= 0 {
		return nil, capacityRepo.ErrInvalidSeats
	}

	unlock := r.store.lockRow(ctx, slotRow(key))
	defer unlock()

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err := r.store.failure("Claim"); err != nil {
		return nil, err
	}
	slot, ok := r.store.slots[key.String()]
	if !ok {
		return nil, capacityRepo.ErrSlotNotFound
	}
	if slot.Taken+seats > slot.Capacity {
		return nil, capacityRepo.ErrCapacityExceeded
	}
	slot.Taken += seats
	slot.UpdatedAt = time.Now()
	putRow(ctx, r.store.slots, key.String(), slot)
	return &slot, nil
}

// Get текущее состояние слота, без блокировки
func (r *CapacityRepo) Get(ctx context.Context, key domain.SlotKey) (*domain.CapacitySlot, error) {
	slot, err := r.get(key)
	if err != nil {
		return nil, err
	}
	r.store.pause("GetSlot")
	return slot, nil
}

func (r *CapacityRepo) get(key domain.SlotKey) (*domain.CapacitySlot, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err := r.store.failure("GetSlot"); err != nil {
		return nil, err
	}
	slot, ok := r.store.slots[key.String()]
	if !ok {
		return nil, capacityRepo.ErrSlotNotFound
	}
	return &slot, nil
}

// Provision задаёт вместимость
func (r *CapacityRepo) Provision(ctx context.Context, key domain.SlotKey, capacity int) (*domain.CapacitySlot, error) {
	unlock := r.store.lockRow(ctx, slotRow(key))
	defer unlock()

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := time.Now()
	slot, ok := r.store.slots[key.String()]
	if !ok {
		slot = domain.CapacitySlot{Key: key, CreatedAt: now}
	}
	if slot.Taken > capacity {
		return nil, capacityRepo.ErrCapacityBelowTaken
	}
	slot.Capacity = capacity
	slot.UpdatedAt = now
	putRow(ctx, r.store.slots, key.String(), slot)
	return &slot, nil
}
