package capacity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-ReservationCore/internal/domain"
	"github.com/m04kA/SMC-ReservationCore/pkg/dbmetrics"
	"github.com/m04kA/SMC-ReservationCore/pkg/psqlbuilder"
)

const (
	tableName      = "capacity_slots"
	conflictTarget = "(trip_id, travel_date, mode)"
)

// Repository слоты вместимости (trip, date, mode).
// Единственный конкурентный ресурс системы: все изменения taken идут
// одним условным UPDATE, без чтения-изменения-записи в коде.
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория слотов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

func keyEq(key domain.SlotKey) squirrel.Eq {
	return squirrel.Eq{
		"trip_id":     key.TripID,
		"travel_date": key.DateString(),
		"mode":        key.Mode,
	}
}

// EnsureSlot создает слот с вместимостью по умолчанию, если его ещё нет.
// Существующий слот не трогает. Возвращает true, если слот был создан этим вызовом.
func (r *Repository) EnsureSlot(ctx context.Context, key domain.SlotKey, defaultCapacity int) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(tableName).
		Columns("trip_id", "travel_date", "mode", "capacity", "taken").
		Values(key.TripID, key.DateString(), key.Mode, defaultCapacity, 0).
		Suffix("ON CONFLICT " + conflictTarget + " DO NOTHING").
		ToSql()

	if err != nil {
		return false, fmt.Errorf("%w: EnsureSlot - build insert query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("%w: EnsureSlot - execute insert: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: EnsureSlot - get rows affected: %v", ErrExecQuery, err)
	}

	return rowsAffected > 0, nil
}

// Claim атомарно занимает seats мест в слоте.
// Условие taken + seats <= capacity проверяется в том же UPDATE, поэтому
// два конкурентных захвата последнего места дают ровно один успех.
// Ноль затронутых строк: ErrSlotNotFound или ErrCapacityExceeded.
func (r *Repository) Claim(ctx context.Context, key domain.SlotKey, seats int) (*domain.CapacitySlot, error) {
	if seats <= 0 {
		return nil, ErrInvalidSeats
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableName).
		Set("taken", squirrel.Expr("taken + ?", seats)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(keyEq(key)).
		Where("taken + ? <= capacity", seats).
		Suffix("RETURNING capacity, taken, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Claim - build update query: %v", ErrBuildQuery, err)
	}

	slot := &domain.CapacitySlot{Key: key}
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&slot.Capacity,
		&slot.Taken,
		&slot.CreatedAt,
		&slot.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		// Строка не обновилась: либо слота нет, либо не хватило мест
		if _, getErr := r.Get(ctx, key); getErr != nil {
			return nil, getErr
		}
		return nil, ErrCapacityExceeded
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Claim - execute update: %w", ErrExecQuery, err)
	}

	return slot, nil
}

// Get возвращает текущее состояние слота
func (r *Repository) Get(ctx context.Context, key domain.SlotKey) (*domain.CapacitySlot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"capacity",
		"taken",
		"created_at",
		"updated_at",
	).
		From(tableName).
		Where(keyEq(key)).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Get - build select query: %v", ErrBuildQuery, err)
	}

	slot := &domain.CapacitySlot{Key: key}
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&slot.Capacity,
		&slot.Taken,
		&slot.CreatedAt,
		&slot.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Get - scan slot: %w", ErrScanRow, err)
	}

	return slot, nil
}

// Provision задаёт вместимость слота оператором (создаёт слот при необходимости).
// Уменьшить вместимость ниже уже занятого нельзя: ErrCapacityBelowTaken.
func (r *Repository) Provision(ctx context.Context, key domain.SlotKey, capacity int) (*domain.CapacitySlot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(tableName).
		Columns("trip_id", "travel_date", "mode", "capacity", "taken").
		Values(key.TripID, key.DateString(), key.Mode, capacity, 0).
		Suffix("ON CONFLICT " + conflictTarget + " DO UPDATE " +
			"SET capacity = EXCLUDED.capacity, updated_at = NOW() " +
			"WHERE " + tableName + ".taken <= EXCLUDED.capacity " +
			"RETURNING capacity, taken, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Provision - build upsert query: %v", ErrBuildQuery, err)
	}

	slot := &domain.CapacitySlot{Key: key}
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&slot.Capacity,
		&slot.Taken,
		&slot.CreatedAt,
		&slot.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCapacityBelowTaken
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Provision - execute upsert: %w", ErrExecQuery, err)
	}

	return slot, nil
}
