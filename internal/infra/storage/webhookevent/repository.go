package webhookevent

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

const tableName = "webhook_events"

// Repository журнал обработанных событий провайдера, ключ: event_id
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория событий
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Record записывает событие, если его ещё нет (insert-if-absent).
// false: событие уже было записано, эффекты применять нельзя.
// Внутри транзакции конкурентная вставка того же event_id ждёт коммита первой.
func (r *Repository) Record(ctx context.Context, event *domain.WebhookEvent) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(tableName).
		Columns("event_id", "type", "amount_cents", "currency", "payment_intent_id", "applied_status").
		Values(event.EventID, event.Type, event.AmountCents, event.Currency, event.PaymentIntentID, event.AppliedStatus).
		Suffix("ON CONFLICT (event_id) DO NOTHING RETURNING first_seen_at").
		ToSql()

	if err != nil {
		return false, fmt.Errorf("%w: Record - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&event.FirstSeenAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: Record - execute insert: %w", ErrExecQuery, err)
	}

	return true, nil
}

// SetAppliedStatus сохраняет результат применения события
func (r *Repository) SetAppliedStatus(ctx context.Context, eventID string, status domain.AppliedStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableName).
		Set("applied_status", status).
		Where(squirrel.Eq{"event_id": eventID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: SetAppliedStatus - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: SetAppliedStatus - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: SetAppliedStatus - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrEventNotFound
	}

	return nil
}

// GetByID получает событие по event_id
func (r *Repository) GetByID(ctx context.Context, eventID string) (*domain.WebhookEvent, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"event_id",
		"type",
		"amount_cents",
		"currency",
		"payment_intent_id",
		"applied_status",
		"first_seen_at",
	).
		From(tableName).
		Where(squirrel.Eq{"event_id": eventID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	var event domain.WebhookEvent
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&event.EventID,
		&event.Type,
		&event.AmountCents,
		&event.Currency,
		&event.PaymentIntentID,
		&event.AppliedStatus,
		&event.FirstSeenAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan event: %w", ErrScanRow, err)
	}

	return &event, nil
}
