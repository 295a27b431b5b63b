package payment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-ReservationCore/internal/domain"
	"github.com/m04kA/SMC-ReservationCore/pkg/dbmetrics"
	"github.com/m04kA/SMC-ReservationCore/pkg/psqlbuilder"
)

const keysTable = "idempotency_keys"

// ReserveKey занимает ключ идемпотентности (insert-if-absent).
// true: ключ занят этим вызовом; false: ключ уже существовал.
func (r *Repository) ReserveKey(ctx context.Context, key, fingerprint string) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(keysTable).
		Columns("key", "fingerprint", "status", "locked_at").
		Values(key, fingerprint, domain.IdempotencyInProgress, squirrel.Expr("NOW()")).
		Suffix("ON CONFLICT (key) DO NOTHING").
		ToSql()

	if err != nil {
		return false, fmt.Errorf("%w: ReserveKey - build insert query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("%w: ReserveKey - execute insert: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: ReserveKey - get rows affected: %v", ErrExecQuery, err)
	}

	return rowsAffected > 0, nil
}

// GetKey возвращает запись ключа идемпотентности
func (r *Repository) GetKey(ctx context.Context, key string) (*domain.IdempotencyRecord, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"key",
		"fingerprint",
		"status",
		"payment_intent_id",
		"response_body",
		"locked_at",
		"created_at",
		"completed_at",
	).
		From(keysTable).
		Where(squirrel.Eq{"key": key}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetKey - build select query: %v", ErrBuildQuery, err)
	}

	var rec domain.IdempotencyRecord
	var paymentIntentID sql.NullString
	var completedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&rec.Key,
		&rec.Fingerprint,
		&rec.Status,
		&paymentIntentID,
		&rec.ResponseBody,
		&rec.LockedAt,
		&rec.CreatedAt,
		&completedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetKey - scan key: %w", ErrScanRow, err)
	}

	if paymentIntentID.Valid {
		rec.PaymentIntentID = &paymentIntentID.String
	}
	if completedAt.Valid {
		rec.CompletedAt = &completedAt.Time
	}

	return &rec, nil
}

// TakeOverStaleKey перехватывает ключ, застрявший в in_progress дольше staleBefore
// (процесс-владелец упал между резервированием и завершением).
// Перехватить может только один конкурент: true: ключ теперь наш.
func (r *Repository) TakeOverStaleKey(ctx context.Context, key string, staleBefore time.Time) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(keysTable).
		Set("locked_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"key": key, "status": domain.IdempotencyInProgress}).
		Where(squirrel.Lt{"locked_at": staleBefore}).
		ToSql()

	if err != nil {
		return false, fmt.Errorf("%w: TakeOverStaleKey - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("%w: TakeOverStaleKey - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: TakeOverStaleKey - get rows affected: %v", ErrExecQuery, err)
	}

	return rowsAffected > 0, nil
}

// CompleteKey сохраняет ответ для ключа. Тело хранится как bytea и отдаётся байт в байт.
func (r *Repository) CompleteKey(ctx context.Context, key, paymentIntentID string, responseBody []byte) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(keysTable).
		Set("status", domain.IdempotencyCompleted).
		Set("payment_intent_id", paymentIntentID).
		Set("response_body", responseBody).
		Set("completed_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"key": key, "status": domain.IdempotencyInProgress}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: CompleteKey - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: CompleteKey - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: CompleteKey - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrKeyNotInProgress
	}

	return nil
}

// ReleaseKey удаляет незавершённый ключ, чтобы повтор запроса мог пройти заново.
// Завершённые ключи не удаляются никогда.
func (r *Repository) ReleaseKey(ctx context.Context, key string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete(keysTable).
		Where(squirrel.Eq{"key": key, "status": domain.IdempotencyInProgress}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: ReleaseKey - build delete query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: ReleaseKey - execute delete: %w", ErrExecQuery, err)
	}

	return nil
}
