package payment

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

const paymentsTable = "payments"

var paymentColumns = []string{
	"payment_intent_id",
	"booking_id",
	"amount_cents",
	"currency",
	"status",
	"last_event_id",
	"created_at",
	"updated_at",
}

// Repository ключи идемпотентности и платежи (одна строка на payment_intent_id)
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория платежей
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// CreatePaymentIfAbsent создает строку платежа, если её ещё нет.
// Существующую строку не меняет: поздний payment_intent.created не должен
// откатить статус, уже выставленный событием succeeded или failed.
func (r *Repository) CreatePaymentIfAbsent(ctx context.Context, p *domain.Payment) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(paymentsTable).
		Columns("payment_intent_id", "booking_id", "amount_cents", "currency", "status", "last_event_id").
		Values(p.PaymentIntentID, p.BookingID, p.AmountCents, p.Currency, p.Status, p.LastEventID).
		Suffix("ON CONFLICT (payment_intent_id) DO NOTHING").
		ToSql()

	if err != nil {
		return false, fmt.Errorf("%w: CreatePaymentIfAbsent - build insert query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("%w: CreatePaymentIfAbsent - execute insert: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: CreatePaymentIfAbsent - get rows affected: %v", ErrExecQuery, err)
	}

	return rowsAffected > 0, nil
}

// UpsertPaymentStatus записывает статус платежа: последний записавший побеждает.
// Привязка к бронированию, сделанная раньше, не теряется.
func (r *Repository) UpsertPaymentStatus(ctx context.Context, p *domain.Payment) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(paymentsTable).
		Columns("payment_intent_id", "booking_id", "amount_cents", "currency", "status", "last_event_id").
		Values(p.PaymentIntentID, p.BookingID, p.AmountCents, p.Currency, p.Status, p.LastEventID).
		Suffix("ON CONFLICT (payment_intent_id) DO UPDATE SET " +
			"status = EXCLUDED.status, " +
			"last_event_id = EXCLUDED.last_event_id, " +
			"booking_id = COALESCE(" + paymentsTable + ".booking_id, EXCLUDED.booking_id), " +
			"updated_at = NOW()").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpsertPaymentStatus - build upsert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: UpsertPaymentStatus - execute upsert: %w", ErrExecQuery, err)
	}

	return nil
}

// GetPayment получает платёж по ID платёжного намерения
func (r *Repository) GetPayment(ctx context.Context, paymentIntentID string) (*domain.Payment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(paymentColumns...).
		From(paymentsTable).
		Where(squirrel.Eq{"payment_intent_id": paymentIntentID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetPayment - build select query: %v", ErrBuildQuery, err)
	}

	return r.scanOne(executor.QueryRowContext(ctx, query, args...), "GetPayment")
}

// GetLatestByBookingID последний обновлённый платёж бронирования
func (r *Repository) GetLatestByBookingID(ctx context.Context, bookingID string) (*domain.Payment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(paymentColumns...).
		From(paymentsTable).
		Where(squirrel.Eq{"booking_id": bookingID}).
		OrderBy("updated_at DESC").
		Limit(1).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetLatestByBookingID - build select query: %v", ErrBuildQuery, err)
	}

	return r.scanOne(executor.QueryRowContext(ctx, query, args...), "GetLatestByBookingID")
}

func (r *Repository) scanOne(row *sql.Row, op string) (*domain.Payment, error) {
	var p domain.Payment
	var bookingID, lastEventID sql.NullString

	err := row.Scan(
		&p.PaymentIntentID,
		&bookingID,
		&p.AmountCents,
		&p.Currency,
		&p.Status,
		&lastEventID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan payment: %w", ErrScanRow, op, err)
	}

	if bookingID.Valid {
		p.BookingID = &bookingID.String
	}
	if lastEventID.Valid {
		p.LastEventID = &lastEventID.String
	}

	return &p, nil
}
