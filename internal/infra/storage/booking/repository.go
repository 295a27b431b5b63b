package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-ReservationCore/internal/domain"
	"github.com/m04kA/SMC-ReservationCore/pkg/dbmetrics"
	"github.com/m04kA/SMC-ReservationCore/pkg/psqlbuilder"
)

const (
	tableName = "bookings"

	pgUniqueViolation = "23505"
)

var bookingColumns = []string{
	"id",
	"trip_id",
	"mode",
	"travel_date",
	"seats",
	"price_cents",
	"currency",
	"status",
	"payment_intent_id",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое бронирование в статусе pending.
// ID генерируется вызывающей стороной.
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(tableName).
		Columns(
			"id",
			"trip_id",
			"mode",
			"travel_date",
			"seats",
			"price_cents",
			"currency",
			"status",
		).
		Values(
			booking.ID,
			booking.TripID,
			booking.Mode,
			booking.TravelDate.Format(domain.DateFormat),
			booking.Seats,
			booking.PriceCents,
			booking.Currency,
			booking.Status,
		).
		Suffix("RETURNING created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
			return nil, ErrDuplicateBooking
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	return booking, nil
}

// GetByID получает бронирование по ID
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	return r.get(ctx, "GetByID", id, false)
}

// GetByIDForUpdate получает бронирование и блокирует строку до конца транзакции.
// Вне транзакции блокировка снимается сразу, поэтому вызывать только из txmanager.
func (r *Repository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Booking, error) {
	return r.get(ctx, "GetByIDForUpdate", id, true)
}

func (r *Repository) get(ctx context.Context, op, id string, forUpdate bool) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From(tableName).
		Where(squirrel.Eq{"id": id})

	if forUpdate {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan booking: %w", ErrScanRow, op, err)
	}

	return booking, nil
}

// MarkConfirmed переводит pending → confirmed.
// Условие по статусу в самом UPDATE: если статус уже сменился, ErrStatusConflict.
func (r *Repository) MarkConfirmed(ctx context.Context, id string) error {
	return r.UpdateStatus(ctx, id, domain.StatusPending, domain.StatusConfirmed)
}

// UpdateStatus переводит бронирование из статуса from в статус to
func (r *Repository) UpdateStatus(ctx context.Context, id string, from, to domain.BookingStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableName).
		Set("status", to).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": from}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrStatusConflict
	}

	return nil
}

// AttachPaymentIntent привязывает платёжное намерение к бронированию.
// Привязка однократная: повтор с тем же ID проходит, с другим: ErrPaymentIntentConflict.
func (r *Repository) AttachPaymentIntent(ctx context.Context, id, paymentIntentID string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableName).
		Set("payment_intent_id", paymentIntentID).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Or{
			squirrel.Eq{"payment_intent_id": nil},
			squirrel.Eq{"payment_intent_id": paymentIntentID},
		}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: AttachPaymentIntent - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: AttachPaymentIntent - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: AttachPaymentIntent - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrPaymentIntentConflict
	}

	return nil
}

// ExpirePending переводит в expired не больше limit pending бронирований, созданных до cutoff.
// Строки, заблокированные подтверждением, пропускаются и попадут в следующий проход.
// Возвращает ID истёкших бронирований.
func (r *Repository) ExpirePending(ctx context.Context, cutoff time.Time, limit int) ([]string, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableName).
		Set("status", domain.StatusExpired).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"status": domain.StatusPending}).
		Where("id IN (SELECT id FROM "+tableName+" WHERE status = ? AND created_at < ? "+
			"ORDER BY created_at LIMIT ? FOR UPDATE SKIP LOCKED)",
			domain.StatusPending, cutoff, limit).
		Suffix("RETURNING id").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ExpirePending - build update query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ExpirePending - execute update: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: ExpirePending - scan id: %v", ErrScanRow, err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ExpirePending - rows error: %w", ErrScanRow, err)
	}

	return ids, nil
}

// ListByTrip бронирования рейса с фильтрацией по дате, режиму и статусу.
// Сортировка: сначала ближайшие поездки, внутри даты по времени создания.
func (r *Repository) ListByTrip(ctx context.Context, filter domain.TripBookingsFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From(tableName).
		Where(squirrel.Eq{"trip_id": filter.TripID})

	if filter.Date != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"travel_date": filter.Date.Format(domain.DateFormat)})
	}
	if filter.Mode != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"mode": *filter.Mode})
	}
	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	}

	selectBuilder = selectBuilder.OrderBy("travel_date ASC", "created_at ASC")
	if filter.Limit > 0 {
		selectBuilder = selectBuilder.Limit(uint64(filter.Limit))
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByTrip - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByTrip - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	bookings := make([]*domain.Booking, 0)
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListByTrip - scan booking: %v", ErrScanRow, err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListByTrip - rows error: %w", ErrScanRow, err)
	}

	return bookings, nil
}

// rowScanner общий интерфейс *sql.Row и *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanBooking сканирует одну строку в бронирование
func scanBooking(row rowScanner) (*domain.Booking, error) {
	var booking domain.Booking
	var paymentIntentID sql.NullString

	err := row.Scan(
		&booking.ID,
		&booking.TripID,
		&booking.Mode,
		&booking.TravelDate,
		&booking.Seats,
		&booking.PriceCents,
		&booking.Currency,
		&booking.Status,
		&paymentIntentID,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if paymentIntentID.Valid {
		booking.PaymentIntentID = &paymentIntentID.String
	}

	return &booking, nil
}
