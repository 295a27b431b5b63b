package booking

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ReservationCore/internal/domain"
)

func newRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db), mock
}

func bookingRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "trip_id", "mode", "travel_date", "seats", "price_cents",
		"currency", "status", "payment_intent_id", "created_at", "updated_at",
	})
}

func TestCreate(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Now()

	b := &domain.Booking{
		ID:         "b-1",
		TripID:     "lake-tour",
		Mode:       "van",
		TravelDate: time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC),
		Seats:      2,
		PriceCents: 5000,
		Currency:   "USD",
		Status:     domain.StatusPending,
	}

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO bookings")).
		WithArgs("b-1", "lake-tour", "van", "2026-11-02", 2, int64(5000), "USD", domain.StatusPending).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	created, err := repo.Create(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, now, created.CreatedAt)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_Duplicate(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO bookings")).
		WillReturnError(&pq.Error{Code: pgUniqueViolation})

	_, err := repo.Create(context.Background(), &domain.Booking{ID: "b-1"})
	assert.ErrorIs(t, err, ErrDuplicateBooking)
}

func TestGetByID(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Now()
	date := time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, trip_id, mode, travel_date")).
		WithArgs("b-1").
		WillReturnRows(bookingRows().AddRow("b-1", "lake-tour", "van", date, 2, 5000, "USD", "confirmed", "pi_1", now, now))

	b, err := repo.GetByID(context.Background(), "b-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, b.Status)
	require.NotNil(t, b.PaymentIntentID)
	assert.Equal(t, "pi_1", *b.PaymentIntentID)
	assert.Equal(t, date, b.TravelDate)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM bookings")).WillReturnRows(bookingRows())

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestGetByIDForUpdate_LocksRow(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1 FOR UPDATE")).
		WillReturnRows(bookingRows().AddRow("b-1", "lake-tour", "van", now, 1, 1500, "USD", "pending", nil, now, now))

	b, err := repo.GetByIDForUpdate(context.Background(), "b-1")
	require.NoError(t, err)
	assert.Nil(t, b.PaymentIntentID)
	assert.True(t, b.IsPending())

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkConfirmed(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE bookings SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3")).
		WithArgs(domain.StatusConfirmed, "b-1", domain.StatusPending).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkConfirmed(context.Background(), "b-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkConfirmed_NotPending(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE bookings")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.MarkConfirmed(context.Background(), "b-1"), ErrStatusConflict)
}

func TestAttachPaymentIntent(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("(payment_intent_id IS NULL OR payment_intent_id = $3)")).
		WithArgs("pi_1", "b-1", "pi_1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.AttachPaymentIntent(context.Background(), "b-1", "pi_1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttachPaymentIntent_Conflict(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Now()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE bookings SET payment_intent_id")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("FROM bookings")).
		WillReturnRows(bookingRows().AddRow("b-1", "lake-tour", "van", now, 1, 1500, "USD", "pending", "pi_other", now, now))

	err := repo.AttachPaymentIntent(context.Background(), "b-1", "pi_1")
	assert.ErrorIs(t, err, ErrPaymentIntentConflict)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttachPaymentIntent_BookingMissing(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE bookings")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("FROM bookings")).
		WillReturnRows(bookingRows())

	err := repo.AttachPaymentIntent(context.Background(), "missing", "pi_1")
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestExpirePending(t *testing.T) {
	repo, mock := newRepo(t)
	cutoff := time.Now().Add(-30 * time.Minute)

	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE SKIP LOCKED")).
		WithArgs(domain.StatusExpired, domain.StatusPending, domain.StatusPending, cutoff, 50).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("b-1").AddRow("b-2"))

	ids, err := repo.ExpirePending(context.Background(), cutoff, 50)
	require.NoError(t, err)
	assert.Equal(t, []string{"b-1", "b-2"}, ids)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListByTrip(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Now()
	date := time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC)
	status := domain.StatusConfirmed

	mock.ExpectQuery(regexp.QuoteMeta(
		"FROM bookings WHERE trip_id = $1 AND travel_date = $2 AND status = $3 ORDER BY travel_date ASC, created_at ASC LIMIT 10")).
		WithArgs("lake-tour", "2026-11-02", domain.StatusConfirmed).
		WillReturnRows(bookingRows().
			AddRow("b-1", "lake-tour", "shared", date, 2, int64(3000), "USD", "confirmed", "pi_1", now, now).
			AddRow("b-2", "lake-tour", "van", date, 1, int64(5000), "USD", "confirmed", nil, now, now))

	bookings, err := repo.ListByTrip(context.Background(), domain.TripBookingsFilter{
		TripID: "lake-tour",
		Date:   &date,
		Status: &status,
		Limit:  10,
	})
	require.NoError(t, err)
	require.Len(t, bookings, 2)
	assert.Equal(t, "b-1", bookings[0].ID)
	require.NotNil(t, bookings[0].PaymentIntentID)
	assert.Equal(t, "pi_1", *bookings[0].PaymentIntentID)
	assert.Nil(t, bookings[1].PaymentIntentID)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListByTrip_Empty(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM bookings WHERE trip_id = $1 ORDER BY travel_date ASC, created_at ASC")).
		WithArgs("canyon").
		WillReturnRows(bookingRows())

	bookings, err := repo.ListByTrip(context.Background(), domain.TripBookingsFilter{TripID: "canyon"})
	require.NoError(t, err)
	assert.Empty(t, bookings)

	require.NoError(t, mock.ExpectationsWereMet())
}
