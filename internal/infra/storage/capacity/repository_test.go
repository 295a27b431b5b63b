package capacity

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ReservationCore/internal/domain"
)

var testKey = domain.SlotKey{
	TripID: "lake-tour",
	Date:   time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC),
	Mode:   "van",
}

func newRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db), mock
}

func slotRows(capacity, taken int) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"capacity", "taken", "created_at", "updated_at"}).
		AddRow(capacity, taken, now, now)
}

func TestEnsureSlot(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO capacity_slots")).
		WithArgs("lake-tour", "2026-11-02", "van", 4, 0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (trip_id, travel_date, mode) DO NOTHING")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	created, err := repo.EnsureSlot(context.Background(), testKey, 4)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.EnsureSlot(context.Background(), testKey, 4)
	require.NoError(t, err)
	assert.False(t, created)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClaim_Success(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE capacity_slots SET taken = taken + $1")).
		WillReturnRows(slotRows(4, 3))

	slot, err := repo.Claim(context.Background(), testKey, 2)
	require.NoError(t, err)
	assert.Equal(t, 4, slot.Capacity)
	assert.Equal(t, 3, slot.Taken)
	assert.Equal(t, testKey, slot.Key)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClaim_CapacityExceeded(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("taken + $5 <= capacity")).
		WillReturnRows(sqlmock.NewRows([]string{"capacity", "taken", "created_at", "updated_at"}))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT capacity, taken, created_at, updated_at FROM capacity_slots")).
		WillReturnRows(slotRows(4, 4))

	_, err := repo.Claim(context.Background(), testKey, 1)
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClaim_SlotNotFound(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE capacity_slots")).
		WillReturnRows(sqlmock.NewRows([]string{"capacity", "taken", "created_at", "updated_at"}))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT capacity")).
		WillReturnRows(sqlmock.NewRows([]string{"capacity", "taken", "created_at", "updated_at"}))

	_, err := repo.Claim(context.Background(), testKey, 1)
	assert.ErrorIs(t, err, ErrSlotNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClaim_RejectsNonPositiveSeats(t *testing.T) {
	repo, mock := newRepo(t)

	_, err := repo.Claim(context.Background(), testKey, 0)
	assert.ErrorIs(t, err, ErrInvalidSeats)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClaim_ExecErrorKeepsCause(t *testing.T) {
	repo, mock := newRepo(t)
	cause := errors.New("connection reset")

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE capacity_slots")).WillReturnError(cause)

	_, err := repo.Claim(context.Background(), testKey, 1)
	assert.ErrorIs(t, err, ErrExecQuery)
	assert.ErrorIs(t, err, cause)
}

func TestProvision(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("DO UPDATE SET capacity = EXCLUDED.capacity")).
		WithArgs("lake-tour", "2026-11-02", "van", 6, 0).
		WillReturnRows(slotRows(6, 2))

	slot, err := repo.Provision(context.Background(), testKey, 6)
	require.NoError(t, err)
	assert.Equal(t, 6, slot.Capacity)
	assert.Equal(t, 2, slot.Taken)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProvision_BelowTaken(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE capacity_slots.taken <= EXCLUDED.capacity")).
		WillReturnRows(sqlmock.NewRows([]string{"capacity", "taken", "created_at", "updated_at"}))

	_, err := repo.Provision(context.Background(), testKey, 1)
	assert.ErrorIs(t, err, ErrCapacityBelowTaken)

	require.NoError(t, mock.ExpectationsWereMet())
}
