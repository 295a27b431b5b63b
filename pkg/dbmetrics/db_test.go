package dbmetrics

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ReservationCore/pkg/metrics"
)

func TestGetExecutor_PrefersContextTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	wrapped := Wrap(db, nil)
	ctx := context.Background()

	assert.Equal(t, DBExecutor(wrapped), GetExecutor(ctx, wrapped))
	assert.False(t, IsInTransaction(ctx))

	mock.ExpectBegin()
	tx, err := wrapped.BeginTx(ctx, nil)
	require.NoError(t, err)

	txCtx := WithTx(ctx, tx)
	assert.True(t, IsInTransaction(txCtx))
	assert.Equal(t, DBExecutor(tx), GetExecutor(txCtx, wrapped))

	mock.ExpectRollback()
	require.NoError(t, tx.Rollback())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_ObservesQueryDuration(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	m := metrics.NewWithRegistry(prometheus.NewRegistry(), "test")
	wrapped := Wrap(db, m)

	mock.ExpectExec("UPDATE capacity_slots").WillReturnResult(sqlmock.NewResult(0, 1))
	_, err = wrapped.ExecContext(context.Background(), "UPDATE capacity_slots SET taken = taken + 1")
	require.NoError(t, err)

	assert.Equal(t, 1, testutil.CollectAndCount(m.DBQueryDuration))
	require.NoError(t, mock.ExpectationsWereMet())
}
