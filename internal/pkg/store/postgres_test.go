package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ougirez/covid-dashboard/internal/domain"
)

func newMockPostgres(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	s := NewPostgresStore(mock)
	s.now = func() time.Time { return time.Date(2020, 3, 1, 12, 0, 0, 0, time.UTC) }
	return s, mock
}

func TestPostgresStoreSave(t *testing.T) {
	s, mock := newMockPostgres(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM metric_records WHERE metric = \\$1").
		WithArgs("confirmed").
		WillReturnResult(pgxmock.NewResult("DELETE", 10))
	mock.ExpectExec("INSERT INTO metric_records").
		WillReturnResult(pgxmock.NewResult("INSERT", 4))
	mock.ExpectExec("INSERT INTO metric_snapshots").
		WithArgs("confirmed", 4, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err := s.Save(context.Background(), domain.MetricConfirmed, sampleRecords())
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreSaveRollsBackOnInsertFailure(t *testing.T) {
	s, mock := newMockPostgres(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM metric_records").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec("INSERT INTO metric_records").
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := s.Save(context.Background(), domain.MetricDeaths, sampleRecords())
	assert.ErrorContains(t, err, "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreLoad(t *testing.T) {
	s, mock := newMockPostgres(t)

	mock.ExpectQuery("SELECT row_count FROM metric_snapshots WHERE metric = \\$1").
		WithArgs("confirmed").
		WillReturnRows(pgxmock.NewRows([]string{"row_count"}).AddRow(int64(2)))
	mock.ExpectQuery("SELECT province_state, country_region, lat, long, date, value FROM metric_records").
		WithArgs("confirmed").
		WillReturnRows(pgxmock.NewRows([]string{"province_state", "country_region", "lat", "long", "date", "value"}).
			AddRow("", "Italy", "41.87194", "12.56738", day(22), i64(0)).
			AddRow("", "Italy", "41.87194", "12.56738", day(23), i64(2)))

	got, err := s.Load(context.Background(), domain.MetricConfirmed)
	require.NoError(t, err)
	assert.Equal(t, sampleRecords()[:2], got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreLoadBeforeSave(t *testing.T) {
	s, mock := newMockPostgres(t)

	mock.ExpectQuery("SELECT row_count FROM metric_snapshots").
		WithArgs("recovered").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.Load(context.Background(), domain.MetricRecovered)
	var notFound *domain.NotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, domain.MetricRecovered, notFound.Metric)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreMigrate(t *testing.T) {
	s, mock := newMockPostgres(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS metric_records").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
