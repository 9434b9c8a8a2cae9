package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/ougirez/covid-dashboard/internal/domain"
	"github.com/ougirez/covid-dashboard/internal/pkg/constants"
	"github.com/ougirez/covid-dashboard/internal/pkg/logger"
	"github.com/ougirez/covid-dashboard/internal/pkg/store/xpgx"
)

const postgresMigration = `
CREATE TABLE IF NOT EXISTS metric_records (
	metric         TEXT   NOT NULL,
	seq            BIGINT NOT NULL,
	province_state TEXT   NOT NULL,
	country_region TEXT   NOT NULL,
	lat            TEXT   NOT NULL,
	long           TEXT   NOT NULL,
	date           DATE   NOT NULL,
	value          BIGINT,
	PRIMARY KEY (metric, seq)
);

CREATE INDEX IF NOT EXISTS idx_metric_records_country ON metric_records (metric, country_region);

CREATE TABLE IF NOT EXISTS metric_snapshots (
	metric    TEXT PRIMARY KEY,
	row_count BIGINT NOT NULL,
	saved_at  TIMESTAMPTZ NOT NULL
);
`

type PostgresStore struct {
	pool Pool
	now  func() time.Time
}

func NewPostgresStore(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool, now: time.Now}
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresMigration); err != nil {
		return fmt.Errorf("postgres migrate: %w", err)
	}
	return nil
}

// Save replaces the metric's rows and snapshot in one transaction.
func (s *PostgresStore) Save(ctx context.Context, metric domain.Metric, records []domain.LongRecord) error {
	err := xpgx.InTx(ctx, s.pool, func(tx pgx.Tx) error {
		del := builder().Delete(tableMetricRecords).Where(sq.Eq{"metric": string(metric)})
		if _, err := xpgx.Execx(ctx, tx, del); err != nil {
			return fmt.Errorf("delete %s records: %w", metric, err)
		}

		for _, c := range chunks(len(records), insertBatchSize) {
			query := builder().Insert(tableMetricRecords).Columns(recordColumns...)
			for i := c[0]; i < c[1]; i++ {
				r := records[i]
				query = query.Values(string(metric), i, r.ProvinceState, r.CountryRegion, r.Lat, r.Long, r.Date, r.Value)
			}
			if _, err := xpgx.Execx(ctx, tx, query); err != nil {
				return fmt.Errorf("insert %s records [%d:%d]: %w", metric, c[0], c[1], err)
			}
		}

		snapshot := builder().Insert(tableMetricSnapshots).
			Columns(snapshotColumns...).
			Values(string(metric), len(records), s.now().UTC()).
			Suffix(`on conflict (metric) do update set row_count = excluded.row_count, saved_at = excluded.saved_at`)
		if _, err := xpgx.Execx(ctx, tx, snapshot); err != nil {
			return fmt.Errorf("upsert %s snapshot: %w", metric, err)
		}
		return nil
	})
	if err != nil {
		logger.Errorf(ctx, "postgres save %s: %s", metric, err.Error())
		return err
	}

	logger.Infof(ctx, "saved %d %s records to postgres", len(records), metric)
	return nil
}

func (s *PostgresStore) Load(ctx context.Context, metric domain.Metric) ([]domain.LongRecord, error) {
	snapshot := builder().Select("row_count").
		From(tableMetricSnapshots).
		Where(sq.Eq{"metric": string(metric)})

	var rowCount int64
	if err := xpgx.Getx(ctx, s.pool, snapshot, &rowCount); err != nil {
		if errors.Is(wrapErr(err), constants.ErrDBNotFound) {
			return nil, &domain.NotFoundError{Metric: metric}
		}
		return nil, fmt.Errorf("select %s snapshot: %w", metric, err)
	}

	query := builder().Select(recordColumns[2:]...).
		From(tableMetricRecords).
		Where(sq.Eq{"metric": string(metric)}).
		OrderBy("seq")

	rows, err := xpgx.Queryx(ctx, s.pool, query)
	if err != nil {
		return nil, fmt.Errorf("select %s records: %w", metric, err)
	}
	defer rows.Close()

	out := make([]domain.LongRecord, 0, rowCount)
	for rows.Next() {
		var r domain.LongRecord
		if err := rows.Scan(&r.ProvinceState, &r.CountryRegion, &r.Lat, &r.Long, &r.Date, &r.Value); err != nil {
			return nil, fmt.Errorf("scan %s record: %w", metric, err)
		}
		r.Date = r.Date.UTC()
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s records: %w", metric, err)
	}

	return out, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
