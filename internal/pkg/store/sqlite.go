package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"github.com/ougirez/covid-dashboard/internal/domain"
	"github.com/ougirez/covid-dashboard/internal/pkg/constants"
	"github.com/ougirez/covid-dashboard/internal/pkg/logger"
)

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS metric_records (
	metric         TEXT    NOT NULL,
	seq            INTEGER NOT NULL,
	province_state TEXT    NOT NULL,
	country_region TEXT    NOT NULL,
	lat            TEXT    NOT NULL,
	long           TEXT    NOT NULL,
	date           TEXT    NOT NULL,
	value          INTEGER,
	PRIMARY KEY (metric, seq)
);

CREATE INDEX IF NOT EXISTS idx_metric_records_country ON metric_records (metric, country_region);

CREATE TABLE IF NOT EXISTS metric_snapshots (
	metric    TEXT PRIMARY KEY,
	row_count INTEGER NOT NULL,
	saved_at  TEXT NOT NULL
);
`

type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore opens a SQLite database at dsn and configures WAL mode.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	// a single connection keeps ":memory:" databases shared
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite exec %s: %w", pragma, err)
		}
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteMigration); err != nil {
		return fmt.Errorf("sqlite migrate: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Save(ctx context.Context, metric domain.Metric, records []domain.LongRecord) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
			logger.Errorf(ctx, "sqlite save %s: %s", metric, err.Error())
		}
	}()

	del := sqliteBuilder().Delete(tableMetricRecords).Where(sq.Eq{"metric": string(metric)})
	if err = execTx(ctx, tx, del); err != nil {
		return fmt.Errorf("delete %s records: %w", metric, err)
	}

	for _, c := range chunks(len(records), insertBatchSize) {
		query := sqliteBuilder().Insert(tableMetricRecords).Columns(recordColumns...)
		for i := c[0]; i < c[1]; i++ {
			r := records[i]
			var value any
			if r.Value != nil {
				value = *r.Value
			}
			query = query.Values(string(metric), i, r.ProvinceState, r.CountryRegion, r.Lat, r.Long, r.Date.Format(time.DateOnly), value)
		}
		if err = execTx(ctx, tx, query); err != nil {
			return fmt.Errorf("insert %s records [%d:%d]: %w", metric, c[0], c[1], err)
		}
	}

	snapshot := sqliteBuilder().Insert(tableMetricSnapshots).
		Columns(snapshotColumns...).
		Values(string(metric), len(records), s.now().UTC().Format(time.RFC3339)).
		Suffix(`on conflict (metric) do update set row_count = excluded.row_count, saved_at = excluded.saved_at`)
	if err = execTx(ctx, tx, snapshot); err != nil {
		return fmt.Errorf("upsert %s snapshot: %w", metric, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("sqlite commit: %w", err)
	}

	logger.Infof(ctx, "saved %d %s records to sqlite", len(records), metric)
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context, metric domain.Metric) ([]domain.LongRecord, error) {
	snapshotSQL, args, err := sqliteBuilder().Select("row_count").
		From(tableMetricSnapshots).
		Where(sq.Eq{"metric": string(metric)}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rowCount int64
	if err := s.db.QueryRowContext(ctx, snapshotSQL, args...).Scan(&rowCount); err != nil {
		if errors.Is(wrapErr(err), constants.ErrDBNotFound) {
			return nil, &domain.NotFoundError{Metric: metric}
		}
		return nil, fmt.Errorf("select %s snapshot: %w", metric, err)
	}

	querySQL, args, err := sqliteBuilder().Select(recordColumns[2:]...).
		From(tableMetricRecords).
		Where(sq.Eq{"metric": string(metric)}).
		OrderBy("seq").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, querySQL, args...)
	if err != nil {
		return nil, fmt.Errorf("select %s records: %w", metric, err)
	}
	defer rows.Close()

	out := make([]domain.LongRecord, 0, rowCount)
	for rows.Next() {
		var (
			r     domain.LongRecord
			date  string
			value sql.NullInt64
		)
		if err := rows.Scan(&r.ProvinceState, &r.CountryRegion, &r.Lat, &r.Long, &date, &value); err != nil {
			return nil, fmt.Errorf("scan %s record: %w", metric, err)
		}
		if r.Date, err = time.Parse(time.DateOnly, date); err != nil {
			return nil, fmt.Errorf("parse %s date %q: %w", metric, date, err)
		}
		if value.Valid {
			v := value.Int64
			r.Value = &v
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s records: %w", metric, err)
	}

	return out, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func execTx(ctx context.Context, tx *sql.Tx, query sq.Sqlizer) error {
	q, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	_, err = tx.ExecContext(ctx, q, args...)
	return err
}
