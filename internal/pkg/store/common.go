package store

import (
	"database/sql"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/ougirez/covid-dashboard/internal/pkg/constants"
)

const (
	tableMetricRecords   = "metric_records"
	tableMetricSnapshots = "metric_snapshots"
)

// insertBatchSize keeps multi-row inserts under the driver parameter limits.
const insertBatchSize = 500

var (
	recordColumns   = []string{"metric", "seq", "province_state", "country_region", "lat", "long", "date", "value"}
	snapshotColumns = []string{"metric", "row_count", "saved_at"}
)

var mapping = map[error]error{
	pgx.ErrNoRows: constants.ErrDBNotFound,
	sql.ErrNoRows: constants.ErrDBNotFound,
}

func wrapErr(err error) error {
	for k, v := range mapping {
		if errors.Is(err, k) {
			return v
		}
	}
	return err
}

// builder возвращает squirrel SQL Builder обьект.
func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func sqliteBuilder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)
}

func chunks(n, size int) [][2]int {
	var out [][2]int
	for lo := 0; lo < n; lo += size {
		hi := lo + size
		if hi > n {
			hi = n
		}
		out = append(out, [2]int{lo, hi})
	}
	return out
}
