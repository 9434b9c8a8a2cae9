// Package reshape turns date-as-columns source tables into one record per
// region and date.
package reshape

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/ougirez/covid-dashboard/internal/domain"
)

// DateLayout is the month/day/2-digit-year form of the source date columns.
const DateLayout = "1/2/06"

var ErrBadHeader = errors.New("unexpected table header")

// Reshape decodes a wide CSV table and melts it into long records.
func Reshape(r io.Reader) ([]domain.LongRecord, error) {
	table, err := ParseWide(r)
	if err != nil {
		return nil, err
	}
	return Melt(table)
}

func ParseWide(r io.Reader) (*domain.WideTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: empty table", ErrBadHeader)
	}

	header := records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	ids := domain.IDColumns()
	if len(header) < len(ids) {
		return nil, fmt.Errorf("%w: %v", ErrBadHeader, header)
	}
	for i, col := range ids {
		if strings.TrimSpace(header[i]) != col {
			return nil, fmt.Errorf("%w: column %d is %q, want %q", ErrBadHeader, i, header[i], col)
		}
	}

	return &domain.WideTable{Header: header, Rows: records[1:]}, nil
}

// Melt emits one record per (row, date column). A bad date label fails the
// whole table.
func Melt(table *domain.WideTable) ([]domain.LongRecord, error) {
	labels := table.DateLabels()
	dates := make([]time.Time, len(labels))
	for i, label := range labels {
		d, err := ParseDateLabel(label)
		if err != nil {
			return nil, err
		}
		dates[i] = d
	}

	offset := len(domain.IDColumns())
	out := make([]domain.LongRecord, 0, len(table.Rows)*len(dates))
	for rowIdx, row := range table.Rows {
		key := domain.RegionKey{
			ProvinceState: cell(row, 0),
			CountryRegion: cell(row, 1),
			Lat:           cell(row, 2),
			Long:          cell(row, 3),
		}
		for i, date := range dates {
			value, err := parseValue(cell(row, offset+i))
			if err != nil {
				return nil, &domain.ValueParseError{
					Row:    rowIdx + 1,
					Column: labels[i],
					Value:  cell(row, offset+i),
					Err:    err,
				}
			}
			out = append(out, domain.LongRecord{RegionKey: key, Date: date, Value: value})
		}
	}

	return out, nil
}

func ParseDateLabel(label string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(label))
	if err != nil {
		return time.Time{}, &domain.DateParseError{Label: label, Err: err}
	}
	return d, nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func parseValue(s string) (*int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return &v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("not a whole number")
	}
	v := int64(f)
	return &v, nil
}
