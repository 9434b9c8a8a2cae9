package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/ougirez/covid-dashboard/internal/domain"
	"github.com/ougirez/covid-dashboard/internal/pkg/logger"
)

// FileStore keeps each metric as <dir>/<metric>.csv.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) Path(metric domain.Metric) string {
	return filepath.Join(s.dir, string(metric)+".csv")
}

func fileHeader(metric domain.Metric) []string {
	return append(domain.IDColumns(), domain.ColDate, string(metric))
}

// Save writes to a temp file in the same directory and renames it over the
// previous table, so readers never observe a partial file.
func (s *FileStore) Save(ctx context.Context, metric domain.Metric, records []domain.LongRecord) (err error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, string(metric)+"-*.csv.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	w := csv.NewWriter(tmp)
	if err = w.Write(fileHeader(metric)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range records {
		if err = ctx.Err(); err != nil {
			return err
		}
		value := ""
		if r.Value != nil {
			value = strconv.FormatInt(*r.Value, 10)
		}
		row := []string{r.ProvinceState, r.CountryRegion, r.Lat, r.Long, r.Date.Format(time.DateOnly), value}
		if err = w.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err = w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Rename(tmp.Name(), s.Path(metric)); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}

	logger.Infof(ctx, "saved %d %s records to %s", len(records), metric, s.Path(metric))
	return nil
}

func (s *FileStore) Load(ctx context.Context, metric domain.Metric) ([]domain.LongRecord, error) {
	f, err := os.Open(s.Path(metric))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &domain.NotFoundError{Metric: metric}
		}
		return nil, fmt.Errorf("open %s: %w", metric, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.ReuseRecord = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", metric, err)
	}
	want := fileHeader(metric)
	if len(header) != len(want) {
		return nil, fmt.Errorf("unexpected header in %s: %v", s.Path(metric), header)
	}
	for i := range want {
		if header[i] != want[i] {
			return nil, fmt.Errorf("unexpected header in %s: %v", s.Path(metric), header)
		}
	}

	var out []domain.LongRecord
	for line := 2; ; line++ {
		row, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read %s line %d: %w", metric, line, err)
		}

		d, err := time.Parse(time.DateOnly, row[4])
		if err != nil {
			return nil, fmt.Errorf("parse date in %s line %d: %w", metric, line, err)
		}
		rec := domain.LongRecord{
			RegionKey: domain.RegionKey{
				ProvinceState: row[0],
				CountryRegion: row[1],
				Lat:           row[2],
				Long:          row[3],
			},
			Date: d,
		}
		if row[5] != "" {
			v, err := strconv.ParseInt(row[5], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("parse value in %s line %d: %w", metric, line, err)
			}
			rec.Value = &v
		}
		out = append(out, rec)
	}

	return out, nil
}

func (s *FileStore) Close() error {
	return nil
}
