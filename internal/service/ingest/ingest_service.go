package ingest

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/ougirez/covid-dashboard/internal/domain"
	"github.com/ougirez/covid-dashboard/internal/pkg/logger"
	"github.com/ougirez/covid-dashboard/internal/pkg/metrics"
	"github.com/ougirez/covid-dashboard/internal/service/reshape"
)

type Fetcher interface {
	FetchAll(ctx context.Context, sources map[domain.Metric]string) (map[domain.Metric][]byte, error)
}

type Saver interface {
	Save(ctx context.Context, metric domain.Metric, records []domain.LongRecord) error
}

type Service struct {
	fetcher Fetcher
	store   Saver
}

func NewIngestService(fetcher Fetcher, store Saver) *Service {
	return &Service{fetcher: fetcher, store: store}
}

// FetchAndSave downloads every source, reshapes each table to long form and
// overwrites the stored tables. Nothing is saved unless all three tables
// were fetched and reshaped.
func (s *Service) FetchAndSave(ctx context.Context, sources map[domain.Metric]string) (map[domain.Metric]int, error) {
	started := time.Now()

	for _, metric := range domain.Metrics() {
		if _, ok := sources[metric]; !ok {
			return nil, fmt.Errorf("no source configured for %s", metric)
		}
	}

	payloads, err := s.fetcher.FetchAll(ctx, sources)
	if err != nil {
		return nil, fmt.Errorf("fetcher.FetchAll: %w", err)
	}

	tables := make(map[domain.Metric][]domain.LongRecord, len(payloads))
	for _, metric := range domain.Metrics() {
		records, err := reshape.Reshape(bytes.NewReader(payloads[metric]))
		if err != nil {
			return nil, fmt.Errorf("reshape %s: %w", metric, err)
		}
		tables[metric] = records
	}

	counts := make(map[domain.Metric]int, len(tables))
	for _, metric := range domain.Metrics() {
		if err := s.store.Save(ctx, metric, tables[metric]); err != nil {
			return nil, fmt.Errorf("store.Save %s: %w", metric, err)
		}
		counts[metric] = len(tables[metric])
		metrics.IngestedRecords.WithLabelValues(string(metric)).Set(float64(len(tables[metric])))
	}

	metrics.IngestDuration.Observe(time.Since(started).Seconds())
	logger.Infof(ctx, "ingested %d confirmed, %d deaths, %d recovered records in %s",
		counts[domain.MetricConfirmed], counts[domain.MetricDeaths], counts[domain.MetricRecovered], time.Since(started))

	return counts, nil
}
