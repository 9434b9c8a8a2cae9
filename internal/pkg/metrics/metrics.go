package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "covid_dashboard"

var (
	IngestedRecords = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "ingested_records",
		Help:      "Long records saved by the last ingest, per metric.",
	}, []string{"metric"})

	IngestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "ingest_duration_seconds",
		Help:      "Duration of the startup fetch, reshape and save sequence.",
		Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
	})

	SeriesCalculations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "series_calculations_total",
		Help:      "Country series calculations by result.",
	}, []string{"result"})

	HTTPRequests = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)
