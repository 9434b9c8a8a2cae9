package series

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ougirez/covid-dashboard/internal/domain"
	"github.com/ougirez/covid-dashboard/internal/pkg/logger"
)

// Loader is the read side of the metric store.
type Loader interface {
	Load(ctx context.Context, metric domain.Metric) ([]domain.LongRecord, error)
}

type Service struct {
	store Loader
}

func NewSeriesService(store Loader) *Service {
	return &Service{store: store}
}

// Countries lists the distinct Country/Region values of the confirmed table
// in the order they first appear.
func (s *Service) Countries(ctx context.Context) ([]string, error) {
	confirmed, err := s.store.Load(ctx, domain.MetricConfirmed)
	if err != nil {
		return nil, fmt.Errorf("store.Load confirmed: %w", err)
	}

	seen := make(map[string]struct{})
	countries := make([]string, 0, 200)
	for _, r := range confirmed {
		if _, ok := seen[r.CountryRegion]; ok {
			continue
		}
		seen[r.CountryRegion] = struct{}{}
		countries = append(countries, r.CountryRegion)
	}

	return countries, nil
}

// Calculate builds the date-ascending daily series for country, summing
// over its sub-regions and deriving active, new cases, growth and growth
// factor. The country must match Country/Region exactly.
func (s *Service) Calculate(ctx context.Context, country string) ([]domain.CountryDay, error) {
	tables := make(map[domain.Metric]map[time.Time]int64, 3)
	for _, metric := range domain.Metrics() {
		records, err := s.store.Load(ctx, metric)
		if err != nil {
			return nil, fmt.Errorf("store.Load %s: %w", metric, err)
		}

		sums, matched := sumByDate(records, country)
		if metric == domain.MetricConfirmed && !matched {
			return nil, &domain.UnknownCountryError{Country: country}
		}
		tables[metric] = sums
	}

	confirmed := tables[domain.MetricConfirmed]
	dates := make([]time.Time, 0, len(confirmed))
	for d := range confirmed {
		dates = append(dates, d)
	}
	slices.SortFunc(dates, func(a, b time.Time) int { return a.Compare(b) })

	days := make([]domain.CountryDay, len(dates))
	for i, d := range dates {
		day := domain.CountryDay{
			Country:   country,
			Date:      d,
			Confirmed: confirmed[d],
			Deaths:    lookup(tables[domain.MetricDeaths], d),
			Recovered: lookup(tables[domain.MetricRecovered], d),
		}
		if day.Deaths != nil && day.Recovered != nil {
			active := day.Confirmed - *day.Recovered - *day.Deaths
			day.Active = &active
		}

		if i > 0 {
			prev := &days[i-1]
			newCases := day.Confirmed - prev.Confirmed
			day.NewCases = &newCases
			day.Growth = ratio(day.Confirmed, prev.Confirmed)
			if prev.NewCases != nil {
				day.GrowthFactor = ratio(newCases, *prev.NewCases)
			}
		}

		days[i] = day
	}

	logger.Debugf(ctx, "calculated %d days for %s", len(days), country)
	return days, nil
}

// TrimLeadingZeros drops the leading run of days with no confirmed cases.
// Later zero days are kept.
func TrimLeadingZeros(days []domain.CountryDay) []domain.CountryDay {
	for i, d := range days {
		if d.Confirmed > 0 {
			return days[i:]
		}
	}
	return days[:0]
}

// sumByDate sums the non-empty values of country's rows per date. matched
// reports whether any row belongs to country, even if all its cells are empty.
func sumByDate(records []domain.LongRecord, country string) (sums map[time.Time]int64, matched bool) {
	sums = make(map[time.Time]int64)
	for _, r := range records {
		if r.CountryRegion != country {
			continue
		}
		matched = true
		if r.Value == nil {
			continue
		}
		sums[r.Date.UTC()] += *r.Value
	}
	return sums, matched
}

func lookup(sums map[time.Time]int64, d time.Time) *int64 {
	v, ok := sums[d]
	if !ok {
		return nil
	}
	return &v
}

func ratio(num, den int64) *float64 {
	if den == 0 {
		return nil
	}
	r := decimal.NewFromInt(num).Div(decimal.NewFromInt(den)).InexactFloat64()
	return &r
}
