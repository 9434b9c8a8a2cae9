package domain

import "time"

type Metric string

const (
	MetricConfirmed Metric = "confirmed"
	MetricDeaths    Metric = "deaths"
	MetricRecovered Metric = "recovered"
)

// Metrics returns every published metric in source order.
func Metrics() []Metric {
	return []Metric{MetricConfirmed, MetricDeaths, MetricRecovered}
}

func (m Metric) Valid() bool {
	switch m {
	case MetricConfirmed, MetricDeaths, MetricRecovered:
		return true
	}
	return false
}

// Identifier columns that lead every source table.
const (
	ColProvinceState = "Province/State"
	ColCountryRegion = "Country/Region"
	ColLat           = "Lat"
	ColLong          = "Long"
	ColDate          = "date"
)

// IDColumns returns the fixed identifier header of a source table.
func IDColumns() []string {
	return []string{ColProvinceState, ColCountryRegion, ColLat, ColLong}
}

// WideTable is a source table with one column per observation date.
type WideTable struct {
	Header []string
	Rows   [][]string
}

// DateLabels returns the header labels that follow the identifier columns.
func (t *WideTable) DateLabels() []string {
	if len(t.Header) <= len(IDColumns()) {
		return nil
	}
	return t.Header[len(IDColumns()):]
}

type RegionKey struct {
	ProvinceState string `db:"province_state" json:"province_state"`
	CountryRegion string `db:"country_region" json:"country_region"`
	Lat           string `db:"lat" json:"lat"`
	Long          string `db:"long" json:"long"`
}

// LongRecord is one (region, date) observation of a single metric.
// Value is nil when the source cell was empty.
type LongRecord struct {
	RegionKey
	Date  time.Time `db:"date" json:"date"`
	Value *int64    `db:"value" json:"value"`
}

// CountryDay is the per-country daily aggregate with derived metrics.
// Nil pointers mark undefined values and are never coerced to zero.
type CountryDay struct {
	Country      string    `json:"country"`
	Date         time.Time `json:"date"`
	Confirmed    int64     `json:"confirmed"`
	Deaths       *int64    `json:"deaths"`
	Recovered    *int64    `json:"recovered"`
	Active       *int64    `json:"active"`
	NewCases     *int64    `json:"new_cases"`
	Growth       *float64  `json:"growth"`
	GrowthFactor *float64  `json:"growth_factor"`
}
