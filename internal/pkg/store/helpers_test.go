package store

import (
	"time"

	"github.com/ougirez/covid-dashboard/internal/domain"
)

func i64(v int64) *int64 { return &v }

func day(d int) time.Time {
	return time.Date(2020, time.January, d, 0, 0, 0, 0, time.UTC)
}

func sampleRecords() []domain.LongRecord {
	return []domain.LongRecord{
		{RegionKey: domain.RegionKey{CountryRegion: "Italy", Lat: "41.87194", Long: "12.56738"}, Date: day(22), Value: i64(0)},
		{RegionKey: domain.RegionKey{CountryRegion: "Italy", Lat: "41.87194", Long: "12.56738"}, Date: day(23), Value: i64(2)},
		{RegionKey: domain.RegionKey{ProvinceState: "Hubei", CountryRegion: "China", Lat: "30.9756", Long: "112.2707"}, Date: day(22), Value: i64(444)},
		{RegionKey: domain.RegionKey{ProvinceState: "Beijing, Municipality", CountryRegion: "China", Lat: "40.1824", Long: "116.4142"}, Date: day(23), Value: nil},
	}
}
