package reshape

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ougirez/covid-dashboard/internal/domain"
)

const wideCSV = `Province/State,Country/Region,Lat,Long,1/22/20,1/23/20,1/24/20
,Italy,41.87194,12.56738,0,2,3
Hubei,China,30.9756,112.2707,444,444,549
Beijing,China,40.1824,116.4142,14,22,
`

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestReshapeProducesRowsTimesDates(t *testing.T) {
	records, err := Reshape(strings.NewReader(wideCSV))
	require.NoError(t, err)
	require.Len(t, records, 3*3)

	type key struct {
		province, country string
		date              time.Time
	}
	seen := make(map[key]int)
	for _, r := range records {
		seen[key{r.ProvinceState, r.CountryRegion, r.Date}]++
	}

	for _, k := range []struct{ province, country string }{{"", "Italy"}, {"Hubei", "China"}, {"Beijing", "China"}} {
		for _, d := range []time.Time{date(2020, 1, 22), date(2020, 1, 23), date(2020, 1, 24)} {
			assert.Equal(t, 1, seen[key{k.province, k.country, d}], "%s/%s %s", k.province, k.country, d)
		}
	}
}

func TestReshapeValues(t *testing.T) {
	records, err := Reshape(strings.NewReader(wideCSV))
	require.NoError(t, err)

	byKey := make(map[string]*int64)
	for _, r := range records {
		byKey[r.ProvinceState+"|"+r.CountryRegion+"|"+r.Date.Format(time.DateOnly)] = r.Value
	}

	require.NotNil(t, byKey["Hubei|China|2020-01-24"])
	assert.Equal(t, int64(549), *byKey["Hubei|China|2020-01-24"])
	require.NotNil(t, byKey["|Italy|2020-01-22"])
	assert.Equal(t, int64(0), *byKey["|Italy|2020-01-22"])
	assert.Nil(t, byKey["Beijing|China|2020-01-24"], "empty cell must stay undefined")

	assert.Equal(t, "41.87194", records[0].Lat)
	assert.Equal(t, "12.56738", records[0].Long)
}

func TestReshapeIsIdempotent(t *testing.T) {
	first, err := Reshape(strings.NewReader(wideCSV))
	require.NoError(t, err)
	second, err := Reshape(strings.NewReader(wideCSV))
	require.NoError(t, err)

	assert.ElementsMatch(t, first, second)
}

func TestReshapeRandomShapes(t *testing.T) {
	for _, shape := range []struct{ rows, dates int }{{0, 3}, {1, 1}, {5, 0}, {7, 40}} {
		t.Run(fmt.Sprintf("%dx%d", shape.rows, shape.dates), func(t *testing.T) {
			var b strings.Builder
			b.WriteString("Province/State,Country/Region,Lat,Long")
			start := date(2020, 1, 22)
			for d := 0; d < shape.dates; d++ {
				b.WriteString("," + start.AddDate(0, 0, d).Format(DateLayout))
			}
			b.WriteString("\n")
			for r := 0; r < shape.rows; r++ {
				fmt.Fprintf(&b, "p%d,c%d,0,0", r, r%3)
				for d := 0; d < shape.dates; d++ {
					fmt.Fprintf(&b, ",%d", r*d)
				}
				b.WriteString("\n")
			}

			records, err := Reshape(strings.NewReader(b.String()))
			require.NoError(t, err)
			assert.Len(t, records, shape.rows*shape.dates)
		})
	}
}

func TestReshapeBadDateLabelIsFatal(t *testing.T) {
	in := "Province/State,Country/Region,Lat,Long,1/22/20,2020-01-23\n,Italy,0,0,1,2\n"

	records, err := Reshape(strings.NewReader(in))
	assert.Nil(t, records)

	var dateErr *domain.DateParseError
	require.True(t, errors.As(err, &dateErr))
	assert.Equal(t, "2020-01-23", dateErr.Label)
}

func TestReshapeBadValue(t *testing.T) {
	in := "Province/State,Country/Region,Lat,Long,1/22/20\n,Italy,0,0,lots\n"

	_, err := Reshape(strings.NewReader(in))
	var valErr *domain.ValueParseError
	require.True(t, errors.As(err, &valErr))
	assert.Equal(t, "lots", valErr.Value)
	assert.Equal(t, "1/22/20", valErr.Column)
}

func TestReshapeBadHeader(t *testing.T) {
	_, err := Reshape(strings.NewReader("Country,Lat,Long,1/22/20\nItaly,0,0,1\n"))
	assert.ErrorIs(t, err, ErrBadHeader)

	_, err = Reshape(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrBadHeader)
}

func TestParseDateLabel(t *testing.T) {
	d, err := ParseDateLabel("3/9/21")
	require.NoError(t, err)
	assert.Equal(t, date(2021, 3, 9), d)

	d, err = ParseDateLabel("12/31/20")
	require.NoError(t, err)
	assert.Equal(t, date(2020, 12, 31), d)

	_, err = ParseDateLabel("13/1/20")
	assert.Error(t, err)
}

func TestParseValue(t *testing.T) {
	v, err := parseValue("12.0")
	require.NoError(t, err)
	assert.Equal(t, int64(12), *v)

	_, err = parseValue("1.5")
	assert.Error(t, err)

	v, err = parseValue("  ")
	require.NoError(t, err)
	assert.Nil(t, v)
}
