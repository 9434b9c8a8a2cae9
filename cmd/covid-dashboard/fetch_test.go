package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ougirez/covid-dashboard/internal/api"
	"github.com/ougirez/covid-dashboard/internal/config"
	"github.com/ougirez/covid-dashboard/internal/domain"
	"github.com/ougirez/covid-dashboard/internal/domain/dto"
	"github.com/ougirez/covid-dashboard/internal/pkg/store"
	"github.com/ougirez/covid-dashboard/internal/service/series"
)

var csvByPath = map[string]string{
	"/confirmed.csv": "Province/State,Country/Region,Lat,Long,1/22/20,1/23/20,1/24/20\n" +
		"Hubei,China,30.9756,112.2707,444,549,761\n" +
		"Beijing,China,40.1824,116.4142,14,22,36\n" +
		",Italy,43.0,12.0,0,0,3\n",
	"/deaths.csv": "Province/State,Country/Region,Lat,Long,1/22/20,1/23/20,1/24/20\n" +
		"Hubei,China,30.9756,112.2707,17,17,24\n" +
		",Italy,43.0,12.0,0,0,0\n",
	"/recovered.csv": "Province/State,Country/Region,Lat,Long,1/22/20,1/23/20,1/24/20\n" +
		"Hubei,China,30.9756,112.2707,28,28,31\n" +
		",Italy,43.0,12.0,0,0,0\n",
}

func newSourceServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := csvByPath[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(srvURL, dir string) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Addr: ":0"},
		Source: config.SourceConfig{
			ConfirmedURL: srvURL + "/confirmed.csv",
			DeathsURL:    srvURL + "/deaths.csv",
			RecoveredURL: srvURL + "/recovered.csv",
			Timeout:      5 * time.Second,
		},
		Store: config.StoreConfig{Driver: config.DriverFile, Dir: dir},
		Log:   config.LogConfig{Level: "info", Format: "json"},
	}
}

func TestSources(t *testing.T) {
	got := sources(config.SourceConfig{ConfirmedURL: "c", DeathsURL: "d", RecoveredURL: "r"})
	assert.Equal(t, map[domain.Metric]string{
		domain.MetricConfirmed: "c",
		domain.MetricDeaths:    "d",
		domain.MetricRecovered: "r",
	}, got)
}

func TestRunIngestThenServe(t *testing.T) {
	ctx := context.Background()
	src := newSourceServer(t)
	c := testConfig(src.URL, t.TempDir())

	st, err := store.New(ctx, c.Store)
	require.NoError(t, err)
	defer st.Close()

	require.NoError(t, runIngest(ctx, c, st))

	confirmed, err := st.Load(ctx, domain.MetricConfirmed)
	require.NoError(t, err)
	assert.Len(t, confirmed, 9)

	apiService, err := api.NewAPIService(series.NewSeriesService(st), nil)
	require.NoError(t, err)
	srv := httptest.NewServer(apiService.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/charts/cumulative?country=China")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var fig dto.Figure
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&fig))
	require.Len(t, fig.Data, 2)
	assert.Equal(t, []string{"2020-01-22", "2020-01-23", "2020-01-24"}, fig.Data[1].X)
	assert.Equal(t, 458.0, *fig.Data[1].Y[0])
	assert.Equal(t, 413.0, *fig.Data[0].Y[0])
}

func TestRunIngestMissingSourceSavesNothing(t *testing.T) {
	ctx := context.Background()
	src := newSourceServer(t)
	c := testConfig(src.URL, t.TempDir())
	c.Source.RecoveredURL = src.URL + "/missing.csv"

	st, err := store.New(ctx, c.Store)
	require.NoError(t, err)
	defer st.Close()

	err = runIngest(ctx, c, st)
	require.Error(t, err)

	var fetchErr *domain.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)

	_, err = st.Load(ctx, domain.MetricConfirmed)
	var notFound *domain.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}
