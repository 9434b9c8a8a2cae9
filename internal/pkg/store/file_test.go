package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ougirez/covid-dashboard/internal/domain"
)

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewFileStore(filepath.Join(t.TempDir(), "data"))

	require.NoError(t, s.Save(ctx, domain.MetricConfirmed, sampleRecords()))

	got, err := s.Load(ctx, domain.MetricConfirmed)
	require.NoError(t, err)
	assert.Equal(t, sampleRecords(), got)
}

func TestFileStoreWritesISODatesAndHeader(t *testing.T) {
	ctx := context.Background()
	s := NewFileStore(t.TempDir())

	require.NoError(t, s.Save(ctx, domain.MetricDeaths, sampleRecords()[:1]))

	raw, err := os.ReadFile(s.Path(domain.MetricDeaths))
	require.NoError(t, err)
	assert.Equal(t, "Province/State,Country/Region,Lat,Long,date,deaths\n,Italy,41.87194,12.56738,2020-01-22,0\n", string(raw))
}

func TestFileStoreSaveOverwrites(t *testing.T) {
	ctx := context.Background()
	s := NewFileStore(t.TempDir())

	require.NoError(t, s.Save(ctx, domain.MetricRecovered, sampleRecords()))
	require.NoError(t, s.Save(ctx, domain.MetricRecovered, sampleRecords()[:2]))

	got, err := s.Load(ctx, domain.MetricRecovered)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	entries, err := os.ReadDir(filepath.Dir(s.Path(domain.MetricRecovered)))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestFileStoreLoadBeforeSave(t *testing.T) {
	s := NewFileStore(t.TempDir())

	_, err := s.Load(context.Background(), domain.MetricConfirmed)
	var notFound *domain.NotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, domain.MetricConfirmed, notFound.Metric)
}

func TestFileStoreRejectsForeignHeader(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir)
	require.NoError(t, os.WriteFile(s.Path(domain.MetricConfirmed), []byte("a,b\n1,2\n"), 0o644))

	_, err := s.Load(context.Background(), domain.MetricConfirmed)
	assert.Error(t, err)
}

func TestFileStoreCancelledSaveKeepsPreviousTable(t *testing.T) {
	s := NewFileStore(t.TempDir())
	require.NoError(t, s.Save(context.Background(), domain.MetricConfirmed, sampleRecords()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, s.Save(ctx, domain.MetricConfirmed, sampleRecords()[:1]))

	got, err := s.Load(context.Background(), domain.MetricConfirmed)
	require.NoError(t, err)
	assert.Equal(t, sampleRecords(), got)
}
