package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ougirez/covid-dashboard/internal/config"
	"github.com/ougirez/covid-dashboard/internal/domain"
	"github.com/ougirez/covid-dashboard/internal/pkg/store"
	"github.com/ougirez/covid-dashboard/internal/service/fetcher"
	"github.com/ougirez/covid-dashboard/internal/service/ingest"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the three time series and overwrite the stored tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := store.New(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()

		return runIngest(ctx, cfg, st)
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}

func sources(src config.SourceConfig) map[domain.Metric]string {
	return map[domain.Metric]string{
		domain.MetricConfirmed: src.ConfirmedURL,
		domain.MetricDeaths:    src.DeathsURL,
		domain.MetricRecovered: src.RecoveredURL,
	}
}

func runIngest(ctx context.Context, cfg *config.Config, st store.Store) error {
	fetcherService := fetcher.NewFetcherService(nil, fetcher.Options{
		Timeout:    cfg.Source.Timeout,
		MaxRetries: cfg.Source.MaxRetries,
		UserAgent:  cfg.Source.UserAgent,
	})
	ingestService := ingest.NewIngestService(fetcherService, st)

	if _, err := ingestService.FetchAndSave(ctx, sources(cfg.Source)); err != nil {
		return fmt.Errorf("ingest: %w", err)
	}
	return nil
}
