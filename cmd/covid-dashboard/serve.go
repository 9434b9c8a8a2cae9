package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ougirez/covid-dashboard/internal/api"
	"github.com/ougirez/covid-dashboard/internal/pkg/logger"
	"github.com/ougirez/covid-dashboard/internal/pkg/store"
	"github.com/ougirez/covid-dashboard/internal/service/series"
)

const shutdownTimeout = 10 * time.Second

var (
	serveAddr   string
	serveNoSync bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Refresh the stored tables and serve the dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := store.New(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()

		if serveNoSync {
			logger.Warnf(ctx, "skipping ingest, serving previously stored tables")
		} else if err := runIngest(ctx, cfg, st); err != nil {
			return err
		}

		apiService, err := api.NewAPIService(series.NewSeriesService(st), cfg.Server.AllowOrigins)
		if err != nil {
			return fmt.Errorf("init api: %w", err)
		}

		go func() {
			<-ctx.Done()
			logger.Infof(context.Background(), "shutting down server")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := apiService.Shutdown(shutdownCtx); err != nil {
				logger.Errorf(shutdownCtx, "shutdown: %s", err.Error())
			}
		}()

		addr := serveAddr
		if addr == "" {
			addr = cfg.Server.Addr
		}
		if err := apiService.Serve(addr); err != nil {
			return fmt.Errorf("server listen: %w", err)
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	serveCmd.Flags().BoolVar(&serveNoSync, "no-sync", false, "serve the stored tables without downloading first")
	rootCmd.AddCommand(serveCmd)
}
