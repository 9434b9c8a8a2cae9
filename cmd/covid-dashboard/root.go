package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ougirez/covid-dashboard/internal/config"
	"github.com/ougirez/covid-dashboard/internal/pkg/logger"
)

var (
	cfg        *config.Config
	configPath string
)

var rootCmd = &cobra.Command{
	Use:           "covid-dashboard",
	Short:         "COVID-19 per-country dashboard",
	Long:          "Downloads the JHU CSSE time series, reshapes and stores them, and serves per-country charts.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var paths []string
		if configPath != "" {
			paths = append(paths, configPath)
		}

		c, err := config.Load(paths...)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config-dir", "", "directory holding config.yaml")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
