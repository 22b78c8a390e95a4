package kgreason

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/soundprediction/kgreason"
	"github.com/soundprediction/kgreason/pkg/config"
	"github.com/soundprediction/kgreason/pkg/logger"
	"github.com/soundprediction/kgreason/pkg/telemetry"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile   string
	errorSink *telemetry.ParquetHandler

	rootCmd = &cobra.Command{
		Use:   "kgreason",
		Short: "kgreason: knowledge graph reasoning tool",
		Long: `kgreason keeps a knowledge graph of concepts and weighted relations and
reasons over it: questions are grounded in the graph, expanded through related
concepts, and answered with inferences drawn from the paths between them.

Snapshots are kept in a JSON/YAML file, a Badger database, or a Parquet file.`,
		SilenceUsage: true,
	}
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)
	cobra.OnFinalize(flushErrorLog)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.kgreason.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
	rootCmd.PersistentFlags().String("storage-backend", "file", "snapshot backend (file, badger, parquet)")
	rootCmd.PersistentFlags().String("storage-path", "", "snapshot file or database directory")

	// Bind flags to viper
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("storage.backend", rootCmd.PersistentFlags().Lookup("storage-backend"))
	viper.BindPFlag("storage.path", rootCmd.PersistentFlags().Lookup("storage-path"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".kgreason" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".kgreason")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig loads configuration and builds the process logger from it.
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, nil, err
	}
	log := logger.NewLogger(os.Stderr, logger.Options{Level: level, Format: cfg.Log.Format})
	if cfg.Log.ErrorLogDir != "" {
		sink, err := telemetry.NewParquetHandler(log.Handler(), cfg.Log.ErrorLogDir, 0)
		if err != nil {
			return nil, nil, err
		}
		errorSink = sink
		log = slog.New(sink)
	}
	slog.SetDefault(log)
	return cfg, log, nil
}

// flushErrorLog writes error records still buffered when the command ends.
func flushErrorLog() {
	if errorSink == nil {
		return
	}
	if err := errorSink.Flush(); err != nil {
		fmt.Fprintln(os.Stderr, "Error log flush failed:", err)
	}
}

// openClient loads configuration and opens the configured knowledge base.
func openClient(ctx context.Context) (*kgreason.Client, *config.Config, *slog.Logger, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	client, err := kgreason.Open(ctx, cfg, log)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open knowledge base: %w", err)
	}
	return client, cfg, log, nil
}
