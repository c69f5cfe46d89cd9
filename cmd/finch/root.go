package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"finch/internal/config"
	"finch/internal/slogutil"
	"finch/internal/version"
)

var (
	configFlag string
	verbosity  int
)

var rootCmd = &cobra.Command{
	Use:   "finch",
	Short: "finch - team roster server",
	Long: `finch serves a team roster as server-rendered HTML. Teams and their members live in a
SQLite or PostgreSQL database; pages are rendered from a directory of HTML templates.`,
	Version:           version.Info(),
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadDotEnv,
}

func init() {
	rootCmd.SetVersionTemplate(version.Full() + "\n")
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "",
		"Config file (default: <user config dir>/finch/finch.toml)")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"Increase log verbosity (repeatable)")
}

// loadDotEnv loads ./.env into the environment so FINCH_* overrides can live next to the data
func loadDotEnv(cmd *cobra.Command, args []string) error {
	err := godotenv.Load()
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load .env: %w", err)
}

// loadConfig loads and validates the configuration selected by --config
func loadConfig() (*config.Config, string, error) {
	cfg, path, err := config.LoadConfig(configFlag)
	if err != nil {
		return nil, path, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, path, fmt.Errorf("%w (config file: %s)", err, path)
	}
	return cfg, path, nil
}

// newLogger builds the process logger; the returned cleanup must run before exit
func newLogger(cfg *config.Config) (*slog.Logger, func(), error) {
	logger, closer, err := slogutil.Setup(cfg.Logging, verbosity, os.Stderr)
	if err != nil {
		return nil, func() {}, err
	}
	return logger, func() { _ = closer.Close() }, nil
}
