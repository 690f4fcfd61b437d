package commands

import (
	"fmt"
	"os"

	"github.com/beerbuddy/beerbuddy/internal/config"
	"github.com/beerbuddy/beerbuddy/internal/repository"
	"github.com/beerbuddy/beerbuddy/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "beerbuddy-admin",
	Short: "Maintenance tasks for the BeerBuddy database",
	Long: `beerbuddy-admin runs one-off maintenance tasks against the database
configured for the API server.

Commands:
  migrate  - Create or update the schema
  seed     - Load the demo account and its posts`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the config file (defaults to CONFIG_PATH or configs/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log SQL statements and debug output")
}

// openDatabase loads the config and connects. The caller closes the database.
func openDatabase() (*config.Config, *logger.Logger, *repository.Database, error) {
	if configPath != "" {
		if err := os.Setenv("CONFIG_PATH", configPath); err != nil {
			return nil, nil, nil, fmt.Errorf("failed to set config path: %w", err)
		}
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	level := cfg.Log.Level
	if verbose {
		level = "debug"
		cfg.Database.LogQueries = true
	}
	log := logger.NewLogger(level, "text")

	db, err := repository.NewDatabase(&cfg.Database)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, log, db, nil
}
