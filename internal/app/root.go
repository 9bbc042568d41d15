package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/basketprune/internal/config"
	"github.com/blackwell-systems/basketprune/internal/logging"
)

var (
	dbPath     string
	configPath string
	logLevel   string
	logFormat  string

	// cfg is loaded by the root PersistentPreRunE.
	cfg *config.Config

	// RootCmd is the root command for basketprune
	RootCmd = &cobra.Command{
		Use:   "basketprune",
		Short: "Frequent itemset and association rule mining for basket data",
		Long: `basketprune finds the item combinations that occur together in at least a
given share of transactions, and the association rules ("customers who buy
Beer also buy Cheese") that follow from them.

Transactions come from CSV or JSON files, from datasets imported into the
local database, or from the built-in eight-basket grocery sample.

Quick Start:
  1. basketprune mine --sample
  2. basketprune import baskets.csv --name store
  3. basketprune rules --dataset store --min-confidence 0.6
  4. basketprune serve --dataset store

Features:
  • Level-wise Apriori search with subset pruning
  • Rules with support, confidence, lift, leverage and conviction
  • SQLite-backed dataset library
  • Re-mining when a watched file changes
  • Web page and JSON API with Prometheus metrics

Examples:
  # Mine the sample data
  basketprune mine --sample --min-support 0.3

  # Import a basket file
  basketprune import baskets.csv

  # Strongest rules by lift
  basketprune rules --dataset baskets --sort lift --limit 10

  # Explain one rule
  basketprune explain Beer,Bread Cheese --sample`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: loadConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("basketprune: frequent itemset and association rule mining")
			fmt.Println()
			fmt.Println("Run 'basketprune mine --sample' to try the built-in grocery data.")
			fmt.Println("Run 'basketprune --help' for the full reference.")
			return nil
		},
	}
)

func init() {
	// Global flags
	RootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database path (default: ~/.basketprune/basketprune.db)")
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: ~/.config/basketprune/config.yaml)")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: trace, debug, info, warn, error")
	RootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: console or json")

	// Enable cobra's built-in suggestion feature for unknown subcommands
	RootCmd.SuggestionsMinimumDistance = 2
}

// Execute runs the root command
func Execute() error {
	return RootCmd.Execute()
}

// loadConfig reads the configuration and applies the global flags on top.
func loadConfig(cmd *cobra.Command, args []string) error {
	c, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFormat != "" {
		c.Logging.Format = logFormat
	}
	if err := c.Validate(); err != nil {
		return err
	}

	logging.Init(logging.Config{
		Level:  c.Logging.Level,
		Format: c.Logging.Format,
	})
	cfg = c
	return nil
}

// currentConfig returns the loaded configuration, or the defaults when a
// command runs without the root pre-run.
func currentConfig() *config.Config {
	if cfg == nil {
		return config.Default()
	}
	return cfg
}

// getDBPath returns the database path from the flag, the configuration or
// the default, creating its directory.
func getDBPath() (string, error) {
	path := dbPath
	if path == "" {
		path = currentConfig().Storage.DBPath
	}
	if path == "" {
		return "", fmt.Errorf("no database path configured")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create database directory: %w", err)
	}
	return path, nil
}

// stateDir returns ~/.basketprune, creating it if needed.
func stateDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	dir := filepath.Join(home, ".basketprune")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create basketprune directory: %w", err)
	}
	return dir, nil
}

// getDefaultPIDFile returns the default PID file path
func getDefaultPIDFile() (string, error) {
	dir, err := stateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "watch.pid"), nil
}

// getDefaultLogFile returns the default log file path
func getDefaultLogFile() (string, error) {
	dir, err := stateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "watch.log"), nil
}
