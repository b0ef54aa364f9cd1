// Package cmd implements the rfidrag command line interface.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/najihhome/rfidrag/internal/config"
	"github.com/najihhome/rfidrag/internal/log"
)

var rootCmd = &cobra.Command{
	Use:   "rfidrag",
	Short: "RFID knowledge assistant",
	Long: `rfidrag answers questions about RFID from a curated knowledge base,
falling back to online search and a language model when the local
knowledge is not enough. Community contributions flow through a
moderation queue before they join the knowledge base.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig loads and validates configuration and builds the logger.
func loadConfig() (*config.Config, log.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	logger := log.New(log.Config{Level: log.ParseLevel(cfg.LogLevel), JSON: cfg.LogJSON})

	return cfg, logger, nil
}
