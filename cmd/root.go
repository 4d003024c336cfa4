// Package cmd contains the ai-pulse CLI commands
package cmd

import (
	"fmt"
	"log/slog"

	"ai-pulse/config"
	"ai-pulse/internal/logging"
	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	logLevel string
	cfg      *config.Config
	logger   *slog.Logger
	version  = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "ai-pulse",
	Short: "AI company blog aggregator",
	Long: `ai-pulse collects posts from AI company blogs, summarizes them with a
local or remote language model and serves the results over HTTP.

Example usage:
  ai-pulse serve               # API + scheduled jobs
  ai-pulse run                 # ingest, summarize and build trends once
  ai-pulse trends --days 30    # rebuild the 30 day trend summary
  ai-pulse export --out data.json`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

// Execute 执行根命令
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion 构建时注入版本号
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
}

func initConfig() error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	logger = logging.New(cfg.Log.Level)
	slog.SetDefault(logger)

	logger.Debug("configuration loaded",
		"config", cfgFile,
		"database", cfg.Database.Path,
		"sources", len(cfg.Sources),
		"model", cfg.LLM.Model,
		"version", version,
	)
	return nil
}
