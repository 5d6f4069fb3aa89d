package cmd

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"rca-agent/internal/config"
	"rca-agent/internal/enrich"
	"rca-agent/internal/llm"
	"rca-agent/internal/pipeline"
	"rca-agent/internal/storage"
)

var rootCmd = &cobra.Command{
	Use:   "rca-agent",
	Short: "Root-cause analysis for application logs",
	Long: `rca-agent sends application logs to an LLM backend, extracts the
errors it finds, and suggests immediate, permanent, and preventive fixes.
Past analyses are stored locally and can be reviewed and rated.`,
	SilenceUsage: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if cfg.Debug {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.WarnLevel)
	}
	return logger
}

func openRepo(cfg *config.Config) (*sql.DB, *storage.Repository, error) {
	db, err := storage.InitDB(cfg.DataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	return db, storage.NewRepository(db), nil
}

func newEnricher(cfg *config.Config, logger *logrus.Logger) *enrich.Enricher {
	if cfg.SearchDisabled {
		return nil
	}
	ddg := enrich.NewDuckDuckGo(cfg.SearchURL, cfg.SearchTimeout)
	return enrich.New(ddg, cfg.SearchMaxResults, logger)
}

// newAnalyzer assembles the full pipeline from configuration.
func newAnalyzer(cfg *config.Config, repo *storage.Repository, logger *logrus.Logger) *pipeline.Analyzer {
	client := llm.NewFromConfig(cfg)
	return pipeline.New(cfg, client, newEnricher(cfg, logger), repo, logger)
}
