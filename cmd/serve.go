package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"rca-agent/internal/config"
	"rca-agent/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve exposes the analysis pipeline over HTTP:

  POST /api/v1/analyze            analyze a log
  GET  /api/v1/logs               list past analyses
  GET  /api/v1/logs/{id}          fetch one analysis
  POST /api/v1/logs/{id}/feedback rate an analysis`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		if serveAddr != "" {
			cfg.ListenAddr = serveAddr
		}
		logger := newLogger(cfg)
		db, repo, err := openRepo(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		srv := server.New(newAnalyzer(cfg, repo, logger), repo, logger)
		logger.WithField("addr", cfg.ListenAddr).Info("starting HTTP API")
		return srv.ListenAndServe(ctx, cfg.ListenAddr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}
