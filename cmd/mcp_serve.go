package cmd

import (
	"github.com/spf13/cobra"

	"rca-agent/internal/config"
	"rca-agent/internal/mcp"
)

var mcpServeCmd = &cobra.Command{
	Use:   "mcp-serve",
	Short: "Run as an MCP server over stdio",
	Long: `Exposes log analysis and the analysis history as MCP tools so that
AI assistants can call them. Communicates over stdin/stdout.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		logger := newLogger(cfg)
		db, repo, err := openRepo(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		return mcp.Serve(newAnalyzer(cfg, repo, logger), repo)
	},
}

func init() {
	rootCmd.AddCommand(mcpServeCmd)
}
