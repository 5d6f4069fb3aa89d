package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"rca-agent/internal/config"
)

var (
	feedbackChoice  string
	feedbackComment string
)

var feedbackCmd = &cobra.Command{
	Use:   "feedback <log-id>",
	Short: "Rate a past analysis",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid log id %q", args[0])
		}

		cfg := config.Load()
		db, repo, err := openRepo(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		rec, err := repo.FetchLogByID(logID)
		if err != nil {
			return err
		}
		if rec == nil {
			return fmt.Errorf("no analysis with id %d", logID)
		}

		if _, err := repo.InsertFeedback(logID, feedbackChoice, feedbackComment); err != nil {
			return err
		}
		fmt.Printf("\033[32m✓\033[0m Feedback saved for analysis %d\n", logID)
		return nil
	},
}

func init() {
	feedbackCmd.Flags().StringVarP(&feedbackChoice, "choice", "c", "", `"Yes" or "No" (required)`)
	feedbackCmd.Flags().StringVarP(&feedbackComment, "comment", "m", "", "optional free-form comment")
	feedbackCmd.MarkFlagRequired("choice")
	rootCmd.AddCommand(feedbackCmd)
}
