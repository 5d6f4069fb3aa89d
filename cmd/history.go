package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"rca-agent/internal/config"
	"rca-agent/internal/schema"
)

var (
	historyLimit int
	historyJSON  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past log analyses",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		db, repo, err := openRepo(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		records, err := repo.FetchLogs(historyLimit)
		if err != nil {
			return err
		}

		if historyJSON {
			out, merr := json.MarshalIndent(records, "", "  ")
			if merr != nil {
				return merr
			}
			fmt.Println(string(out))
			return nil
		}

		if len(records) == 0 {
			fmt.Println("\033[33m!\033[0m No analyses recorded yet")
			return nil
		}

		for _, rec := range records {
			errCount := 0
			var resp schema.LogAnalysisResponse
			if json.Unmarshal([]byte(rec.Analysis), &resp) == nil {
				errCount = len(resp.Errors)
			}

			rating := "\033[90munrated\033[0m"
			switch rec.FeedbackChoice {
			case "Yes":
				rating = "\033[32mhelpful\033[0m"
			case "No":
				rating = "\033[31mnot helpful\033[0m"
			}

			fmt.Printf("\033[1;36m[%d]\033[0m %s \033[90m|\033[0m %d error(s) \033[90m|\033[0m %s\n",
				rec.ID, rec.CreatedAt.Format("2006-01-02 15:04"), errCount, rating)
			fmt.Printf("    \033[90m%s\033[0m\n", firstLine(rec.Summary, 100))
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "maximum number of analyses to show")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "print records as JSON")
	rootCmd.AddCommand(historyCmd)
}

// firstLine trims s to its first line, capped at max runes.
func firstLine(s string, max int) string {
	for i, r := range s {
		if r == '\n' {
			s = s[:i]
			break
		}
	}
	runes := []rune(s)
	if len(runes) > max {
		return string(runes[:max]) + "..."
	}
	return s
}
